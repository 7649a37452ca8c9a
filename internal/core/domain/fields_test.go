// internal/core/domain/fields_test.go
package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFields_PreservesInsertionOrder(t *testing.T) {
	f := NewFields().
		Set("zeta", "1").
		Set("alpha", "2").
		SetNested("mid", FieldsOf("b", "x", "a", "y"))

	// reasignar no mueve la clave
	f.Set("zeta", "3")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, f.Keys())

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"3","alpha":"2","mid":{"b":"x","a":"y"}}`, string(raw))

	out, err := yaml.Marshal(f)
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &doc))
	root := doc.Content[0]
	require.Len(t, root.Content, 6)
	assert.Equal(t, "zeta", root.Content[0].Value)
	assert.Equal(t, "3", root.Content[1].Value)
	assert.Equal(t, "!!str", root.Content[1].Tag)
	assert.Equal(t, "alpha", root.Content[2].Value)
	assert.Equal(t, "mid", root.Content[4].Value)
	assert.Equal(t, "b", root.Content[5].Content[0].Value)
	assert.Equal(t, "a", root.Content[5].Content[2].Value)
}

func TestFields_StripEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   *Fields
		want string
	}{
		{
			name: "drops empty string",
			in:   FieldsOf("bio", "", "repos", "12"),
			want: `{"repos":"12"}`,
		},
		{
			name: "drops whitespace and empty mapping",
			in:   FieldsOf("a", "  ").SetNested("links", NewFields()).Set("b", "ok"),
			want: `{"b":"ok"}`,
		},
		{
			name: "whitespace-only text counts as empty",
			in:   FieldsOf("tab", "\t", "newline", "\n ", "mixed", " \t\r\n", "padded", " x "),
			want: `{"padded":" x "}`,
		},
		{
			name: "nested mapping of whitespace is dropped",
			in:   NewFields().SetNested("contact", FieldsOf("email", "   ")).Set("name", "n"),
			want: `{"name":"n"}`,
		},
		{
			name: "drops mapping that becomes empty",
			in:   NewFields().SetNested("social", FieldsOf("x", "", "y", "")).Set("name", "n"),
			want: `{"name":"n"}`,
		},
		{
			name: "keeps populated nested",
			in:   NewFields().SetNested("dns", FieldsOf("a", "1.2.3.4", "mx", "")),
			want: `{"dns":{"a":"1.2.3.4"}}`,
		},
		{
			name: "nil",
			in:   nil,
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stripped := tt.in.StripEmpty()
			raw, err := json.Marshal(stripped)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))
		})
	}
}

func TestFields_StripEmptyDoesNotMutate(t *testing.T) {
	f := FieldsOf("bio", "", "repos", "12")
	_ = f.StripEmpty()
	assert.Equal(t, 2, f.Len())
}

func TestFields_UnmarshalJSON(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"b":"1","a":{"y":"2","x":3},"c":null,"d":true}`), &f)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c", "d"}, f.Keys())
	nested, ok := f.Get("a")
	require.True(t, ok)
	require.True(t, nested.IsNested())
	assert.Equal(t, []string{"y", "x"}, nested.Fields.Keys())
	assert.Equal(t, "3", nested.Fields.Text("x"))
	assert.Equal(t, "true", f.Text("d"))

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &f))
}

func TestFields_Flatten(t *testing.T) {
	f := NewFields().
		Set("name", "octocat").
		SetNested("dns", NewFields().Set("a", "1.1.1.1").SetNested("mx", FieldsOf("0", "mx.example.com")))

	assert.Equal(t, [][2]string{
		{"name", "octocat"},
		{"dns.a", "1.1.1.1"},
		{"dns.mx.0", "mx.example.com"},
	}, f.Flatten())
}
