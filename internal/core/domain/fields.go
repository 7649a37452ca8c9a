// internal/core/domain/fields.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value es el valor de un campo: texto o un mapping anidado.
// Exactamente uno de Text/Fields tiene sentido; Fields != nil marca el anidado.
type Value struct {
	Text   string
	Fields *Fields
}

// IsNested indica si el valor es un mapping anidado.
func (v Value) IsNested() bool {
	return v.Fields != nil
}

// IsEmpty indica si el valor no aporta datos: mapping vacío, o texto vacío
// o compuesto solo de espacios en blanco (" ", "\t", "\n" cuentan como vacío).
func (v Value) IsEmpty() bool {
	if v.Fields != nil {
		return v.Fields.Len() == 0
	}
	return strings.TrimSpace(v.Text) == ""
}

// Fields es un mapping ordenado nombre -> Value.
// El orden de inserción se preserva en JSON y YAML.
type Fields struct {
	keys   []string
	values map[string]Value
}

// NewFields crea un mapping vacío.
func NewFields() *Fields {
	return &Fields{values: make(map[string]Value)}
}

// FieldsOf construye Fields a partir de pares clave/valor string.
// Un número impar de argumentos descarta el último.
func FieldsOf(kv ...string) *Fields {
	f := NewFields()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

func (f *Fields) put(key string, v Value) *Fields {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
	return f
}

// Set asigna un valor de texto. Reasignar una clave conserva su posición.
func (f *Fields) Set(key, value string) *Fields {
	return f.put(key, Value{Text: value})
}

// SetNested asigna un mapping anidado.
func (f *Fields) SetNested(key string, nested *Fields) *Fields {
	if nested == nil {
		nested = NewFields()
	}
	return f.put(key, Value{Fields: nested})
}

// SetList guarda una lista como texto separado por ", ".
func (f *Fields) SetList(key string, items []string) *Fields {
	return f.Set(key, strings.Join(items, ", "))
}

// Get retorna el valor de una clave.
func (f *Fields) Get(key string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	v, ok := f.values[key]
	return v, ok
}

// Text retorna el texto de una clave o "" si no existe o es anidada.
func (f *Fields) Text(key string) string {
	v, _ := f.Get(key)
	return v.Text
}

// Keys retorna las claves en orden de inserción.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len retorna el número de campos.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// StripEmpty retorna una copia sin valores vacíos (ver Value.IsEmpty) ni
// mappings que quedan vacíos tras limpiar sus hijos. El texto que se
// conserva no se recorta.
func (f *Fields) StripEmpty() *Fields {
	out := NewFields()
	if f == nil {
		return out
	}
	for _, k := range f.keys {
		v := f.values[k]
		if v.Fields != nil {
			nested := v.Fields.StripEmpty()
			if nested.Len() > 0 {
				out.SetNested(k, nested)
			}
			continue
		}
		if !v.IsEmpty() {
			out.Set(k, v.Text)
		}
	}
	return out
}

// Flatten retorna pares "a.b.c" -> texto recorriendo en orden.
func (f *Fields) Flatten() [][2]string {
	var out [][2]string
	f.flatten("", &out)
	return out
}

func (f *Fields) flatten(prefix string, out *[][2]string) {
	if f == nil {
		return
	}
	for _, k := range f.keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		v := f.values[k]
		if v.Fields != nil {
			v.Fields.flatten(name, out)
			continue
		}
		*out = append(*out, [2]string{name, v.Text})
	}
}

// MarshalJSON serializa preservando el orden de inserción.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if f != nil {
		for i, k := range f.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')

			v := f.values[k]
			var raw []byte
			if v.Fields != nil {
				raw, err = v.Fields.MarshalJSON()
			} else {
				raw, err = json.Marshal(v.Text)
			}
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reconstruye el mapping respetando el orden del documento.
// Escalares no-string se guardan con su representación JSON.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}
	parsed, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

func decodeObject(dec *json.Decoder) (*Fields, error) {
	out := NewFields()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("fields: expected key, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case json.Delim:
			if t != '{' {
				return nil, fmt.Errorf("fields: unsupported value %q for key %q", t, key)
			}
			nested, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			out.SetNested(key, nested)
		case string:
			out.Set(key, t)
		case nil:
			out.Set(key, "")
		default:
			out.Set(key, fmt.Sprint(t))
		}
	}
	// cierre '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalYAML produce un mapping node con el orden de inserción.
func (f *Fields) MarshalYAML() (interface{}, error) {
	return f.yamlNode(), nil
}

func (f *Fields) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if f == nil {
		return node
	}
	for _, k := range f.keys {
		v := f.values[k]
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		var valNode *yaml.Node
		if v.Fields != nil {
			valNode = v.Fields.yamlNode()
		} else {
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text}
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node
}
