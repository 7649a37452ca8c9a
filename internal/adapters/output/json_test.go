// internal/adapters/output/json_test.go
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/testutil"
)

func TestJSONSink_RoundTrip(t *testing.T) {
	report := testutil.SampleReport()

	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf, true).Write(context.Background(), report))

	var decoded domain.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, report.Subject, decoded.Subject)
	assert.Equal(t, report.Summary, decoded.Summary)
	assert.True(t, report.StartedAt.Equal(decoded.StartedAt))
	require.Len(t, decoded.Entries, 3)

	gh, ok := decoded.Entry("github")
	require.True(t, ok)
	assert.Equal(t, "The Octocat", gh.Result.Fields.Text("name"))

	kb, ok := decoded.Entry("keybase")
	require.True(t, ok)
	assert.Equal(t, domain.FailureTimeout, kb.Failure.Kind)
}

func TestJSONSink_PreservesFieldOrderAndIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf, true).Write(context.Background(), testutil.SampleReport()))
	out := buf.String()

	name := strings.Index(out, `"name"`)
	repos := strings.Index(out, `"public_repos"`)
	links := strings.Index(out, `"links"`)
	require.True(t, name > 0 && repos > 0 && links > 0)
	assert.Less(t, name, repos)
	assert.Less(t, repos, links)
	assert.Contains(t, out, "\n  \"id\"")
}

func TestJSONSink_Compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf, false).Write(context.Background(), testutil.SampleReport()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestSinks_RejectNilReport(t *testing.T) {
	sinks := []interface {
		Write(context.Context, *domain.RunReport) error
	}{
		NewJSONSink(&bytes.Buffer{}, true),
		NewYAMLSink(&bytes.Buffer{}),
		NewCSVSink(&bytes.Buffer{}),
		NewHTMLSink(&bytes.Buffer{}),
		NewTableSink(&bytes.Buffer{}),
	}
	for _, s := range sinks {
		assert.Error(t, s.Write(context.Background(), nil))
	}
}
