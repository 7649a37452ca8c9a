// internal/adapters/output/yaml_test.go
package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"falcon/internal/testutil"
)

func TestYAMLSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLSink(&buf).Write(context.Background(), testutil.SampleReport()))
	out := buf.String()

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	subject, ok := doc["subject"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "octocat", subject["value"])
	assert.Equal(t, "username", subject["kind"])
	assert.Equal(t, "1.5s", doc["duration"])

	entries, ok := doc["entries"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 3)

	first := entries[0].(map[string]interface{})
	assert.Equal(t, "github", first["source"])
	result := first["result"].(map[string]interface{})
	assert.Equal(t, "180ms", result["latency"])

	assert.Less(t, strings.Index(out, "name: The Octocat"), strings.Index(out, "public_repos:"))
}
