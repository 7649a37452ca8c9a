// internal/adapters/output/csv_test.go
package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/testutil"
)

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVSink(&buf).Write(context.Background(), testutil.SampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus one row per entry")

	assert.Equal(t, []string{
		"source", "category", "outcome", "message", "latency_ms", "fetched_at",
		"name", "public_repos", "links.blog",
	}, records[0])
	assert.Equal(t, []string{
		"github", "social", "found", "", "180", "2024-05-01T12:00:00Z",
		"The Octocat", "8", "https://github.blog",
	}, records[1])
	assert.Equal(t, []string{
		"keybase", "social", "timeout", "no response within 10s", "", "", "", "", "",
	}, records[2])
	assert.Equal(t, []string{
		"reddit", "social", "not_found", "", "90", "2024-05-01T12:00:00Z", "", "", "",
	}, records[3])
}

func TestCSVSink_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.RunReport{Category: domain.CategoryTechnical}
	require.NoError(t, NewCSVSink(&buf).Write(context.Background(), report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvFixedColumns, records[0])
}
