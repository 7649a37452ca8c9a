// internal/adapters/output/table_test.go
package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/testutil"
)

func TestTableSink(t *testing.T) {
	report := testutil.SampleReport()
	report.Correlations = []domain.Correlation{
		{Field: "name", Value: "The Octocat", Sources: []string{"github", "gitlab"}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTableSink(&buf).Write(context.Background(), report))
	out := buf.String()

	assert.Contains(t, out, "=== Falcon Report ===")
	assert.Contains(t, out, "Subject:   octocat (username)")
	assert.Contains(t, out, "Category:  social")
	assert.Contains(t, out, "name=The Octocat, public_repos=8, links.blog=https://github.blog")
	assert.Contains(t, out, "no response within 10s")
	assert.Contains(t, out, "Total: 3  Succeeded: 2  Found: 1  Not found: 1  Failed: 1  Timed out: 1")
	assert.Contains(t, out, `name = "The Octocat" [github, gitlab]`)
}

func TestTableSink_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.RunReport{
		Subject:  domain.Subject{Value: "example.com", Kind: domain.SubjectKindDomain},
		Category: domain.CategoryTechnical,
	}
	require.NoError(t, NewTableSink(&buf).Write(context.Background(), report))
	assert.Contains(t, buf.String(), "No probes ran.")
	assert.NotContains(t, buf.String(), "Correlations")
}

func TestDetailsOf_Truncates(t *testing.T) {
	fields := domain.FieldsOf("a", "1", "b", "2", "c", "3", "d", "4", "e", "5", "f", "6")
	got := detailsOf(domain.ResultOutcome(domain.CategorySocial, domain.Found("x", fields)))
	assert.Equal(t, "a=1, b=2, c=3, d=4, (+2 more)", got)
}
