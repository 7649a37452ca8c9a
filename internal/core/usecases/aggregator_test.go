// internal/core/usecases/aggregator_test.go
package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/testutil"
)

func outcomesOf(os ...domain.Outcome) map[string]domain.Outcome {
	m := make(map[string]domain.Outcome, len(os))
	for _, o := range os {
		m[o.Source] = o
	}
	return m
}

func TestAggregator_Aggregate(t *testing.T) {
	subject := socialSubject(t)
	started := time.Now()
	finished := started.Add(120 * time.Millisecond)

	github := domain.Found("github", domain.FieldsOf("bio", "", "repos", "12", "name", "The Octocat"))
	gitlab := domain.Found("gitlab", domain.FieldsOf("name", "  the octocat ", "bio", ""))

	outcomes := outcomesOf(
		domain.ResultOutcome(domain.CategorySocial, gitlab),
		domain.FailureOutcome(domain.CategorySocial, domain.NewProbeFailure("reddit", domain.FailureRateLimited, "429")),
		domain.ResultOutcome(domain.CategorySocial, github),
	)

	report, err := NewAggregator().Aggregate(subject, []string{"reddit", "github", "gitlab"}, outcomes, started, finished)
	require.NoError(t, err)

	require.Len(t, report.Entries, 3)
	assert.Equal(t, "github", report.Entries[0].Source)
	assert.Equal(t, "gitlab", report.Entries[1].Source)
	assert.Equal(t, "reddit", report.Entries[2].Source)

	assert.Equal(t, []string{"repos", "name"}, report.Entries[0].Result.Fields.Keys())
	assert.Equal(t, 3, github.Fields.Len(), "input must not be mutated")

	assert.Equal(t, 120*time.Millisecond, report.Duration)
	assert.Equal(t, domain.Summary{
		Total: 3, Succeeded: 2, Failed: 1, Found: 2,
		FailuresByKind: map[domain.FailureKind]int{domain.FailureRateLimited: 1},
	}, report.Summary)

	require.Len(t, report.Correlations, 1)
	assert.Equal(t, domain.Correlation{Field: "name", Value: "The Octocat", Sources: []string{"github", "gitlab"}}, report.Correlations[0])
}

func TestAggregator_InvariantViolations(t *testing.T) {
	subject := socialSubject(t)
	now := time.Now()
	ok := domain.ResultOutcome(domain.CategorySocial, domain.NotFound("a"))

	tests := []struct {
		name     string
		expected []string
		outcomes map[string]domain.Outcome
		wantIs   error
	}{
		{
			name:     "duplicate expected name",
			expected: []string{"a", "a"},
			outcomes: outcomesOf(ok),
			wantIs:   domain.ErrConfiguration,
		},
		{
			name:     "missing outcome",
			expected: []string{"a", "b"},
			outcomes: outcomesOf(ok),
			wantIs:   domain.ErrAggregation,
		},
		{
			name:     "unexpected outcome",
			expected: []string{},
			outcomes: outcomesOf(ok),
			wantIs:   domain.ErrAggregation,
		},
		{
			name:     "outcome with both result and failure",
			expected: []string{"a"},
			outcomes: map[string]domain.Outcome{"a": {
				Source:  "a",
				Result:  domain.NotFound("a"),
				Failure: domain.NewProbeFailure("a", domain.FailureUnknown, "x"),
			}},
			wantIs: domain.ErrAggregation,
		},
		{
			name:     "key and source disagree",
			expected: []string{"b"},
			outcomes: map[string]domain.Outcome{"b": ok},
			wantIs:   domain.ErrAggregation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator().Aggregate(subject, tt.expected, tt.outcomes, now, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestAggregator_CorrelationIgnoresNonFound(t *testing.T) {
	a := domain.Found("a", domain.FieldsOf("email", "x@example.com"))
	b := domain.NewProbeResult("b", domain.StatusError, domain.FieldsOf("email", "x@example.com"))

	report, err := NewAggregator().Aggregate(
		testutil.MustSubject(t, "x", domain.SubjectKindUsername),
		[]string{"a", "b"},
		outcomesOf(domain.ResultOutcome(domain.CategorySocial, a), domain.ResultOutcome(domain.CategorySocial, b)),
		time.Now(), time.Now(),
	)
	require.NoError(t, err)
	assert.Empty(t, report.Correlations)
	assert.Equal(t, 1, report.Summary.Failed)
}
