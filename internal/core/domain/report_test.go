// internal/core/domain/report_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_Add(t *testing.T) {
	outcomes := []Outcome{
		ResultOutcome(CategorySocial, Found("a", FieldsOf("k", "v"))),
		ResultOutcome(CategorySocial, NotFound("b")),
		ResultOutcome(CategorySocial, NewProbeResult("c", StatusError, nil)),
		FailureOutcome(CategorySocial, NewProbeFailure("d", FailureTimeout, "deadline")),
		FailureOutcome(CategorySocial, NewProbeFailure("e", FailureParse, "bad json")),
	}

	var s Summary
	for _, o := range outcomes {
		s.Add(o)
	}

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 3, s.Failed)
	assert.Equal(t, 1, s.TimedOut)
	assert.Equal(t, 1, s.Found)
	assert.Equal(t, 1, s.NotFound)
	assert.Equal(t, map[FailureKind]int{FailureTimeout: 1, FailureParse: 1}, s.FailuresByKind)
}

func TestOutcome(t *testing.T) {
	ok := ResultOutcome(CategoryNetwork, Found("geoip", nil))
	assert.True(t, ok.IsValid())
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "found", ok.Label())

	to := FailureOutcome(CategoryNetwork, Failf("rdap", FailureTimeout, "after %dms", 100))
	assert.True(t, to.IsValid())
	assert.True(t, to.TimedOut())
	assert.Equal(t, "rdap: timeout: after 100ms", to.Failure.Error())

	assert.False(t, Outcome{Source: "x"}.IsValid())
	assert.Equal(t, "invalid", Outcome{}.Label())
}

func TestRunReport_Entry(t *testing.T) {
	r := &RunReport{Entries: []Outcome{
		ResultOutcome(CategorySocial, NotFound("github")),
	}}
	e, ok := r.Entry("github")
	assert.True(t, ok)
	assert.Equal(t, StatusNotFound, e.Result.Status)

	_, ok = r.Entry("reddit")
	assert.False(t, ok)
}
