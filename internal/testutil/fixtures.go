// internal/testutil/fixtures.go
package testutil

import (
	"testing"
	"time"

	"falcon/internal/core/domain"
)

// MustSubject construye un sujeto o aborta el test.
func MustSubject(t testing.TB, value string, kind domain.SubjectKind) domain.Subject {
	t.Helper()
	s, err := domain.NewSubject(value, kind)
	if err != nil {
		t.Fatalf("invalid subject %q: %v", value, err)
	}
	return s
}

// SampleReport retorna un informe pequeño y determinista para tests de sinks.
func SampleReport() *domain.RunReport {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)

	github := domain.Found("github", domain.NewFields().
		Set("name", "The Octocat").
		Set("public_repos", "8").
		SetNested("links", domain.FieldsOf("blog", "https://github.blog")))
	github.FetchedAt = started.Add(200 * time.Millisecond)
	github.Latency = 180 * time.Millisecond

	reddit := domain.NotFound("reddit")
	reddit.FetchedAt = started.Add(300 * time.Millisecond)
	reddit.Latency = 90 * time.Millisecond

	entries := []domain.Outcome{
		domain.ResultOutcome(domain.CategorySocial, github),
		domain.FailureOutcome(domain.CategorySocial, domain.NewProbeFailure("keybase", domain.FailureTimeout, "no response within 10s")),
		domain.ResultOutcome(domain.CategorySocial, reddit),
	}

	report := &domain.RunReport{
		ID:         "0190a3c2-0000-7000-8000-000000000001",
		Subject:    domain.Subject{Value: "octocat", Kind: domain.SubjectKindUsername},
		Category:   domain.CategorySocial,
		Entries:    entries,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
	}
	for _, e := range entries {
		report.Summary.Add(e)
	}
	return report
}
