package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/core/usecases"
	"falcon/internal/platform/cache"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/metrics"
	"falcon/internal/platform/registry"
	"falcon/internal/platform/resilience"
	"falcon/internal/testutil"
)

type fixture struct {
	server *Server
	github *testutil.FakeProbe
	dns    *testutil.FakeProbe
}

func staticFactory(p ports.Probe) registry.ProbeFactory {
	return func(ports.ProbeConfig, logx.Logger) (ports.Probe, error) { return p, nil }
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		github: testutil.FoundProbe(0, "name", "The Octocat"),
		dns:    testutil.FailingProbe(0, errors.ErrConnectionFailed),
	}

	catalog := registry.NewCatalog()
	catalog.MustRegister("github", staticFactory(f.github), ports.ProbeMetadata{
		Description: "GitHub user profile",
		Kinds:       []domain.SubjectKind{domain.SubjectKindUsername},
	})
	catalog.MustRegister("dns", staticFactory(f.dns), ports.ProbeMetadata{
		Description: "DNS records",
		Kinds:       []domain.SubjectKind{domain.SubjectKindDomain},
	})

	breakers := resilience.NewBreakers(resilience.BreakerConfig{
		FailureThreshold: 1,
		Cooldown:         time.Hour,
		HalfOpenMax:      1,
	}, nil)
	results := cache.New[*domain.ProbeResult](16, time.Minute)

	sets, err := PrepareSets(catalog, nil, breakers, results, logx.NewNop())
	require.NoError(t, err)
	require.Len(t, sets, 3)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	inv, err := usecases.NewInvestigator(usecases.InvestigatorOptions{
		Scheduler: usecases.DefaultSchedulerOptions(),
		Observers: []ports.Notifier{m},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	f.server, err = NewServer(Options{
		Runner:   inv,
		Sets:     sets,
		Probes:   catalog.AllMetadata(),
		Breakers: breakers,
		Gatherer: reg,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) domain.RunReport {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report domain.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return report
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateRun_UsesCacheAcrossRuns(t *testing.T) {
	f := newFixture(t)

	report := decodeReport(t, f.do(http.MethodPost, "/v1/runs", `{"subject":"Octocat"}`))
	assert.Equal(t, domain.Subject{Value: "octocat", Kind: domain.SubjectKindUsername}, report.Subject)
	assert.Equal(t, domain.CategorySocial, report.Category)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "The Octocat", report.Entries[0].Result.Fields.Text("name"))

	second := decodeReport(t, f.do(http.MethodPost, "/v1/runs", `{"subject":"octocat","kind":"username"}`))
	assert.NotEqual(t, report.ID, second.ID)
	assert.Equal(t, 1, second.Summary.Found)
	assert.Equal(t, 1, f.github.Calls(), "second run is served from cache")
}

func TestCreateRun_BreakerOpensAcrossRuns(t *testing.T) {
	f := newFixture(t)

	first := decodeReport(t, f.do(http.MethodPost, "/v1/runs", `{"subject":"example.com"}`))
	assert.Equal(t, domain.CategoryTechnical, first.Category)
	require.Len(t, first.Entries, 1)
	require.NotNil(t, first.Entries[0].Failure)
	assert.Equal(t, domain.FailureNetwork, first.Entries[0].Failure.Kind)

	second := decodeReport(t, f.do(http.MethodPost, "/v1/runs", `{"subject":"example.com","category":"technical"}`))
	require.NotNil(t, second.Entries[0].Failure)
	assert.Equal(t, domain.FailureNetwork, second.Entries[0].Failure.Kind)
	assert.Equal(t, 1, f.dns.Calls(), "open circuit skips the probe")
}

func TestCreateRun_BadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"subject":`},
		{"empty subject", `{"subject":"  "}`},
		{"unknown kind", `{"subject":"octocat","kind":"email"}`},
		{"unknown category", `{"subject":"octocat","category":"professional"}`},
		{"kind and category mismatch", `{"subject":"octocat","category":"technical"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/v1/runs", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
	assert.Zero(t, f.github.Calls())
}

func TestListProbes(t *testing.T) {
	f := newFixture(t)

	var all probesResponse
	rec := f.do(http.MethodGet, "/v1/probes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all.Probes, 2)
	assert.Equal(t, "dns", all.Probes[0].Name)
	assert.Len(t, all.Breakers, 2)
	assert.Equal(t, resilience.StateClosed, all.Breakers["github"].State)

	var social probesResponse
	rec = f.do(http.MethodGet, "/v1/probes?category=social", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &social))
	require.Len(t, social.Probes, 1)
	assert.Equal(t, "github", social.Probes[0].Name)

	rec = f.do(http.MethodGet, "/v1/probes?category=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	decodeReport(t, f.do(http.MethodPost, "/v1/runs", `{"subject":"octocat"}`))

	rec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `falcon_runs_started_total{category="social"} 1`)
	assert.Contains(t, rec.Body.String(), `falcon_probe_outcomes_total{outcome="found",source="github"} 1`)
}

func TestNewServer_RequiresRunner(t *testing.T) {
	_, err := NewServer(Options{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
