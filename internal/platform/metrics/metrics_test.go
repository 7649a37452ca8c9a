package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
)

// TestNotifierRecordsMetrics ensures run and probe events update the collectors.
func TestNotifierRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	n, err := New(reg)
	require.NoError(t, err)

	ctx := context.Background()
	started := ports.NewEvent(ports.EventTypeRunStarted, "investigator")
	started.Category = domain.CategorySocial
	require.NoError(t, n.Notify(ctx, started))
	require.Equal(t, 1.0, testutil.ToFloat64(n.runsRunning))

	found := domain.Found("github", domain.FieldsOf("repos", "8"))
	found.Latency = 120 * time.Millisecond
	require.NoError(t, n.Notify(ctx, ports.OutcomeEvent(domain.ResultOutcome(domain.CategorySocial, found))))
	require.NoError(t, n.Notify(ctx, ports.OutcomeEvent(domain.FailureOutcome(domain.CategorySocial,
		domain.NewProbeFailure("reddit", domain.FailureTimeout, "deadline")))))
	require.NoError(t, n.Notify(ctx, ports.OutcomeEvent(domain.FailureOutcome(domain.CategorySocial,
		domain.NewProbeFailure("keybase", domain.FailureRateLimited, "429")))))

	completed := ports.NewEvent(ports.EventTypeRunCompleted, "investigator")
	completed.Category = domain.CategorySocial
	completed.Report = &domain.RunReport{Duration: 2 * time.Second}
	require.NoError(t, n.Notify(ctx, completed))

	require.Equal(t, 1.0, testutil.ToFloat64(n.runsStarted.WithLabelValues("social")))
	require.Equal(t, 1.0, testutil.ToFloat64(n.runsCompleted.WithLabelValues("social")))
	require.Equal(t, 0.0, testutil.ToFloat64(n.runsRunning))
	require.Equal(t, 1.0, testutil.ToFloat64(n.probeOutcomes.WithLabelValues("github", "found")))
	require.Equal(t, 1.0, testutil.ToFloat64(n.probeOutcomes.WithLabelValues("reddit", "timeout")))
	require.Equal(t, 1.0, testutil.ToFloat64(n.probeFailures.WithLabelValues("rate_limited")))
	require.Equal(t, 1, testutil.CollectAndCount(n.probeLatency))
	require.Equal(t, 1, testutil.CollectAndCount(n.runDuration))

	require.NoError(t, n.Close())
}

// TestNewRejectsDoubleRegistration ensures collector conflicts surface as errors.
func TestNewRejectsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
}
