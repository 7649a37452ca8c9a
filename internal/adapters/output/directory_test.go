// internal/adapters/output/directory_test.go
package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/platform/errors"
	"falcon/internal/testutil"
)

func TestDirectorySinks(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirectorySinks(dir, []string{"json", "yaml", "csv", "html"})
	require.NoError(t, err)

	report := testutil.SampleReport()
	require.NoError(t, sink.Write(context.Background(), report))

	runDir := filepath.Join(dir, "octocat_20240501_120000")
	assert.Equal(t, runDir, sink.RunDir(report))
	for _, name := range []string{"report.json", "report.yaml", "report.csv", "report.html"} {
		info, err := os.Stat(filepath.Join(runDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestDirectorySinks_SanitizesSubject(t *testing.T) {
	sink, err := NewDirectorySinks("out", []string{"json"})
	require.NoError(t, err)

	report := testutil.SampleReport()
	report.Subject = domain.Subject{Value: "example.com", Kind: domain.SubjectKindDomain}
	assert.Equal(t, filepath.Join("out", "example_com_20240501_120000"), sink.RunDir(report))
}

func TestDirectorySinks_UnsupportedFormat(t *testing.T) {
	_, err := NewDirectorySinks(t.TempDir(), []string{"json", "pdf"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDirectorySinks_CancelledContext(t *testing.T) {
	sink, err := NewDirectorySinks(t.TempDir(), []string{"json"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Write(ctx, testutil.SampleReport()), context.Canceled)
}

type failingSink struct{ err error }

func (f failingSink) Name() string { return "broken" }
func (f failingSink) Write(context.Context, *domain.RunReport) error {
	return f.err
}

type countingSink struct{ writes int }

func (c *countingSink) Name() string { return "counting" }
func (c *countingSink) Write(context.Context, *domain.RunReport) error {
	c.writes++
	return nil
}

func TestMulti_JoinsErrorsAndKeepsWriting(t *testing.T) {
	boom := errors.New("disk full")
	counter := &countingSink{}
	m := Multi{failingSink{err: boom}, nil, counter}

	err := m.Write(context.Background(), testutil.SampleReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken sink")
	assert.Equal(t, 1, counter.writes)

	assert.NoError(t, Multi{counter}.Write(context.Background(), testutil.SampleReport()))
}
