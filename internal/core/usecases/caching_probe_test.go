// internal/core/usecases/caching_probe_test.go
package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/platform/cache"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/registry"
	"falcon/internal/testutil"
)

func TestCachingProbe(t *testing.T) {
	c := cache.New[*domain.ProbeResult](16, time.Minute)
	inner := testutil.FoundProbe(0, "repos", "8")
	p := NewCachingProbe("github", inner, c)

	subject := socialSubject(t)
	other := testutil.MustSubject(t, "hubot", domain.SubjectKindUsername)

	for i := 0; i < 3; i++ {
		res, err := p.Invoke(context.Background(), subject)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFound, res.Status)
	}
	assert.Equal(t, 1, inner.Calls())

	_, err := p.Invoke(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls(), "different subject is a different key")
}

func TestCachingProbe_DoesNotCacheFailures(t *testing.T) {
	c := cache.New[*domain.ProbeResult](16, time.Minute)
	inner := testutil.FailingProbe(0, errors.ErrConnectionFailed)
	p := NewCachingProbe("reddit", inner, c)

	for i := 0; i < 2; i++ {
		_, err := p.Invoke(context.Background(), socialSubject(t))
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.Calls())
	assert.Equal(t, 0, c.Len())
}

func TestWithCache(t *testing.T) {
	c := cache.New[*domain.ProbeResult](16, time.Minute)
	inner := testutil.FoundProbe(0)
	reg := registry.NewProbeRegistry(domain.CategorySocial).MustAdd(
		testutil.Descriptor("github", domain.CategorySocial, inner),
	)

	set := WithCache(reg, c)
	assert.Equal(t, domain.CategorySocial, set.Category())
	require.Len(t, set.Descriptors(), 1)

	inv := newTestInvestigator(t, DefaultSchedulerOptions())
	for i := 0; i < 2; i++ {
		_, err := inv.Run(context.Background(), socialSubject(t), set)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, inner.Calls())
}
