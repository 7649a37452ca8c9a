// internal/core/usecases/caching_probe.go
package usecases

import (
	"context"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/cache"
)

// CachingProbe reutiliza resultados found/not_found del mismo par
// (fuente, sujeto) dentro del TTL de la caché. Errores y resultados con
// estado error nunca se guardan.
type CachingProbe struct {
	name  string
	inner ports.Probe
	cache *cache.Cache[*domain.ProbeResult]
}

// NewCachingProbe envuelve inner con una caché compartida.
func NewCachingProbe(name string, inner ports.Probe, c *cache.Cache[*domain.ProbeResult]) *CachingProbe {
	return &CachingProbe{name: name, inner: inner, cache: c}
}

// Invoke consulta la caché y, si no hay entrada viva, delega en el probe.
func (p *CachingProbe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	key := p.name + "|" + subject.String()

	if cached, ok := p.cache.Get(key); ok {
		hit := *cached
		hit.Latency = 0
		return &hit, nil
	}

	start := time.Now()
	res, err := p.inner.Invoke(ctx, subject)
	if err != nil || res == nil {
		return res, err
	}
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}
	if res.Status == domain.StatusFound || res.Status == domain.StatusNotFound {
		stored := *res
		p.cache.Set(key, &stored)
	}
	return res, nil
}

// WithCache envuelve cada descriptor de set en un CachingProbe.
func WithCache(set ports.ProbeSet, c *cache.Cache[*domain.ProbeResult]) ports.ProbeSet {
	descriptors := set.Descriptors()
	wrapped := make([]ports.ProbeDescriptor, len(descriptors))
	for i, d := range descriptors {
		wrapped[i] = ports.NewProbeDescriptor(d.Name(), d.Category(),
			NewCachingProbe(d.Name(), d.Probe(), c), d.Priority(), d.Weight())
	}
	return staticSet{category: set.Category(), descriptors: wrapped}
}

// staticSet es un ProbeSet inmutable ya validado.
type staticSet struct {
	category    domain.Category
	descriptors []ports.ProbeDescriptor
}

func (s staticSet) Category() domain.Category { return s.category }

func (s staticSet) Descriptors() []ports.ProbeDescriptor {
	out := make([]ports.ProbeDescriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}
