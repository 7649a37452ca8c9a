// internal/platform/resilience/breaker_probe.go
package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
)

// BreakerProbe envuelve un probe con un circuit breaker. Con el circuito
// abierto el probe no se invoca y falla con ErrCircuitOpen (network_error).
type BreakerProbe struct {
	name    string
	inner   ports.Probe
	breaker *CircuitBreaker
	logger  logx.Logger
}

// NewBreakerProbe crea el decorador.
func NewBreakerProbe(name string, inner ports.Probe, cb *CircuitBreaker, logger logx.Logger) *BreakerProbe {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &BreakerProbe{
		name:    name,
		inner:   inner,
		breaker: cb,
		logger:  logger.With("component", "circuit-breaker", "source", name),
	}
}

// Invoke implementa ports.Probe.
func (p *BreakerProbe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	if !p.breaker.Allow() {
		return nil, errors.Wrapf(errors.ErrCircuitOpen, "%s skipped", p.name)
	}

	res, err := p.inner.Invoke(ctx, subject)

	switch {
	case err == nil:
		p.breaker.RecordSuccess()
	case errors.Is(ctx.Err(), context.Canceled):
		// el run se canceló; no dice nada de la salud de la fuente
		p.breaker.RecordIgnored()
	case countsAsFailure(errors.Classify(err)):
		p.breaker.RecordFailure()
		if p.breaker.State() == StateOpen {
			p.logger.Warn("circuit opened", "error", err.Error())
		}
	default:
		p.breaker.RecordSuccess()
	}

	return res, err
}

// countsAsFailure decide qué fallos indican una fuente caída. Errores de
// parseo o desconocidos implican que la fuente respondió.
func countsAsFailure(kind domain.FailureKind) bool {
	switch kind {
	case domain.FailureNetwork, domain.FailureTimeout, domain.FailureRateLimited:
		return true
	default:
		return false
	}
}

// BreakerConfig parámetros compartidos por todos los breakers de un grupo.
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
	HalfOpenMax      int
}

// DefaultBreakerConfig retorna la configuración por defecto.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Cooldown: time.Minute, HalfOpenMax: 1}
}

// Breakers mantiene un circuit breaker por nombre de fuente.
type Breakers struct {
	mu       sync.Mutex
	config   BreakerConfig
	breakers map[string]*CircuitBreaker
	logger   logx.Logger
}

// NewBreakers crea un grupo vacío.
func NewBreakers(config BreakerConfig, logger logx.Logger) *Breakers {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &Breakers{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
		logger:   logger,
	}
}

// For retorna el breaker de una fuente, creándolo si no existe.
func (b *Breakers) For(source string) *CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[source]
	if !ok {
		cb = NewCircuitBreaker(b.config.FailureThreshold, b.config.Cooldown, b.config.HalfOpenMax)
		b.breakers[source] = cb
	}
	return cb
}

// Wrap envuelve cada descriptor de set con el breaker de su fuente.
func (b *Breakers) Wrap(set ports.ProbeSet) (ports.ProbeSet, error) {
	reg := registry.NewProbeRegistry(set.Category())
	for _, d := range set.Descriptors() {
		wrapped := ports.NewProbeDescriptor(d.Name(), d.Category(),
			NewBreakerProbe(d.Name(), d.Probe(), b.For(d.Name()), b.logger), d.Priority(), d.Weight())
		if err := reg.Add(wrapped); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Snapshot retorna las estadísticas de todos los breakers por nombre.
func (b *Breakers) Snapshot() map[string]CircuitBreakerStats {
	b.mu.Lock()
	names := make([]string, 0, len(b.breakers))
	for name := range b.breakers {
		names = append(names, name)
	}
	b.mu.Unlock()
	sort.Strings(names)

	out := make(map[string]CircuitBreakerStats, len(names))
	for _, name := range names {
		out[name] = b.For(name).Stats()
	}
	return out
}
