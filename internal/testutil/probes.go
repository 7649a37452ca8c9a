// internal/testutil/probes.go
package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
)

// Probes fake para tests de scheduler, investigator y adapters.
// Nota: no dependen de ningún package de sources.

// FakeProbe es un probe configurable que cuenta sus invocaciones.
type FakeProbe struct {
	Delay  time.Duration
	Result func(subject domain.Subject) *domain.ProbeResult
	Err    error
	Panic  interface{}

	// IgnoreContext simula una llamada que no puede cancelarse
	IgnoreContext bool

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

// Invoke implementa ports.Probe.
func (f *FakeProbe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}

	if f.Delay > 0 {
		if f.IgnoreContext {
			time.Sleep(f.Delay)
		} else {
			select {
			case <-time.After(f.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if f.Panic != nil {
		panic(f.Panic)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Result != nil {
		return f.Result(subject), nil
	}
	return domain.NotFound(""), nil
}

// Calls retorna el número de invocaciones.
func (f *FakeProbe) Calls() int { return int(f.calls.Load()) }

// MaxInFlight retorna el máximo de invocaciones simultáneas observadas.
func (f *FakeProbe) MaxInFlight() int { return int(f.maxSeen.Load()) }

// FoundProbe responde found con los campos kv tras delay.
func FoundProbe(delay time.Duration, kv ...string) *FakeProbe {
	return &FakeProbe{
		Delay: delay,
		Result: func(domain.Subject) *domain.ProbeResult {
			return domain.Found("", domain.FieldsOf(kv...))
		},
	}
}

// FailingProbe falla con err tras delay.
func FailingProbe(delay time.Duration, err error) *FakeProbe {
	return &FakeProbe{Delay: delay, Err: err}
}

// HangingProbe no responde nunca mientras su contexto siga vivo.
func HangingProbe() *FakeProbe {
	return &FakeProbe{Delay: time.Hour}
}

// PanickingProbe entra en pánico al invocarse.
func PanickingProbe(v interface{}) *FakeProbe {
	return &FakeProbe{Panic: v}
}

// SharedCounter mide la concurrencia real a través de varios probes.
type SharedCounter struct {
	inFlight atomic.Int32
	max      atomic.Int32
}

// Wrap envuelve p para contar invocaciones simultáneas en el contador.
func (c *SharedCounter) Wrap(p ports.Probe) ports.Probe {
	return ports.ProbeFunc(func(ctx context.Context, s domain.Subject) (*domain.ProbeResult, error) {
		cur := c.inFlight.Add(1)
		defer c.inFlight.Add(-1)
		for {
			prev := c.max.Load()
			if cur <= prev || c.max.CompareAndSwap(prev, cur) {
				break
			}
		}
		return p.Invoke(ctx, s)
	})
}

// Max retorna el pico de concurrencia observado.
func (c *SharedCounter) Max() int { return int(c.max.Load()) }

// Descriptor atajo para construir un descriptor de test.
func Descriptor(name string, category domain.Category, p ports.Probe) ports.ProbeDescriptor {
	return ports.NewProbeDescriptor(name, category, p, 0, 0)
}

// RecordingNotifier guarda todos los eventos recibidos.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []ports.Event
	closed bool
}

// Notify implementa ports.Notifier.
func (r *RecordingNotifier) Notify(ctx context.Context, event ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Close implementa ports.Notifier.
func (r *RecordingNotifier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events retorna una copia de los eventos recibidos.
func (r *RecordingNotifier) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Event, len(r.events))
	copy(out, r.events)
	return out
}

// CountByType cuenta eventos de un tipo.
func (r *RecordingNotifier) CountByType(t ports.EventType) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// Closed indica si se llamó Close.
func (r *RecordingNotifier) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
