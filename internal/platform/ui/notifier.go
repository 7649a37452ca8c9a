// internal/platform/ui/notifier.go
package ui

import (
	"context"
	"sync"

	"falcon/internal/core/ports"
)

// Notifier adapta un Presenter al port Notifier: cada evento del run se
// traduce en una llamada al presenter.
type Notifier struct {
	mu          sync.Mutex
	presenter   Presenter
	concurrency int
	timeout     int
	probes      func(category string) int
}

// NotifierOptions datos que los eventos no transportan.
type NotifierOptions struct {
	Concurrency    int
	TimeoutSeconds int

	// ProbeCount retorna cuántos probes tiene una categoría (barra de progreso)
	ProbeCount func(category string) int
}

// NewNotifier crea el adaptador.
func NewNotifier(p Presenter, opts NotifierOptions) *Notifier {
	if p == nil {
		p = NewNoopPresenter()
	}
	return &Notifier{
		presenter:   p,
		concurrency: opts.Concurrency,
		timeout:     opts.TimeoutSeconds,
		probes:      opts.ProbeCount,
	}
}

// Notify implementa ports.Notifier.
// Serializa las llamadas para que el presenter vea los eventos de uno en uno.
func (n *Notifier) Notify(_ context.Context, ev ports.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch ev.Type {
	case ports.EventTypeRunStarted:
		info := RunInfo{
			Subject:        ev.Subject.Value,
			Kind:           string(ev.Subject.Kind),
			Category:       string(ev.Category),
			Concurrency:    n.concurrency,
			TimeoutSeconds: n.timeout,
		}
		if n.probes != nil {
			info.Probes = n.probes(string(ev.Category))
		}
		n.presenter.Start(info)

	case ports.EventTypeProbeCompleted, ports.EventTypeProbeFailed, ports.EventTypeProbeTimeout:
		if ev.Outcome == nil {
			return nil
		}
		o := *ev.Outcome
		line := ProbeLine{Source: o.Source, Status: StatusFor(o), Label: o.Label()}
		if o.Result != nil {
			line.Duration = o.Result.Latency
			line.Fields = o.Result.Fields.Len()
		}
		if o.Failure != nil {
			line.Message = o.Failure.Message
		}
		n.presenter.FinishProbe(line)

	case ports.EventTypeRunCompleted:
		if ev.Report == nil {
			return nil
		}
		s := ev.Report.Summary
		n.presenter.Finish(RunStats{
			ID:           ev.Report.ID,
			Duration:     ev.Report.Duration,
			Total:        s.Total,
			Succeeded:    s.Succeeded,
			Failed:       s.Failed,
			TimedOut:     s.TimedOut,
			Found:        s.Found,
			Correlations: len(ev.Report.Correlations),
		})
	}
	return nil
}

// Close cierra el presenter.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.presenter.Close()
}
