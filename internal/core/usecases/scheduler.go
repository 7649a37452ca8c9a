// internal/core/usecases/scheduler.go
package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/workerpool"
)

// Valores por defecto del scheduler.
const (
	DefaultMaxConcurrency = 8
	DefaultProbeTimeout   = 10 * time.Second
	DefaultRetryBackoff   = 250 * time.Millisecond
)

// SchedulerOptions configura el fan-out.
type SchedulerOptions struct {
	// MaxConcurrency máximo de invocaciones en vuelo (> 0)
	MaxConcurrency int

	// ProbeTimeout deadline de cada invocación, contado desde el inicio del run
	// e incluyendo la espera de slot (> 0)
	ProbeTimeout time.Duration

	// RunTimeout presupuesto total del run (0 = sin límite)
	RunTimeout time.Duration

	// Retries reintentos para fallos network_error/rate_limited, dentro del
	// mismo deadline de la invocación
	Retries int

	// RetryBackoff espera base entre reintentos (exponencial)
	RetryBackoff time.Duration

	// Order estrategia de orden de despacho (nil = prioridad)
	Order workerpool.Scheduler

	// Logger logger del scheduler (nil = nop)
	Logger logx.Logger

	// OnEvent recibe un evento por outcome registrado, desde el coordinador.
	// No debe bloquear.
	OnEvent func(ports.Event)
}

// DefaultSchedulerOptions retorna opciones con valores por defecto.
func DefaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		MaxConcurrency: DefaultMaxConcurrency,
		ProbeTimeout:   DefaultProbeTimeout,
		RetryBackoff:   DefaultRetryBackoff,
	}
}

// Validate verifica las opciones; cualquier problema es ConfigurationError.
func (o SchedulerOptions) Validate() error {
	if o.MaxConcurrency <= 0 {
		return domain.NewConfigurationError("max_concurrency", fmt.Sprintf("must be positive, got %d", o.MaxConcurrency))
	}
	if o.ProbeTimeout <= 0 {
		return domain.NewConfigurationError("probe_timeout", fmt.Sprintf("must be positive, got %v", o.ProbeTimeout))
	}
	if o.RunTimeout < 0 {
		return domain.NewConfigurationError("run_timeout", fmt.Sprintf("cannot be negative, got %v", o.RunTimeout))
	}
	if o.Retries < 0 {
		return domain.NewConfigurationError("retries", fmt.Sprintf("cannot be negative, got %d", o.Retries))
	}
	if o.RetryBackoff < 0 {
		return domain.NewConfigurationError("retry_backoff", fmt.Sprintf("cannot be negative, got %v", o.RetryBackoff))
	}
	return nil
}

// Scheduler ejecuta un conjunto de probes con paralelismo acotado y produce
// exactamente un outcome por descriptor.
//
// Un único coordinador drena el canal de completions y es el único que
// escribe el mapa de outcomes. El semáforo es el único recurso compartido
// entre invocaciones.
type Scheduler struct {
	opts   SchedulerOptions
	logger logx.Logger
}

// NewScheduler valida las opciones y crea un Scheduler.
func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Order == nil {
		opts.Order = workerpool.NewPriorityScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = logx.NewNop()
	}

	return &Scheduler{
		opts:   opts,
		logger: opts.Logger.With("component", "scheduler"),
	}, nil
}

// Options retorna las opciones efectivas.
func (s *Scheduler) Options() SchedulerOptions {
	return s.opts
}

// completion es lo que cada invocación entrega al coordinador.
type completion struct {
	outcome domain.Outcome
}

// Run invoca todos los descriptores contra subject.
//
// Solo falla por configuración inválida (antes de lanzar nada) o por una
// violación del invariante de completitud; los fallos de probes se registran
// como datos. Si ctx se cancela o vence RunTimeout, las invocaciones
// pendientes se resuelven como timeout de inmediato.
func (s *Scheduler) Run(ctx context.Context, descriptors []ports.ProbeDescriptor, subject domain.Subject) (map[string]domain.Outcome, error) {
	if err := validateDescriptors(descriptors); err != nil {
		return nil, err
	}

	n := len(descriptors)
	outcomes := make(map[string]domain.Outcome, n)
	if n == 0 {
		return outcomes, nil
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if s.opts.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Un único deadline para todo el fan-out: la espera de slot cuenta
	// contra ProbeTimeout, así N probes colgados terminan en ProbeTimeout
	// aunque N supere MaxConcurrency.
	deadlineCtx, cancelDeadline := context.WithTimeout(runCtx, s.opts.ProbeTimeout)
	defer cancelDeadline()

	ordered := workerpool.Apply(s.opts.Order, descriptors)
	sem := semaphore.NewWeighted(int64(s.opts.MaxConcurrency))
	done := make(chan completion, n)

	s.logger.Debug("dispatching probes",
		"subject", subject.Value,
		"probes", n,
		"max_concurrency", s.opts.MaxConcurrency,
		"probe_timeout", s.opts.ProbeTimeout,
		"order", s.opts.Order.Name(),
	)

	go s.dispatch(runCtx, deadlineCtx, sem, ordered, subject, done)

	for len(outcomes) < n {
		c := <-done
		name := c.outcome.Source
		if _, dup := outcomes[name]; dup {
			return nil, domain.NewAggregationError(name, "duplicate completion")
		}
		if !c.outcome.IsValid() {
			return nil, domain.NewAggregationError(name, "outcome must carry exactly one of result or failure")
		}
		outcomes[name] = c.outcome

		if s.opts.OnEvent != nil {
			s.opts.OnEvent(ports.OutcomeEvent(c.outcome))
		}
	}

	return outcomes, nil
}

// dispatch adquiere un slot por descriptor y lanza su invocación. Si el
// deadline vence mientras espera un slot, resuelve ese descriptor y los
// restantes como timeout.
func (s *Scheduler) dispatch(runCtx, deadlineCtx context.Context, sem *semaphore.Weighted, ordered []ports.ProbeDescriptor, subject domain.Subject, done chan<- completion) {
	for i, d := range ordered {
		if err := sem.Acquire(deadlineCtx, 1); err != nil {
			msg := fmt.Sprintf("no slot within %v", s.opts.ProbeTimeout)
			if runCtx.Err() != nil {
				msg = "run cancelled before dispatch: " + runCtx.Err().Error()
			}
			for _, pending := range ordered[i:] {
				done <- completion{outcome: domain.FailureOutcome(pending.Category(),
					domain.NewProbeFailure(pending.Name(), domain.FailureTimeout, msg))}
			}
			return
		}

		go func(d ports.ProbeDescriptor) {
			outcome := s.invoke(runCtx, deadlineCtx, d, subject)
			sem.Release(1)
			done <- completion{outcome: outcome}
		}(d)
	}
}

// attempt es el resultado crudo de una llamada al probe.
type attempt struct {
	result *domain.ProbeResult
	err    error
}

// invoke ejecuta un descriptor, con reintentos, dentro del deadline común.
func (s *Scheduler) invoke(runCtx, deadlineCtx context.Context, d ports.ProbeDescriptor, subject domain.Subject) domain.Outcome {
	probeCtx, cancel := context.WithCancel(deadlineCtx)
	defer cancel()

	name := d.Name()
	start := time.Now()

	for try := 0; ; try++ {
		a, timedOut := s.race(probeCtx, d, subject)
		if timedOut {
			msg := fmt.Sprintf("no response within %v", s.opts.ProbeTimeout)
			if runCtx.Err() != nil {
				msg = "run cancelled: " + runCtx.Err().Error()
			}
			s.logger.Debug("probe timed out", "probe", name, "attempt", try+1)
			return domain.FailureOutcome(d.Category(), domain.NewProbeFailure(name, domain.FailureTimeout, msg))
		}

		if a.err == nil && a.result == nil {
			a.err = domain.NewProbeFailure(name, domain.FailureUnknown, "probe returned neither result nor error")
		}
		if a.err == nil {
			return domain.ResultOutcome(d.Category(), s.finalizeResult(name, a.result, start))
		}

		failure := errors.ToFailure(name, a.err)
		if try >= s.opts.Retries || !failure.Kind.Retryable() {
			s.logger.Debug("probe failed", "probe", name, "kind", failure.Kind, "error", failure.Message)
			return domain.FailureOutcome(d.Category(), failure)
		}

		backoff := s.opts.RetryBackoff << uint(try)
		s.logger.Debug("retrying probe", "probe", name, "kind", failure.Kind, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-probeCtx.Done():
			return domain.FailureOutcome(d.Category(),
				domain.NewProbeFailure(name, domain.FailureTimeout, fmt.Sprintf("deadline reached while retrying after %s", failure.Kind)))
		}
	}
}

// race ejecuta el probe en su propia goroutine y espera su respuesta o el
// deadline, lo que ocurra primero. Un resultado tardío se descarta: el canal
// tiene buffer 1, así que la goroutine del probe nunca queda bloqueada.
func (s *Scheduler) race(ctx context.Context, d ports.ProbeDescriptor, subject domain.Subject) (attempt, bool) {
	ch := make(chan attempt, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn("probe panicked", "probe", d.Name(), "panic", fmt.Sprint(r))
				ch <- attempt{err: domain.Failf(d.Name(), domain.FailureUnknown, "panic: %v", r)}
			}
		}()
		res, err := d.Probe().Invoke(ctx, subject)
		ch <- attempt{result: res, err: err}
	}()

	select {
	case a := <-ch:
		return a, false
	case <-ctx.Done():
		return attempt{}, true
	}
}

// finalizeResult completa los metadatos que el probe no rellenó y fija el
// nombre de la fuente al del descriptor.
func (s *Scheduler) finalizeResult(name string, r *domain.ProbeResult, start time.Time) *domain.ProbeResult {
	out := *r
	out.SourceName = name
	if !out.Status.IsValid() {
		out.Status = domain.StatusError
	}
	if out.Fields == nil {
		out.Fields = domain.NewFields()
	}
	if out.FetchedAt.IsZero() {
		out.FetchedAt = time.Now()
	}
	if out.Latency == 0 {
		out.Latency = time.Since(start)
	}
	return &out
}

// validateDescriptors rechaza nombres vacíos, probes nil y duplicados.
func validateDescriptors(descriptors []ports.ProbeDescriptor) error {
	seen := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		if d.Name() == "" {
			return domain.NewConfigurationError("source_name", "cannot be empty")
		}
		if d.Probe() == nil {
			return domain.NewConfigurationError("source_name", fmt.Sprintf("probe for %q is nil", d.Name()))
		}
		if _, dup := seen[d.Name()]; dup {
			return domain.NewConfigurationError("source_name", fmt.Sprintf("duplicate source %q", d.Name()))
		}
		seen[d.Name()] = struct{}{}
	}
	return nil
}

// withEventHook retorna una copia del scheduler que entrega los eventos de
// outcome a fn. La copia comparte opciones pero no estado.
func (s *Scheduler) withEventHook(fn func(ports.Event)) *Scheduler {
	clone := *s
	clone.opts.OnEvent = fn
	return &clone
}
