// internal/core/usecases/investigator.go
package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
)

// DefaultNotificationTimeout tiempo máximo por notificación a un observer.
const DefaultNotificationTimeout = 2 * time.Second

// Investigator es el punto de entrada de un run: valida, lanza el fan-out,
// agrega los outcomes y notifica a los observers.
type Investigator struct {
	scheduler  *Scheduler
	aggregator *Aggregator
	observers  []ports.Notifier
	logger     logx.Logger

	notificationTimeout time.Duration

	// pending notificaciones en vuelo; Close las espera
	pending sync.WaitGroup
}

// InvestigatorOptions configura el Investigator.
type InvestigatorOptions struct {
	Scheduler           SchedulerOptions
	Observers           []ports.Notifier
	Logger              logx.Logger
	NotificationTimeout time.Duration
}

// NewInvestigator crea un Investigator. Opciones de scheduler inválidas son
// ConfigurationError.
func NewInvestigator(opts InvestigatorOptions) (*Investigator, error) {
	if opts.Logger == nil {
		opts.Logger = logx.NewNop()
	}
	if opts.NotificationTimeout <= 0 {
		opts.NotificationTimeout = DefaultNotificationTimeout
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = opts.Logger
	}

	sched, err := NewScheduler(opts.Scheduler)
	if err != nil {
		return nil, err
	}

	return &Investigator{
		scheduler:           sched,
		aggregator:          NewAggregator(),
		observers:           opts.Observers,
		logger:              opts.Logger.With("component", "investigator"),
		notificationTimeout: opts.NotificationTimeout,
	}, nil
}

// Run investiga subject con todos los probes de set.
//
// Siempre retorna un informe salvo ConfigurationError (antes de lanzar
// cualquier probe) o AggregationError (invariante roto).
func (inv *Investigator) Run(ctx context.Context, subject domain.Subject, set ports.ProbeSet) (*domain.RunReport, error) {
	if set == nil {
		return nil, domain.NewConfigurationError("probes", "probe set cannot be nil")
	}
	category := set.Category()
	if !category.IsValid() {
		return nil, domain.NewConfigurationError("category", fmt.Sprintf("unknown category %q", category))
	}
	if subject.Kind != category.Kind() {
		return nil, domain.NewConfigurationError("subject",
			fmt.Sprintf("category %s expects a %s subject, got %s", category, category.Kind(), subject.Kind))
	}

	descriptors := set.Descriptors()
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name()
	}

	startedAt := time.Now()
	inv.logger.Info("starting run",
		"subject", subject.Value,
		"kind", subject.Kind,
		"category", category,
		"probes", len(descriptors),
	)

	started := ports.NewEvent(ports.EventTypeRunStarted, "investigator")
	started.Subject = subject
	started.Category = category
	inv.notify(ctx, started)

	sched := inv.scheduler.withEventHook(func(ev ports.Event) {
		ev.Subject = subject
		inv.notify(ctx, ev)
	})

	outcomes, err := sched.Run(ctx, descriptors, subject)
	if err != nil {
		if !errors.Is(err, domain.ErrConfiguration) {
			inv.logger.Err(err, "subject", subject.Value)
		}
		return nil, err
	}

	report, err := inv.aggregator.Aggregate(subject, names, outcomes, startedAt, time.Now())
	if err != nil {
		inv.logger.Err(err, "subject", subject.Value)
		return nil, err
	}
	report.Category = category

	inv.logger.Info("run completed",
		"subject", subject.Value,
		"id", report.ID,
		"total", report.Summary.Total,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"timed_out", report.Summary.TimedOut,
		"duration_ms", report.Duration.Milliseconds(),
	)

	completed := ports.NewEvent(ports.EventTypeRunCompleted, "investigator")
	completed.RunID = report.ID
	completed.Subject = subject
	completed.Category = category
	completed.Report = report
	inv.notify(ctx, completed)

	return report, nil
}

// Close espera a las notificaciones en vuelo (cada una acotada por
// NotificationTimeout) y cierra todos los observers. Run no las espera.
func (inv *Investigator) Close() error {
	inv.pending.Wait()

	var errs []error
	for _, o := range inv.observers {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// notify envía un evento a todos los observers.
// Usa goroutines con WaitGroup y timeout para evitar leaks y bloqueos; la
// cancelación del run no descarta las notificaciones ya emitidas.
func (inv *Investigator) notify(ctx context.Context, event ports.Event) {
	if len(inv.observers) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)

	for _, observer := range inv.observers {
		inv.pending.Add(1)
		go func(notifier ports.Notifier) {
			defer inv.pending.Done()

			notifyCtx, cancel := context.WithTimeout(base, inv.notificationTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- notifier.Notify(notifyCtx, event)
			}()

			select {
			case err := <-done:
				if err != nil {
					inv.logger.Warn("notification failed", "event_type", event.Type, "error", err.Error())
				}
			case <-notifyCtx.Done():
				inv.logger.Warn("notification timeout exceeded",
					"timeout", inv.notificationTimeout,
					"event_type", event.Type,
				)
			}
		}(observer)
	}
}
