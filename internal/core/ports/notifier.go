// internal/core/ports/notifier.go
package ports

import (
	"context"
	"time"

	"falcon/internal/core/domain"
)

// Notifier es el port para observar el progreso de un run.
// Implementa el patrón Observer para desacoplar el núcleo de las métricas,
// la UI o cualquier otro consumidor. Las notificaciones se entregan de forma
// asíncrona y nunca retrasan la recolección de outcomes.
type Notifier interface {
	// Notify envía una notificación para un evento
	Notify(ctx context.Context, event Event) error

	// Close cierra el notifier y libera recursos
	Close() error
}

// Event representa un evento del sistema.
type Event struct {
	// Type tipo de evento
	Type EventType

	// Timestamp momento del evento
	Timestamp time.Time

	// RunID run al que pertenece el evento (vacío si aún no se asignó)
	RunID string

	// Source fuente que generó el evento (vacío para eventos de run)
	Source string

	// Subject sujeto investigado
	Subject domain.Subject

	// Category categoría ejecutada
	Category domain.Category

	// Outcome presente en eventos probe.*
	Outcome *domain.Outcome

	// Report presente en run.completed
	Report *domain.RunReport

	// Severity severidad del evento
	Severity EventSeverity
}

// EventType define los tipos de eventos del sistema.
type EventType string

const (
	// Run events
	EventTypeRunStarted   EventType = "run.started"
	EventTypeRunCompleted EventType = "run.completed"

	// Probe events
	EventTypeProbeCompleted EventType = "probe.completed"
	EventTypeProbeFailed    EventType = "probe.failed"
	EventTypeProbeTimeout   EventType = "probe.timeout"
)

// EventSeverity define la severidad de un evento.
type EventSeverity string

const (
	EventSeverityInfo    EventSeverity = "info"
	EventSeverityWarning EventSeverity = "warning"
	EventSeverityError   EventSeverity = "error"
)

// NewEvent crea un nuevo evento.
func NewEvent(eventType EventType, source string) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Severity:  EventSeverityInfo,
	}
}

// OutcomeEvent construye el evento probe.* correspondiente a un outcome.
func OutcomeEvent(o domain.Outcome) Event {
	var ev Event
	switch {
	case o.TimedOut():
		ev = NewEvent(EventTypeProbeTimeout, o.Source)
		ev.Severity = EventSeverityWarning
	case o.Failure != nil:
		ev = NewEvent(EventTypeProbeFailed, o.Source)
		ev.Severity = EventSeverityError
	default:
		ev = NewEvent(EventTypeProbeCompleted, o.Source)
	}
	ev.Category = o.Category
	ev.Outcome = &o
	return ev
}
