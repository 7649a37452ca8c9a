// internal/core/domain/outcome.go
package domain

import (
	"fmt"
	"time"
)

// ProbeResult es la respuesta normalizada de una fuente que contestó.
type ProbeResult struct {
	SourceName string        `json:"source_name" yaml:"source_name"`
	Status     ProbeStatus   `json:"status" yaml:"status"`
	Fields     *Fields       `json:"fields,omitempty" yaml:"fields,omitempty"`
	FetchedAt  time.Time     `json:"fetched_at" yaml:"fetched_at"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}

// NewProbeResult crea un resultado con FetchedAt = ahora.
func NewProbeResult(source string, status ProbeStatus, fields *Fields) *ProbeResult {
	if fields == nil {
		fields = NewFields()
	}
	return &ProbeResult{
		SourceName: source,
		Status:     status,
		Fields:     fields,
		FetchedAt:  time.Now(),
	}
}

// Found atajo para un resultado con datos.
func Found(source string, fields *Fields) *ProbeResult {
	return NewProbeResult(source, StatusFound, fields)
}

// NotFound atajo para una fuente que no conoce al sujeto.
func NotFound(source string) *ProbeResult {
	return NewProbeResult(source, StatusNotFound, nil)
}

// ProbeFailure describe por qué una invocación no produjo resultado.
// Implementa error para que los probes puedan retornarlo directamente.
type ProbeFailure struct {
	SourceName string      `json:"source_name" yaml:"source_name"`
	Kind       FailureKind `json:"kind" yaml:"kind"`
	Message    string      `json:"message" yaml:"message"`
}

// NewProbeFailure crea un fallo tipado.
func NewProbeFailure(source string, kind FailureKind, message string) *ProbeFailure {
	return &ProbeFailure{SourceName: source, Kind: kind, Message: message}
}

// Failf crea un fallo con mensaje formateado.
func Failf(source string, kind FailureKind, format string, args ...interface{}) *ProbeFailure {
	return NewProbeFailure(source, kind, fmt.Sprintf(format, args...))
}

func (f *ProbeFailure) Error() string {
	if f.SourceName == "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.SourceName, f.Kind, f.Message)
}

// Outcome es el resultado de exactamente una invocación: Result o Failure.
type Outcome struct {
	Source   string        `json:"source" yaml:"source"`
	Category Category      `json:"category" yaml:"category"`
	Result   *ProbeResult  `json:"result,omitempty" yaml:"result,omitempty"`
	Failure  *ProbeFailure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// ResultOutcome envuelve un resultado.
func ResultOutcome(category Category, r *ProbeResult) Outcome {
	return Outcome{Source: r.SourceName, Category: category, Result: r}
}

// FailureOutcome envuelve un fallo.
func FailureOutcome(category Category, f *ProbeFailure) Outcome {
	return Outcome{Source: f.SourceName, Category: category, Failure: f}
}

// IsValid verifica que exactamente uno de Result/Failure esté presente.
func (o Outcome) IsValid() bool {
	return (o.Result == nil) != (o.Failure == nil)
}

// Succeeded indica si la fuente contestó con found o not_found.
func (o Outcome) Succeeded() bool {
	return o.Result != nil && o.Result.Status != StatusError
}

// TimedOut indica si el outcome es un fallo por timeout.
func (o Outcome) TimedOut() bool {
	return o.Failure != nil && o.Failure.Kind == FailureTimeout
}

// Label retorna un texto corto para tablas: estado o tipo de fallo.
func (o Outcome) Label() string {
	switch {
	case o.Result != nil:
		return string(o.Result.Status)
	case o.Failure != nil:
		return string(o.Failure.Kind)
	default:
		return "invalid"
	}
}
