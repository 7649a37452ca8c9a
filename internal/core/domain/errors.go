// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio comunes.
var (
	// Subject errors
	ErrEmptySubject       = errors.New("subject cannot be empty")
	ErrInvalidSubject     = errors.New("invalid subject")
	ErrInvalidSubjectKind = errors.New("invalid subject kind")

	// Run errors
	ErrConfiguration = errors.New("configuration error")
	ErrAggregation   = errors.New("aggregation error")

	// Export errors
	ErrExportFailed      = errors.New("export failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ConfigurationError indica una configuración inválida detectada antes de
// lanzar cualquier probe (concurrencia, timeouts, nombres duplicados).
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError crea un ConfigurationError.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// AggregationError indica que se rompió el invariante de completitud:
// falta un outcome, sobra uno o llegó duplicado.
type AggregationError struct {
	Source string
	Reason string
}

// NewAggregationError crea un AggregationError.
func NewAggregationError(source, reason string) *AggregationError {
	return &AggregationError{Source: source, Reason: reason}
}

func (e *AggregationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("aggregation error: %s", e.Reason)
	}
	return fmt.Sprintf("aggregation error: source %q: %s", e.Source, e.Reason)
}

// Is permite errors.Is(err, ErrAggregation).
func (e *AggregationError) Is(target error) bool {
	return target == ErrAggregation
}
