// internal/core/ports/probe.go
package ports

import (
	"context"
	"time"

	"falcon/internal/core/domain"
)

// Probe es el port para cualquier fuente externa consultada durante un run.
// Cada implementación realiza una única consulta acotada (fetch + parse) y
// nunca reintenta; la política de reintentos pertenece al scheduler.
//
// El timeout viaja en el deadline de ctx. Un probe retorna un resultado o un
// error: idealmente *domain.ProbeFailure, aunque cualquier otro error se
// clasifica al recogerlo.
type Probe interface {
	Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error)
}

// ProbeFunc adapta una función a Probe.
type ProbeFunc func(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error)

// Invoke llama a f(ctx, subject).
func (f ProbeFunc) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	return f(ctx, subject)
}

// ProbeDescriptor asocia un probe con su nombre y categoría.
// Se construye una vez al registrar y es inmutable después.
type ProbeDescriptor struct {
	name     string
	category domain.Category
	probe    Probe
	priority int
	weight   int
}

// NewProbeDescriptor crea un descriptor.
func NewProbeDescriptor(name string, category domain.Category, probe Probe, priority, weight int) ProbeDescriptor {
	return ProbeDescriptor{
		name:     name,
		category: category,
		probe:    probe,
		priority: priority,
		weight:   weight,
	}
}

// Name nombre único de la fuente dentro de un registro.
func (d ProbeDescriptor) Name() string { return d.name }

// Category categoría de análisis del descriptor.
func (d ProbeDescriptor) Category() domain.Category { return d.category }

// Probe implementación a invocar.
func (d ProbeDescriptor) Probe() Probe { return d.probe }

// Priority prioridad de despacho (mayor primero).
func (d ProbeDescriptor) Priority() int { return d.priority }

// Weight costo estimado (0-100).
func (d ProbeDescriptor) Weight() int { return d.weight }

// ProbeSet es el conjunto de descriptores de una categoría.
type ProbeSet interface {
	Category() domain.Category
	Descriptors() []ProbeDescriptor
}

// ProbeConfig contiene la configuración específica de un probe.
// Se construye desde la configuración explícita del proceso; los probes no
// leen estado global.
type ProbeConfig struct {
	// Enabled indica si el probe está habilitado
	Enabled bool

	// Priority prioridad de despacho (0 = usar la de metadata)
	Priority int

	// RateLimit límite de peticiones por segundo (0 = sin límite)
	RateLimit float64

	// APIKey credencial opcional del servicio
	APIKey string

	// UserAgent cabecera User-Agent para clientes HTTP
	UserAgent string

	// ProxyURL proxy opcional para clientes HTTP
	ProxyURL string

	// Timeout timeout de referencia para clientes internos
	Timeout time.Duration

	// Custom configuración específica del probe (endpoints, resolvers, etc.)
	Custom map[string]interface{}
}

// DefaultProbeConfig retorna una configuración por defecto.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Enabled:   true,
		UserAgent: "falcon/1.0 (+osint)",
		Timeout:   10 * time.Second,
		Custom:    make(map[string]interface{}),
	}
}


// ProbeMetadata contiene metadatos sobre un probe registrado.
type ProbeMetadata struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Kinds        []domain.SubjectKind `json:"kinds"`
	RequiresAuth bool                 `json:"requires_auth"`
	Priority     int                  `json:"priority"`
	Weight       int                  `json:"weight"`

	// Intrusive el probe contacta la infraestructura del propio sujeto
	// (no solo servicios de terceros); el perfil stealth lo omite
	Intrusive bool `json:"intrusive"`
}

// Supports indica si el probe acepta sujetos del tipo dado.
func (m ProbeMetadata) Supports(kind domain.SubjectKind) bool {
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
