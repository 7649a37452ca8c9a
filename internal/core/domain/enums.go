// internal/core/domain/enums.go
package domain

import "fmt"

// SubjectKind clasifica el identificador investigado.
type SubjectKind string

const (
	// SubjectKindUsername handle de una persona u organización en plataformas públicas
	SubjectKindUsername SubjectKind = "username"

	// SubjectKindDomain nombre de dominio registrable o hostname
	SubjectKindDomain SubjectKind = "domain"

	// SubjectKindIP dirección IPv4 o IPv6
	SubjectKindIP SubjectKind = "ip"
)

// IsValid verifica si el tipo de sujeto es válido.
func (k SubjectKind) IsValid() bool {
	switch k {
	case SubjectKindUsername, SubjectKindDomain, SubjectKindIP:
		return true
	default:
		return false
	}
}

// String retorna la representación string del tipo.
func (k SubjectKind) String() string {
	return string(k)
}

// Category agrupa probes por área de análisis.
type Category string

const (
	// CategorySocial presencia en redes sociales y plataformas (username)
	CategorySocial Category = "social"

	// CategoryTechnical huella técnica de un dominio (DNS, WHOIS, certificados)
	CategoryTechnical Category = "technical"

	// CategoryNetwork información de red de una IP (registro, puertos, geolocalización)
	CategoryNetwork Category = "network"
)

// Categories todas las categorías conocidas, en orden estable.
var Categories = []Category{CategorySocial, CategoryTechnical, CategoryNetwork}

// IsValid verifica si la categoría es conocida.
func (c Category) IsValid() bool {
	switch c {
	case CategorySocial, CategoryTechnical, CategoryNetwork:
		return true
	default:
		return false
	}
}

// Kind retorna el tipo de sujeto que analiza la categoría.
func (c Category) Kind() SubjectKind {
	switch c {
	case CategorySocial:
		return SubjectKindUsername
	case CategoryTechnical:
		return SubjectKindDomain
	case CategoryNetwork:
		return SubjectKindIP
	default:
		return ""
	}
}

// String retorna la representación string de la categoría.
func (c Category) String() string {
	return string(c)
}

// CategoryFor retorna la categoría por defecto para un tipo de sujeto.
func CategoryFor(kind SubjectKind) Category {
	switch kind {
	case SubjectKindUsername:
		return CategorySocial
	case SubjectKindDomain:
		return CategoryTechnical
	case SubjectKindIP:
		return CategoryNetwork
	default:
		return ""
	}
}

// ParseCategory convierte un string en Category validando su valor.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", NewConfigurationError("category", fmt.Sprintf("unknown category %q", s))
	}
	return c, nil
}

// ProbeStatus resultado de negocio de una consulta exitosa.
type ProbeStatus string

const (
	// StatusFound la fuente tiene datos del sujeto
	StatusFound ProbeStatus = "found"

	// StatusNotFound la fuente respondió pero no conoce al sujeto
	StatusNotFound ProbeStatus = "not_found"

	// StatusError la fuente respondió con un error de aplicación
	StatusError ProbeStatus = "error"
)

// IsValid verifica si el estado es válido.
func (s ProbeStatus) IsValid() bool {
	switch s {
	case StatusFound, StatusNotFound, StatusError:
		return true
	default:
		return false
	}
}

// FailureKind clasifica por qué una invocación no produjo resultado.
type FailureKind string

const (
	FailureTimeout     FailureKind = "timeout"
	FailureNetwork     FailureKind = "network_error"
	FailureParse       FailureKind = "parse_error"
	FailureRateLimited FailureKind = "rate_limited"
	FailureUnknown     FailureKind = "unknown"
)

// IsValid verifica si el tipo de fallo es válido.
func (k FailureKind) IsValid() bool {
	switch k {
	case FailureTimeout, FailureNetwork, FailureParse, FailureRateLimited, FailureUnknown:
		return true
	default:
		return false
	}
}

// Retryable indica si vale la pena reintentar un fallo de este tipo.
func (k FailureKind) Retryable() bool {
	return k == FailureNetwork || k == FailureRateLimited
}
