// internal/core/domain/subject.go
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"falcon/internal/platform/validator"
)

// Subject representa la entidad investigada durante un run.
// Es inmutable una vez construido.
type Subject struct {
	// Value identificador normalizado (handle, dominio o IP)
	Value string `json:"value" yaml:"value"`

	// Kind tipo de identificador
	Kind SubjectKind `json:"kind" yaml:"kind"`
}

// NewSubject normaliza y valida un identificador del tipo indicado.
func NewSubject(value string, kind SubjectKind) (Subject, error) {
	if validator.IsEmpty(value) {
		return Subject{}, ErrEmptySubject
	}

	switch kind {
	case SubjectKindUsername:
		v := strings.ToLower(validator.NormalizeUsername(value))
		if !validator.IsUsername(v) {
			return Subject{}, fmt.Errorf("%w: username %q", ErrInvalidSubject, value)
		}
		return Subject{Value: v, Kind: kind}, nil

	case SubjectKindDomain:
		v := validator.NormalizeDomain(value)
		if !validator.IsDomain(v) || !strings.Contains(v, ".") {
			return Subject{}, fmt.Errorf("%w: domain %q", ErrInvalidSubject, value)
		}
		return Subject{Value: v, Kind: kind}, nil

	case SubjectKindIP:
		v := validator.NormalizeIP(value)
		if v == "" {
			return Subject{}, fmt.Errorf("%w: ip %q", ErrInvalidSubject, value)
		}
		return Subject{Value: v, Kind: kind}, nil

	default:
		return Subject{}, fmt.Errorf("%w: %q", ErrInvalidSubjectKind, kind)
	}
}

// ParseSubject infiere el tipo de un identificador crudo.
// Una IP parseable es ip; un hostname cuyo sufijo público es gestionado por
// ICANN es domain; cualquier otra cosa se trata como username.
func ParseSubject(raw string) (Subject, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Subject{}, ErrEmptySubject
	}

	if validator.IsIP(trimmed) {
		return NewSubject(trimmed, SubjectKindIP)
	}

	host := validator.NormalizeDomain(trimmed)
	if strings.Contains(host, ".") && validator.IsDomain(host) {
		if _, icann := publicsuffix.PublicSuffix(host); icann {
			return NewSubject(host, SubjectKindDomain)
		}
	}

	return NewSubject(trimmed, SubjectKindUsername)
}

// RegistrableDomain retorna el eTLD+1 de un sujeto de tipo domain.
// Para otros tipos, o si no se puede calcular, retorna string vacío.
func (s Subject) RegistrableDomain() string {
	if s.Kind != SubjectKindDomain {
		return ""
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(s.Value)
	if err != nil {
		return ""
	}
	return root
}

// String retorna "kind:value".
func (s Subject) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Value)
}

// IsZero indica si el sujeto no fue inicializado.
func (s Subject) IsZero() bool {
	return s.Value == "" && s.Kind == ""
}
