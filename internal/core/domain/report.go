// internal/core/domain/report.go
package domain

import "time"

// RunReport es el informe inmutable de un run completo.
type RunReport struct {
	// ID identificador único del run (UUIDv7)
	ID string `json:"id" yaml:"id"`

	// Subject sujeto investigado
	Subject Subject `json:"subject" yaml:"subject"`

	// Category categoría de probes ejecutada
	Category Category `json:"category" yaml:"category"`

	// Entries un outcome por fuente, ordenados por nombre de fuente
	Entries []Outcome `json:"entries" yaml:"entries"`

	// Correlations valores reportados por más de una fuente
	Correlations []Correlation `json:"correlations,omitempty" yaml:"correlations,omitempty"`

	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// Entry busca el outcome de una fuente.
func (r *RunReport) Entry(source string) (Outcome, bool) {
	for _, e := range r.Entries {
		if e.Source == source {
			return e, true
		}
	}
	return Outcome{}, false
}

// Summary conteos del run.
// Succeeded cuenta resultados found/not_found; Failed cuenta fallos y
// resultados con estado error; TimedOut es un subconjunto de Failed.
type Summary struct {
	Total          int                 `json:"total" yaml:"total"`
	Succeeded      int                 `json:"succeeded" yaml:"succeeded"`
	Failed         int                 `json:"failed" yaml:"failed"`
	TimedOut       int                 `json:"timed_out" yaml:"timed_out"`
	Found          int                 `json:"found" yaml:"found"`
	NotFound       int                 `json:"not_found" yaml:"not_found"`
	FailuresByKind map[FailureKind]int `json:"failures_by_kind,omitempty" yaml:"failures_by_kind,omitempty"`
}

// Add acumula un outcome en el resumen.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch {
	case o.Failure != nil:
		s.Failed++
		if o.Failure.Kind == FailureTimeout {
			s.TimedOut++
		}
		if s.FailuresByKind == nil {
			s.FailuresByKind = make(map[FailureKind]int)
		}
		s.FailuresByKind[o.Failure.Kind]++
	case o.Result != nil && o.Result.Status == StatusError:
		s.Failed++
	case o.Result != nil:
		s.Succeeded++
		if o.Result.Status == StatusFound {
			s.Found++
		} else {
			s.NotFound++
		}
	}
}

// Correlation un par (campo, valor) que aparece en dos o más fuentes.
type Correlation struct {
	Field   string   `json:"field" yaml:"field"`
	Value   string   `json:"value" yaml:"value"`
	Sources []string `json:"sources" yaml:"sources"`
}
