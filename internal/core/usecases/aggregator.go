// internal/core/usecases/aggregator.go
package usecases

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"falcon/internal/core/domain"
)

// Aggregator transforma el mapa de outcomes de un run en un RunReport
// inmutable: orden estable, campos vacíos eliminados, resumen y
// correlaciones entre fuentes.
type Aggregator struct {
	newID func() string
}

// NewAggregator crea un Aggregator que asigna IDs UUIDv7.
func NewAggregator() *Aggregator {
	return &Aggregator{newID: newRunID}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Aggregate construye el informe.
//
// expected es la lista de nombres registrados: un nombre repetido es
// ConfigurationError; un outcome ausente o inesperado es AggregationError.
func (a *Aggregator) Aggregate(
	subject domain.Subject,
	expected []string,
	outcomes map[string]domain.Outcome,
	startedAt, finishedAt time.Time,
) (*domain.RunReport, error) {
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		if _, dup := want[name]; dup {
			return nil, domain.NewConfigurationError("source_name", fmt.Sprintf("duplicate source %q", name))
		}
		want[name] = struct{}{}
	}

	for _, name := range expected {
		if _, ok := outcomes[name]; !ok {
			return nil, domain.NewAggregationError(name, "missing outcome")
		}
	}

	entries := make([]domain.Outcome, 0, len(outcomes))
	for name, o := range outcomes {
		if _, ok := want[name]; !ok {
			return nil, domain.NewAggregationError(name, "outcome for unregistered source")
		}
		if o.Source != name {
			return nil, domain.NewAggregationError(name, fmt.Sprintf("outcome keyed as %q reports source %q", name, o.Source))
		}
		if !o.IsValid() {
			return nil, domain.NewAggregationError(name, "outcome must carry exactly one of result or failure")
		}
		entries = append(entries, normalizeOutcome(o))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Source < entries[j].Source
	})

	report := &domain.RunReport{
		ID:           a.newID(),
		Subject:      subject,
		Category:     domain.CategoryFor(subject.Kind),
		Entries:      entries,
		Correlations: correlate(entries),
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		Duration:     finishedAt.Sub(startedAt),
	}
	for _, e := range entries {
		report.Summary.Add(e)
	}

	return report, nil
}

// normalizeOutcome copia el outcome eliminando campos vacíos del resultado.
func normalizeOutcome(o domain.Outcome) domain.Outcome {
	if o.Result == nil {
		f := *o.Failure
		o.Failure = &f
		return o
	}
	r := *o.Result
	r.Fields = r.Fields.StripEmpty()
	o.Result = &r
	return o
}

// correlate detecta pares (campo, valor) reportados por dos o más fuentes
// con resultado found. La comparación ignora mayúsculas y espacios.
func correlate(entries []domain.Outcome) []domain.Correlation {
	type key struct{ field, value string }
	type group struct {
		display string
		sources []string
	}

	groups := make(map[key]*group)
	for _, e := range entries {
		if e.Result == nil || e.Result.Status != domain.StatusFound {
			continue
		}
		seen := make(map[key]struct{})
		for _, kv := range e.Result.Fields.Flatten() {
			value := strings.TrimSpace(kv[1])
			if value == "" {
				continue
			}
			k := key{field: kv[0], value: strings.ToLower(value)}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			g, ok := groups[k]
			if !ok {
				g = &group{display: value}
				groups[k] = g
			}
			g.sources = append(g.sources, e.Source)
		}
	}

	var out []domain.Correlation
	for k, g := range groups {
		if len(g.sources) < 2 {
			continue
		}
		sort.Strings(g.sources)
		out = append(out, domain.Correlation{Field: k.field, Value: g.display, Sources: g.sources})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return strings.ToLower(out[i].Value) < strings.ToLower(out[j].Value)
	})
	return out
}
