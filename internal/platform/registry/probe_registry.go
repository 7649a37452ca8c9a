// internal/platform/registry/probe_registry.go
package registry

import (
	"fmt"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
)

// ProbeRegistry es el conjunto declarativo de descriptores de una categoría.
// Rechaza nombres duplicados al registrar, antes de cualquier llamada de red.
// No es seguro para uso concurrente durante la construcción; tras ella solo
// se lee.
type ProbeRegistry struct {
	category    domain.Category
	descriptors []ports.ProbeDescriptor
	index       map[string]int
}

// NewProbeRegistry crea un registro vacío para una categoría.
func NewProbeRegistry(category domain.Category) *ProbeRegistry {
	return &ProbeRegistry{
		category: category,
		index:    make(map[string]int),
	}
}

// Add registra un descriptor. Un nombre vacío, un probe nil o un nombre
// repetido producen ConfigurationError.
func (r *ProbeRegistry) Add(d ports.ProbeDescriptor) error {
	if d.Name() == "" {
		return domain.NewConfigurationError("source_name", "cannot be empty")
	}
	if d.Probe() == nil {
		return domain.NewConfigurationError("source_name", fmt.Sprintf("probe for %q is nil", d.Name()))
	}
	if _, exists := r.index[d.Name()]; exists {
		return domain.NewConfigurationError("source_name", fmt.Sprintf("duplicate source %q", d.Name()))
	}
	if d.Category() != "" && r.category != "" && d.Category() != r.category {
		return domain.NewConfigurationError("category",
			fmt.Sprintf("source %q belongs to %q, registry is %q", d.Name(), d.Category(), r.category))
	}

	r.index[d.Name()] = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustAdd registra varios descriptores y entra en pánico ante el primer error.
// Pensado para tablas estáticas y tests.
func (r *ProbeRegistry) MustAdd(ds ...ports.ProbeDescriptor) *ProbeRegistry {
	for _, d := range ds {
		if err := r.Add(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Category retorna la categoría del registro.
func (r *ProbeRegistry) Category() domain.Category {
	return r.category
}

// Descriptors retorna una copia de los descriptores en orden de registro.
func (r *ProbeRegistry) Descriptors() []ports.ProbeDescriptor {
	out := make([]ports.ProbeDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup busca un descriptor por nombre.
func (r *ProbeRegistry) Lookup(name string) (ports.ProbeDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return ports.ProbeDescriptor{}, false
	}
	return r.descriptors[i], true
}

// Names retorna los nombres en orden de registro.
func (r *ProbeRegistry) Names() []string {
	out := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		out[i] = d.Name()
	}
	return out
}

// Len retorna el número de descriptores.
func (r *ProbeRegistry) Len() int {
	return len(r.descriptors)
}

var _ ports.ProbeSet = (*ProbeRegistry)(nil)
