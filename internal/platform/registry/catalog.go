// internal/platform/registry/catalog.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
)

// ProbeFactory crea una instancia de Probe a partir de su configuración.
type ProbeFactory func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error)

// Catalog es la tabla de factories de probes disponibles en el proceso.
// Cada package de sources se registra desde init(); Build construye un
// ProbeRegistry explícito a partir de la configuración, de modo que los
// probes nunca consultan configuración global.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]ProbeFactory
	metadata  map[string]ports.ProbeMetadata
}

var (
	globalCatalog *Catalog
	once          sync.Once
)

// Global retorna el catálogo del proceso.
func Global() *Catalog {
	once.Do(func() {
		globalCatalog = NewCatalog()
	})
	return globalCatalog
}

// NewCatalog crea un catálogo vacío.
func NewCatalog() *Catalog {
	return &Catalog{
		factories: make(map[string]ProbeFactory),
		metadata:  make(map[string]ports.ProbeMetadata),
	}
}

// Register registra una factory con su metadata.
// Típicamente llamado desde init() de cada package de sources.
func (c *Catalog) Register(name string, factory ProbeFactory, meta ports.ProbeMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return fmt.Errorf("probe name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for probe %s", name)
	}
	if len(meta.Kinds) == 0 {
		return fmt.Errorf("probe %s must declare at least one subject kind", name)
	}
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("probe %s is already registered", name)
	}

	if meta.Name == "" {
		meta.Name = name
	}
	c.factories[name] = factory
	c.metadata[name] = meta
	return nil
}

// MustRegister es Register que entra en pánico; para init().
func (c *Catalog) MustRegister(name string, factory ProbeFactory, meta ports.ProbeMetadata) {
	if err := c.Register(name, factory, meta); err != nil {
		panic(err)
	}
}

// Build construye el ProbeRegistry de una categoría.
//
// Se incluyen todos los probes del catálogo que aceptan el tipo de sujeto de
// la categoría, salvo los deshabilitados en configs. Un probe sin entrada en
// configs usa ports.DefaultProbeConfig.
//
// Si la factory de un probe con entrada en configs falla (proxy o base_url
// inválidos, por ejemplo) Build devuelve ConfigurationError: el usuario lo
// pidió y no se puede servir. Si el probe no tiene entrada, se omite con un
// warning. Una categoría desconocida también es ConfigurationError.
func (c *Catalog) Build(configs map[string]ports.ProbeConfig, category domain.Category, logger logx.Logger) (*ProbeRegistry, error) {
	if !category.IsValid() {
		return nil, domain.NewConfigurationError("category", fmt.Sprintf("unknown category %q", category))
	}
	if logger == nil {
		logger = logx.NewNop()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for name := range configs {
		if _, exists := c.factories[name]; !exists {
			logger.Warn("probe configured but not registered, skipping", "probe", name)
		}
	}

	kind := category.Kind()
	type candidate struct {
		name       string
		cfg        ports.ProbeConfig
		meta       ports.ProbeMetadata
		priority   int
		configured bool
	}

	candidates := make([]candidate, 0, len(c.factories))
	for name, meta := range c.metadata {
		if !meta.Supports(kind) {
			continue
		}

		cfg, configured := configs[name]
		if !configured {
			cfg = ports.DefaultProbeConfig()
		}
		if !cfg.Enabled {
			logger.Debug("probe disabled by configuration", "probe", name)
			continue
		}

		priority := meta.Priority
		if cfg.Priority > 0 {
			priority = cfg.Priority
		}
		candidates = append(candidates, candidate{
			name: name, cfg: cfg, meta: meta, priority: priority, configured: configured,
		})
	}

	// Orden de registro estable: prioridad descendente, luego nombre
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].name < candidates[j].name
	})

	reg := NewProbeRegistry(category)
	for _, cand := range candidates {
		probe, err := c.factories[cand.name](cand.cfg, logger.With("probe", cand.name))
		if err != nil {
			if cand.configured {
				return nil, domain.NewConfigurationError("probes."+cand.name, err.Error())
			}
			logger.Warn("failed to build probe", "probe", cand.name, "error", err.Error())
			continue
		}

		desc := ports.NewProbeDescriptor(cand.name, category, probe, cand.priority, cand.meta.Weight)
		if err := reg.Add(desc); err != nil {
			return nil, err
		}
	}

	logger.Debug("probe registry built", "category", category, "probes", reg.Len())
	return reg, nil
}

// List retorna los nombres registrados ordenados.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata retorna la metadata de un probe.
func (c *Catalog) GetMetadata(name string) (ports.ProbeMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	meta, exists := c.metadata[name]
	return meta, exists
}

// AllMetadata retorna la metadata de todos los probes ordenada por nombre.
func (c *Catalog) AllMetadata() []ports.ProbeMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ports.ProbeMetadata, 0, len(c.metadata))
	for _, meta := range c.metadata {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsRegistered verifica si un probe está registrado.
func (c *Catalog) IsRegistered(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.factories[name]
	return exists
}

// Clear elimina todos los probes registrados (útil para testing).
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories = make(map[string]ProbeFactory)
	c.metadata = make(map[string]ports.ProbeMetadata)
}
