package api

import (
	"fmt"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/core/usecases"
	"falcon/internal/platform/cache"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/platform/resilience"
)

// PrepareSets construye un ProbeSet por categoría para un servidor de larga
// vida. Cada probe queda envuelto primero por su circuit breaker y luego por
// la caché compartida, de modo que un acierto de caché no consume el breaker.
// breakers y results pueden ser nil.
func PrepareSets(
	catalog *registry.Catalog,
	configs map[string]ports.ProbeConfig,
	breakers *resilience.Breakers,
	results *cache.Cache[*domain.ProbeResult],
	logger logx.Logger,
) (map[domain.Category]ports.ProbeSet, error) {
	sets := make(map[domain.Category]ports.ProbeSet, len(domain.Categories))
	for _, category := range domain.Categories {
		reg, err := catalog.Build(configs, category, logger)
		if err != nil {
			return nil, fmt.Errorf("build %s probes: %w", category, err)
		}

		var set ports.ProbeSet = reg
		if breakers != nil {
			if set, err = breakers.Wrap(set); err != nil {
				return nil, fmt.Errorf("wrap %s probes: %w", category, err)
			}
		}
		if results != nil {
			set = usecases.WithCache(set, results)
		}
		sets[category] = set
	}
	return sets, nil
}
