// internal/platform/config/profile.go
package config

import (
	"strings"
	"time"

	"falcon/internal/core/ports"
)

// Perfiles de escaneo (--profile)
const (
	// ProfileFull todos los probes con la configuración tal cual
	ProfileFull = "full"

	// ProfileQuick solo probes prioritarios, timeout corto y sin reintentos
	ProfileQuick = "quick"

	// ProfileStealth sin probes que contacten la infraestructura del sujeto,
	// baja concurrencia y sin reintentos
	ProfileStealth = "stealth"
)

// Profiles perfiles aceptados.
var Profiles = []string{ProfileFull, ProfileQuick, ProfileStealth}

const (
	quickProbeTimeout  = 5 * time.Second
	quickMinPriority   = 8
	stealthConcurrency = 2
)

// applyProfile ajusta el run al perfil. Solo endurece: un timeout o una
// concurrencia explícitos más bajos se mantienen.
func (c *Config) applyProfile() {
	switch c.Profile {
	case ProfileQuick:
		if c.ProbeTimeout > quickProbeTimeout {
			c.ProbeTimeout = quickProbeTimeout
		}
		c.Retries = 0
	case ProfileStealth:
		if c.Concurrency > stealthConcurrency {
			c.Concurrency = stealthConcurrency
		}
		c.Retries = 0
	}
}

// profileAllows indica si el perfil deja correr un probe. priority es la
// efectiva (la de la sección si la fija, si no la del catálogo).
func (c Config) profileAllows(meta ports.ProbeMetadata, priority int) bool {
	switch c.Profile {
	case ProfileQuick:
		return priority >= quickMinPriority
	case ProfileStealth:
		return !meta.Intrusive
	default:
		return true
	}
}

// ProbeConfigsFor es ProbeConfigs sobre los probes del catálogo, aplicando
// además el filtro del perfil. Un probe con `enabled` explícito en su sección
// no se ve afectado por el perfil.
func (c Config) ProbeConfigsFor(metas []ports.ProbeMetadata) map[string]ports.ProbeConfig {
	names := make([]string, 0, len(metas))
	for _, meta := range metas {
		names = append(names, meta.Name)
	}
	out := c.ProbeConfigs(names)

	for _, meta := range metas {
		name := strings.ToLower(meta.Name)
		section, hasSection := c.section(name)
		if hasSection && section.Enabled != nil {
			continue
		}

		priority := meta.Priority
		if hasSection && section.Priority > 0 {
			priority = section.Priority
		}
		if c.profileAllows(meta, priority) {
			continue
		}

		pc := out[name]
		pc.Enabled = false
		out[name] = pc
	}
	return out
}

// section busca probes.<name> sin distinguir mayúsculas.
func (c Config) section(name string) (ProbeSection, bool) {
	for key, s := range c.Probes {
		if strings.EqualFold(key, name) {
			return s, true
		}
	}
	return ProbeSection{}, false
}
