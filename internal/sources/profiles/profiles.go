// Package profiles registers one lightweight probe per public profile site.
// Sites with a JSON API extract a handful of fields; the rest only answer
// whether the profile page exists.
package profiles

import (
	"context"
	"fmt"
	"net/url"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

// Extractor convierte el cuerpo de la respuesta en campos. found=false
// indica que el sitio respondió pero no conoce al usuario.
type Extractor func(body []byte) (fields *domain.Fields, found bool, err error)

// Site describe un sitio de perfiles.
type Site struct {
	// Name nombre del probe
	Name string

	// Description texto para --list-probes
	Description string

	// BaseURL raíz del endpoint consultado
	BaseURL string

	// Path formato del path; recibe el username escapado
	Path string

	// ProfileURL formato de la URL pública del perfil
	ProfileURL string

	// Extract nil = sólo se comprueba el status HTTP
	Extract Extractor

	// Headers cabeceras adicionales
	Headers map[string]string
}

func init() {
	for _, site := range Sites() {
		site := site
		if err := registry.Global().Register(
			site.Name,
			func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
				return New(site, cfg, logger)
			},
			ports.ProbeMetadata{
				Name:        site.Name,
				Description: site.Description,
				Kinds:       []domain.SubjectKind{domain.SubjectKindUsername},
				Priority:    5,
				Weight:      5,
			},
		); err != nil {
			logx.New().Warn("failed to register profile probe", "site", site.Name, "error", err.Error())
		}
	}
}

// Probe consulta un único sitio.
type Probe struct {
	*common.HTTPProbe
	site Site
}

// New crea el probe para site.
func New(site Site, cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(site.Name, cfg, site.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	return &Probe{HTTPProbe: base, site: site}, nil
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	// los usernames válidos no contienen caracteres que difieran entre
	// escape de path y de query
	escaped := url.PathEscape(subject.Value)

	body, found, err := p.Fetch(ctx, p.URL(p.site.Path, escaped), p.site.Headers)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NotFound(p.site.Name), nil
	}

	fields := domain.NewFields()
	if p.site.Extract != nil {
		extracted, ok, err := p.site.Extract(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.site.Name, err)
		}
		if !ok {
			return domain.NotFound(p.site.Name), nil
		}
		if extracted != nil {
			fields = extracted
		}
	}
	if p.site.ProfileURL != "" {
		fields.Set("profile_url", fmt.Sprintf(p.site.ProfileURL, escaped))
	}

	return domain.Found(p.site.Name, fields), nil
}
