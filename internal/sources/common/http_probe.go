// Package common provides shared building blocks for probe implementations.
package common

import (
	"context"
	"fmt"
	"strings"

	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/httpclient"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/platform/validator"
)

// HTTPProbe groups what every HTTP-backed probe needs: a client built from
// the probe's own configuration, a base URL and a scoped logger.
//
// Custom["base_url"] replaces the default base URL, which is how tests and
// self-hosted mirrors point a probe elsewhere. It must be an absolute URL;
// an empty base is allowed for probes that build full URLs themselves.
type HTTPProbe struct {
	Name    string
	Client  *httpclient.Client
	BaseURL string
	Logger  logx.Logger
}

// NewHTTPProbe builds the shared HTTP state for the probe called name.
func NewHTTPProbe(name string, cfg ports.ProbeConfig, defaultBase string, logger logx.Logger) (*HTTPProbe, error) {
	if logger == nil {
		logger = logx.NewNop()
	}
	client, err := httpclient.New(httpclient.FromProbeConfig(cfg), logger)
	if err != nil {
		return nil, errors.Wrapf(err, "%s probe", name)
	}

	base := registry.GetStringConfig(cfg.Custom, "base_url", defaultBase)
	if base != "" && !validator.IsURL(base) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s probe: base_url %q is not an absolute URL", name, base)
	}
	return &HTTPProbe{
		Name:    name,
		Client:  client,
		BaseURL: strings.TrimRight(base, "/"),
		Logger:  logger.With("probe", name),
	}, nil
}

// URL appends a formatted path to the base URL. Arguments must already be
// escaped.
func (p *HTTPProbe) URL(format string, args ...interface{}) string {
	return p.BaseURL + fmt.Sprintf(format, args...)
}

// FetchJSON decodes the JSON body at url into v. A 404 is not an error: it
// reports found=false so the probe can answer not_found.
func (p *HTTPProbe) FetchJSON(ctx context.Context, url string, headers map[string]string, v interface{}) (bool, error) {
	err := p.Client.FetchJSON(ctx, url, headers, v)
	if errors.IsNotFound(err) {
		p.Logger.Debug("subject not found", "url", url)
		return false, nil
	}
	if err != nil {
		p.warnRejected(err)
		return false, err
	}
	return true, nil
}

// Fetch returns the body at url. found=false on 404.
func (p *HTTPProbe) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, bool, error) {
	body, err := p.Client.Fetch(ctx, url, headers)
	if errors.IsNotFound(err) {
		p.Logger.Debug("subject not found", "url", url)
		return nil, false, nil
	}
	if err != nil {
		p.warnRejected(err)
		return nil, false, err
	}
	return body, true, nil
}

// warnRejected deja constancia de un 401/403: casi siempre es una api key
// caducada o sin permisos, no un fallo del servicio.
func (p *HTTPProbe) warnRejected(err error) {
	if errors.IsUnauthorized(err) {
		p.Logger.Warn("credentials rejected, check the probe api key", "error", err.Error())
	}
}
