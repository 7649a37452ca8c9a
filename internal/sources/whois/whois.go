// Package whois implements the whois probe. Domains are parsed with
// likexian/whois-parser; IP records have no common format, so the probe
// extracts the usual RIR keys with patterns.
package whois

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	lwhois "github.com/likexian/whois"
	"golang.org/x/net/proxy"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
)

const sourceName = "whois"

// Auto-registro del probe al importar el package
func init() {
	if err := registry.Global().Register(
		sourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return New(cfg, logger)
		},
		ports.ProbeMetadata{
			Name:        sourceName,
			Description: "WHOIS registration data for domains and IP ranges",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain, domain.SubjectKindIP},
			Priority:    15,
			Weight:      15,
		},
	); err != nil {
		logx.New().Warn("failed to register whois probe", "error", err.Error())
	}
}

// LookupFunc consulta un servidor WHOIS y retorna la respuesta cruda.
type LookupFunc func(query string, servers ...string) (string, error)

// Probe consulta WHOIS por TCP/43.
type Probe struct {
	lookup LookupFunc
	server string
	logger logx.Logger
}

// New crea el probe. Custom["server"] fija el servidor WHOIS; si no, la
// librería sigue las referencias desde IANA. Un ProxyURL socks5 se usa
// como dialer; otros esquemas no aplican a TCP/43 y se ignoran.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	if logger == nil {
		logger = logx.NewNop()
	}
	logger = logger.With("probe", sourceName)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := lwhois.NewClient().SetTimeout(timeout)

	if cfg.ProxyURL != "" {
		dialer, err := socksDialer(cfg.ProxyURL, timeout)
		if err != nil {
			return nil, err
		}
		if dialer != nil {
			client.SetDialer(dialer)
		} else {
			logger.Debug("proxy scheme not usable for whois, dialing direct", "proxy", cfg.ProxyURL)
		}
	}

	return &Probe{
		lookup: client.Whois,
		server: registry.GetStringConfig(cfg.Custom, "server", ""),
		logger: logger,
	}, nil
}

// socksDialer retorna nil cuando el proxy no es SOCKS5.
func socksDialer(rawURL string, timeout time.Duration) (proxy.Dialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "proxy url %q", rawURL)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, nil
	}
	dialer, err := proxy.FromURL(u, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "proxy url %q: %v", rawURL, err)
	}
	return dialer, nil
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	query := subject.Value
	if subject.Kind == domain.SubjectKindDomain {
		if root := subject.RegistrableDomain(); root != "" {
			query = root
		}
	}

	raw, err := p.query(ctx, query)
	if err != nil {
		return nil, err
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var fields *domain.Fields
	if subject.Kind == domain.SubjectKindIP {
		fields = parseIP(raw)
	} else {
		fields, err = parseDomain(raw)
		if errors.Is(err, errNoRecord) {
			return domain.NotFound(sourceName), nil
		}
		if err != nil {
			return nil, err
		}
	}

	if fields.StripEmpty().Len() == 0 {
		return domain.NotFound(sourceName), nil
	}
	return domain.Found(sourceName, fields), nil
}

type lookupResult struct {
	raw string
	err error
}

// query ejecuta la consulta bloqueante en una goroutine para respetar ctx.
// Si ctx vence antes, la goroutine termina por el timeout del cliente.
func (p *Probe) query(ctx context.Context, q string) (string, error) {
	var servers []string
	if p.server != "" {
		servers = append(servers, p.server)
	}

	done := make(chan lookupResult, 1)
	go func() {
		raw, err := p.lookup(q, servers...)
		done <- lookupResult{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			p.logger.Debug("whois lookup failed", "query", q, "error", res.err.Error())
			return "", lookupError(res.err)
		}
		return res.raw, nil
	}
}

func lookupError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrapf(errors.ErrTimeout, "whois: %v", err)
	}
	return errors.Wrapf(errors.ErrConnectionFailed, "whois: %v", err)
}
