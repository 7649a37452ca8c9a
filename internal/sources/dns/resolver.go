// Package dns implements the dns and reversedns probes on top of
// github.com/miekg/dns, querying configurable upstream resolvers directly
// instead of the system resolver.
package dns

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	mdns "github.com/miekg/dns"

	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
)

// DefaultResolvers se usan cuando Custom["resolvers"] no está definido.
var DefaultResolvers = []string{"1.1.1.1:53", "8.8.8.8:53"}

// Resolver envía consultas a una lista ordenada de servidores; pasa al
// siguiente cuando uno falla a nivel de transporte o responde SERVFAIL.
type Resolver struct {
	client  *mdns.Client
	servers []string
	logger  logx.Logger
}

// NewResolver crea un resolver. Los servidores sin puerto usan el 53.
func NewResolver(servers []string, timeout time.Duration, logger logx.Logger) *Resolver {
	if logger == nil {
		logger = logx.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}
	if len(normalized) == 0 {
		normalized = append(normalized, DefaultResolvers...)
	}
	return &Resolver{
		client:  &mdns.Client{Net: "udp", Timeout: timeout},
		servers: normalized,
		logger:  logger,
	}
}

// resolverFromConfig construye el resolver de un probe.
func resolverFromConfig(cfg ports.ProbeConfig, logger logx.Logger) *Resolver {
	servers := registry.GetSliceConfig(cfg.Custom, "resolvers", DefaultResolvers)
	timeout := registry.GetDurationConfig(cfg.Custom, "query_timeout", cfg.Timeout)
	return NewResolver(servers, timeout, logger)
}

// Servers retorna los upstreams en orden de consulta.
func (r *Resolver) Servers() []string {
	return append([]string(nil), r.servers...)
}

// Query resuelve name/qtype. Una respuesta NXDOMAIN se retorna sin error;
// el llamador decide qué significa.
func (r *Resolver) Query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(name), qtype)

	var lastErr error
	for _, server := range r.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			r.logger.Debug("dns exchange failed", "server", server, "type", mdns.TypeToString[qtype], "error", err.Error())
			lastErr = exchangeError(ctx, server, err)
			continue
		}

		switch resp.Rcode {
		case mdns.RcodeSuccess, mdns.RcodeNameError:
			return resp, nil
		default:
			lastErr = errors.Wrapf(errors.ErrServiceUnavailable, "%s answered %s", server, mdns.RcodeToString[resp.Rcode])
		}
	}
	return nil, lastErr
}

func exchangeError(ctx context.Context, server string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrapf(errors.ErrTimeout, "query %s", server)
	}
	return errors.Wrapf(errors.ErrConnectionFailed, "query %s: %v", server, err)
}

// answers extrae los registros de tipo qtype en formato texto.
func answers(resp *mdns.Msg, qtype uint16) []string {
	var out []string
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		switch v := rr.(type) {
		case *mdns.A:
			out = append(out, v.A.String())
		case *mdns.AAAA:
			out = append(out, v.AAAA.String())
		case *mdns.CNAME:
			out = append(out, trimDot(v.Target))
		case *mdns.MX:
			out = append(out, strconv.Itoa(int(v.Preference))+" "+trimDot(v.Mx))
		case *mdns.NS:
			out = append(out, trimDot(v.Ns))
		case *mdns.TXT:
			out = append(out, strings.Join(v.Txt, ""))
		case *mdns.PTR:
			out = append(out, trimDot(v.Ptr))
		}
	}
	return out
}

func trimDot(name string) string {
	return strings.TrimSuffix(name, ".")
}
