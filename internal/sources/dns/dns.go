package dns

import (
	"context"
	"strings"
	"sync"

	mdns "github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
)

const sourceName = "dns"

// recordTypes tipos consultados por el probe dns, en orden de salida.
var recordTypes = []uint16{
	mdns.TypeA,
	mdns.TypeAAAA,
	mdns.TypeCNAME,
	mdns.TypeMX,
	mdns.TypeNS,
	mdns.TypeTXT,
}

// Auto-registro de los probes al importar el package
func init() {
	if err := registry.Global().Register(
		sourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return New(cfg, logger), nil
		},
		ports.ProbeMetadata{
			Name:        sourceName,
			Description: "DNS records (A, AAAA, CNAME, MX, NS, TXT) from public resolvers",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain},
			Priority:    20,
			Weight:      10,
		},
	); err != nil {
		logx.New().Warn("failed to register dns probe", "error", err.Error())
	}

	if err := registry.Global().Register(
		reverseSourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return NewReverse(cfg, logger), nil
		},
		ports.ProbeMetadata{
			Name:        reverseSourceName,
			Description: "Reverse DNS (PTR) for an IP address",
			Kinds:       []domain.SubjectKind{domain.SubjectKindIP},
			Priority:    15,
			Weight:      5,
		},
	); err != nil {
		logx.New().Warn("failed to register reversedns probe", "error", err.Error())
	}
}

// Probe resuelve los registros principales de un dominio.
type Probe struct {
	resolver *Resolver
	logger   logx.Logger
}

// New crea el probe dns.
func New(cfg ports.ProbeConfig, logger logx.Logger) *Probe {
	if logger == nil {
		logger = logx.NewNop()
	}
	logger = logger.With("probe", sourceName)
	return &Probe{resolver: resolverFromConfig(cfg, logger), logger: logger}
}

// Invoke implementa ports.Probe. Los tipos se consultan en paralelo; un
// fallo parcial se registra en el log y el resultado conserva lo obtenido.
// NXDOMAIN, o ningún registro de ningún tipo, es not_found.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	var (
		mu       sync.Mutex
		records  = make(map[uint16][]string, len(recordTypes))
		failures = make(map[uint16]error)
		nxdomain bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, qtype := range recordTypes {
		qtype := qtype
		g.Go(func() error {
			resp, err := p.resolver.Query(gctx, subject.Value, qtype)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[qtype] = err
				return nil
			}
			if resp.Rcode == mdns.RcodeNameError {
				nxdomain = true
				return nil
			}
			records[qtype] = answers(resp, qtype)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if nxdomain {
		return domain.NotFound(sourceName), nil
	}
	if len(failures) == len(recordTypes) {
		return nil, failures[mdns.TypeA]
	}
	for qtype, err := range failures {
		p.logger.Warn("dns query failed", "domain", subject.Value, "type", mdns.TypeToString[qtype], "error", err.Error())
	}

	fields := domain.NewFields()
	total := 0
	for _, qtype := range recordTypes {
		values := records[qtype]
		total += len(values)
		if len(values) > 0 {
			fields.SetList(strings.ToLower(mdns.TypeToString[qtype]), values)
		}
	}
	if total == 0 {
		return domain.NotFound(sourceName), nil
	}
	if spf := findSPF(records[mdns.TypeTXT]); spf != "" {
		fields.Set("spf", spf)
	}

	return domain.Found(sourceName, fields), nil
}

// findSPF retorna el primer TXT que declara una política SPF.
func findSPF(txt []string) string {
	for _, t := range txt {
		if strings.HasPrefix(strings.ToLower(t), "v=spf1") {
			return t
		}
	}
	return ""
}
