package dns

import (
	"context"

	mdns "github.com/miekg/dns"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
)

const reverseSourceName = "reversedns"

// ReverseProbe resuelve el PTR de una IP.
type ReverseProbe struct {
	resolver *Resolver
	logger   logx.Logger
}

// NewReverse crea el probe reversedns.
func NewReverse(cfg ports.ProbeConfig, logger logx.Logger) *ReverseProbe {
	if logger == nil {
		logger = logx.NewNop()
	}
	logger = logger.With("probe", reverseSourceName)
	return &ReverseProbe{resolver: resolverFromConfig(cfg, logger), logger: logger}
}

// Invoke implementa ports.Probe.
func (p *ReverseProbe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	arpa, err := mdns.ReverseAddr(subject.Value)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "reverse name for %s", subject.Value)
	}

	resp, err := p.resolver.Query(ctx, arpa, mdns.TypePTR)
	if err != nil {
		return nil, err
	}
	names := answers(resp, mdns.TypePTR)
	if resp.Rcode == mdns.RcodeNameError || len(names) == 0 {
		return domain.NotFound(reverseSourceName), nil
	}

	fields := domain.NewFields().
		Set("hostname", names[0]).
		SetList("ptr", names).
		Set("arpa", trimDot(arpa))
	return domain.Found(reverseSourceName, fields), nil
}
