// Package internetdb implements a probe for Shodan's free InternetDB API,
// which reports open ports, hostnames, CPEs, tags and known CVEs for an IP.
package internetdb

import (
	"context"
	"sort"
	"strconv"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/platform/validator"
	"falcon/internal/sources/common"
)

const (
	sourceName  = "internetdb"
	defaultBase = "https://internetdb.shodan.io"
)

// Auto-registro del probe al importar el package
func init() {
	if err := registry.Global().Register(
		sourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return New(cfg, logger)
		},
		ports.ProbeMetadata{
			Name:        sourceName,
			Description: "Open ports, hostnames and known CVEs from Shodan InternetDB",
			Kinds:       []domain.SubjectKind{domain.SubjectKindIP},
			Priority:    12,
			Weight:      15,
		},
	); err != nil {
		logx.New().Warn("failed to register internetdb probe", "error", err.Error())
	}
}

// hostResponse respuesta de GET /{ip}
type hostResponse struct {
	IP        string   `json:"ip"`
	Ports     []int    `json:"ports"`
	Hostnames []string `json:"hostnames"`
	CPEs      []string `json:"cpes"`
	Tags      []string `json:"tags"`
	Vulns     []string `json:"vulns"`
}

// Probe consulta InternetDB.
type Probe struct {
	*common.HTTPProbe
}

// New crea el probe.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, defaultBase, logger)
	if err != nil {
		return nil, err
	}
	return &Probe{HTTPProbe: base}, nil
}

// Invoke implementa ports.Probe. InternetDB responde 404 para IPs que no
// ha escaneado y solo indexa IPv4.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	if !validator.IsIPv4(subject.Value) {
		p.Logger.Debug("skipping non-IPv4 subject", "subject", subject.Value)
		return domain.NotFound(sourceName), nil
	}

	var host hostResponse
	found, err := p.FetchJSON(ctx, p.URL("/%s", subject.Value), nil, &host)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NotFound(sourceName), nil
	}

	sort.Ints(host.Ports)
	portList := make([]string, len(host.Ports))
	for i, port := range host.Ports {
		portList[i] = strconv.Itoa(port)
	}
	sort.Strings(host.Vulns)

	fields := domain.NewFields().
		SetList("ports", portList).
		SetList("hostnames", host.Hostnames).
		SetList("cpes", host.CPEs).
		SetList("tags", host.Tags).
		SetList("vulns", host.Vulns).
		Set("vuln_count", strconv.Itoa(len(host.Vulns)))

	return domain.Found(sourceName, fields), nil
}
