// Package crtsh implements a Certificate Transparency probe backed by crt.sh.
package crtsh

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const (
	sourceName  = "crtsh"
	defaultBase = "https://crt.sh"

	defaultMaxResults = 100
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
			Description: "Certificate Transparency log search via crt.sh",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain},
			Priority:    10,
			Weight:      10,
		},
	); err != nil {
		// Log error but don't panic - allow application to start
		logx.New().Warn("failed to register crtsh probe", "error", err.Error())
	}
}

// CRT consulta crt.sh para los certificados emitidos a un dominio y sus
// subdominios.
type CRT struct {
	*common.HTTPProbe
	maxResults int
}

// New crea el probe. Custom["max_results"] limita los nombres devueltos.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*CRT, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, defaultBase, logger)
	if err != nil {
		return nil, err
	}
	limit := registry.GetIntConfig(cfg.Custom, "max_results", defaultMaxResults)
	if limit <= 0 {
		limit = defaultMaxResults
	}
	return &CRT{HTTPProbe: base, maxResults: limit}, nil
}

// certRecord representa un registro de certificado de crt.sh.
type certRecord struct {
	ID           int64  `json:"id"`
	IssuerName   string `json:"issuer_name"`
	CommonName   string `json:"common_name"`
	NameValue    string `json:"name_value"`
	NotBefore    string `json:"not_before"`
	NotAfter     string `json:"not_after"`
	SerialNumber string `json:"serial_number"`
}

// Invoke implementa ports.Probe.
func (c *CRT) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	url := c.URL("/?q=%%25.%s&output=json", subject.Value)

	var records []certRecord
	found, err := c.FetchJSON(ctx, url, nil, &records)
	if err != nil {
		c.Logger.Warn("crtsh request failed", "domain", subject.Value, "error", err.Error())
		return nil, err
	}
	if !found || len(records) == 0 {
		return domain.NotFound(sourceName), nil
	}

	c.Logger.Debug("parsed crtsh records", "count", len(records))
	return domain.Found(sourceName, c.summarize(subject.Value, records)), nil
}

// summarize agrega los certificados en nombres únicos, emisores y fechas.
func (c *CRT) summarize(root string, records []certRecord) *domain.Fields {
	names := make(map[string]struct{})
	issuers := make(map[string]int)
	var firstSeen, lastExpiry string
	wildcards := 0

	for _, record := range records {
		// name_value puede contener múltiples dominios separados por \n
		for _, host := range strings.Split(record.NameValue, "\n") {
			host = strings.ToLower(strings.TrimSpace(host))
			if host == "" || !inScope(host, root) {
				continue
			}
			if _, seen := names[host]; !seen && strings.HasPrefix(host, "*.") {
				wildcards++
			}
			names[host] = struct{}{}
		}
		if record.IssuerName != "" {
			issuers[issuerCN(record.IssuerName)]++
		}
		// las fechas ISO se comparan como texto
		if record.NotBefore != "" && (firstSeen == "" || record.NotBefore < firstSeen) {
			firstSeen = record.NotBefore
		}
		if record.NotAfter > lastExpiry {
			lastExpiry = record.NotAfter
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	truncated := len(sorted) > c.maxResults
	if truncated {
		sorted = sorted[:c.maxResults]
	}

	fields := domain.NewFields().
		Set("certificates", strconv.Itoa(len(records))).
		Set("unique_names", strconv.Itoa(len(names))).
		Set("wildcards", strconv.Itoa(wildcards)).
		SetList("names", sorted).
		SetList("issuers", topIssuers(issuers)).
		Set("first_seen", firstSeen).
		Set("last_expiry", lastExpiry)
	if truncated {
		fields.Set("names_truncated", "true")
	}
	return fields
}

// inScope acepta el dominio raíz, sus subdominios y wildcards.
func inScope(host, root string) bool {
	host = strings.TrimPrefix(host, "*.")
	return host == root || strings.HasSuffix(host, "."+root)
}

// issuerCN extrae el CN de un DN "C=US, O=Let's Encrypt, CN=R3".
func issuerCN(dn string) string {
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "CN=") {
			return strings.TrimPrefix(part, "CN=")
		}
	}
	return strings.TrimSpace(dn)
}

// topIssuers ordena por número de certificados y luego por nombre.
func topIssuers(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for name := range counts {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
