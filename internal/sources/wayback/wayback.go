// Package wayback implements a probe over the Internet Archive CDX API. It
// lists archived URLs for a domain and its subdomains and classifies them
// (sensitive files, backups, exposed repositories, API paths, technologies).
package wayback

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const (
	sourceName  = "wayback"
	defaultBase = "https://web.archive.org"

	defaultLimit = 1000
	maxListed    = 10

	cdxTimestamp = "20060102150405"
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
			Description: "Archived URLs from the Wayback Machine, classified by exposure",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain},
			Priority:    3,
			Weight:      20,
		},
	); err != nil {
		logx.New().Warn("failed to register wayback probe", "error", err.Error())
	}
}

// Probe consulta /cdx/search/cdx.
type Probe struct {
	*common.HTTPProbe
	limit int
}

// New crea el probe. Custom["limit"] acota las filas pedidas al CDX.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, defaultBase, logger)
	if err != nil {
		return nil, err
	}
	limit := registry.GetIntConfig(cfg.Custom, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Probe{HTTPProbe: base, limit: limit}, nil
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	q := url.Values{}
	q.Set("url", "*."+subject.Value+"/*")
	q.Set("output", "json")
	q.Set("fl", "original,timestamp")
	q.Set("collapse", "urlkey")
	q.Set("limit", strconv.Itoa(p.limit))

	var rows [][]string
	found, err := p.FetchJSON(ctx, p.URL("/cdx/search/cdx?%s", q.Encode()), nil, &rows)
	if err != nil {
		return nil, err
	}
	// la primera fila es la cabecera de columnas
	if !found || len(rows) < 2 {
		return domain.NotFound(sourceName), nil
	}
	if len(rows[0]) < 2 {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "cdx header has %d columns", len(rows[0]))
	}

	analysis := NewAnalysis()
	var first, last string
	for _, row := range rows[1:] {
		if len(row) < 2 || !analysis.Add(row[0], subject.Value) {
			continue
		}
		if first == "" || row[1] < first {
			first = row[1]
		}
		if row[1] > last {
			last = row[1]
		}
	}
	if analysis.Total == 0 {
		return domain.NotFound(sourceName), nil
	}

	p.Logger.Debug("wayback urls analysed", "domain", subject.Value, "urls", analysis.Total)
	return domain.Found(sourceName, p.fields(analysis, first, last, len(rows)-1)), nil
}

func (p *Probe) fields(a *Analysis, first, last string, rows int) *domain.Fields {
	findings := domain.NewFields()
	for _, f := range []Finding{FindingSensitive, FindingBackup, FindingRepository, FindingAPI, FindingJavaScript} {
		findings.Set(string(f), strconv.Itoa(a.Findings[f]))
	}

	techs := make([]string, 0, len(a.Technologies))
	for t := range a.Technologies {
		techs = append(techs, t)
	}
	sort.Strings(techs)

	notableURLs := a.Notable
	if len(notableURLs) > maxListed {
		notableURLs = notableURLs[:maxListed]
	}

	fields := domain.NewFields().
		Set("urls", strconv.Itoa(a.Total)).
		Set("hosts", strconv.Itoa(len(a.Hosts))).
		SetList("top_hosts", topKeys(a.Hosts, maxListed)).
		Set("first_capture", cdxTime(first)).
		Set("last_capture", cdxTime(last)).
		SetNested("findings", findings).
		SetList("technologies", techs).
		SetList("parameters", topKeys(a.Parameters, maxListed)).
		SetList("notable", notableURLs)
	if rows >= p.limit {
		fields.Set("truncated", "true")
	}
	return fields
}

// cdxTime convierte "20060102150405" a RFC3339; si no parsea lo deja igual.
func cdxTime(ts string) string {
	t, err := time.Parse(cdxTimestamp, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(time.RFC3339)
}
