// Package webmeta implements a probe that fetches a domain's home page and
// extracts its metadata (title, description, OpenGraph tags, generator) with
// goquery.
package webmeta

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/httpclient"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const sourceName = "webmeta"

// Auto-registro del probe al importar el package
func init() {
	if err := registry.Global().Register(
		sourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return New(cfg, logger)
		},
		ports.ProbeMetadata{
			Name:        sourceName,
			Description: "Home page title, description and OpenGraph metadata",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain},
			Priority:    5,
			Weight:      10,
			Intrusive:   true,
		},
	); err != nil {
		logx.New().Warn("failed to register webmeta probe", "error", err.Error())
	}
}

var htmlHeaders = map[string]string{
	"Accept": "text/html,application/xhtml+xml",
}

// Probe descarga https://{domain}/ y analiza el HTML.
type Probe struct {
	*common.HTTPProbe
	scheme string
}

// New crea el probe. Custom["scheme"] permite usar http; Custom["base_url"]
// fija la URL consultada sin importar el dominio.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, "", logger)
	if err != nil {
		return nil, err
	}
	return &Probe{
		HTTPProbe: base,
		scheme:    registry.GetStringConfig(cfg.Custom, "scheme", "https"),
	}, nil
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	target := p.BaseURL + "/"
	if p.BaseURL == "" {
		target = (&url.URL{Scheme: p.scheme, Host: subject.Value, Path: "/"}).String()
	}

	resp, err := p.Client.Get(ctx, target, htmlHeaders)
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		if errors.IsNotFound(err) {
			return domain.NotFound(sourceName), nil
		}
		return nil, errors.Wrapf(err, "request to %s failed", target)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	header := resp.Header
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	fields := domain.NewFields().
		Set("url", finalURL).
		Set("status_code", strconv.Itoa(resp.StatusCode)).
		Set("server", header.Get("Server")).
		Set("powered_by", header.Get("X-Powered-By")).
		Set("content_type", header.Get("Content-Type"))

	if isHTML(header.Get("Content-Type")) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidResponse, "parse html: %v", err)
		}
		extract(doc, fields)
	}

	return domain.Found(sourceName, fields), nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "html")
}

// extract vuelca los metadatos del documento en fields.
func extract(doc *goquery.Document, fields *domain.Fields) {
	fields.Set("title", collapse(doc.Find("title").First().Text())).
		Set("description", metaContent(doc, "name", "description")).
		Set("keywords", metaContent(doc, "name", "keywords")).
		Set("generator", metaContent(doc, "name", "generator")).
		Set("language", doc.Find("html").AttrOr("lang", ""))

	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		fields.Set("canonical", href)
	}

	og := domain.NewFields()
	for _, prop := range []string{"title", "description", "site_name", "type", "image", "url"} {
		og.Set(prop, metaContent(doc, "property", "og:"+prop))
	}
	fields.SetNested("og", og)

	links := 0
	external := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		links++
		href, _ := s.Attr("href")
		if u, err := url.Parse(href); err == nil && u.IsAbs() && u.Host != "" {
			external[strings.ToLower(u.Hostname())] = struct{}{}
		}
	})
	fields.Set("links", strconv.Itoa(links)).
		Set("linked_hosts", strconv.Itoa(len(external)))
}

func metaContent(doc *goquery.Document, attr, value string) string {
	sel := doc.Find("meta[" + attr + `="` + value + `"]`).First()
	return collapse(sel.AttrOr("content", ""))
}

// collapse normaliza espacios en blanco.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
