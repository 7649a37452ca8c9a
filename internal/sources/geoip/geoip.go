// Package geoip implements an IP geolocation probe backed by ip-api.com.
package geoip

import (
	"context"
	"strconv"
	"strings"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const (
	sourceName = "geoip"

	// el endpoint gratuito sólo admite http
	defaultBase = "http://ip-api.com"

	queryFields = "status,message,country,countryCode,regionName,city,zip,lat,lon,timezone,isp,org,as,asname,reverse,mobile,proxy,hosting,query"
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
			Description: "IP geolocation, ISP and ASN via ip-api.com",
			Kinds:       []domain.SubjectKind{domain.SubjectKindIP},
			Priority:    10,
			Weight:      10,
		},
	); err != nil {
		logx.New().Warn("failed to register geoip probe", "error", err.Error())
	}
}

type geoResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	ASName      string  `json:"asname"`
	Reverse     string  `json:"reverse"`
	Mobile      bool    `json:"mobile"`
	Proxy       bool    `json:"proxy"`
	Hosting     bool    `json:"hosting"`
	Query       string  `json:"query"`
}

// Probe consulta /json/{ip}.
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

// Invoke implementa ports.Probe. Rangos privados o reservados son
// not_found; cualquier otro status "fail" es una respuesta inválida.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	var geo geoResponse
	found, err := p.FetchJSON(ctx, p.URL("/json/%s?fields=%s", subject.Value, queryFields), nil, &geo)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NotFound(sourceName), nil
	}

	if geo.Status != "success" {
		msg := strings.ToLower(geo.Message)
		if strings.Contains(msg, "private range") || strings.Contains(msg, "reserved range") {
			return domain.NotFound(sourceName), nil
		}
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "ip-api status %q: %s", geo.Status, geo.Message)
	}

	fields := domain.NewFields().
		Set("country", geo.Country).
		Set("country_code", geo.CountryCode).
		Set("region", geo.RegionName).
		Set("city", geo.City).
		Set("zip", geo.Zip).
		Set("latitude", strconv.FormatFloat(geo.Lat, 'f', 4, 64)).
		Set("longitude", strconv.FormatFloat(geo.Lon, 'f', 4, 64)).
		Set("timezone", geo.Timezone).
		Set("isp", geo.ISP).
		Set("organization", geo.Org).
		Set("asn", asNumber(geo.AS)).
		Set("as_name", geo.ASName).
		Set("reverse", geo.Reverse).
		Set("mobile", strconv.FormatBool(geo.Mobile)).
		Set("proxy", strconv.FormatBool(geo.Proxy)).
		Set("hosting", strconv.FormatBool(geo.Hosting))

	return domain.Found(sourceName, fields), nil
}

// asNumber extrae "AS15169" de "AS15169 Google LLC".
func asNumber(as string) string {
	if i := strings.IndexByte(as, ' '); i > 0 {
		return as[:i]
	}
	return as
}
