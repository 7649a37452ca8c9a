// Package reddit implements a probe for Reddit accounts using the public
// about.json endpoint.
package reddit

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const (
	sourceName  = "reddit"
	defaultBase = "https://www.reddit.com"
)

// Auto-registro del probe al importar el package
func init() {
	if err := registry.Global().Register(
		sourceName,
		func(cfg ports.ProbeConfig, logger logx.Logger) (ports.Probe, error) {
			return New(cfg, logger)
		},
		ports.ProbeMetadata{
			Name:         sourceName,
			Description:  "Reddit account karma and age",
			Kinds:        []domain.SubjectKind{domain.SubjectKindUsername},
			RequiresAuth: false,
			Priority:     8,
			Weight:       10,
		},
	); err != nil {
		logx.New().Warn("failed to register reddit probe", "error", err.Error())
	}
}

// Probe consulta /user/{username}/about.json.
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

type aboutResponse struct {
	Kind string    `json:"kind"`
	Data aboutData `json:"data"`
}

type aboutData struct {
	Name         string  `json:"name"`
	ID           string  `json:"id"`
	CreatedUTC   float64 `json:"created_utc"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	TotalKarma   int     `json:"total_karma"`
	Verified     bool    `json:"verified"`
	HasVerified  bool    `json:"has_verified_email"`
	IsSuspended  bool    `json:"is_suspended"`
	IsEmployee   bool    `json:"is_employee"`
	IsMod        bool    `json:"is_mod"`
	IconImg      string  `json:"icon_img"`
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	var about aboutResponse
	found, err := p.FetchJSON(ctx, p.URL("/user/%s/about.json", url.PathEscape(subject.Value)), nil, &about)
	if err != nil {
		return nil, err
	}
	// Reddit responde 200 con kind vacío para cuentas borradas
	if !found || about.Data.Name == "" {
		return domain.NotFound(sourceName), nil
	}

	d := about.Data
	fields := domain.NewFields().
		Set("name", d.Name).
		Set("id", d.ID).
		Set("link_karma", strconv.Itoa(d.LinkKarma)).
		Set("comment_karma", strconv.Itoa(d.CommentKarma)).
		Set("total_karma", strconv.Itoa(d.TotalKarma)).
		Set("verified", strconv.FormatBool(d.Verified)).
		Set("verified_email", strconv.FormatBool(d.HasVerified)).
		Set("suspended", strconv.FormatBool(d.IsSuspended)).
		Set("employee", strconv.FormatBool(d.IsEmployee)).
		Set("moderator", strconv.FormatBool(d.IsMod)).
		Set("icon_url", d.IconImg).
		Set("profile_url", "https://www.reddit.com/user/"+d.Name)
	if d.CreatedUTC > 0 {
		fields.Set("created_at", time.Unix(int64(d.CreatedUTC), 0).UTC().Format(time.RFC3339))
	}

	return domain.Found(sourceName, fields), nil
}
