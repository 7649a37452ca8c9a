// Package github implements a probe for GitHub user profiles via the public
// REST API.
package github

import (
	"context"
	"net/url"
	"strconv"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
)

const (
	sourceName  = "github"
	defaultBase = "https://api.github.com"
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
			Description:  "GitHub user profile via the REST API",
			Kinds:        []domain.SubjectKind{domain.SubjectKindUsername},
			RequiresAuth: false, // un token sólo sube el rate limit
			Priority:     10,
			Weight:       20,
		},
	); err != nil {
		logx.New().Warn("failed to register github probe", "error", err.Error())
	}
}

// Probe consulta /users/{username}.
type Probe struct {
	*common.HTTPProbe
	token string
}

// New crea el probe. cfg.APIKey se envía como token Bearer si existe.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, defaultBase, logger)
	if err != nil {
		return nil, err
	}
	return &Probe{HTTPProbe: base, token: cfg.APIKey}, nil
}

// userResponse campos relevantes de la respuesta de GitHub.
type userResponse struct {
	Login           string `json:"login"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	Company         string `json:"company"`
	Blog            string `json:"blog"`
	Location        string `json:"location"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	TwitterUsername string `json:"twitter_username"`
	PublicRepos     int    `json:"public_repos"`
	PublicGists     int    `json:"public_gists"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	CreatedAt       string `json:"created_at"`
	HTMLURL         string `json:"html_url"`
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if p.token != "" {
		headers["Authorization"] = "Bearer " + p.token
	}

	var user userResponse
	found, err := p.FetchJSON(ctx, p.URL("/users/%s", url.PathEscape(subject.Value)), headers, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NotFound(sourceName), nil
	}

	fields := domain.NewFields().
		Set("login", user.Login).
		Set("name", user.Name).
		Set("type", user.Type).
		Set("company", user.Company).
		Set("blog", user.Blog).
		Set("location", user.Location).
		Set("email", user.Email).
		Set("bio", user.Bio).
		Set("twitter_username", user.TwitterUsername).
		Set("public_repos", strconv.Itoa(user.PublicRepos)).
		Set("public_gists", strconv.Itoa(user.PublicGists)).
		Set("followers", strconv.Itoa(user.Followers)).
		Set("following", strconv.Itoa(user.Following)).
		Set("created_at", user.CreatedAt).
		Set("profile_url", user.HTMLURL)

	p.Logger.Debug("github profile found", "login", user.Login)
	return domain.Found(sourceName, fields), nil
}
