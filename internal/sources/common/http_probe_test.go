package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/octocat":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"login":"octocat"}`))
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		case "/private":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func configWithBase(base string) ports.ProbeConfig {
	cfg := ports.DefaultProbeConfig()
	cfg.Custom["base_url"] = base + "/"
	return cfg
}

func TestNewHTTPProbe_BaseURLOverride(t *testing.T) {
	p, err := NewHTTPProbe("github", configWithBase("http://mirror.local"), "https://api.github.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local", p.BaseURL)
	assert.Equal(t, "http://mirror.local/users/a%20b", p.URL("/users/%s", "a%20b"))

	p, err = NewHTTPProbe("github", ports.DefaultProbeConfig(), "https://api.github.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com", p.BaseURL)
}

func TestBaseURL_MustBeAbsolute(t *testing.T) {
	for _, base := range []string{"mirror.local", "/api", "not a url"} {
		_, err := NewHTTPProbe("github", configWithBase(base), "https://api.github.com", nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput, base)
	}

	p, err := NewHTTPProbe("webmeta", ports.DefaultProbeConfig(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, p.BaseURL)
}

func TestNewHTTPProbe_InvalidProxy(t *testing.T) {
	cfg := ports.DefaultProbeConfig()
	cfg.ProxyURL = "::not a url"
	_, err := NewHTTPProbe("github", cfg, "https://api.github.com", nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestHTTPProbe_FetchJSON(t *testing.T) {
	srv := newServer(t)
	p, err := NewHTTPProbe("github", configWithBase(srv.URL), "", nil)
	require.NoError(t, err)
	ctx := context.Background()

	var user struct {
		Login string `json:"login"`
	}
	found, err := p.FetchJSON(ctx, p.URL("/users/octocat"), nil, &user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "octocat", user.Login)

	found, err = p.FetchJSON(ctx, p.URL("/users/ghost"), nil, &user)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = p.FetchJSON(ctx, p.URL("/broken"), nil, &user)
	require.Error(t, err)
	assert.Equal(t, domain.FailureNetwork, errors.Classify(err))

	found, err = p.FetchJSON(ctx, p.URL("/private"), nil, &user)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
	assert.False(t, found)
}

func TestHTTPProbe_Fetch(t *testing.T) {
	srv := newServer(t)
	p, err := NewHTTPProbe("medium", configWithBase(srv.URL), "", nil)
	require.NoError(t, err)

	body, found, err := p.Fetch(context.Background(), p.URL("/users/octocat"), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, string(body), "octocat")

	_, found, err = p.Fetch(context.Background(), p.URL("/nobody"), nil)
	require.NoError(t, err)
	assert.False(t, found)
}
