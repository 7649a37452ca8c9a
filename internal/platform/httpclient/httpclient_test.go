package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/logx"
)

func newClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg, logx.NewNop())
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("applies defaults for zero values", func(t *testing.T) {
		c := newClient(t, Config{})
		assert.Equal(t, 15*time.Second, c.config.Timeout)
		assert.Equal(t, "falcon/1.0 (+osint)", c.config.UserAgent)
		assert.Nil(t, c.rateLimiter)
	})

	t.Run("creates rate limiter when configured", func(t *testing.T) {
		c := newClient(t, Config{RateLimit: 10, RateLimitBurst: 5})
		require.NotNil(t, c.rateLimiter)
		assert.Equal(t, 5, c.rateLimiter.Burst())
	})

	t.Run("rejects invalid proxy", func(t *testing.T) {
		_, err := New(Config{ProxyURL: "::not a url"}, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("accepts socks proxy", func(t *testing.T) {
		c := newClient(t, Config{ProxyURL: "socks5://127.0.0.1:9050"})
		assert.Contains(t, c.String(), "proxy=true")
	})
}

func TestFromProbeConfig(t *testing.T) {
	pc := ports.DefaultProbeConfig()
	pc.RateLimit = 2
	pc.Timeout = 3 * time.Second
	pc.ProxyURL = "http://proxy:8080"

	cfg := FromProbeConfig(pc)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "http://proxy:8080", cfg.ProxyURL)
	assert.Equal(t, pc.UserAgent, cfg.UserAgent)
}

func TestClient_Request(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "falcon-test" || r.Header.Get("Accept") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","public_repos":8}`))
	}))
	defer server.Close()

	c := newClient(t, Config{UserAgent: "falcon-test"})

	var out struct {
		Login string `json:"login"`
		Repos int    `json:"public_repos"`
	}
	require.NoError(t, c.FetchJSON(context.Background(), server.URL, nil, &out))
	assert.Equal(t, "octocat", out.Login)
	assert.Equal(t, 8, out.Repos)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   domain.FailureKind
	}{
		{http.StatusTooManyRequests, domain.FailureRateLimited},
		{http.StatusBadGateway, domain.FailureNetwork},
		{http.StatusServiceUnavailable, domain.FailureNetwork},
		{http.StatusTeapot, domain.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newClient(t, Config{}).Fetch(context.Background(), server.URL, nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.Classify(err))
			assert.Equal(t, int32(1), calls.Load(), "client must not retry")
		})
	}

	t.Run("404 is ErrNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := newClient(t, Config{}).Fetch(context.Background(), server.URL, nil)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"login":`))
	}))
	defer server.Close()

	var out map[string]interface{}
	err := newClient(t, Config{}).FetchJSON(context.Background(), server.URL, nil, &out)
	require.Error(t, err)
	assert.Equal(t, domain.FailureParse, errors.Classify(err))
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		_, err := newClient(t, Config{}).Status(context.Background(), addr, nil)
		require.Error(t, err)
		assert.Equal(t, domain.FailureNetwork, errors.Classify(err))
	})

	t.Run("context deadline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := newClient(t, Config{}).Status(ctx, server.URL, nil)
		require.Error(t, err)
		assert.Equal(t, domain.FailureTimeout, errors.Classify(err))
	})
}

func TestClient_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/octocat" {
			_, _ = w.Write([]byte("<html>profile</html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := newClient(t, Config{})

	code, err := c.Status(context.Background(), server.URL+"/octocat", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	code, err = c.Status(context.Background(), server.URL+"/nobody", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	c := newClient(t, Config{RateLimit: 1, RateLimitBurst: 1})

	_, err := c.Status(context.Background(), server.URL, nil)
	require.NoError(t, err)

	// the bucket is empty and the next token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Status(ctx, server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, domain.FailureTimeout, errors.Classify(err))

	c.SetRateLimit(0, 0)
	assert.Nil(t, c.rateLimiter)
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus(&http.Response{StatusCode: http.StatusNoContent}))
	assert.ErrorIs(t, CheckStatus(&http.Response{StatusCode: http.StatusForbidden}), errors.ErrUnauthorized)
	assert.ErrorIs(t, CheckStatus(&http.Response{StatusCode: http.StatusGatewayTimeout}), errors.ErrServiceUnavailable)
	assert.Error(t, CheckStatus(nil))
}
