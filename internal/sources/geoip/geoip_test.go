package geoip

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
	"falcon/internal/testutil"
)

func newTestProbe(t *testing.T, body string) *Probe {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fields") == "" {
			http.Error(w, "missing fields", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := ports.DefaultProbeConfig()
	cfg.Custom["base_url"] = srv.URL
	p, err := New(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestProbe_Found(t *testing.T) {
	p := newTestProbe(t, `{"status":"success","country":"United States","countryCode":"US",
		"regionName":"Virginia","city":"Ashburn","lat":39.03,"lon":-77.5,"timezone":"America/New_York",
		"isp":"Google LLC","org":"Google Public DNS","as":"AS15169 Google LLC","asname":"GOOGLE",
		"reverse":"dns.google","hosting":true,"query":"8.8.8.8"}`)

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "8.8.8.8", domain.SubjectKindIP))
	require.NoError(t, err)
	require.Equal(t, domain.StatusFound, res.Status)
	assert.Equal(t, "US", res.Fields.Text("country_code"))
	assert.Equal(t, "AS15169", res.Fields.Text("asn"))
	assert.Equal(t, "39.0300", res.Fields.Text("latitude"))
	assert.Equal(t, "true", res.Fields.Text("hosting"))
	assert.Equal(t, "dns.google", res.Fields.Text("reverse"))
}

func TestProbe_Fail(t *testing.T) {
	t.Run("private range", func(t *testing.T) {
		p := newTestProbe(t, `{"status":"fail","message":"private range","query":"10.0.0.1"}`)
		res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "10.0.0.1", domain.SubjectKindIP))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotFound, res.Status)
	})

	t.Run("other failure", func(t *testing.T) {
		p := newTestProbe(t, `{"status":"fail","message":"invalid query"}`)
		_, err := p.Invoke(context.Background(), testutil.MustSubject(t, "8.8.4.4", domain.SubjectKindIP))
		require.Error(t, err)
		assert.Equal(t, domain.FailureParse, errors.Classify(err))
	})
}

func TestASNumber(t *testing.T) {
	assert.Equal(t, "AS15169", asNumber("AS15169 Google LLC"))
	assert.Equal(t, "AS1", asNumber("AS1"))
	assert.Equal(t, "", asNumber(""))
}
