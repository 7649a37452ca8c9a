// internal/sources/crtsh/crtsh_test.go
package crtsh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/testutil"
)

const certsJSON = `[
  {"id": 3, "issuer_name": "C=US, O=Let's Encrypt, CN=R3", "common_name": "example.com",
   "name_value": "example.com\nwww.example.com", "not_before": "2023-01-10T00:00:00", "not_after": "2023-04-10T00:00:00"},
  {"id": 2, "issuer_name": "C=US, O=DigiCert Inc, CN=DigiCert TLS RSA SHA256 2020 CA1", "common_name": "*.example.com",
   "name_value": "*.example.com\nEXAMPLE.COM\nunrelated.org", "not_before": "2022-03-14T00:00:00", "not_after": "2024-03-14T23:59:59"},
  {"id": 1, "issuer_name": "C=US, O=Let's Encrypt, CN=R3", "common_name": "api.example.com",
   "name_value": "api.example.com", "not_before": "2023-06-01T00:00:00", "not_after": "2023-08-30T00:00:00"}
]`

func newTestProbe(t *testing.T, handler http.HandlerFunc, custom map[string]interface{}) *CRT {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ports.DefaultProbeConfig()
	for k, v := range custom {
		cfg.Custom[k] = v
	}
	cfg.Custom["base_url"] = srv.URL
	p, err := New(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestCRT_Found(t *testing.T) {
	var gotQuery string
	p := newTestProbe(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(certsJSON))
	}, nil)

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "example.com", domain.SubjectKindDomain))
	require.NoError(t, err)
	require.Equal(t, domain.StatusFound, res.Status)

	f := res.Fields
	assert.Equal(t, "%.example.com", gotQuery)
	assert.Equal(t, "3", f.Text("certificates"))
	assert.Equal(t, "4", f.Text("unique_names"))
	assert.Equal(t, "1", f.Text("wildcards"))
	assert.Equal(t, "*.example.com, api.example.com, example.com, www.example.com", f.Text("names"))
	assert.Equal(t, "R3, DigiCert TLS RSA SHA256 2020 CA1", f.Text("issuers"))
	assert.Equal(t, "2022-03-14T00:00:00", f.Text("first_seen"))
	assert.Equal(t, "2024-03-14T23:59:59", f.Text("last_expiry"))
	_, truncated := f.Get("names_truncated")
	assert.False(t, truncated)
}

func TestCRT_MaxResults(t *testing.T) {
	p := newTestProbe(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(certsJSON))
	}, map[string]interface{}{"max_results": 2})

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "example.com", domain.SubjectKindDomain))
	require.NoError(t, err)
	assert.Equal(t, "*.example.com, api.example.com", res.Fields.Text("names"))
	assert.Equal(t, "true", res.Fields.Text("names_truncated"))
	assert.Equal(t, "4", res.Fields.Text("unique_names"))
}

func TestCRT_NotFound(t *testing.T) {
	p := newTestProbe(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, nil)

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "nothing-here.com", domain.SubjectKindDomain))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotFound, res.Status)
}

func TestInScope(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"www.example.com", true},
		{"*.example.com", true},
		{"badexample.com", false},
		{"example.com.evil.org", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inScope(tt.host, "example.com"), tt.host)
	}
}

func TestIssuerCN(t *testing.T) {
	assert.Equal(t, "R3", issuerCN("C=US, O=Let's Encrypt, CN=R3"))
	assert.Equal(t, "Some CA", issuerCN("Some CA"))
}
