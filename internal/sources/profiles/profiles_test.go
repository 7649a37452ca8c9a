package profiles

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
	"falcon/internal/platform/registry"
	"falcon/internal/testutil"
)

func siteByName(t *testing.T, name string) Site {
	t.Helper()
	for _, s := range Sites() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("site %q not defined", name)
	return Site{}
}

func newTestProbe(t *testing.T, site string, handler http.HandlerFunc) *Probe {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ports.DefaultProbeConfig()
	cfg.Custom["base_url"] = srv.URL
	p, err := New(siteByName(t, site), cfg, nil)
	require.NoError(t, err)
	return p
}

func serve(path, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() != path {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestSites_Found(t *testing.T) {
	tests := []struct {
		site  string
		path  string
		body  string
		field string
		want  string
	}{
		{
			site: "gitlab", path: "/api/v4/users?username=alice",
			body:  `[{"id":42,"username":"alice","name":"Alice","state":"active"}]`,
			field: "id", want: "42",
		},
		{
			site: "hackernews", path: "/v0/user/alice.json",
			body:  `{"id":"alice","created":1173923446,"karma":2937,"submitted":[1,2,3]}`,
			field: "submissions", want: "3",
		},
		{
			site: "keybase", path: "/_/api/1.0/user/lookup.json?usernames=alice",
			body: `{"status":{"code":0},"them":[{"id":"abc","basics":{"username":"alice"},
				"profile":{"full_name":"Alice A"},
				"proofs_summary":{"all":[{"proof_type":"twitter","nametag":"alice_tw"}]}}]}`,
			field: "proofs.twitter", want: "alice_tw",
		},
		{
			site: "devto", path: "/api/users/by_username?url=alice",
			body:  `{"id":7,"username":"alice","name":"Alice","github_username":"alice-gh"}`,
			field: "github_username", want: "alice-gh",
		},
		{
			site: "dockerhub", path: "/v2/users/alice/",
			body:  `{"id":"d1","username":"alice","full_name":"Alice","type":"User"}`,
			field: "full_name", want: "Alice",
		},
		{
			site: "medium", path: "/@alice",
			body:  "<html></html>",
			field: "profile_url", want: "https://medium.com/@alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			p := newTestProbe(t, tt.site, serve(tt.path, tt.body))
			res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "alice", domain.SubjectKindUsername))
			require.NoError(t, err)
			require.Equal(t, domain.StatusFound, res.Status)
			assert.Equal(t, tt.site, res.SourceName)

			got := ""
			for _, kv := range res.Fields.Flatten() {
				if kv[0] == tt.field {
					got = kv[1]
				}
			}
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, res.Fields.Text("profile_url"))
		})
	}
}

func TestSites_NotFound(t *testing.T) {
	tests := []struct {
		site string
		path string
		body string
	}{
		{"gitlab", "/api/v4/users?username=ghost", `[]`},
		{"hackernews", "/v0/user/ghost.json", `null`},
		{"keybase", "/_/api/1.0/user/lookup.json?usernames=ghost", `{"them":[null]}`},
		{"medium", "/nothing-matches", ""},
	}

	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			p := newTestProbe(t, tt.site, serve(tt.path, tt.body))
			res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "ghost", domain.SubjectKindUsername))
			require.NoError(t, err)
			assert.Equal(t, domain.StatusNotFound, res.Status)
		})
	}
}

func TestSites_BadJSONIsParseError(t *testing.T) {
	p := newTestProbe(t, "devto", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})
	_, err := p.Invoke(context.Background(), testutil.MustSubject(t, "alice", domain.SubjectKindUsername))
	require.Error(t, err)
	assert.Equal(t, domain.FailureParse, errors.Classify(err))
}

func TestSites_Registered(t *testing.T) {
	for _, site := range Sites() {
		meta, ok := registry.Global().GetMetadata(site.Name)
		require.True(t, ok, site.Name)
		assert.Equal(t, []domain.SubjectKind{domain.SubjectKindUsername}, meta.Kinds)
	}
}
