package rdap

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

const domainResponse = `{
  "objectClassName": "domain",
  "handle": "2336799_DOMAIN_COM-VRSN",
  "ldhName": "EXAMPLE.COM",
  "status": ["client delete prohibited", "client transfer prohibited"],
  "entities": [
    {
      "objectClassName": "entity",
      "roles": ["registrar"],
      "publicIds": [{"type": "IANA Registrar ID", "identifier": "376"}],
      "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "RESERVED-Internet Assigned Numbers Authority"]]],
      "entities": [
        {
          "roles": ["abuse"],
          "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["email", {}, "text", "abuse@iana.org"]]]
        }
      ]
    },
    {
      "roles": ["registrant"],
      "vcardArray": ["vcard", [
        ["version", {}, "text", "4.0"],
        ["fn", {}, "text", "REDACTED FOR PRIVACY"],
        ["org", {}, "text", "Internet Assigned Numbers Authority"],
        ["adr", {}, "text", ["", "", "", "Los Angeles", "CA", "", "US"]]
      ]]
    }
  ],
  "events": [
    {"eventAction": "registration", "eventDate": "1995-08-14T04:00:00Z"},
    {"eventAction": "expiration", "eventDate": "2025-08-13T04:00:00Z"},
    {"eventAction": "last changed", "eventDate": "2024-08-14T07:01:34Z"}
  ],
  "secureDNS": {"delegationSigned": true},
  "nameservers": [{"ldhName": "A.IANA-SERVERS.NET"}, {"ldhName": "B.IANA-SERVERS.NET"}]
}`

const networkResponse = `{
  "objectClassName": "ip network",
  "handle": "NET-8-8-8-0-2",
  "startAddress": "8.8.8.0",
  "endAddress": "8.8.8.255",
  "ipVersion": "v4",
  "name": "GOGL",
  "type": "DIRECT ALLOCATION",
  "parentHandle": "NET-8-0-0-0-0",
  "port43": "whois.arin.net",
  "cidr0_cidrs": [{"v4prefix": "8.8.8.0", "length": 24}],
  "events": [{"eventAction": "registration", "eventDate": "2023-12-28T17:24:33-05:00"}],
  "entities": [
    {
      "roles": ["registrant"],
      "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "Google LLC"]]],
      "entities": [
        {"roles": ["abuse"], "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["email", {}, "text", "network-abuse@google.com"]]]}
      ]
    }
  ]
}`

func newTestProbe(t *testing.T, handler http.HandlerFunc) *Probe {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ports.DefaultProbeConfig()
	cfg.Custom["base_url"] = srv.URL
	p, err := New(cfg, nil)
	require.NoError(t, err)
	return p
}

func route(path, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(body))
	}
}

func TestProbe_Domain(t *testing.T) {
	p := newTestProbe(t, route("/domain/example.com", domainResponse))

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "api.staging.example.com", domain.SubjectKindDomain))
	require.NoError(t, err)
	require.Equal(t, domain.StatusFound, res.Status)

	f := res.Fields
	assert.Equal(t, "example.com", f.Text("domain"))
	assert.Equal(t, "RESERVED-Internet Assigned Numbers Authority", f.Text("registrar"))
	assert.Equal(t, "376", f.Text("registrar_iana"))
	assert.Equal(t, "abuse@iana.org", f.Text("abuse_email"))
	assert.Equal(t, "1995-08-14T04:00:00Z", f.Text("created"))
	assert.Equal(t, "2024-08-14T07:01:34Z", f.Text("updated"))
	assert.Equal(t, "2025-08-13T04:00:00Z", f.Text("expires"))
	assert.Equal(t, "a.iana-servers.net, b.iana-servers.net", f.Text("name_servers"))
	assert.Equal(t, "true", f.Text("dnssec"))

	registrant, ok := f.Get("registrant")
	require.True(t, ok)
	require.True(t, registrant.IsNested())
	assert.Equal(t, "Internet Assigned Numbers Authority", registrant.Fields.Text("organization"))
	assert.Equal(t, "US", registrant.Fields.Text("country"))
	assert.Equal(t, "true", registrant.Fields.Text("redacted"))
}

func TestProbe_Network(t *testing.T) {
	p := newTestProbe(t, route("/ip/8.8.8.8", networkResponse))

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "8.8.8.8", domain.SubjectKindIP))
	require.NoError(t, err)
	require.Equal(t, domain.StatusFound, res.Status)

	f := res.Fields
	assert.Equal(t, "8.8.8.0 - 8.8.8.255", f.Text("range"))
	assert.Equal(t, "8.8.8.0/24", f.Text("cidr"))
	assert.Equal(t, "GOGL", f.Text("name"))
	assert.Equal(t, "Google LLC", f.Text("organization"))
	assert.Equal(t, "network-abuse@google.com", f.Text("abuse_email"))
	assert.Equal(t, "ARIN", f.Text("registry"))
}

func TestProbe_NotFound(t *testing.T) {
	p := newTestProbe(t, http.NotFound)

	res, err := p.Invoke(context.Background(), testutil.MustSubject(t, "unregistered-zzz.com", domain.SubjectKindDomain))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotFound, res.Status)
}

func TestVCardField(t *testing.T) {
	vcard := []interface{}{"vcard", []interface{}{
		[]interface{}{"version", map[string]interface{}{}, "text", "4.0"},
		[]interface{}{"FN", map[string]interface{}{}, "text", "Jane Roe"},
		[]interface{}{"short"},
	}}

	assert.Equal(t, "Jane Roe", vcardField(vcard, "fn"))
	assert.Equal(t, "", vcardField(vcard, "email"))
	assert.Equal(t, "", vcardField(nil, "fn"))
	assert.True(t, isRedacted(vcard), "no email counts as redacted")
}

func TestVCardEmail(t *testing.T) {
	vcard := func(email string) []interface{} {
		return []interface{}{"vcard", []interface{}{
			[]interface{}{"email", map[string]interface{}{}, "text", email},
		}}
	}

	assert.Equal(t, "abuse@example.net", vcardEmail(vcard("abuse@example.net")))
	assert.Equal(t, "abuse@example.net", vcardEmail(vcard("mailto:abuse@example.net")))
	assert.Equal(t, "", vcardEmail(vcard("https://registrar.example/contact-form")))
	assert.Equal(t, "", vcardEmail(vcard("REDACTED FOR PRIVACY")))
}

func TestRegistryFromPort43(t *testing.T) {
	assert.Equal(t, "RIPE", registryFromPort43("whois.ripe.net"))
	assert.Equal(t, "", registryFromPort43(""))
}
