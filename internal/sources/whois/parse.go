package whois

import (
	"regexp"
	"strconv"
	"strings"

	whoisparser "github.com/likexian/whois-parser"

	"falcon/internal/core/domain"
	"falcon/internal/platform/errors"
	"falcon/internal/platform/validator"
)

var errNoRecord = errors.New("no whois record")

// parseDomain normaliza una respuesta de dominio.
func parseDomain(raw string) (*domain.Fields, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, mapParseError(err)
	}

	fields := domain.NewFields()
	if d := info.Domain; d != nil {
		fields.Set("domain", d.Domain).
			Set("whois_server", d.WhoisServer).
			Set("created", d.CreatedDate).
			Set("updated", d.UpdatedDate).
			Set("expires", d.ExpirationDate).
			SetList("status", d.Status).
			SetList("name_servers", d.NameServers).
			Set("dnssec", strconv.FormatBool(d.DNSSec))
	}
	if r := info.Registrar; r != nil {
		fields.Set("registrar", r.Name).
			Set("registrar_url", r.ReferralURL).
			Set("registrar_email", email(r.Email))
	}
	if c := contact(info.Registrant); c != nil {
		fields.SetNested("registrant", c)
	}
	if c := contact(info.Administrative); c != nil {
		fields.SetNested("admin", c)
	}
	if c := contact(info.Technical); c != nil {
		fields.SetNested("tech", c)
	}
	return fields, nil
}

func contact(c *whoisparser.Contact) *domain.Fields {
	if c == nil {
		return nil
	}
	return domain.NewFields().
		Set("name", c.Name).
		Set("organization", c.Organization).
		Set("country", c.Country).
		Set("email", email(c.Email)).
		Set("phone", c.Phone)
}

// email descarta valores redactados o que no son una dirección.
func email(s string) string {
	s = strings.TrimSpace(s)
	if !validator.IsEmail(s) {
		return ""
	}
	return s
}

// mapParseError traduce los errores del parser a las categorías del probe.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return errNoRecord
	case errors.Is(err, whoisparser.ErrDomainLimitExceed):
		return errors.Wrap(errors.ErrRateLimit, err.Error())
	default:
		return errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
}

type ipField struct {
	key      string
	patterns []string
}

// ipFields claves extraídas de respuestas de ARIN, RIPE, APNIC, LACNIC y
// AFRINIC; el primer patrón que coincide gana.
var ipFields = []ipField{
	{"range", []string{`NetRange:[ \t]*(.+)`, `inetnum:[ \t]*(.+)`, `inet6num:[ \t]*(.+)`}},
	{"cidr", []string{`CIDR:[ \t]*(.+)`, `route6?:[ \t]*(.+)`}},
	{"name", []string{`NetName:[ \t]*(.+)`, `netname:[ \t]*(.+)`}},
	{"organization", []string{`OrgName:[ \t]*(.+)`, `org-name:[ \t]*(.+)`, `organization:[ \t]*(.+)`, `descr:[ \t]*(.+)`}},
	{"country", []string{`Country:[ \t]*(.+)`}},
	{"origin", []string{`OriginAS:[ \t]*(.+)`, `origin:[ \t]*(.+)`}},
	{"abuse_email", []string{`OrgAbuseEmail:[ \t]*(.+)`, `abuse-mailbox:[ \t]*(.+)`}},
	{"created", []string{`RegDate:[ \t]*(.+)`, `created:[ \t]*(.+)`}},
	{"updated", []string{`Updated:[ \t]*(.+)`, `last-modified:[ \t]*(.+)`}},
}

var compiledIPFields = compileIPFields()

type compiledField struct {
	key string
	res []*regexp.Regexp
}

func compileIPFields() []compiledField {
	out := make([]compiledField, 0, len(ipFields))
	for _, f := range ipFields {
		cf := compiledField{key: f.key}
		for _, p := range f.patterns {
			cf.res = append(cf.res, regexp.MustCompile("(?im)^"+p))
		}
		out = append(out, cf)
	}
	return out
}

// parseIP extrae los campos de una respuesta de RIR.
func parseIP(raw string) *domain.Fields {
	fields := domain.NewFields()
	for _, f := range compiledIPFields {
		fields.Set(f.key, firstMatch(raw, f.res))
	}
	fields.Set("abuse_email", email(fields.Text("abuse_email")))
	if fields.StripEmpty().Len() > 0 {
		fields.Set("registry", detectRIR(raw))
	}
	return fields.StripEmpty()
}

func firstMatch(text string, res []*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func detectRIR(text string) string {
	l := strings.ToLower(text)
	switch {
	case strings.Contains(l, "whois.arin.net"), strings.Contains(l, "american registry for internet numbers"):
		return "ARIN"
	case strings.Contains(l, "ripe"):
		return "RIPE"
	case strings.Contains(l, "apnic"):
		return "APNIC"
	case strings.Contains(l, "lacnic"):
		return "LACNIC"
	case strings.Contains(l, "afrinic"):
		return "AFRINIC"
	default:
		return ""
	}
}
