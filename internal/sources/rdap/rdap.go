// Package rdap implements a RDAP (Registration Data Access Protocol) probe.
// It retrieves registration data for domains (registrar, dates, nameservers,
// contacts) and for IP networks (range, holder, abuse contact) through the
// rdap.org bootstrap redirector.
package rdap

import (
	"context"
	"strconv"
	"strings"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/registry"
	"falcon/internal/sources/common"
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
			Description: "RDAP registration data for domains and IP networks",
			Kinds:       []domain.SubjectKind{domain.SubjectKindDomain, domain.SubjectKindIP},
			Priority:    18,
			Weight:      15,
		},
	); err != nil {
		// Log error but don't panic - allow application to start
		logx.New().Warn("failed to register rdap probe", "error", err.Error())
	}
}

const (
	// RDAP bootstrap service for automatic server discovery
	defaultBase = "https://rdap.org"

	sourceName = "rdap"
)

var rdapHeaders = map[string]string{
	"Accept": "application/rdap+json, application/json",
}

// rdapResponse campos comunes a objetos domain e ip network
type rdapResponse struct {
	ObjectClassName string   `json:"objectClassName"`
	Handle          string   `json:"handle"`
	LDHName         string   `json:"ldhName"`
	Status          []string `json:"status"`
	Port43          string   `json:"port43"`

	Entities    []rdapEntity     `json:"entities"`
	Nameservers []rdapNameserver `json:"nameservers"`
	Events      []rdapEvent      `json:"events"`

	SecureDNS struct {
		DelegationSigned bool `json:"delegationSigned"`
	} `json:"secureDNS"`

	// ip network
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
	IPVersion    string `json:"ipVersion"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Country      string `json:"country"`
	ParentHandle string `json:"parentHandle"`
	CIDRs        []struct {
		V4Prefix string `json:"v4prefix"`
		V6Prefix string `json:"v6prefix"`
		Length   int    `json:"length"`
	} `json:"cidr0_cidrs"`
}

// rdapEntity representa una entidad (registrar, contacto)
type rdapEntity struct {
	Handle     string        `json:"handle"`
	Roles      []string      `json:"roles"`
	VCardArray []interface{} `json:"vcardArray"`
	PublicIDs  []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"publicIds"`
	Entities []rdapEntity `json:"entities"`
}

type rdapNameserver struct {
	LDHName string `json:"ldhName"`
}

// rdapEvent representa un evento (registration, last changed, expiration)
type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

// Probe consulta RDAP.
type Probe struct {
	*common.HTTPProbe
}

// New crea el probe. Custom["base_url"] permite apuntar a un servidor RDAP
// concreto en lugar del bootstrap.
func New(cfg ports.ProbeConfig, logger logx.Logger) (*Probe, error) {
	base, err := common.NewHTTPProbe(sourceName, cfg, defaultBase, logger)
	if err != nil {
		return nil, err
	}
	return &Probe{HTTPProbe: base}, nil
}

// Invoke implementa ports.Probe.
func (p *Probe) Invoke(ctx context.Context, subject domain.Subject) (*domain.ProbeResult, error) {
	var url string
	if subject.Kind == domain.SubjectKindIP {
		url = p.URL("/ip/%s", subject.Value)
	} else {
		root := subject.RegistrableDomain()
		if root == "" {
			root = subject.Value
		}
		url = p.URL("/domain/%s", root)
	}

	p.Logger.Debug("querying rdap", "url", url)

	var resp rdapResponse
	found, err := p.FetchJSON(ctx, url, rdapHeaders, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NotFound(sourceName), nil
	}

	var fields *domain.Fields
	if subject.Kind == domain.SubjectKindIP {
		fields = networkFields(&resp)
	} else {
		fields = domainFields(&resp)
	}
	return domain.Found(sourceName, fields), nil
}

// domainFields normaliza un objeto domain.
func domainFields(resp *rdapResponse) *domain.Fields {
	fields := domain.NewFields().
		Set("domain", strings.ToLower(resp.LDHName)).
		Set("handle", resp.Handle).
		SetList("status", resp.Status)

	if reg, ok := findRole(resp.Entities, "registrar"); ok {
		fields.Set("registrar", vcardField(reg.VCardArray, "fn"))
		for _, id := range reg.PublicIDs {
			if id.Type == "IANA Registrar ID" {
				fields.Set("registrar_iana", id.Identifier)
			}
		}
		if abuse, ok := findRole(reg.Entities, "abuse"); ok {
			fields.Set("abuse_email", vcardEmail(abuse.VCardArray))
		}
	}

	setEvents(fields, resp.Events)

	var ns []string
	for _, n := range resp.Nameservers {
		if n.LDHName != "" {
			ns = append(ns, strings.ToLower(n.LDHName))
		}
	}
	fields.SetList("name_servers", ns)
	fields.Set("dnssec", boolText(resp.SecureDNS.DelegationSigned))

	if registrant, ok := findRole(resp.Entities, "registrant"); ok {
		fields.SetNested("registrant", contactFields(registrant))
	}
	return fields
}

// networkFields normaliza un objeto ip network.
func networkFields(resp *rdapResponse) *domain.Fields {
	fields := domain.NewFields().
		Set("handle", resp.Handle).
		Set("name", resp.Name).
		Set("type", resp.Type).
		Set("country", resp.Country).
		Set("parent", resp.ParentHandle)

	if resp.StartAddress != "" && resp.EndAddress != "" {
		fields.Set("range", resp.StartAddress+" - "+resp.EndAddress)
	}
	var cidrs []string
	for _, c := range resp.CIDRs {
		prefix := c.V4Prefix
		if prefix == "" {
			prefix = c.V6Prefix
		}
		if prefix != "" {
			cidrs = append(cidrs, prefix+"/"+strconv.Itoa(c.Length))
		}
	}
	fields.SetList("cidr", cidrs)

	if holder, ok := findRole(resp.Entities, "registrant"); ok {
		org := vcardField(holder.VCardArray, "org")
		if org == "" {
			org = vcardField(holder.VCardArray, "fn")
		}
		fields.Set("organization", org)
	}
	if abuse, ok := findRole(resp.Entities, "abuse"); ok {
		fields.Set("abuse_email", vcardEmail(abuse.VCardArray))
	}

	setEvents(fields, resp.Events)
	fields.Set("registry", registryFromPort43(resp.Port43))
	return fields
}

func setEvents(fields *domain.Fields, events []rdapEvent) {
	for _, event := range events {
		switch strings.ToLower(event.EventAction) {
		case "registration":
			fields.Set("created", event.EventDate)
		case "last changed":
			fields.Set("updated", event.EventDate)
		case "expiration":
			fields.Set("expires", event.EventDate)
		}
	}
}

// registryFromPort43 deduce el RIR del servidor whois declarado.
func registryFromPort43(port43 string) string {
	host := strings.ToLower(port43)
	for _, rir := range []string{"arin", "ripe", "apnic", "lacnic", "afrinic"} {
		if strings.Contains(host, rir) {
			return strings.ToUpper(rir)
		}
	}
	return ""
}
