package rdap

import (
	"strconv"
	"strings"

	"falcon/internal/core/domain"
	"falcon/internal/platform/validator"
)

// findRole busca en profundidad la primera entidad con role.
func findRole(entities []rdapEntity, role string) (rdapEntity, bool) {
	for _, e := range entities {
		if hasRole(e.Roles, role) {
			return e, true
		}
		if nested, ok := findRole(e.Entities, role); ok {
			return nested, true
		}
	}
	return rdapEntity{}, false
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// contactFields extrae los datos de contacto de una entidad.
func contactFields(e rdapEntity) *domain.Fields {
	fields := domain.NewFields().
		Set("name", vcardField(e.VCardArray, "fn")).
		Set("organization", vcardField(e.VCardArray, "org")).
		Set("email", vcardEmail(e.VCardArray)).
		Set("phone", vcardField(e.VCardArray, "tel"))

	if addr := vcardAddress(e.VCardArray); addr != nil {
		fields.Set("city", addr["locality"]).
			Set("region", addr["region"]).
			Set("country", addr["country"])
	}
	fields.Set("redacted", boolText(isRedacted(e.VCardArray)))
	return fields
}

// vcardField extrae un campo de texto de un jCard:
// ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "John Doe"], ...]]
func vcardField(vcardArray []interface{}, fieldName string) string {
	for _, field := range vcardProperties(vcardArray) {
		name, ok := field[0].(string)
		if !ok || !strings.EqualFold(name, fieldName) {
			continue
		}
		if value, ok := field[3].(string); ok {
			return value
		}
	}
	return ""
}

// vcardEmail devuelve el email del jCard solo si tiene formato válido; los
// registros redactados suelen traer un texto o una URL de formulario.
func vcardEmail(vcardArray []interface{}) string {
	email := strings.TrimPrefix(vcardField(vcardArray, "email"), "mailto:")
	if !validator.IsEmail(email) {
		return ""
	}
	return email
}

// vcardAddress extrae el componente adr:
// [pobox, ext, street, locality, region, code, country]
func vcardAddress(vcardArray []interface{}) map[string]string {
	for _, field := range vcardProperties(vcardArray) {
		name, ok := field[0].(string)
		if !ok || !strings.EqualFold(name, "adr") {
			continue
		}
		parts, ok := field[3].([]interface{})
		if !ok || len(parts) < 7 {
			continue
		}
		keys := []string{"pobox", "ext", "street", "locality", "region", "code", "country"}
		addr := make(map[string]string, len(keys))
		for i, k := range keys {
			if s, ok := parts[i].(string); ok {
				addr[k] = s
			}
		}
		return addr
	}
	return nil
}

func vcardProperties(vcardArray []interface{}) [][]interface{} {
	if len(vcardArray) < 2 {
		return nil
	}
	items, ok := vcardArray[1].([]interface{})
	if !ok {
		return nil
	}
	out := make([][]interface{}, 0, len(items))
	for _, item := range items {
		if field, ok := item.([]interface{}); ok && len(field) >= 4 {
			out = append(out, field)
		}
	}
	return out
}

// isRedacted detecta marcadores de privacidad habituales.
func isRedacted(vcardArray []interface{}) bool {
	email := strings.ToLower(vcardField(vcardArray, "email"))
	name := strings.ToLower(vcardField(vcardArray, "fn"))
	return email == "" ||
		strings.Contains(email, "redacted") ||
		strings.Contains(email, "privacy") ||
		strings.Contains(name, "redacted")
}

func boolText(b bool) string {
	return strconv.FormatBool(b)
}
