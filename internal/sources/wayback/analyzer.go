package wayback

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Pattern definitions for detection
var (
	// Sensitive files that should never be exposed
	sensitivePatterns = []string{
		".env", "config.php", "database.yml", "credentials.json",
		"web.config", ".htpasswd", ".htaccess", "id_rsa", "id_dsa",
		"authorized_keys", "secrets.yml", "settings.py", "application.properties",
	}

	// Backup file extensions
	backupPatterns = []string{
		".bak", ".old", ".backup", ".sql", ".sql.gz", ".sql.bz2",
		".tar.gz", ".zip", ".rar", ".7z", ".dump", ".orig", ".save",
	}

	// Repository paths
	repoPatterns = []string{
		"/.git/", "/.svn/", "/.hg/", "/.bzr/", "/.cvs/",
	}

	// API path indicators
	apiPatterns = []string{
		"/api/", "/rest/", "/graphql", "/v1/", "/v2/", "/v3/", "/v4/",
		"/api-", "/restapi/", "/webapi/",
	}

	// Technology detection (path fragment -> technology name)
	techPatterns = []struct{ fragment, name string }{
		{"/wp-admin/", "WordPress"},
		{"/wp-content/", "WordPress"},
		{"/wp-includes/", "WordPress"},
		{"/phpmyadmin/", "phpMyAdmin"},
		{"/cpanel/", "cPanel"},
		{"/plesk/", "Plesk"},
		{"/webmail/", "Webmail"},
		{"/joomla/", "Joomla"},
		{"/drupal/", "Drupal"},
		{"/magento/", "Magento"},
		{"/moodle/", "Moodle"},
		{"/typo3/", "TYPO3"},
	}
)

// Finding clasificación de una URL archivada.
type Finding string

const (
	FindingSensitive  Finding = "sensitive"
	FindingBackup     Finding = "backup"
	FindingRepository Finding = "repository"
	FindingAPI        Finding = "api"
	FindingJavaScript Finding = "javascript"
)

// notable hallazgos que merecen listar la URL concreta.
var notable = map[Finding]bool{
	FindingSensitive:  true,
	FindingBackup:     true,
	FindingRepository: true,
}

// Analysis acumula la clasificación de un conjunto de URLs.
type Analysis struct {
	Total        int
	Hosts        map[string]int
	Findings     map[Finding]int
	Parameters   map[string]int
	Technologies map[string]bool
	Notable      []string
}

// NewAnalysis crea un acumulador vacío.
func NewAnalysis() *Analysis {
	return &Analysis{
		Hosts:        make(map[string]int),
		Findings:     make(map[Finding]int),
		Parameters:   make(map[string]int),
		Technologies: make(map[string]bool),
	}
}

// Add clasifica rawURL. URLs fuera de root se ignoran; retorna si se contó.
func (a *Analysis) Add(rawURL, root string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != root && !strings.HasSuffix(host, "."+root) {
		return false
	}

	a.Total++
	a.Hosts[host]++
	for name := range u.Query() {
		if name != "" {
			a.Parameters[name]++
		}
	}

	flagged := false
	for _, f := range classify(u.Path) {
		a.Findings[f]++
		flagged = flagged || notable[f]
	}
	if flagged {
		a.Notable = append(a.Notable, rawURL)
	}
	if tech := detectTechnology(u.Path); tech != "" {
		a.Technologies[tech] = true
	}
	return true
}

// classify retorna los hallazgos que aplican a un path.
func classify(p string) []Finding {
	lower := strings.ToLower(p)
	file := path.Base(lower)
	var out []Finding

	if strings.HasSuffix(file, ".js") {
		out = append(out, FindingJavaScript)
	}
	if matchAny(file, sensitivePatterns, strings.Contains) {
		out = append(out, FindingSensitive)
	}
	if matchAny(file, backupPatterns, strings.HasSuffix) {
		out = append(out, FindingBackup)
	}
	if matchAny(lower, repoPatterns, strings.Contains) {
		out = append(out, FindingRepository)
	}
	if matchAny(lower, apiPatterns, strings.Contains) {
		out = append(out, FindingAPI)
	}
	return out
}

func matchAny(s string, patterns []string, match func(string, string) bool) bool {
	for _, p := range patterns {
		if match(s, p) {
			return true
		}
	}
	return false
}

func detectTechnology(p string) string {
	lower := strings.ToLower(p)
	for _, t := range techPatterns {
		if strings.Contains(lower, t.fragment) {
			return t.name
		}
	}
	return ""
}

// topKeys retorna hasta n claves ordenadas por frecuencia y luego por nombre.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
