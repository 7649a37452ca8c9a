// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
Falcon - Parallel OSINT Investigator

USAGE:
  falcon [options] <subject>
  falcon --api [--addr :8080]

  The subject kind is inferred (IP address, registrable domain, otherwise a
  username) unless --kind is given. The category defaults to the one that
  matches the kind: username -> social, domain -> technical, ip -> network.

RUN OPTIONS:
  -s, --subject string         Subject to investigate (or positional argument)
  -k, --kind string            Subject kind: username, domain, ip
  -c, --category string        Probe category: social, technical, network
  -w, --concurrency int        Max probes in flight (default: 8)
  -t, --probe-timeout dur      Per-probe timeout (default: 10s)
  -T, --run-timeout dur        Whole-run timeout, 0 = none (default: 0)
  -r, --retries int            Retries on network_error/rate_limited (default: 0)
      --retry-backoff dur      Initial backoff between retries (default: 250ms)
      --order string           Dispatch order: priority, weighted, hybrid, fifo
  -P, --profile string         Scan profile: full, quick, stealth (default: full)
      --disable list           Probes to disable, comma separated

OUTPUT OPTIONS:
  -o, --out string             Report directory (default: "falcon_reports")
  -f, --formats list           Report formats: json, yaml, csv, html (default: json)
      --no-table               Do not print the result table
      --ui string              pretty, raw or quiet (default: pretty)

PROFILES:
  full      Every enabled probe with the configured limits
  quick     Probes with priority >= 8, probe timeout capped at 5s, no retries
  stealth   Skips probes that contact the subject's own hosts (webmeta),
            concurrency capped at 2, no retries
  Probes with an explicit "enabled" in their config section ignore the profile.

NETWORK OPTIONS:
  -p, --proxy string           HTTP(S) or SOCKS5 proxy for outbound requests

SERVER OPTIONS:
      --api                    Serve the HTTP API instead of running once
      --addr string            Listen address (default: ":8080")
      --circuit-breaker        Per-source circuit breaker (default: true)

GENERAL:
      --config string          YAML config file (default: ./falcon.yaml if present)
  -l, --log-level string       debug, info, warn, error (default: info)
      --log-format string      console or json (default: console)
      --list-probes            List registered probes and exit
  -v, --version                Print version information and exit
  -h, --help                   Show this help message

EXAMPLES:
  Social footprint of a handle:
    falcon octocat

  Technical scan of a domain with CSV and HTML reports:
    falcon example.com -f json,csv,html

  Network probes with a tighter budget:
    falcon 1.1.1.1 -w 4 -t 5s -T 20s

  Skip noisy probes:
    falcon octocat --disable reddit,medium

  Fast pass with the high-priority probes only:
    falcon example.com --profile quick

  Avoid touching the subject's own servers:
    falcon example.com --profile stealth

CONFIG FILE (falcon.yaml):
  concurrency: 8
  probe_timeout: 10s
  output:
    formats: [json, html]
  probes:
    github:
      api_key: ghp_xxx
      rate_limit: 1
    whois:
      enabled: false

ENVIRONMENT VARIABLES:
  Every key can be set with the FALCON_ prefix, dots replaced by underscores:

  FALCON_CONCURRENCY=4
  FALCON_PROBE_TIMEOUT=5s
  FALCON_OUTPUT_FORMATS=json,csv
  FALCON_LOG_LEVEL=debug

  Precedence: flags > environment > config file > defaults.
`

// PrintHelp writes the help message to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "Falcon %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
