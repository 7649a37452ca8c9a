// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/workerpool"
)

// EnvPrefix prefijo de las variables de entorno (FALCON_CONCURRENCY, ...).
const EnvPrefix = "FALCON"

// DefaultConfigFile nombre del fichero buscado en el directorio actual.
const DefaultConfigFile = "falcon.yaml"

// Config configuración completa de la aplicación.
type Config struct {
	// Run
	Subject      string        `mapstructure:"subject"`
	Kind         string        `mapstructure:"kind"`
	Category     string        `mapstructure:"category"`
	Concurrency  int           `mapstructure:"concurrency"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"` // 0 = sin límite
	Retries      int           `mapstructure:"retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Order        string        `mapstructure:"order"`
	Profile      string        `mapstructure:"profile"`

	// Proxy global; cada probe puede sobrescribirlo
	ProxyURL string `mapstructure:"proxy"`

	Log        Log        `mapstructure:"log"`
	UI         string     `mapstructure:"ui"`
	Output     Output     `mapstructure:"output"`
	API        API        `mapstructure:"api"`
	Resilience Resilience `mapstructure:"resilience"`

	// Probes: mapa dinámico de configuraciones por probe
	// Key = nombre del probe (ej: "github", "dns")
	Probes map[string]ProbeSection `mapstructure:"probes"`

	// Disabled lista de probes desactivados desde la CLI
	Disabled []string `mapstructure:"disable"`

	// Acciones de la CLI
	PrintVersion bool `mapstructure:"-"`
	ListProbes   bool `mapstructure:"-"`

	// ConfigFile fichero leído (vacío si ninguno)
	ConfigFile string `mapstructure:"-"`
}

// Log configuración del logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// Output configuración de los informes.
type Output struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
	NoTable bool     `mapstructure:"no_table"`
}

// API configuración del modo servidor.
type API struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size"`
}

// Resilience configuración del circuit breaker por fuente.
type Resilience struct {
	CircuitBreaker bool          `mapstructure:"circuit_breaker"`
	Threshold      int           `mapstructure:"threshold"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
}

// ProbeSection sección probes.<name> del fichero de configuración.
type ProbeSection struct {
	Enabled   *bool                  `mapstructure:"enabled"`
	Priority  int                    `mapstructure:"priority"`
	APIKey    string                 `mapstructure:"api_key"`
	RateLimit float64                `mapstructure:"rate_limit"`
	Timeout   time.Duration          `mapstructure:"timeout"`
	UserAgent string                 `mapstructure:"user_agent"`
	ProxyURL  string                 `mapstructure:"proxy"`
	Custom    map[string]interface{} `mapstructure:",remain"`
}

// SupportedFormats formatos de informe aceptados en output.formats.
var SupportedFormats = []string{"json", "yaml", "csv", "html"}

// UIModes modos de UI aceptados.
var UIModes = []string{"pretty", "raw", "quiet"}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Concurrency:  8,
		ProbeTimeout: 10 * time.Second,
		RetryBackoff: 250 * time.Millisecond,
		Order:        "priority",
		Profile:      ProfileFull,
		Log:          Log{Level: "info", Format: "console"},
		UI:           "pretty",
		Output: Output{
			Dir:     "falcon_reports",
			Formats: []string{"json"},
		},
		API: API{
			Addr:      ":8080",
			CacheTTL:  10 * time.Minute,
			CacheSize: 1024,
		},
		Resilience: Resilience{
			CircuitBreaker: true,
			Threshold:      5,
			Cooldown:       time.Minute,
		},
		Probes: map[string]ProbeSection{},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("subject", d.Subject)
	v.SetDefault("kind", d.Kind)
	v.SetDefault("category", d.Category)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("probe_timeout", d.ProbeTimeout)
	v.SetDefault("run_timeout", d.RunTimeout)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("retry_backoff", d.RetryBackoff)
	v.SetDefault("order", d.Order)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("proxy", d.ProxyURL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("ui", d.UI)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.formats", d.Output.Formats)
	v.SetDefault("output.no_table", d.Output.NoTable)
	v.SetDefault("api.enabled", d.API.Enabled)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.cache_ttl", d.API.CacheTTL)
	v.SetDefault("api.cache_size", d.API.CacheSize)
	v.SetDefault("resilience.circuit_breaker", d.Resilience.CircuitBreaker)
	v.SetDefault("resilience.threshold", d.Resilience.Threshold)
	v.SetDefault("resilience.cooldown", d.Resilience.Cooldown)
	v.SetDefault("disable", []string{})
}

// flagBindings clave de viper -> nombre del flag.
var flagBindings = map[string]string{
	"subject":                    "subject",
	"kind":                       "kind",
	"category":                   "category",
	"concurrency":                "concurrency",
	"probe_timeout":              "probe-timeout",
	"run_timeout":                "run-timeout",
	"retries":                    "retries",
	"retry_backoff":              "retry-backoff",
	"order":                      "order",
	"profile":                    "profile",
	"proxy":                      "proxy",
	"log.level":                  "log-level",
	"log.format":                 "log-format",
	"ui":                         "ui",
	"output.dir":                 "out",
	"output.formats":             "formats",
	"output.no_table":            "no-table",
	"api.enabled":                "api",
	"api.addr":                   "addr",
	"resilience.circuit_breaker": "circuit-breaker",
	"disable":                    "disable",
}

// newFlagSet define los flags de la CLI.
func newFlagSet(d Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("falcon", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("subject", "s", d.Subject, "Sujeto a investigar (también como argumento posicional)")
	fs.StringP("kind", "k", d.Kind, "Tipo de sujeto: username, domain, ip (inferido si se omite)")
	fs.StringP("category", "c", d.Category, "Categoría: social, technical, network (inferida si se omite)")
	fs.IntP("concurrency", "w", d.Concurrency, "Probes simultáneos como máximo")
	fs.DurationP("probe-timeout", "t", d.ProbeTimeout, "Timeout por probe")
	fs.DurationP("run-timeout", "T", d.RunTimeout, "Timeout global del run (0 = sin límite)")
	fs.IntP("retries", "r", d.Retries, "Reintentos ante network_error/rate_limited")
	fs.Duration("retry-backoff", d.RetryBackoff, "Backoff inicial entre reintentos")
	fs.String("order", d.Order, "Orden de despacho: priority, weighted, hybrid, fifo")
	fs.StringP("profile", "P", d.Profile, "Perfil de escaneo: full, quick, stealth")
	fs.StringP("proxy", "p", d.ProxyURL, "Proxy HTTP(S)/SOCKS5 para peticiones salientes")
	fs.StringP("log-level", "l", d.Log.Level, "Nivel de log: debug, info, warn, error")
	fs.String("log-format", d.Log.Format, "Formato de log: console, json")
	fs.String("ui", d.UI, "Modo de UI: pretty, raw, quiet")
	fs.StringP("out", "o", d.Output.Dir, "Directorio de informes")
	fs.StringSliceP("formats", "f", d.Output.Formats, "Formatos de informe: json, yaml, csv, html")
	fs.Bool("no-table", d.Output.NoTable, "Desactivar la tabla en terminal")
	fs.Bool("api", d.API.Enabled, "Arrancar el servidor HTTP en lugar de un run")
	fs.String("addr", d.API.Addr, "Dirección de escucha del servidor HTTP")
	fs.Bool("circuit-breaker", d.Resilience.CircuitBreaker, "Circuit breaker por fuente (modo API)")
	fs.StringSlice("disable", nil, "Probes a desactivar (ej: --disable reddit,whois)")
	fs.String("config", "", "Fichero de configuración YAML (por defecto ./"+DefaultConfigFile+" si existe)")
	fs.Bool("list-probes", false, "Listar los probes registrados y salir")
	fs.BoolP("version", "v", false, "Imprimir versión y salir")
	return fs
}

// Load inicializa la configuración: defaults -> fichero YAML -> ENV ->
// flags (los flags tienen prioridad). args no incluye el nombre del binario.
// Con -h/--help retorna pflag.ErrHelp tras imprimir la ayuda en usage.
func Load(args []string, usage io.Writer) (Config, error) {
	fs := newFlagSet(DefaultConfig())
	fs.SetOutput(usage)
	fs.Usage = func() { PrintHelp(usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, domain.NewConfigurationError("flags", err.Error())
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, domain.NewConfigurationError("config", fmt.Sprintf("read %s: %v", configFile, err))
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, domain.NewConfigurationError("config", err.Error())
			}
		}
	}

	for key, name := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return Config{}, domain.NewConfigurationError("flags", err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, domain.NewConfigurationError("config", fmt.Sprintf("decode: %v", err))
	}

	if cfg.Subject == "" && fs.NArg() > 0 {
		cfg.Subject = fs.Arg(0)
	}
	cfg.PrintVersion, _ = fs.GetBool("version")
	cfg.ListProbes, _ = fs.GetBool("list-probes")
	cfg.ConfigFile = v.ConfigFileUsed()

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.applyProfile()
	return cfg, nil
}

func normalize(c *Config) {
	c.Subject = strings.TrimSpace(c.Subject)
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	c.Order = strings.ToLower(strings.TrimSpace(c.Order))
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	if c.Profile == "" {
		c.Profile = ProfileFull
	}
	c.UI = strings.ToLower(strings.TrimSpace(c.UI))
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultConfig().Output.Dir
	}

	formats := make([]string, 0, len(c.Output.Formats))
	seen := make(map[string]bool)
	for _, f := range c.Output.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	c.Output.Formats = formats

	if c.Probes == nil {
		c.Probes = map[string]ProbeSection{}
	}
}

// Validate verifica la configuración. Todo error es ConfigurationError.
func (c Config) Validate() error {
	if c.Concurrency <= 0 {
		return domain.NewConfigurationError("concurrency", fmt.Sprintf("must be positive, got %d", c.Concurrency))
	}
	if c.ProbeTimeout <= 0 {
		return domain.NewConfigurationError("probe_timeout", fmt.Sprintf("must be positive, got %v", c.ProbeTimeout))
	}
	if c.RunTimeout < 0 {
		return domain.NewConfigurationError("run_timeout", fmt.Sprintf("cannot be negative, got %v", c.RunTimeout))
	}
	if c.Retries < 0 {
		return domain.NewConfigurationError("retries", fmt.Sprintf("cannot be negative, got %d", c.Retries))
	}
	if c.RetryBackoff < 0 {
		return domain.NewConfigurationError("retry_backoff", fmt.Sprintf("cannot be negative, got %v", c.RetryBackoff))
	}
	if c.Kind != "" && !domain.SubjectKind(c.Kind).IsValid() {
		return domain.NewConfigurationError("kind", fmt.Sprintf("unknown subject kind %q", c.Kind))
	}
	if c.Category != "" {
		if _, err := domain.ParseCategory(c.Category); err != nil {
			return err
		}
	}
	if _, err := workerpool.ByName(c.Order); err != nil {
		return domain.NewConfigurationError("order", err.Error())
	}
	if !contains(Profiles, c.Profile) {
		return domain.NewConfigurationError("profile", fmt.Sprintf("unknown profile %q (want one of %s)", c.Profile, strings.Join(Profiles, ", ")))
	}
	if !contains(UIModes, c.UI) {
		return domain.NewConfigurationError("ui", fmt.Sprintf("unknown mode %q (want one of %s)", c.UI, strings.Join(UIModes, ", ")))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return domain.NewConfigurationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	for _, f := range c.Output.Formats {
		if !contains(SupportedFormats, f) {
			return domain.NewConfigurationError("output.formats", fmt.Sprintf("unsupported format %q", f))
		}
	}
	if c.API.Enabled && c.API.Addr == "" {
		return domain.NewConfigurationError("api.addr", "cannot be empty in API mode")
	}
	for name, p := range c.Probes {
		if p.RateLimit < 0 {
			return domain.NewConfigurationError("probes."+name+".rate_limit", "cannot be negative")
		}
		if p.Timeout < 0 {
			return domain.NewConfigurationError("probes."+name+".timeout", "cannot be negative")
		}
	}
	return nil
}

// ProbeConfigs traduce las secciones probes.<name> y --disable a la
// configuración que reciben las factories. Cada nombre de registered sin
// sección recibe la configuración por defecto; el proxy y el timeout
// globales se aplican a las secciones que no los fijan.
func (c Config) ProbeConfigs(registered []string) map[string]ports.ProbeConfig {
	out := make(map[string]ports.ProbeConfig, len(c.Probes)+len(registered))
	for _, name := range registered {
		out[name] = c.defaultProbeConfig()
	}

	for name, s := range c.Probes {
		pc := ports.DefaultProbeConfig()
		if s.Enabled != nil {
			pc.Enabled = *s.Enabled
		}
		pc.Priority = s.Priority
		pc.APIKey = s.APIKey
		pc.RateLimit = s.RateLimit
		if s.UserAgent != "" {
			pc.UserAgent = s.UserAgent
		}
		pc.ProxyURL = c.ProxyURL
		if s.ProxyURL != "" {
			pc.ProxyURL = s.ProxyURL
		}
		pc.Timeout = c.ProbeTimeout
		if s.Timeout > 0 {
			pc.Timeout = s.Timeout
		}
		pc.Custom = make(map[string]interface{}, len(s.Custom))
		for k, v := range s.Custom {
			pc.Custom[k] = v
		}
		out[strings.ToLower(name)] = pc
	}

	for _, name := range c.Disabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		pc, ok := out[name]
		if !ok {
			pc = c.defaultProbeConfig()
		}
		pc.Enabled = false
		out[name] = pc
	}
	return out
}

// defaultProbeConfig configuración aplicada a probes sin sección propia.
func (c Config) defaultProbeConfig() ports.ProbeConfig {
	pc := ports.DefaultProbeConfig()
	pc.ProxyURL = c.ProxyURL
	pc.Timeout = c.ProbeTimeout
	return pc
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ProbeNames nombres con sección propia, ordenados.
func (c Config) ProbeNames() []string {
	names := make([]string, 0, len(c.Probes))
	for name := range c.Probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
