// cmd/falcon/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"falcon/internal/adapters/api"
	"falcon/internal/adapters/output"
	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/core/usecases"
	"falcon/internal/platform/cache"
	"falcon/internal/platform/config"
	"falcon/internal/platform/logx"
	"falcon/internal/platform/metrics"
	"falcon/internal/platform/registry"
	"falcon/internal/platform/resilience"
	"falcon/internal/platform/ui"
	"falcon/internal/platform/workerpool"

	// Import sources for auto-registration via init()
	_ "falcon/internal/sources/crtsh"
	_ "falcon/internal/sources/dns"
	_ "falcon/internal/sources/geoip"
	_ "falcon/internal/sources/github"
	_ "falcon/internal/sources/internetdb"
	_ "falcon/internal/sources/profiles"
	_ "falcon/internal/sources/rdap"
	_ "falcon/internal/sources/reddit"
	_ "falcon/internal/sources/wayback"
	_ "falcon/internal/sources/webmeta"
	_ "falcon/internal/sources/whois"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Config: defaults -> falcon.yaml -> FALCON_* -> flags
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try: falcon --help")
		return 2
	}

	if cfg.PrintVersion {
		config.PrintVersion(os.Stdout, version, commit, date)
		return 0
	}
	if cfg.ListProbes {
		listProbes(os.Stdout)
		return 0
	}

	// 2. Shared logger
	logger := newLogger(cfg)

	// 3. Context and signals for clean shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.API.Enabled {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Err(err, "phase", "api")
			return 1
		}
		return 0
	}

	if cfg.Subject == "" {
		fmt.Fprintln(os.Stderr, "Error: subject is required")
		fmt.Fprintln(os.Stderr, "Usage: falcon [flags] <username|domain|ip>")
		return 2
	}
	return investigate(ctx, cfg, logger)
}

// investigate ejecuta un run único y escribe los informes.
func investigate(ctx context.Context, cfg config.Config, logger logx.Logger) int {
	subject, category, err := resolveSubject(cfg)
	if err != nil {
		logger.Err(err, "phase", "validation")
		return 2
	}

	logger.Info("Falcon starting",
		"version", version,
		"subject", subject.String(),
		"category", category,
		"profile", cfg.Profile,
		"concurrency", cfg.Concurrency,
	)

	// 4. Build probes from the catalog
	catalog := registry.Global()
	set, err := catalog.Build(cfg.ProbeConfigsFor(catalog.AllMetadata()), category, logger)
	if err != nil {
		logger.Err(err, "phase", "probe-build")
		return 2
	}
	defer closeProbes(set, logger)

	if set.Len() == 0 {
		logger.Warn("no probes enabled for category", "category", category)
	}

	// 5. Investigator with UI observer
	presenter := ui.NewPresenter(ui.UIMode(cfg.UI))
	notifier := ui.NewNotifier(presenter, ui.NotifierOptions{
		Concurrency:    cfg.Concurrency,
		TimeoutSeconds: int(cfg.ProbeTimeout / time.Second),
		ProbeCount:     func(string) int { return set.Len() },
	})

	inv, err := newInvestigator(cfg, logger, notifier)
	if err != nil {
		logger.Err(err, "phase", "setup")
		return 2
	}

	// 6. Execute
	report, runErr := inv.Run(ctx, subject, set)

	// La UI termina de pintar antes de la tabla
	if err := inv.Close(); err != nil {
		logger.Warn("failed to close observers", "error", err.Error())
	}
	if runErr != nil {
		logger.Err(runErr, "phase", "run")
		if report == nil {
			if errors.Is(runErr, domain.ErrConfiguration) {
				return 2
			}
			return 1
		}
	}

	// 7. Outputs (un contexto nuevo: tras Ctrl-C el informe parcial se escribe igual)
	if err := writeOutputs(cfg, report); err != nil {
		logger.Err(err, "phase", "output")
		return 1
	}

	logger.Info("Falcon finished",
		"elapsed_ms", report.Duration.Milliseconds(),
		"found", report.Summary.Found,
		"not_found", report.Summary.NotFound,
		"failed", report.Summary.Failed,
		"correlations", len(report.Correlations),
	)

	if runErr != nil {
		return 1
	}
	return 0
}

// serve arranca el servidor HTTP hasta que ctx se cancela.
func serve(ctx context.Context, cfg config.Config, logger logx.Logger) error {
	metricsNotifier, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var breakers *resilience.Breakers
	if cfg.Resilience.CircuitBreaker {
		bc := resilience.DefaultBreakerConfig()
		bc.FailureThreshold = cfg.Resilience.Threshold
		bc.Cooldown = cfg.Resilience.Cooldown
		breakers = resilience.NewBreakers(bc, logger)
	}

	results := cache.New[*domain.ProbeResult](cfg.API.CacheSize, cfg.API.CacheTTL)
	stopCleanup := results.StartCleanupWorker(cfg.API.CacheTTL)
	defer stopCleanup()

	catalog := registry.Global()
	sets, err := api.PrepareSets(catalog, cfg.ProbeConfigsFor(catalog.AllMetadata()), breakers, results, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, set := range sets {
			closeProbes(set, logger)
		}
	}()

	inv, err := newInvestigator(cfg, logger, metricsNotifier)
	if err != nil {
		return err
	}
	defer func() { _ = inv.Close() }()

	srv, err := api.NewServer(api.Options{
		Runner:     inv,
		Sets:       sets,
		Probes:     catalog.AllMetadata(),
		Breakers:   breakers,
		RunTimeout: cfg.RunTimeout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.API.Addr)
}

func newInvestigator(cfg config.Config, logger logx.Logger, observers ...ports.Notifier) (*usecases.Investigator, error) {
	order, err := workerpool.ByName(cfg.Order)
	if err != nil {
		return nil, domain.NewConfigurationError("order", err.Error())
	}
	return usecases.NewInvestigator(usecases.InvestigatorOptions{
		Scheduler: usecases.SchedulerOptions{
			MaxConcurrency: cfg.Concurrency,
			ProbeTimeout:   cfg.ProbeTimeout,
			RunTimeout:     cfg.RunTimeout,
			Retries:        cfg.Retries,
			RetryBackoff:   cfg.RetryBackoff,
			Order:          order,
		},
		Observers: observers,
		Logger:    logger,
	})
}

// resolveSubject construye el sujeto y la categoría. --kind fuerza el tipo;
// --category sin --kind usa el tipo de la categoría; si no, se infiere.
func resolveSubject(cfg config.Config) (domain.Subject, domain.Category, error) {
	var (
		subject  domain.Subject
		category domain.Category
		err      error
	)

	if cfg.Category != "" {
		if category, err = domain.ParseCategory(cfg.Category); err != nil {
			return domain.Subject{}, "", err
		}
	}

	switch {
	case cfg.Kind != "":
		subject, err = domain.NewSubject(cfg.Subject, domain.SubjectKind(cfg.Kind))
	case category != "":
		subject, err = domain.NewSubject(cfg.Subject, category.Kind())
	default:
		subject, err = domain.ParseSubject(cfg.Subject)
	}
	if err != nil {
		return domain.Subject{}, "", err
	}

	if category == "" {
		category = domain.CategoryFor(subject.Kind)
	}
	if category.Kind() != subject.Kind {
		return domain.Subject{}, "", domain.NewConfigurationError("category",
			fmt.Sprintf("category %s expects a %s subject, got %s", category, category.Kind(), subject.Kind))
	}
	return subject, category, nil
}

// writeOutputs escribe la tabla en terminal y los ficheros de informe.
func writeOutputs(cfg config.Config, report *domain.RunReport) error {
	dir, err := output.NewDirectorySinks(cfg.Output.Dir, cfg.Output.Formats)
	if err != nil {
		return err
	}

	sinks := output.Multi{dir}
	if !cfg.Output.NoTable {
		sinks = append(output.Multi{output.NewTableSink(os.Stdout)}, sinks...)
	}
	return sinks.Write(context.Background(), report)
}

func listProbes(w io.Writer) {
	for _, meta := range registry.Global().AllMetadata() {
		kinds := make([]string, 0, len(meta.Kinds))
		for _, k := range meta.Kinds {
			kinds = append(kinds, k.String())
		}
		tags := ""
		if meta.RequiresAuth {
			tags = " (api key)"
		}
		if meta.Intrusive {
			tags += " (intrusive)"
		}
		fmt.Fprintf(w, "%-12s %-16s %s%s\n", meta.Name, strings.Join(kinds, ","), meta.Description, tags)
	}
}

// closeProbes libera los probes que mantienen recursos.
func closeProbes(set ports.ProbeSet, logger logx.Logger) {
	for _, d := range set.Descriptors() {
		closer, ok := d.Probe().(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close probe", "probe", d.Name(), "error", err.Error())
		}
	}
}

func newLogger(cfg config.Config) logx.Logger {
	lvl := logx.ParseLevel(cfg.Log.Level)
	if cfg.Log.Format == "json" {
		return logx.NewJSON(lvl)
	}
	return logx.NewWithLevel(lvl)
}
