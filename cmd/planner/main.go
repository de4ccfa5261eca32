package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomis52/goplan/app"
	"github.com/nomis52/goplan/buildinfo"
	"github.com/nomis52/goplan/catalog"
	"github.com/nomis52/goplan/config"
	"github.com/nomis52/goplan/export"
	"github.com/nomis52/goplan/logging"
	"github.com/nomis52/goplan/metrics"
	"github.com/nomis52/goplan/statusreporter"
	"github.com/nomis52/goplan/store"
	"github.com/nomis52/goplan/suggest"
)

type Args struct {
	ConfigPath  string
	Command     string
	CommandArgs []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, stdout io.Writer) error {
	args, err := parseArgs(argv)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cmd, ok := commands[args.Command]
	if !ok {
		return fmt.Errorf("unknown command %q, run with -h for the list of commands", args.Command)
	}

	if args.Command == "version" {
		showVersion(stdout)
		return nil
	}

	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if args.Command == "validate" {
		if args.ConfigPath == "" {
			fmt.Fprintln(stdout, "No config file given, built-in defaults are valid")
			return nil
		}
		fmt.Fprintf(stdout, "Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	props := buildinfo.Get()
	logger.Debug("planner started",
		"command", args.Command,
		"version", props.Version,
		"git_commit", props.GitCommit,
		"config_path", args.ConfigPath,
	)

	registry, err := newRegistry(cfg, args.Command, logger.Logger)
	if err != nil {
		return err
	}

	env, err := openEnv(ctx, cfg, logger.Logger, registry)
	if err != nil {
		return err
	}
	defer env.Close()

	return cmd.run(ctx, env, args.CommandArgs, stdout)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

// newRegistry picks the metrics mode: the long running schedule command is
// scraped, one-shot commands push when a remote write URL is configured.
func newRegistry(cfg config.Config, command string, logger *slog.Logger) (metrics.Registry, error) {
	if command == "schedule" {
		if cfg.Monitoring.Listen == "" {
			return metrics.NewNopRegistry(), nil
		}
		return metrics.NewScrapeRegistry()
	}

	if cfg.Monitoring.RemoteWriteURL == "" {
		return metrics.NewNopRegistry(), nil
	}

	instance := cfg.Monitoring.Instance
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		instance = hostname
	}
	return metrics.NewPushRegistry(metrics.PushConfig{
		URL:      cfg.Monitoring.RemoteWriteURL,
		Job:      cfg.Monitoring.JobName,
		Instance: instance,
		Logger:   logger,
	}), nil
}

// env is everything a command needs, built from the configuration.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	registry metrics.Registry
	kv       store.KV
	planner  *app.Planner
}

func openEnv(ctx context.Context, cfg config.Config, logger *slog.Logger, registry metrics.Registry) (*env, error) {
	variant, err := cfg.ResolveVariant()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.ResolveBreakPolicy()
	if err != nil {
		return nil, err
	}

	kv, err := store.OpenKV(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	st, err := store.New(ctx, kv,
		store.WithKey(cfg.Store.Key),
		store.WithCap(variant.Cap),
		store.WithLogger(logger))
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	m, err := app.NewMetrics(registry, cfg.Monitoring.MetricsPrefix)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	exporter := export.New(
		export.WithTitle(cfg.Export.Title),
		export.WithFilename(cfg.Export.Filename),
		export.WithVariant(variant),
		export.WithGeometry(cfg.Export.Geometry),
		export.WithPageWidth(cfg.Export.PageWidth),
		export.WithBreakPolicy(policy),
		export.WithLogger(logger),
	)

	planner := app.NewPlanner(st, catalog.Load(cfg.Catalog.Path, cfg.Catalog.Shape, logger),
		app.WithVariant(variant),
		app.WithExporter(exporter),
		app.WithStatusReporter(statusreporter.New(logger, statusreporter.WithTTL(cfg.Status.TTL))),
		app.WithRequester(suggest.NewRequester(suggest.NewStaticSource(cfg.Suggestions.Delay), logger)),
		app.WithMetrics(m),
		app.WithLogger(logger),
	)

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		kv:       kv,
		planner:  planner,
	}, nil
}

func (e *env) Close() error {
	return e.kv.Close()
}

// serveMetrics exposes /metrics when the registry is scraped.
func (e *env) serveMetrics(ctx context.Context) error {
	scrape, ok := e.registry.(*metrics.ScrapeRegistry)
	if !ok {
		return nil
	}
	ln, err := net.Listen("tcp", e.cfg.Monitoring.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", e.cfg.Monitoring.Listen, err)
	}
	go func() {
		if err := scrape.Serve(ctx, ln, e.logger); err != nil {
			e.logger.Error("metrics server failed", "error", err)
		}
	}()
	return nil
}

func showVersion(w io.Writer) {
	props := buildinfo.Get()
	fmt.Fprintf(w, "planner\n")
	fmt.Fprintf(w, "Version: %s\n", props.Version)
	fmt.Fprintf(w, "Built: %s\n", props.BuildTime)
	fmt.Fprintf(w, "Commit: %s\n", props.GitCommit)
}

func parseArgs(argv []string) (Args, error) {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	configPathShort := fs.String("c", "", "Path to config file (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: planner [options] <command> [command options]\n")
		fmt.Fprintf(out, "\nPlanner for pedagogical activities\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nCommands:\n")
		for _, name := range commandNames() {
			fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].help)
		}
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  planner -c planner.yaml goals \"1. praktik\"\n")
		fmt.Fprintf(out, "  planner -c planner.yaml add -placement \"1. praktik\" -goal 2 -title \"Maling med farver\"\n")
		fmt.Fprintf(out, "  planner -c planner.yaml export -o ./out\n")
	}

	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return Args{}, errors.New("no command given")
	}

	return Args{
		ConfigPath:  path,
		Command:     rest[0],
		CommandArgs: rest[1:],
	}, nil
}
