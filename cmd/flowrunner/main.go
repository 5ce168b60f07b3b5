// Package main implements the entry point for the flowrunner binary.
// flowrunner executes a reference flow graph (a clock display branch and a
// counter/threshold alert branch), exposes Prometheus metrics and a live
// state monitor, and optionally publishes threshold alerts over NATS.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/blocks"
	"github.com/dhaukoos/CodeNodeIO-sub010/bridge"
	"github.com/dhaukoos/CodeNodeIO-sub010/config"
	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/dhaukoos/CodeNodeIO-sub010/natsclient"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
	"github.com/dhaukoos/CodeNodeIO-sub010/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "flowrunner"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, debug.Stack())
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Rebuild the logger from the effective config
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx := context.Background()
	metricsRegistry := metric.NewMetricsRegistry()

	// Connect NATS only when the alert egress is enabled
	var natsClient *natsclient.Client
	if cfg.NATS.Enabled {
		natsClient, err = connectNATS(ctx, cfg, metricsRegistry)
		if err != nil {
			return err
		}
		defer func() { _ = natsClient.Close(ctx) }()
	}

	// Registry holds every runtime in the graph
	registry := runtime.NewRegistry(
		runtime.WithRegistryLogger(logger),
		runtime.WithRegistryMetrics(metricsRegistry),
	)

	if err := buildDemoGraph(cfg, logger, metricsRegistry, registry, natsClient); err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	// Metrics exposition server
	if cfg.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry, cfg.Security)
		go func() {
			if err := metricsServer.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		slog.Info("Metrics server listening", "address", metricsServer.Address())
	}

	// Graph state monitor (HTTP + WebSocket)
	if cfg.Monitor.Enabled {
		monitor, err := service.NewMonitor(registry, service.Config{
			Port:     cfg.Monitor.Port,
			WSPath:   cfg.Monitor.WSPath,
			Interval: cfg.Monitor.Interval,
			Security: cfg.Security,
		}, service.WithLogger(logger), service.WithMetrics(metricsRegistry))
		if err != nil {
			return fmt.Errorf("create monitor: %w", err)
		}
		if err := monitor.Start(ctx); err != nil {
			return fmt.Errorf("start monitor: %w", err)
		}
		defer func() { _ = monitor.Stop(5 * time.Second) }()
	}

	// Run graph with signal handling
	return runWithSignalHandling(ctx, registry, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up provisional logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	// Provisional logger until the config is loaded; flags take effect
	// immediately, config-file settings after initializeConfiguration.
	level, format := cliCfg.LogLevel, cliCfg.LogFormat
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "text"
	}
	slog.SetDefault(setupLogger(level, format))

	slog.Info("Starting flowrunner",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

// initializeConfiguration loads configuration, applies flag overrides,
// and validates the result
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Logging flags override the file
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// connectNATS creates the managed NATS client and waits for it to be ready
func connectNATS(ctx context.Context, cfg *config.Config, metricsRegistry *metric.MetricsRegistry) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithMetrics(metricsRegistry),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	// nats.go accepts a comma-separated server list in a single URL string
	url := strings.Join(cfg.NATS.URLs, ",")
	client, err := natsclient.NewClient(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", url)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}

	return client, nil
}

// buildDemoGraph wires the reference graph and registers its runtimes.
//
//	clock -> (seconds, minutes) -> formatter -> display sink
//	counter -> counts -> threshold -> alerts -> NATS egress (or log sink)
func buildDemoGraph(
	cfg *config.Config,
	logger *slog.Logger,
	metricsRegistry *metric.MetricsRegistry,
	registry *runtime.Registry,
	natsClient *natsclient.Client,
) error {
	capacity := cfg.Graph.ConduitCapacity
	shared := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithMetrics(metricsRegistry),
	}

	// Clock branch
	clockBlock, clockReset := blocks.Clock()
	clock := runtime.NewTimedGenerator2("clock", cfg.Graph.ClockInterval, clockBlock,
		append(shared, runtime.WithReset(clockReset))...)

	seconds, err := flow.New[int](capacity, flow.WithMetrics[int](metricsRegistry, "clock_seconds"))
	if err != nil {
		return fmt.Errorf("create seconds conduit: %w", err)
	}
	minutes, err := flow.New[int](capacity, flow.WithMetrics[int](metricsRegistry, "clock_minutes"))
	if err != nil {
		return fmt.Errorf("create minutes conduit: %w", err)
	}
	display, err := flow.New[string](capacity, flow.WithMetrics[string](metricsRegistry, "clock_display"))
	if err != nil {
		return fmt.Errorf("create display conduit: %w", err)
	}

	formatter := runtime.NewProcessor2x1("formatter", func(sec, min int) (string, error) {
		return fmt.Sprintf("%02d:%02d", min, sec), nil
	}, shared...)

	displaySink := runtime.NewSink1("display", func(stamp string) error {
		logger.Info("clock", "time", stamp)
		return nil
	}, shared...)

	clock.SetOutput1(seconds)
	clock.SetOutput2(minutes)
	formatter.SetInput1(seconds)
	formatter.SetInput2(minutes)
	formatter.SetOutput(display)
	displaySink.SetInput(display)

	// Counter branch
	counterBlock, counterReset := blocks.Counter()
	counter := runtime.NewTimedGenerator1("counter", cfg.Graph.CounterInterval, counterBlock,
		append(shared, runtime.WithReset(counterReset))...)

	counts, err := flow.New[int](capacity, flow.WithMetrics[int](metricsRegistry, "counter_counts"))
	if err != nil {
		return fmt.Errorf("create counts conduit: %w", err)
	}
	alerts, err := flow.New[int](capacity, flow.WithMetrics[int](metricsRegistry, "counter_alerts"))
	if err != nil {
		return fmt.Errorf("create alerts conduit: %w", err)
	}

	threshold := runtime.NewFilter("threshold", blocks.Threshold(cfg.Graph.Threshold), shared...)

	counter.SetOutput(counts)
	threshold.SetInput(counts)
	threshold.SetOutput(alerts)

	// Alert delivery: NATS egress when connected, otherwise a log sink
	if natsClient != nil {
		egress, err := bridge.NewEgress[int]("alerts", cfg.NATS.Subject, natsClient,
			bridge.WithLogger[int](logger), bridge.WithMetrics[int](metricsRegistry))
		if err != nil {
			return fmt.Errorf("create alert egress: %w", err)
		}
		egress.SetInput(alerts)
		registry.Register(egress)
	} else {
		alertSink := runtime.NewSink1("alerts", func(value int) error {
			logger.Info("threshold crossed", "value", value)
			return nil
		}, shared...)
		alertSink.SetInput(alerts)
		registry.Register(alertSink)
	}

	registry.Register(clock)
	registry.Register(formatter)
	registry.Register(displaySink)
	registry.Register(counter)
	registry.Register(threshold)

	return nil
}

// runWithSignalHandling starts the graph and handles shutdown signals
func runWithSignalHandling(ctx context.Context, registry *runtime.Registry, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := registry.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start graph: %w", err)
	}
	slog.Info("flowrunner started", "runtimes", registry.Names())

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := registry.StopAll(shutdownTimeout); err != nil {
		slog.Error("Error stopping graph", "error", err)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("flowrunner shutdown complete")
	return nil
}
