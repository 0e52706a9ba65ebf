package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/events"
	"github.com/vk/buildparse/internal/interp/starlark"
	"github.com/vk/buildparse/internal/parser"
	"github.com/vk/buildparse/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	parser     *parser.Parser
	bus        *events.InMemoryBus
	metricsReg *prometheus.Registry
	httpServer *http.Server

	// watchReady is called once Watch has finished its initial parse.
	watchReady func()
}

// NewApp builds an App: its own logger writing to logW, a registry loaded
// from the built-in rules and the configured manifests, and a parser wired
// to a lifecycle bus feeding logs and metrics.
func NewApp(ctx context.Context, logW io.Writer, cfg *Config) (*App, error) {
	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if !cfg.NoDefaultRules {
		if err := reg.LoadDefaults(ctx); err != nil {
			return nil, fmt.Errorf("failed to load built-in rule types: %w", err)
		}
	}
	if len(cfg.Manifests) > 0 {
		if err := reg.LoadManifests(ctx, cfg.Manifests...); err != nil {
			return nil, fmt.Errorf("failed to load rule manifests: %w", err)
		}
	}
	logger.Debug("Rule type registry populated.", "rule_types", reg.Len())

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := events.NewMetrics(metricsReg)
	bus := events.NewInMemoryBus(events.LogSubscriber(logger), metrics.Subscriber())

	p, err := parser.New(parser.Options{
		ProjectRoot: cfg.ProjectRoot,
		Registry:    reg,
		Evaluator:   starlark.New(),
		Bus:         bus,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		ctx:        ctx,
		logger:     logger,
		config:     cfg,
		registry:   reg,
		parser:     p,
		bus:        bus,
		metricsReg: metricsReg,
	}, nil
}

// Registry returns the application's rule type registry.
func (app *App) Registry() *registry.Registry {
	return app.registry
}

// Bus returns the lifecycle bus, mainly so tests can subscribe to it.
func (app *App) Bus() *events.InMemoryBus {
	return app.bus
}

// Config returns the effective configuration.
func (app *App) Config() *Config {
	return app.config
}

// Close releases the parser and stops the metrics server if it runs.
func (app *App) Close() error {
	if err := app.closeMetricsServer(); err != nil {
		return err
	}
	return app.parser.Close()
}
