// Package app owns the resources of one generator process: telemetry
// providers, the generator itself and their orderly shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vdm-generator/internal/config"
	"vdm-generator/internal/generator"
	"vdm-generator/internal/logging"
	"vdm-generator/internal/observability"
)

// App owns runtime resources for the generator lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider
	tracerProvider *observability.TracerProvider
	metrics        *textfileMetrics

	generator *generator.Generator

	cleanup cleanupStack

	stateMu     sync.Mutex
	initialized bool

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Init initializes telemetry and the generator. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.initialized {
		return nil
	}

	cleanup := cleanupStack{}
	success := false
	defer func() {
		if !success {
			cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		provider := a.loggerProvider
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return provider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	meterProvider, metrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
		a.metrics = &textfileMetrics{
			GenerationMetrics: metrics,
			provider:          meterProvider,
			path:              a.cfg.Observability.MetricsTextfile,
			logger:            a.logger,
		}
	}

	tracerProvider, err := initTracing(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		a.tracerProvider = tracerProvider
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	// A nil *textfileMetrics must not reach the generator as a non-nil interface.
	var genMetrics generator.Metrics
	if a.metrics != nil {
		genMetrics = a.metrics
	}
	gen, err := generator.New(a.cfg, a.logger, genMetrics)
	if err != nil {
		return err
	}
	a.generator = gen

	a.cleanup = cleanup
	a.initialized = true
	success = true
	return nil
}

// Generate performs a single run.
func (a *App) Generate(ctx context.Context) (*generator.Result, error) {
	gen, err := a.ready()
	if err != nil {
		return nil, err
	}
	result, err := gen.Run(ctx, "cli")
	if err != nil {
		return nil, err
	}
	if result.Unchanged {
		a.logger.Info("sources are up to date",
			slog.String("output", a.cfg.Output.Dir),
			slog.Int("files", len(result.Files)),
		)
	}
	return result, nil
}

// Watch regenerates on every input change until ctx is canceled.
func (a *App) Watch(ctx context.Context) error {
	gen, err := a.ready()
	if err != nil {
		return err
	}
	return gen.Watch(ctx)
}

func (a *App) ready() (*generator.Generator, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if !a.initialized {
		return nil, errors.New("app is not initialized")
	}
	return a.generator, nil
}

// Shutdown flushes telemetry and releases all acquired resources. It is
// safe to call multiple times.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a.shutdownOnce.Do(func() {
		a.stateMu.Lock()
		cleanup := a.cleanup
		a.cleanup = cleanupStack{}
		a.initialized = false
		a.stateMu.Unlock()

		cleanup.run(ctx, a.logger)
	})
	return nil
}
