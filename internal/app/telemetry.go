package app

import (
	"context"
	"log/slog"
	"time"

	"vdm-generator/internal/config"
	"vdm-generator/internal/logging"
	"vdm-generator/internal/observability"
)

// InitLogger builds the process logger and, when log export is enabled, the
// OTLP logger provider that backs it. The caller owns the provider.
func InitLogger(ctx context.Context, cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logsConfig := cfg.Observability.GetLogsConfig()
	logger.Debug("initializing OpenTelemetry logging",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", logsConfig.Endpoint),
		slog.String("otlp_protocol", logsConfig.Protocol),
		slog.Bool("insecure", logsConfig.Insecure),
	)

	loggerProvider, err := observability.InitLoggerProvider(ctx, observabilityConfig(cfg, logsConfig))
	if err != nil {
		return nil, nil, err
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	return logger, loggerProvider, nil
}

func initMetrics(cfg *config.Config, logger *logging.Logger) (*observability.MeterProvider, *observability.GenerationMetrics, error) {
	if cfg.Observability.MetricsTextfile == "" {
		return nil, nil, nil
	}

	meterProvider, err := observability.InitMeterProvider(observabilityConfig(cfg, config.OTLPConfig{}))
	if err != nil {
		return nil, nil, err
	}
	metrics, err := observability.InitGenerationMetrics()
	if err != nil {
		_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		return nil, nil, err
	}

	logger.Debug("OpenTelemetry metrics initialized",
		slog.String("textfile", cfg.Observability.MetricsTextfile),
	)
	return meterProvider, metrics, nil
}

func initTracing(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}

	tracesConfig := cfg.Observability.GetTracesConfig()
	logger.Debug("initializing OpenTelemetry tracing",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", tracesConfig.Endpoint),
		slog.String("otlp_protocol", tracesConfig.Protocol),
		slog.Float64("sample_ratio", cfg.Observability.TraceSampleRatio),
	)

	return observability.InitTracerProvider(ctx, observabilityConfig(cfg, tracesConfig))
}

func observabilityConfig(cfg *config.Config, otlp config.OTLPConfig) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLPConfig: observability.OTLPExporterConfig{
			Endpoint:          otlp.Endpoint,
			Protocol:          otlp.Protocol,
			Insecure:          otlp.Insecure,
			TLSCertFile:       otlp.TLSCertFile,
			TLSClientCertFile: otlp.TLSClientCertFile,
			TLSClientKeyFile:  otlp.TLSClientKeyFile,
			Headers:           otlp.Headers,
			Timeout:           otlp.Timeout,
			Compression:       otlp.Compression,
			RetryEnabled:      otlp.RetryEnabled,
		},
	}
}

// textfileMetrics rewrites the metrics textfile after every run so that a
// long-running watch keeps it current.
type textfileMetrics struct {
	*observability.GenerationMetrics
	provider *observability.MeterProvider
	path     string
	logger   *logging.Logger
}

func (m *textfileMetrics) RecordRun(ctx context.Context, duration time.Duration, outcome, trigger string) {
	m.GenerationMetrics.RecordRun(ctx, duration, outcome, trigger)
	m.flush()
}

func (m *textfileMetrics) flush() {
	if err := m.provider.WriteTextfile(m.path); err != nil {
		m.logger.Warn("failed to write metrics textfile", slog.String("error", err.Error()))
	}
}
