package observability

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"vdm-generator/internal/naming"
)

const meterName = "vdm-generator"

// GenerationMetrics records naming decisions and generator runs.
type GenerationMetrics struct {
	identifiers     metric.Int64Counter
	collisions      metric.Int64Counter
	namingErrors    metric.Int64Counter
	overloads       metric.Int64Counter
	filesWritten    metric.Int64Counter
	runCounter      metric.Int64Counter
	runDuration     metric.Float64Histogram
	lastSuccessUnix atomic.Int64
}

// InitGenerationMetrics creates the generator instruments on the global meter
// provider.
func InitGenerationMetrics() (*GenerationMetrics, error) {
	meter := otel.Meter(meterName)
	m := &GenerationMetrics{}
	var err error

	if m.identifiers, err = meter.Int64Counter(
		"vdm.identifiers.total",
		metric.WithDescription("Identifiers resolved, by kind"),
	); err != nil {
		return nil, fmt.Errorf("failed to create identifier counter: %w", err)
	}
	if m.collisions, err = meter.Int64Counter(
		"vdm.identifier.collisions.total",
		metric.WithDescription("Identifiers renamed with a numeric suffix to stay unique"),
	); err != nil {
		return nil, fmt.Errorf("failed to create collision counter: %w", err)
	}
	if m.namingErrors, err = meter.Int64Counter(
		"vdm.naming.errors.total",
		metric.WithDescription("Identifiers that could not be derived, by kind"),
	); err != nil {
		return nil, fmt.Errorf("failed to create naming error counter: %w", err)
	}
	if m.overloads, err = meter.Int64Counter(
		"vdm.operation.overloads.total",
		metric.WithDescription("Operation method signatures emitted, legacy overloads included"),
	); err != nil {
		return nil, fmt.Errorf("failed to create overload counter: %w", err)
	}
	if m.filesWritten, err = meter.Int64Counter(
		"vdm.files.written.total",
		metric.WithDescription("Generated source files written"),
	); err != nil {
		return nil, fmt.Errorf("failed to create files written counter: %w", err)
	}
	if m.runCounter, err = meter.Int64Counter(
		"vdm.runs.total",
		metric.WithDescription("Generator runs, by outcome and trigger"),
	); err != nil {
		return nil, fmt.Errorf("failed to create run counter: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram(
		"vdm.run.duration",
		metric.WithDescription("Duration of generator runs in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	lastSuccess, err := meter.Int64ObservableGauge(
		"vdm.run.last_success_unix",
		metric.WithDescription("Unix timestamp of the last successful generator run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create last success gauge: %w", err)
	}
	if _, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			if value := m.lastSuccessUnix.Load(); value > 0 {
				observer.ObserveInt64(lastSuccess, value)
			}
			return nil
		},
		lastSuccess,
	); err != nil {
		return nil, fmt.Errorf("failed to register last success gauge callback: %w", err)
	}

	return m, nil
}

// IdentifierResolved counts one claimed identifier.
func (m *GenerationMetrics) IdentifierResolved(ctx context.Context, kind naming.Kind, collided bool) {
	attrs := metric.WithAttributes(attribute.String("kind", kind.String()))
	m.identifiers.Add(ctx, 1, attrs)
	if collided {
		m.collisions.Add(ctx, 1, attrs)
	}
}

// NamingFailed counts one identifier derivation failure.
func (m *GenerationMetrics) NamingFailed(ctx context.Context, kind naming.Kind) {
	m.namingErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
}

// OverloadsResolved counts the signatures emitted for one operation.
func (m *GenerationMetrics) OverloadsResolved(ctx context.Context, count int) {
	m.overloads.Add(ctx, int64(count))
}

// FilesWritten counts generated files.
func (m *GenerationMetrics) FilesWritten(ctx context.Context, count int) {
	m.filesWritten.Add(ctx, int64(count))
}

// RecordRun records one generator run. Outcome is "generated", "unchanged"
// or "failed"; trigger is "cli" or "watch".
func (m *GenerationMetrics) RecordRun(ctx context.Context, duration time.Duration, outcome, trigger string) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("trigger", trigger),
	)
	m.runCounter.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if outcome != "failed" {
		m.lastSuccessUnix.Store(time.Now().Unix())
	}
}
