package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"vdm-generator/internal/naming"
)

func testConfig() Config {
	return Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
	}
}

func TestInitMeterProvider(t *testing.T) {
	mp, err := InitMeterProvider(testConfig())
	require.NoError(t, err, "Should initialize meter provider without error")
	require.NotNil(t, mp.provider)
	require.NotNil(t, mp.Registry())

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	assert.NoError(t, mp.Shutdown(context.Background(), logger))
}

func TestGenerationMetrics_WriteTextfile(t *testing.T) {
	mp, err := InitMeterProvider(testConfig())
	require.NoError(t, err)
	defer func() {
		_ = mp.Shutdown(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	}()

	metrics, err := InitGenerationMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	metrics.IdentifierResolved(ctx, naming.KindField, false)
	metrics.IdentifierResolved(ctx, naming.KindField, true)
	metrics.NamingFailed(ctx, naming.KindClass)
	metrics.OverloadsResolved(ctx, 2)
	metrics.FilesWritten(ctx, 3)
	metrics.RecordRun(ctx, 15*time.Millisecond, "generated", "cli")

	path := filepath.Join(t.TempDir(), "vdm.prom")
	require.NoError(t, mp.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "vdm_identifiers_total")
	assert.Contains(t, text, `kind="field"`)
	assert.Contains(t, text, "vdm_identifier_collisions_total")
	assert.Contains(t, text, "vdm_naming_errors_total")
	assert.Contains(t, text, "vdm_run_last_success_unix")
}

func TestParseOTLPProtocol(t *testing.T) {
	tests := []struct {
		in      string
		want    otlpProtocol
		wantErr bool
	}{
		{in: "", want: otlpProtocolGRPC},
		{in: "GRPC", want: otlpProtocolGRPC},
		{in: "http", want: otlpProtocolHTTP},
		{in: "http/protobuf", want: otlpProtocolHTTP},
		{in: "thrift", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOTLPProtocol(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildTLSConfig_FileNotFound(t *testing.T) {
	_, err := buildTLSConfig(OTLPExporterConfig{
		TLSCertFile: "/nonexistent/ca.pem",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read OTLP TLS CA file")
}

func TestBuildTLSConfig_InvalidCertFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not-a-cert"), 0600))

	_, err := buildTLSConfig(OTLPExporterConfig{TLSCertFile: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse OTLP TLS CA file")
}

func TestBuildTLSConfig_MissingClientKeyPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.crt")
	require.NoError(t, os.WriteFile(path, []byte("not-a-cert"), 0600))

	_, err := buildTLSConfig(OTLPExporterConfig{TLSClientCertFile: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTLP TLS client cert and key must both be set")
}

func TestTraceSamplerForRatio_Boundaries(t *testing.T) {
	decisionNever := traceSamplerForRatio(0).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{1},
		Name:          "test",
	}).Decision
	assert.Equal(t, sdktrace.Drop, decisionNever)

	decisionAlways := traceSamplerForRatio(1).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{2},
		Name:          "test",
	}).Decision
	assert.Equal(t, sdktrace.RecordAndSample, decisionAlways)
}

func TestTraceSamplerForRatio_ParentAwareMidRange(t *testing.T) {
	sampler := traceSamplerForRatio(0.5)

	parentSampled := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{3},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
	decision := sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: parentSampled,
		TraceID:       trace.TraceID{4},
		Name:          "child",
	}).Decision
	assert.Equal(t, sdktrace.RecordAndSample, decision)
}
