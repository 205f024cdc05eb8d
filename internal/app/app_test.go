package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdm-generator/internal/config"
	"vdm-generator/internal/logging"
	"vdm-generator/internal/naming"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: "error", Format: "text", Output: &bytes.Buffer{}})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "schema", "testdata", "material_document_v2.edmx"))
	require.NoError(t, err)
	dir := t.TempDir()
	input := filepath.Join(dir, "API_MATERIAL_DOCUMENT_SRV.edmx")
	require.NoError(t, os.WriteFile(input, data, 0o644))

	nc := naming.DefaultConfig()
	nc.Strategy = "domain"
	return &config.Config{
		Input:  config.InputConfig{Path: input},
		Output: config.OutputConfig{Dir: filepath.Join(dir, "out"), PackagePrefix: "com.example.vdm"},
		Naming: nc,
		Observability: config.ObservabilityConfig{
			ServiceName: "vdm-generator-test",
		},
	}
}

func TestCleanupStack_RunsInReverseOrder(t *testing.T) {
	var order []string
	stack := cleanupStack{}
	stack.push("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	stack.push("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("ignored")
	})

	stack.run(context.Background(), testLogger())
	assert.Equal(t, []string{"second", "first"}, order)

	stack.run(context.Background(), testLogger())
	assert.Len(t, order, 2)
}

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	_, err := New(nil, testLogger())
	assert.Error(t, err)
	_, err = New(&config.Config{}, nil)
	assert.Error(t, err)
}

func TestGenerate_BeforeInitFails(t *testing.T) {
	a, err := New(testConfig(t), testLogger())
	require.NoError(t, err)
	_, err = a.Generate(context.Background())
	assert.Error(t, err)
}

func TestShutdown_Idempotent(t *testing.T) {
	a := &App{logger: testLogger()}
	calls := 0
	a.cleanup.push("test", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestGenerate_WritesMetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Observability.MetricsTextfile = filepath.Join(t.TempDir(), "vdm.prom")

	a, err := New(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, a.Init(context.Background()))
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	result, err := a.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MaterialDocumentService", result.ServiceClass)

	data, err := os.ReadFile(cfg.Observability.MetricsTextfile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "vdm_runs_total")
	assert.Contains(t, text, `outcome="generated"`)
	assert.Contains(t, text, `trigger="cli"`)
	assert.Contains(t, text, "vdm_files_written_total")

	again, err := a.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, again.Unchanged)
}

func TestInit_WithoutMetricsLeavesNoTextfile(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	assert.Nil(t, a.metrics)
	_, err = a.Generate(context.Background())
	require.NoError(t, err)
}

func TestInit_RejectsBadNamingConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Naming.Equality = "fuzzy"
	a, err := New(cfg, testLogger())
	require.NoError(t, err)
	assert.Error(t, a.Init(context.Background()))
	_, err = a.Generate(context.Background())
	assert.Error(t, err)
}
