package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(BuildInfo("v1.2.3", "abc123", "2024-05-01", "ci", "clean"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, replace ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "schema", "testdata", "material_document_v2.edmx"))
	require.NoError(t, err)
	text := string(data)
	for i := 0; i+1 < len(replace); i += 2 {
		text = strings.Replace(text, replace[i], replace[i+1], 1)
	}
	path := filepath.Join(t.TempDir(), "API_MATERIAL_DOCUMENT_SRV.edmx")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vdm-generator")
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestGenerateCommand(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "java")
	args := []string{"generate",
		"--input.path", input,
		"--output.dir", outDir,
		"--naming.strategy", "domain",
		"--observability.logging.level", "error",
	}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "generated 5 files for API_MATERIAL_DOCUMENT_SRV (com.example.vdm.materialdocument.MaterialDocumentService)")
	_, err = os.Stat(filepath.Join(outDir, "com", "example", "vdm", "materialdocument", "MaterialDocumentService.java"))
	assert.NoError(t, err)

	out, err = execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "API_MATERIAL_DOCUMENT_SRV is up to date (5 files)")

	out, err = execute(t, append(args, "--force")...)
	require.NoError(t, err)
	assert.Contains(t, out, "generated 5 files")
}

func TestGenerateCommand_InvalidConfiguration(t *testing.T) {
	_, err := execute(t, "generate", "--output.dir", t.TempDir())
	require.Error(t, err)

	var cerr CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, exitConfig, cerr.ExitStatus())
	assert.Contains(t, cerr.Message, "input.path")
}

func TestGenerateCommand_UnknownFlag(t *testing.T) {
	_, err := execute(t, "generate", "--naming.no_such_key", "x")
	assert.Error(t, err)
}

func TestGenerateCommand_NamingFailure(t *testing.T) {
	input := writeInput(t, `Name="Material" Type="Edm.String"`, `Name="###" Type="Edm.String"`)
	_, err := execute(t, "generate",
		"--input.path", input,
		"--output.dir", filepath.Join(t.TempDir(), "java"),
		"--observability.logging.level", "error",
	)
	require.Error(t, err)

	var cerr CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, exitNaming, cerr.ExitStatus())
	assert.NotEmpty(t, cerr.Suggestion)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		verbose  bool
		wantCode int
		wantOut  []string
	}{
		{name: "nil", err: nil, wantCode: 0},
		{name: "plain error", err: errors.New("boom"), wantCode: exitFailure, wantOut: []string{"boom"}},
		{
			name:     "command error with hint",
			err:      wrapError("invalid configuration", errors.New("cause"), "set input.path", exitConfig),
			wantCode: exitConfig,
			wantOut:  []string{"invalid configuration", "hint: set input.path"},
		},
		{
			name:     "verbose shows details",
			err:      wrapError("generation failed", errors.New("disk full"), "", 0),
			verbose:  true,
			wantCode: exitFailure,
			wantOut:  []string{"generation failed", "details: disk full"},
		},
		{
			name:     "message falls back to cause",
			err:      wrapError("", errors.New("bad name"), "", exitNaming),
			wantCode: exitNaming,
			wantOut:  []string{"bad name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.wantCode, exitCode(tt.err, tt.verbose, &stderr))
			for _, want := range tt.wantOut {
				assert.Contains(t, stderr.String(), want)
			}
		})
	}
}
