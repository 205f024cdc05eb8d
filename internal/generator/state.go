package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"vdm-generator/internal/config"
)

const (
	stateDirName  = ".vdm-generator"
	stateFileName = "state.json"
)

// state records what the last successful run produced, so an unchanged
// input can be skipped.
type state struct {
	Fingerprint string    `json:"fingerprint"`
	ServiceID   string    `json:"service_id"`
	Files       []string  `json:"files"`
	GeneratedAt time.Time `json:"generated_at"`
}

func statePath(outputDir string) string {
	return filepath.Join(outputDir, stateDirName, stateFileName)
}

// loadState returns nil when no state has been written yet.
func loadState(outputDir string) (*state, error) {
	data, err := os.ReadFile(statePath(outputDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read generator state: %w", err)
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode generator state: %w", err)
	}
	return &st, nil
}

func saveState(outputDir string, st *state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode generator state: %w", err)
	}
	return writeFileAtomic(statePath(outputDir), append(data, '\n'))
}

// upToDate reports whether st matches fingerprint and every file it lists
// still exists.
func (st *state) upToDate(outputDir, fingerprint string) bool {
	if st == nil || st.Fingerprint != fingerprint {
		return false
	}
	for _, f := range st.Files {
		if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(f))); err != nil {
			return false
		}
	}
	return true
}

// fingerprintInputs hashes everything that influences generated names: the
// input document, the mapping file, base class sources and the naming
// related configuration.
func fingerprintInputs(cfg *config.Config) (string, error) {
	h := xxhash.New()

	input, err := os.ReadFile(cfg.Input.Path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	writeSection(h, "input", input)

	optional := append([]string{cfg.MappingFile()}, cfg.Naming.BaseClassSources...)
	for _, path := range optional {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		writeSection(h, path, data)
	}

	settings, err := json.Marshal(struct {
		ServiceIdentifier string
		PackagePrefix     string
		LegacyLookup      bool
		Naming            any
		SchemaFilters     any
	}{
		ServiceIdentifier: cfg.Input.ServiceIdentifier,
		PackagePrefix:     cfg.Output.PackagePrefix,
		LegacyLookup:      cfg.Output.LegacyLookup,
		Naming:            cfg.Naming,
		SchemaFilters:     cfg.SchemaFilters,
	})
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	writeSection(h, "settings", settings)

	return strconv.FormatUint(h.Sum64(), 16), nil
}

// writeSection length-prefixes data so adjacent sections cannot alias.
func writeSection(h *xxhash.Digest, name string, data []byte) {
	_, _ = h.WriteString(name)
	_, _ = h.WriteString(strconv.Itoa(len(data)))
	_, _ = h.Write(data)
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".vdm-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
