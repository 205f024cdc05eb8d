// Package mapping persists the service class and package names chosen for
// an external service identifier, so that later runs reproduce them.
package mapping

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"vdm-generator/internal/naming"
)

var keyValueLine = regexp.MustCompile(`^([^=#!\s][^=]*?)\s*=\s*(.*?)\s*$`)

type entry struct {
	key      string
	value    string
	comments []string
}

// Store is a flat key = value file. Comment lines are attached to the key
// that follows them, comments after the last key are kept as a trailer, and
// keys keep their first-seen order. Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []*entry
	trailer []string
	index   map[string]*entry
	dirty   bool
	logger  *slog.Logger
}

// Open loads the store at path. A missing file yields an empty store that
// is created on Save.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		index:  make(map[string]*entry),
		logger: logger,
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("service name mapping file not found, starting empty", slog.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open service name mapping: %w", err)
	}
	defer f.Close()

	if err := s.load(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Store) load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var pending []string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if lineNo == 1 {
			raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
		}
		if !utf8.Valid(raw) {
			return fmt.Errorf("line %d: invalid UTF-8: %w", lineNo, naming.ErrMalformedMappingFile)
		}

		line := strings.TrimSpace(string(raw))
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!"):
			pending = append(pending, strings.TrimSpace(line[1:]))
			continue
		}

		m := keyValueLine.FindStringSubmatch(line)
		if m == nil {
			s.logger.Warn("skipping unrecognized line in service name mapping",
				slog.String("path", s.path),
				slog.Int("line", lineNo),
				slog.String("content", line),
			)
			continue
		}
		s.put(m[1], m[2], pending)
		pending = nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("line %d: %v: %w", lineNo+1, err, naming.ErrMalformedMappingFile)
	}
	s.trailer = pending
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.index[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Put sets key to value. Comments, if given, replace the ones attached to key.
func (s *Store) Put(key, value string, comments ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, comments)
	s.dirty = true
}

func (s *Store) put(key, value string, comments []string) {
	if e, ok := s.index[key]; ok {
		e.value = value
		if len(comments) > 0 {
			e.comments = comments
		}
		return
	}
	e := &entry{key: key, value: value, comments: comments}
	s.entries = append(s.entries, e)
	s.index[key] = e
}

// Keys returns all keys in first-seen order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// Dirty reports whether Put was called since the store was opened or saved.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// WriteTo writes the store in its file format.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeTo(w)
}

func (s *Store) writeTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, e := range s.entries {
		for _, c := range e.comments {
			fmt.Fprintf(&buf, "# %s\n", c)
		}
		fmt.Fprintf(&buf, "%s = %s\n", e.key, e.value)
	}
	for _, c := range s.trailer {
		fmt.Fprintf(&buf, "# %s\n", c)
	}
	return buf.WriteTo(w)
}

// Save writes the store back to its file through a temporary file in the
// same directory.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mapping directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".mapping-*.tmp")
	if err != nil {
		return fmt.Errorf("save service name mapping: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := s.writeTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save service name mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save service name mapping: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save service name mapping: %w", err)
	}
	s.dirty = false
	s.logger.Debug("saved service name mapping",
		slog.String("path", s.path),
		slog.Int("entries", len(s.entries)),
	)
	return nil
}
