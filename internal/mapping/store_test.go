package mapping

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdm-generator/internal/naming"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service-name-mappings.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenMissingFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "missing.properties"), nil)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
	assert.False(t, store.Dirty())
}

func TestStoreParsesCommentsAndOrder(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		"# first service",
		"# second comment line",
		"API_B_SRV.className = BService",
		"",
		"API_A_SRV.className=AService",
		"! bang comment",
		"API_B_SRV.packageName = b",
		"",
	}, "\n"))

	store, err := Open(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"API_B_SRV.className", "API_A_SRV.className", "API_B_SRV.packageName"}, store.Keys())
	value, ok := store.Get("API_A_SRV.className")
	assert.True(t, ok)
	assert.Equal(t, "AService", value)

	var buf bytes.Buffer
	_, err = store.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"# first service",
		"# second comment line",
		"API_B_SRV.className = BService",
		"API_A_SRV.className = AService",
		"# bang comment",
		"API_B_SRV.packageName = b",
		"",
	}, "\n"), buf.String())
}

func TestStoreSkipsUnrecognizedLines(t *testing.T) {
	path := writeFile(t, "garbage without separator\n= no key\nKEY = value\n")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	store, err := Open(path, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"KEY"}, store.Keys())
	assert.Contains(t, logs.String(), "skipping unrecognized line")
	assert.Contains(t, logs.String(), "line=1")
	assert.Contains(t, logs.String(), "line=2")
}

func TestStoreRejectsInvalidUTF8(t *testing.T) {
	path := writeFile(t, "KEY = va\xfflue\n")

	_, err := Open(path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, naming.ErrMalformedMappingFile))
}

func TestStorePutKeepsPosition(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "m.properties"), nil)
	require.NoError(t, err)

	store.Put("a", "1", "about a")
	store.Put("b", "2")
	store.Put("a", "3")

	assert.Equal(t, []string{"a", "b"}, store.Keys())
	value, _ := store.Get("a")
	assert.Equal(t, "3", value)
	assert.True(t, store.Dirty())

	var buf bytes.Buffer
	_, err = store.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "# about a\na = 3\nb = 2\n", buf.String())
}

func TestStoreSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mappings.properties")
	store, err := Open(path, nil)
	require.NoError(t, err)

	store.Put("API_X_SRV.className", "XService", "generated")
	require.NoError(t, store.Save())
	assert.False(t, store.Dirty())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	value, ok := reopened.Get("API_X_SRV.className")
	assert.True(t, ok)
	assert.Equal(t, "XService", value)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# generated\nAPI_X_SRV.className = XService\n", string(content))
}

func TestStoreKeepsTrailingComments(t *testing.T) {
	path := writeFile(t, "a = 1\n\n# footer one\n# footer two\n")
	store, err := Open(path, nil)
	require.NoError(t, err)

	store.Put("b", "2")
	require.NoError(t, store.Save())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\nb = 2\n# footer one\n# footer two\n", string(content))
}

func TestStoreConcurrentAccess(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "m.properties"), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			store.Put(key, key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Len(t, store.Keys(), 16)
}
