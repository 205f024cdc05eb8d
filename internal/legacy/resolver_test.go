package legacy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdm-generator/internal/naming"
)

type param struct {
	Name string
	Type string
}

func paramName(p param) string { return p.Name }

func params(names ...string) []param {
	out := make([]param, len(names))
	for i, n := range names {
		out[i] = param{Name: n, Type: "String"}
	}
	return out
}

func namesOf(sets [][]param) [][]string {
	out := make([][]string, len(sets))
	for i, set := range sets {
		out[i] = make([]string, len(set))
		for j, p := range set {
			out[i][j] = p.Name
		}
	}
	return out
}

func staticLookup(sig *ClassSignature) Lookup {
	return LookupFunc(func(className string) (*ClassSignature, error) {
		if className != sig.Package+"."+sig.Name {
			return nil, ErrClassNotFound
		}
		return sig, nil
	})
}

var fooService = &ClassSignature{
	Package: "com.example",
	Name:    "Service",
	Methods: []MethodSignature{
		{Name: "foo", Visibility: naming.Public, Params: []string{"a", "b", "c"}},
		{Name: "foo", Visibility: naming.Public, Params: []string{"a"}},
		{Name: "bar", Visibility: naming.Public, Params: []string{"a"}},
	},
}

func TestResolveArgumentSetsAppendsNewParameters(t *testing.T) {
	sets, err := ResolveArgumentSets(staticLookup(fooService), nil, "com.example.Service", "foo",
		params("a", "x", "c", "b"), paramName)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a"}, {"a", "b", "c"}, {"a", "b", "c", "x"}}, namesOf(sets))
}

func TestResolveArgumentSetsWithoutNewParameters(t *testing.T) {
	sets, err := ResolveArgumentSets(staticLookup(fooService), nil, "com.example.Service", "foo",
		params("c", "b", "a"), paramName)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a"}, {"a", "b", "c"}}, namesOf(sets))
}

func TestResolveArgumentSetsFallbacks(t *testing.T) {
	current := params("a", "b")
	unreadable := LookupFunc(func(string) (*ClassSignature, error) {
		return nil, ErrUnparsable
	})

	tests := []struct {
		name      string
		lookup    Lookup
		className string
		member    string
	}{
		{"nil lookup", nil, "com.example.Service", "foo"},
		{"class not found", staticLookup(fooService), "com.example.Other", "foo"},
		{"unparsable class", unreadable, "com.example.Service", "foo"},
		{"no recorded sets", staticLookup(fooService), "com.example.Service", "baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, err := ResolveArgumentSets(tt.lookup, nil, tt.className, tt.member, current, paramName)
			require.NoError(t, err)
			assert.Equal(t, [][]param{current}, sets)
		})
	}
}

func TestResolveArgumentSetsMissingParameter(t *testing.T) {
	sig := &ClassSignature{
		Package: "com.example",
		Name:    "Service",
		Methods: []MethodSignature{{Name: "post", Params: []string{"matrial"}}},
	}

	_, err := ResolveArgumentSets(staticLookup(sig), nil, "com.example.Service", "post",
		params("material", "year"), paramName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, naming.ErrMissingLegacyParameter))
	assert.Contains(t, err.Error(), `did you mean "material"?`)

	var nerr *naming.Error
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "matrial", nerr.Name)
	assert.Equal(t, naming.KindMethodParameter, nerr.Kind)
}

func TestResolveArgumentSetsConstructors(t *testing.T) {
	sig := &ClassSignature{
		Package:      "com.example",
		Name:         "Service",
		Constructors: []MethodSignature{{Name: "Service", Params: []string{"path"}}},
	}

	sets, err := ResolveArgumentSets(staticLookup(sig), nil, "com.example.Service", "Service",
		params("path", "timeout"), paramName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"path"}, {"path", "timeout"}}, namesOf(sets))
}

func TestDirLookup(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "com", "example", "vdm", "services")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MaterialDocumentService.java"), []byte(serviceSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.java"), []byte("not java"), 0o644))

	lookup := DirLookup{Root: root}

	sig, err := lookup.Lookup("com.example.vdm.services.MaterialDocumentService")
	require.NoError(t, err)
	assert.Equal(t, "MaterialDocumentService", sig.Name)

	_, err = lookup.Lookup("com.example.vdm.services.Missing")
	assert.True(t, errors.Is(err, ErrClassNotFound))

	_, err = lookup.Lookup("com.example.vdm.services.Broken")
	assert.True(t, errors.Is(err, ErrUnparsable))

	sets, err := ResolveArgumentSets(lookup, nil, "com.example.vdm.services.MaterialDocumentService", "release",
		params("materialDocument", "options", "tags", "reason"), paramName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"materialDocument", "options", "tags"},
		{"materialDocument", "options", "tags", "reason"},
	}, namesOf(sets))
}
