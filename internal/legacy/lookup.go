// Package legacy reads previously generated classes so that regenerated
// code keeps every method and constructor overload it already published.
package legacy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vdm-generator/internal/naming"
)

// ErrClassNotFound reports that no prior output exists for a class.
var ErrClassNotFound = errors.New("class not found")

// ClassSignature is the member surface of one previously generated class.
type ClassSignature struct {
	Package      string
	Name         string
	Methods      []MethodSignature
	Constructors []MethodSignature
}

// MethodSignature is a method or constructor with its ordered parameter names.
type MethodSignature struct {
	Name       string
	Visibility naming.Visibility
	Params     []string
}

// ArgumentSets returns the recorded parameter lists of member. A member named
// like the class itself refers to its constructors.
func (c *ClassSignature) ArgumentSets(member string) [][]string {
	source := c.Methods
	if member == c.Name {
		source = c.Constructors
	}
	var sets [][]string
	for _, m := range source {
		if m.Name == member {
			sets = append(sets, m.Params)
		}
	}
	return sets
}

// Members converts the methods to the form naming.Context.LoadAccessors expects.
func (c *ClassSignature) Members() []naming.Member {
	members := make([]naming.Member, 0, len(c.Methods))
	for _, m := range c.Methods {
		members = append(members, naming.Member{
			Name:       m.Name,
			Visibility: m.Visibility,
			Params:     m.Params,
		})
	}
	return members
}

// Lookup finds the signature of a previously generated class by its fully
// qualified name. Implementations return ErrClassNotFound when there is none.
type Lookup interface {
	Lookup(className string) (*ClassSignature, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(className string) (*ClassSignature, error)

func (f LookupFunc) Lookup(className string) (*ClassSignature, error) { return f(className) }

// DirLookup resolves classes to Java sources below an output directory,
// following the package-per-directory layout of generated code.
type DirLookup struct {
	Root string
}

// Path returns the source file a class is expected in.
func (d DirLookup) Path(className string) string {
	parts := strings.Split(className, ".")
	parts[len(parts)-1] += ".java"
	return filepath.Join(append([]string{d.Root}, parts...)...)
}

func (d DirLookup) Lookup(className string) (*ClassSignature, error) {
	path := d.Path(className)
	sig, err := ParseJavaFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", className, ErrClassNotFound)
	}
	return sig, err
}

// ParseJavaFile reads and parses one Java source file.
func ParseJavaFile(path string) (*ClassSignature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseJavaClass(f, path)
}
