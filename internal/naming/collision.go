package naming

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Equality normalizes identifiers before they are compared for uniqueness.
// Two identifiers collide when their normalized forms are equal.
type Equality interface {
	Normalize(name string) string
}

// EqualityFunc adapts a plain function to Equality.
type EqualityFunc func(name string) string

func (f EqualityFunc) Normalize(name string) string { return f(name) }

var (
	// CaseSensitive treats identifiers as equal only when they are byte-identical.
	CaseSensitive Equality = EqualityFunc(func(name string) string { return name })
	// CaseInsensitive treats identifiers that differ only in case as equal.
	CaseInsensitive Equality = EqualityFunc(strings.ToLower)
	// Lowercase folds case and drops underscores, so fooBar and FOO_BAR collide.
	Lowercase Equality = EqualityFunc(func(name string) string {
		return strings.ReplaceAll(strings.ToLower(name), "_", "")
	})
)

// ParseEquality maps a configuration value to an Equality.
func ParseEquality(value string) (Equality, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "case_sensitive", "sensitive":
		return CaseSensitive, nil
	case "", "case_insensitive", "insensitive":
		return CaseInsensitive, nil
	case "lowercase":
		return Lowercase, nil
	default:
		return nil, fmt.Errorf("unknown name equality %q (want case_sensitive, case_insensitive or lowercase)", value)
	}
}

// Context tracks the identifiers claimed within one scope, typically one
// generated class body, and resolves collisions by appending _N suffixes.
// A Context is not safe for concurrent use.
type Context struct {
	scope    string
	equality Equality
	claimed  map[string]string // normalized -> claimed name
	order    []string
	logger   *slog.Logger
}

// NewContext creates an empty uniqueness context.
func NewContext(scope string, equality Equality, logger *slog.Logger) *Context {
	if equality == nil {
		equality = CaseInsensitive
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		scope:    scope,
		equality: equality,
		claimed:  make(map[string]string),
		logger:   logger,
	}
}

// Scope returns the name of the scope this context guards.
func (c *Context) Scope() string {
	return c.scope
}

// Contains reports whether name collides with an existing claim.
func (c *Context) Contains(name string) bool {
	_, ok := c.claimed[c.equality.Normalize(name)]
	return ok
}

// Names returns the claimed names in claim order.
func (c *Context) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of claimed names.
func (c *Context) Len() int {
	return len(c.order)
}

// EnsureUniqueName claims candidate, or the first free candidate_N with N
// counting up from 2, and returns the claimed name.
func (c *Context) EnsureUniqueName(candidate string) string {
	if !c.Contains(candidate) {
		c.claim(candidate)
		return candidate
	}

	existing := c.claimed[c.equality.Normalize(candidate)]
	for i := 2; ; i++ {
		suffixed := fmt.Sprintf("%s_%d", candidate, i)
		if c.Contains(suffixed) {
			continue
		}
		c.logger.Warn("naming collision detected, applying suffix",
			slog.String("scope", c.scope),
			slog.String("name", candidate),
			slog.String("existing", existing),
			slog.String("renamed", suffixed),
		)
		c.claim(suffixed)
		return suffixed
	}
}

// LoadPreexistingNames claims names verbatim without disambiguation. Names
// that already collide are ignored.
func (c *Context) LoadPreexistingNames(names ...string) {
	for _, name := range names {
		if name == "" || c.Contains(name) {
			continue
		}
		c.claim(name)
	}
}

func (c *Context) claim(name string) {
	c.claimed[c.equality.Normalize(name)] = name
	c.order = append(c.order, name)
}

// Visibility is the access level of a member in previously generated or
// framework source.
type Visibility int

const (
	PackagePrivate Visibility = iota
	Public
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "package-private"
	}
}

// Member describes a method of a base type.
type Member struct {
	Name       string
	Visibility Visibility
	Params     []string
}

// LoadAccessors claims the property names behind the getters and setters of
// a base type. Private members are invisible to generated subclasses and are
// skipped, as are names that only look like accessors (getterInDisguise).
func (c *Context) LoadAccessors(members []Member) {
	for _, m := range members {
		if m.Visibility == Private {
			continue
		}
		if property, ok := AccessorProperty(m); ok {
			c.LoadPreexistingNames(property)
		}
	}
}

// AccessorProperty returns the property name a getter or setter exposes.
// getFoo() and isFoo() are getters, setFoo(x) is a setter; the property
// name is decapitalized the way JavaBeans does it, so getURL yields URL.
func AccessorProperty(m Member) (string, bool) {
	var rest string
	switch {
	case len(m.Params) == 0 && strings.HasPrefix(m.Name, "get"):
		rest = m.Name[len("get"):]
	case len(m.Params) == 0 && strings.HasPrefix(m.Name, "is"):
		rest = m.Name[len("is"):]
	case len(m.Params) == 1 && strings.HasPrefix(m.Name, "set"):
		rest = m.Name[len("set"):]
	default:
		return "", false
	}

	first, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsUpper(first) {
		return "", false
	}
	return decapitalizeBean(rest), true
}

func decapitalizeBean(s string) string {
	runes := []rune(s)
	if len(runes) > 1 && unicode.IsUpper(runes[0]) && unicode.IsUpper(runes[1]) {
		return s
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// Registry hands out one Context per scope for a single generation run.
// Contexts are never shared between registries.
type Registry struct {
	equality Equality
	logger   *slog.Logger
	contexts map[string]*Context
	seed     []string
}

// NewRegistry creates a registry whose contexts use equality and are
// pre-seeded with the given framework member names.
func NewRegistry(equality Equality, logger *slog.Logger, reservedMembers ...string) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		equality: equality,
		logger:   logger,
		contexts: make(map[string]*Context),
		seed:     reservedMembers,
	}
}

// Context returns the context for scope, creating it on first use.
func (r *Registry) Context(scope string) *Context {
	if ctx, ok := r.contexts[scope]; ok {
		return ctx
	}
	ctx := NewContext(scope, r.equality, r.logger)
	ctx.LoadPreexistingNames(r.seed...)
	r.contexts[scope] = ctx
	return ctx
}

// Release drops the context for scope once the scope is fully emitted.
func (r *Registry) Release(scope string) {
	delete(r.contexts, scope)
}
