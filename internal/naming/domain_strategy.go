package naming

import (
	"strings"
	"unicode"
)

// DomainOptions configures the affixes the domain-specific convention strips
// or enforces.
type DomainOptions struct {
	// EntityPrefixes are tried in order; only the first match is removed.
	EntityPrefixes []string
	// PropertyPrefixes are tried in order; only the first match is removed.
	PropertyPrefixes []string
	// ClassSuffixes are all removed, in order, after casing.
	ClassSuffixes []string
	// ServicePrefixes and ServiceSuffixes are matched case-insensitively
	// against service identifiers.
	ServicePrefixes []string
	ServiceSuffixes []string
	// NavigationFieldToken leads every navigation field, NavigationConstantToken
	// every navigation constant.
	NavigationFieldToken    string
	NavigationConstantToken string
}

// DefaultDomainOptions mirrors the conventions of published S/4HANA APIs.
func DefaultDomainOptions() DomainOptions {
	return DomainOptions{
		EntityPrefixes:          []string{"A_"},
		PropertyPrefixes:        []string{"to_", "SAP_"},
		ClassSuffixes:           []string{"Type", "_"},
		ServicePrefixes:         []string{"API_"},
		ServiceSuffixes:         []string{"_SRV"},
		NavigationFieldToken:    "to",
		NavigationConstantToken: "TO_",
	}
}

// DomainStrategy applies the domain-specific naming convention on top of the
// shared pipeline.
type DomainStrategy struct {
	*Pipeline
	opts DomainOptions
}

var _ Strategy = (*DomainStrategy)(nil)

// NewDomainStrategy creates the domain-specific strategy.
func NewDomainStrategy(lang Language, source NameSource, opts DomainOptions) *DomainStrategy {
	s := &DomainStrategy{opts: opts}
	s.Pipeline = NewPipeline(lang, source,
		[]Transform{
			s.stripEntityPrefix,
			s.stripPropertyPrefix,
			stripNavigationMethodToken,
			s.stripServiceAffixes,
			serviceWords,
		},
		[]Transform{
			s.stripClassSuffixes,
			s.enforceNavigationToken,
			fluentHelperSuffix,
			serviceClassSuffix,
		},
	)
	return s
}

// Options returns the configured affixes.
func (s *DomainStrategy) Options() DomainOptions {
	return s.opts
}

func (s *DomainStrategy) stripEntityPrefix(kind Kind, name string) string {
	switch kind {
	case KindClass, KindFluentHelperClass:
		return trimFirstPrefix(name, s.opts.EntityPrefixes)
	}
	return name
}

func (s *DomainStrategy) stripPropertyPrefix(kind Kind, name string) string {
	switch kind {
	case KindField, KindConstant, KindNavigationField, KindNavigationConstant, KindMethod, KindBuilderMethod:
		return trimFirstPrefix(name, s.opts.PropertyPrefixes)
	}
	return name
}

func (s *DomainStrategy) stripServiceAffixes(kind Kind, name string) string {
	if kind != KindServiceClass && kind != KindServicePackage {
		return name
	}
	for _, prefix := range s.opts.ServicePrefixes {
		if prefix != "" && len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
			break
		}
	}
	for _, suffix := range s.opts.ServiceSuffixes {
		if suffix != "" && len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
			name = name[:len(name)-len(suffix)]
		}
	}
	return name
}

func (s *DomainStrategy) stripClassSuffixes(kind Kind, name string) string {
	if kind != KindClass && kind != KindFluentHelperClass {
		return name
	}
	for _, suffix := range s.opts.ClassSuffixes {
		if suffix != "" && len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

func (s *DomainStrategy) enforceNavigationToken(kind Kind, name string) string {
	switch kind {
	case KindNavigationField:
		token := s.opts.NavigationFieldToken
		if token == "" || hasCamelToken(name, token) {
			return name
		}
		return token + Capitalize(name)
	case KindNavigationConstant:
		token := s.opts.NavigationConstantToken
		if token == "" || strings.HasPrefix(name, token) {
			return name
		}
		return token + name
	}
	return name
}

// stripNavigationMethodToken removes a leading "to" (any case) and then a
// leading underscore from navigation method names: to_Item -> Item,
// Tomorrow -> morrow. A name that is only the token becomes empty.
func stripNavigationMethodToken(kind Kind, name string) string {
	if kind != KindNavigationMethod {
		return name
	}
	if len(name) >= 2 && strings.EqualFold(name[:2], "to") {
		name = name[2:]
	}
	return strings.TrimPrefix(name, "_")
}

func trimFirstPrefix(name string, prefixes []string) string {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// hasCamelToken reports whether name already starts with token as a separate
// camel case word, e.g. "toItem" but not "tomato".
func hasCamelToken(name, token string) bool {
	if !strings.HasPrefix(name, token) {
		return false
	}
	rest := []rune(name[len(token):])
	return len(rest) > 0 && !unicode.IsLower(rest[0])
}
