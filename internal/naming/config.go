// Package naming turns raw schema names and labels into valid, unique
// identifiers for generated source code. It covers sanitization, reserved
// word handling, pluggable naming strategies, per-scope collision
// resolution and pluralization.
package naming

import (
	"fmt"
	"strings"
)

// Config holds naming customization options
type Config struct {
	// Strategy selects the naming convention: "default" or "domain".
	Strategy string `mapstructure:"strategy"`

	// NameSource selects whether the technical name or the label is preferred.
	NameSource string `mapstructure:"name_source"`

	// Equality decides when two identifiers in one scope collide:
	// "case_sensitive", "case_insensitive" or "lowercase".
	Equality string `mapstructure:"equality"`

	// Language selects the reserved word table and identifier rules.
	Language string `mapstructure:"language"`

	// Affixes stripped by the domain strategy. Nil falls back to the
	// domain defaults; an empty list disables stripping.
	EntityPrefixes   []string `mapstructure:"entity_prefixes"`
	PropertyPrefixes []string `mapstructure:"property_prefixes"`
	ClassSuffixes    []string `mapstructure:"class_suffixes"`
	ServicePrefixes  []string `mapstructure:"service_prefixes"`
	ServiceSuffixes  []string `mapstructure:"service_suffixes"`

	// ReservedMemberNames are framework member names pre-claimed in every
	// generated class scope.
	ReservedMemberNames []string `mapstructure:"reserved_member_names"`

	// BaseClassSources are source files of base types whose accessors must
	// not be shadowed by generated fields.
	BaseClassSources []string `mapstructure:"base_class_sources"`

	// PluralizeCollections names collection accessors in the plural
	// (getAllPartners instead of getAllPartner).
	PluralizeCollections bool `mapstructure:"pluralize_collections"`

	// PluralOverrides maps singular -> custom plural
	// Example: {"person": "people", "status": "statuses"}
	PluralOverrides map[string]string `mapstructure:"plural_overrides"`

	// SingularOverrides maps plural -> custom singular
	// Example: {"people": "person", "data": "datum"}
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	domain := DefaultDomainOptions()
	return Config{
		Strategy:             "default",
		NameSource:           "name",
		Equality:             "case_insensitive",
		Language:             "java",
		EntityPrefixes:       domain.EntityPrefixes,
		PropertyPrefixes:     domain.PropertyPrefixes,
		ClassSuffixes:        domain.ClassSuffixes,
		ServicePrefixes:      domain.ServicePrefixes,
		ServiceSuffixes:      domain.ServiceSuffixes,
		ReservedMemberNames:  []string{"ALL_FIELDS", "destinationForFetch"},
		PluralizeCollections: true,
		PluralOverrides:      make(map[string]string),
		SingularOverrides:    make(map[string]string),
	}
}

// NewStrategy builds the strategy selected by cfg.
func NewStrategy(cfg Config) (Strategy, error) {
	lang, err := LanguageByName(cfg.Language)
	if err != nil {
		return nil, err
	}
	source, err := ParseNameSource(cfg.NameSource)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case "", "default":
		return NewDefaultStrategy(lang, source), nil
	case "domain":
		return NewDomainStrategy(lang, source, cfg.domainOptions()), nil
	default:
		return nil, fmt.Errorf("unknown naming strategy %q (want default or domain)", cfg.Strategy)
	}
}

func (c Config) domainOptions() DomainOptions {
	opts := DefaultDomainOptions()
	if c.EntityPrefixes != nil {
		opts.EntityPrefixes = c.EntityPrefixes
	}
	if c.PropertyPrefixes != nil {
		opts.PropertyPrefixes = c.PropertyPrefixes
	}
	if c.ClassSuffixes != nil {
		opts.ClassSuffixes = c.ClassSuffixes
	}
	if c.ServicePrefixes != nil {
		opts.ServicePrefixes = c.ServicePrefixes
	}
	if c.ServiceSuffixes != nil {
		opts.ServiceSuffixes = c.ServiceSuffixes
	}
	return opts
}
