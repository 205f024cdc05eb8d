package naming

import (
	"unicode"

	"github.com/jinzhu/inflection"
)

// Inflector pluralizes and singularizes words, honoring configured overrides.
type Inflector struct {
	plural   map[string]string
	singular map[string]string
}

// NewInflector creates an inflector from the override maps in cfg.
func NewInflector(cfg Config) *Inflector {
	return &Inflector{
		plural:   cfg.PluralOverrides,
		singular: cfg.SingularOverrides,
	}
}

// Pluralize converts a singular word to its plural form.
// Checks custom overrides first, then falls back to the inflection library.
func (n *Inflector) Pluralize(word string) string {
	if override, ok := n.plural[word]; ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize converts a plural word to its singular form.
// Checks custom overrides first, then falls back to the inflection library.
func (n *Inflector) Singularize(word string) string {
	if override, ok := n.singular[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// CollectionName pluralizes the last camel case word of an identifier:
// SalesOrderItem -> SalesOrderItems.
func (n *Inflector) CollectionName(identifier string) string {
	start := lastWordStart(identifier)
	return identifier[:start] + n.Pluralize(identifier[start:])
}

func lastWordStart(s string) int {
	runes := []rune(s)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			return len(string(runes[:i]))
		}
	}
	return 0
}
