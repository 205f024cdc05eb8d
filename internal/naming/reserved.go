package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// Language describes the identifier rules of the target language that
// generated sources are written in.
type Language struct {
	Name         string
	Keywords     map[string]bool
	IsIdentStart func(r rune) bool
	IsIdentPart  func(r rune) bool
}

// javaKeywords contains Java reserved words and literals that cannot be used
// as identifiers.
var javaKeywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true, "while": true,
	"_": true,

	// Literals
	"true":  true,
	"false": true,
	"null":  true,
}

// goKeywords contains Go keywords. Predeclared identifiers are not included
// because they may be shadowed.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// Java is the default target language.
var Java = Language{
	Name:     "java",
	Keywords: javaKeywords,
	IsIdentStart: func(r rune) bool {
		return unicode.IsLetter(r) || r == '_' || r == '$'
	},
	IsIdentPart: func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
	},
}

// Go targets generated Go sources.
var Go = Language{
	Name:     "go",
	Keywords: goKeywords,
	IsIdentStart: func(r rune) bool {
		return unicode.IsLetter(r) || r == '_'
	},
	IsIdentPart: func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	},
}

// LanguageByName returns a built-in language profile.
func LanguageByName(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "java":
		return Java, nil
	case "go", "golang":
		return Go, nil
	default:
		return Language{}, fmt.Errorf("unsupported target language %q (use java or go)", name)
	}
}

// IsReserved checks the lowercased candidate against the keyword table.
func (l Language) IsReserved(candidate string) bool {
	return l.Keywords[strings.ToLower(candidate)]
}

// AppendSuffixIfReserved appends suffix once when candidate is reserved. The
// result is not re-checked.
func (l Language) AppendSuffixIfReserved(candidate, suffix string) string {
	if l.IsReserved(candidate) {
		return candidate + suffix
	}
	return candidate
}
