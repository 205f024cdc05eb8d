package naming

import (
	"regexp"
	"strings"
	"unicode"
)

var repeatedUnderscores = regexp.MustCompile(`_{2,}`)

// Sanitize turns an arbitrary string into a syntactically valid identifier of
// the given kind. It does not check reserved words and may return "".
func Sanitize(raw string, kind Kind, lang Language) string {
	s := RemoveSpaces(raw)
	s = RemoveInvalidCharacters(s, lang)
	if s == "" {
		return ""
	}

	switch kind.casing() {
	case casingUpperCamel:
		return Capitalize(s)
	case casingUpperSnake:
		return ToConstantName(s)
	case casingLower:
		return strings.ToLower(s)
	default:
		return UncapitalizeLeadingAcronym(s)
	}
}

// RemoveSpaces trims s and, when it consists of several whitespace separated
// words, capitalizes and concatenates them.
// Example: " sales order item " -> "SalesOrderItem"
func RemoveSpaces(s string) string {
	words := strings.Fields(s)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	for i, word := range words {
		words[i] = Capitalize(word)
	}
	return strings.Join(words, "")
}

// RemoveInvalidCharacters drops every rune that may not appear in an
// identifier. Runes before the first legal start rune are dropped as well.
func RemoveInvalidCharacters(s string, lang Language) string {
	var b strings.Builder
	b.Grow(len(s))
	started := false
	for _, r := range s {
		if !started {
			if lang.IsIdentStart(r) {
				started = true
				b.WriteRune(r)
			}
			continue
		}
		if lang.IsIdentPart(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Uncapitalize lower-cases the first rune of s.
func Uncapitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// UncapitalizeLeadingAcronym lower-cases a leading acronym so that it reads as
// one word in lower camel case.
//
//	URLAddress  -> urlAddress
//	URL         -> url
//	HTTP2Server -> http2Server
//	SalesOrder  -> salesOrder
func UncapitalizeLeadingAcronym(s string) string {
	runes := []rune(s)
	run := 0
	for run < len(runes) && unicode.IsUpper(runes[run]) {
		run++
	}

	switch {
	case run >= 3 && run < len(runes) && unicode.IsLower(runes[run]):
		// The last upper-case rune starts the next word.
		for i := 0; i < run-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
		return string(runes)
	case run >= 2 && (run == len(runes) || !unicode.IsLetter(runes[run])):
		for i := 0; i < run; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
		return string(runes)
	default:
		return Uncapitalize(s)
	}
}

// ToConstantName converts a camel case identifier to upper snake case.
// Example: "salesOrderItem" -> "SALES_ORDER_ITEM"
func ToConstantName(s string) string {
	s = CamelToUpperSnake(s)
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	return FixAcronymsInConstantNames(s)
}

// CamelToUpperSnake inserts an underscore at every word boundary and upper
// cases the result. Existing upper snake case input is returned unchanged.
func CamelToUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// FixAcronymsInConstantNames joins acronyms that snake casing split into
// single letters. A run of two or more single-letter segments is merged; runs
// end at a longer segment, at a double underscore, or at either end of s.
// Example: "U_R_L_ADDRESS" -> "URL_ADDRESS"
func FixAcronymsInConstantNames(s string) string {
	segments := strings.Split(s, "_")
	out := make([]string, 0, len(segments))
	var run []string

	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, run[0])
		default:
			out = append(out, strings.Join(run, ""))
		}
		run = run[:0]
	}

	for _, segment := range segments {
		if isSingleUpperLetter(segment) {
			run = append(run, segment)
			continue
		}
		flush()
		out = append(out, segment)
	}
	flush()
	return strings.Join(out, "_")
}

func isSingleUpperLetter(segment string) bool {
	runes := []rune(segment)
	return len(runes) == 1 && unicode.IsUpper(runes[0])
}
