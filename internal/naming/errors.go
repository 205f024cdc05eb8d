package naming

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every fatal naming failure. Use errors.Is to classify an
// error returned from this package or its collaborators.
var (
	ErrNoValidIdentifier      = errors.New("no valid identifier")
	ErrEmptyResult            = errors.New("identifier is empty after sanitization")
	ErrReservedKeyword        = errors.New("identifier is a reserved keyword")
	ErrMissingLegacyParameter = errors.New("previously generated parameter is missing")
	ErrMalformedMappingFile   = errors.New("malformed service name mapping file")
)

// Error carries enough context to point a diagnostic at the schema element
// that could not be named.
type Error struct {
	Err        error
	Name       string
	Label      string
	Source     NameSource
	Kind       Kind
	Identifier string
	Detail     string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	fmt.Fprintf(&b, " (kind=%s, name=%q", e.Kind, e.Name)
	if e.Label != "" {
		fmt.Fprintf(&b, ", label=%q", e.Label)
	}
	fmt.Fprintf(&b, ", source=%s", e.Source)
	if e.Identifier != "" {
		fmt.Fprintf(&b, ", identifier=%q", e.Identifier)
	}
	b.WriteString(")")
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNamingError reports whether err stems from identifier derivation.
func IsNamingError(err error) bool {
	var nerr *Error
	return errors.As(err, &nerr)
}
