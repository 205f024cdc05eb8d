package naming

import (
	"fmt"
	"strings"
)

// Kind identifies the syntactic role an identifier plays in generated source.
// Each kind carries its own casing convention and keyword-collision suffix.
type Kind int

const (
	KindClass Kind = iota
	KindField
	KindConstant
	KindNavigationField
	KindNavigationConstant
	KindMethod
	KindNavigationMethod
	KindBuilderMethod
	KindOperationMethod
	KindMethodParameter
	KindFluentHelperClass
	KindServiceClass
	KindServicePackage
)

var kindNames = map[Kind]string{
	KindClass:              "class",
	KindField:              "field",
	KindConstant:           "constant",
	KindNavigationField:    "navigation_field",
	KindNavigationConstant: "navigation_constant",
	KindMethod:             "method",
	KindNavigationMethod:   "navigation_method",
	KindBuilderMethod:      "builder_method",
	KindOperationMethod:    "operation_method",
	KindMethodParameter:    "method_parameter",
	KindFluentHelperClass:  "fluent_helper_class",
	KindServiceClass:       "service_class",
	KindServicePackage:     "service_package",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// casing is the case convention applied by the sanitizer for a kind.
type casing int

const (
	casingUpperCamel casing = iota
	casingLowerCamel
	casingUpperSnake
	casingLower
)

func (k Kind) casing() casing {
	switch k {
	case KindClass, KindFluentHelperClass, KindServiceClass:
		return casingUpperCamel
	case KindConstant, KindNavigationConstant:
		return casingUpperSnake
	case KindServicePackage:
		return casingLower
	default:
		return casingLowerCamel
	}
}

// keywordSuffix is appended once when a candidate of this kind collides with a
// reserved word of the target language.
func (k Kind) keywordSuffix() string {
	switch k {
	case KindClass, KindServiceClass:
		return "Entity"
	case KindField, KindNavigationField, KindBuilderMethod:
		return "Property"
	case KindConstant, KindNavigationConstant:
		return "_PROPERTY"
	case KindMethod, KindNavigationMethod, KindOperationMethod:
		return "Function"
	case KindMethodParameter:
		return "Parameter"
	case KindFluentHelperClass:
		return "Objects"
	case KindServicePackage:
		return "service"
	default:
		return "_"
	}
}

// NameSource selects which half of a RawName feeds identifier derivation.
type NameSource int

const (
	SourceName NameSource = iota
	SourceLabel
)

func (s NameSource) String() string {
	if s == SourceLabel {
		return "label"
	}
	return "name"
}

// ParseNameSource maps a configuration value to a NameSource.
func ParseNameSource(value string) (NameSource, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "name":
		return SourceName, nil
	case "label":
		return SourceLabel, nil
	default:
		return SourceName, fmt.Errorf("unsupported name source %q (use name or label)", value)
	}
}

// RawName is the technical name of a schema element and its optional
// human-readable label.
type RawName struct {
	Name  string
	Label string
}

// Pick returns the string the given source selects. The label only wins when
// it is requested and not blank.
func (r RawName) Pick(source NameSource) string {
	if source == SourceLabel && strings.TrimSpace(r.Label) != "" {
		return r.Label
	}
	return r.Name
}
