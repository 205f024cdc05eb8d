package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// Strategy derives final, validated identifiers for every identifier kind.
// Implementations differ only in the transforms they compose into their
// Pipeline.
type Strategy interface {
	ClassNameFor(name, label string) (string, error)
	FieldNameFor(name, label string) (string, error)
	ConstantNameFor(name, label string) (string, error)
	NavigationFieldNameFor(name, label string) (string, error)
	NavigationConstantNameFor(name, label string) (string, error)
	MethodNameFor(name, label string) (string, error)
	NavigationMethodNameFor(name, label string) (string, error)
	BuilderMethodNameFor(name, label string) (string, error)
	OperationMethodNameFor(name, label string) (string, error)
	MethodParameterNameFor(name, label string) (string, error)
	FluentHelperClassNameFor(name, label string) (string, error)
	ServiceClassNameFor(serviceID string) (string, error)
	ServicePackageNameFor(serviceID string) (string, error)

	NameFor(kind Kind, raw RawName) (string, error)
	NameSource() NameSource
	Language() Language
}

// Transform rewrites an intermediate name of the given kind. Transforms must
// leave kinds they do not handle untouched.
type Transform func(kind Kind, s string) string

// Pipeline is the shared derivation algorithm. Pre-case transforms run on the
// chosen source string, post-case transforms on the sanitized identifier.
type Pipeline struct {
	lang     Language
	source   NameSource
	preCase  []Transform
	postCase []Transform
}

// NewPipeline composes a pipeline from explicit transform lists.
func NewPipeline(lang Language, source NameSource, preCase, postCase []Transform) *Pipeline {
	return &Pipeline{
		lang:     lang,
		source:   source,
		preCase:  preCase,
		postCase: postCase,
	}
}

// NameSource returns the configured name source.
func (p *Pipeline) NameSource() NameSource {
	return p.source
}

// Language returns the target language.
func (p *Pipeline) Language() Language {
	return p.lang
}

// NameFor runs the full derivation for one identifier.
func (p *Pipeline) NameFor(kind Kind, raw RawName) (string, error) {
	chosen := raw.Pick(p.source)
	if strings.TrimSpace(chosen) == "" {
		return "", p.fail(ErrNoValidIdentifier, kind, raw, "")
	}

	s := chosen
	for _, transform := range p.preCase {
		s = transform(kind, s)
	}

	s = Sanitize(s, kind, p.lang)
	if strings.TrimSpace(s) == "" {
		return "", p.fail(ErrEmptyResult, kind, raw, s)
	}

	for _, transform := range p.postCase {
		s = transform(kind, s)
	}
	if strings.TrimSpace(s) == "" {
		return "", p.fail(ErrEmptyResult, kind, raw, s)
	}

	s = p.lang.AppendSuffixIfReserved(s, kind.keywordSuffix())
	if p.lang.IsReserved(s) {
		return "", p.fail(ErrReservedKeyword, kind, raw, s)
	}
	return s, nil
}

func (p *Pipeline) fail(err error, kind Kind, raw RawName, identifier string) error {
	return &Error{
		Err:        err,
		Name:       raw.Name,
		Label:      raw.Label,
		Source:     p.source,
		Kind:       kind,
		Identifier: identifier,
	}
}

func (p *Pipeline) ClassNameFor(name, label string) (string, error) {
	return p.NameFor(KindClass, RawName{Name: name, Label: label})
}

func (p *Pipeline) FieldNameFor(name, label string) (string, error) {
	return p.NameFor(KindField, RawName{Name: name, Label: label})
}

func (p *Pipeline) ConstantNameFor(name, label string) (string, error) {
	return p.NameFor(KindConstant, RawName{Name: name, Label: label})
}

func (p *Pipeline) NavigationFieldNameFor(name, label string) (string, error) {
	return p.NameFor(KindNavigationField, RawName{Name: name, Label: label})
}

func (p *Pipeline) NavigationConstantNameFor(name, label string) (string, error) {
	return p.NameFor(KindNavigationConstant, RawName{Name: name, Label: label})
}

func (p *Pipeline) MethodNameFor(name, label string) (string, error) {
	return p.NameFor(KindMethod, RawName{Name: name, Label: label})
}

func (p *Pipeline) NavigationMethodNameFor(name, label string) (string, error) {
	return p.NameFor(KindNavigationMethod, RawName{Name: name, Label: label})
}

func (p *Pipeline) BuilderMethodNameFor(name, label string) (string, error) {
	return p.NameFor(KindBuilderMethod, RawName{Name: name, Label: label})
}

func (p *Pipeline) OperationMethodNameFor(name, label string) (string, error) {
	return p.NameFor(KindOperationMethod, RawName{Name: name, Label: label})
}

func (p *Pipeline) MethodParameterNameFor(name, label string) (string, error) {
	return p.NameFor(KindMethodParameter, RawName{Name: name, Label: label})
}

func (p *Pipeline) FluentHelperClassNameFor(name, label string) (string, error) {
	return p.NameFor(KindFluentHelperClass, RawName{Name: name, Label: label})
}

// ServiceClassNameFor derives the top-level service class name from an
// external service identifier such as API_MATERIAL_DOCUMENT_SRV. Service
// identifiers have no label.
func (p *Pipeline) ServiceClassNameFor(serviceID string) (string, error) {
	return p.NameFor(KindServiceClass, RawName{Name: serviceID})
}

// ServicePackageNameFor derives the package name segment for a service.
func (p *Pipeline) ServicePackageNameFor(serviceID string) (string, error) {
	return p.NameFor(KindServicePackage, RawName{Name: serviceID})
}

var nonAlphanumeric = regexp.MustCompile(`[^\pL\pN]+`)

// serviceWords splits a service identifier into words so that
// API_MATERIAL_DOCUMENT_SRV reads as "Api Material Document Srv".
func serviceWords(kind Kind, s string) string {
	if kind != KindServiceClass && kind != KindServicePackage {
		return s
	}
	parts := nonAlphanumeric.Split(s, -1)
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isAllUpper(part) {
			part = Capitalize(strings.ToLower(part))
		}
		words = append(words, part)
	}
	return strings.Join(words, " ")
}

func serviceClassSuffix(kind Kind, s string) string {
	if kind != KindServiceClass || strings.HasSuffix(s, "Service") {
		return s
	}
	return s + "Service"
}

func fluentHelperSuffix(kind Kind, s string) string {
	if kind != KindFluentHelperClass {
		return s
	}
	return s + "FluentHelper"
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
