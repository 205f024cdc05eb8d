package legacy

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/scanner"
	"unicode"

	"vdm-generator/internal/naming"
)

// ErrUnparsable reports prior output that does not contain a readable class.
var ErrUnparsable = errors.New("unparsable class source")

var typeKeywords = map[string]bool{
	"class":     true,
	"interface": true,
	"enum":      true,
	"record":    true,
}

type token struct {
	kind rune
	text string
}

// ParseJavaClass extracts the package, name, methods and constructors of the
// first top-level type declared in a Java source. Bodies, field initializers
// and nested types are skipped; only member signatures are recorded.
func ParseJavaClass(r io.Reader, filename string) (*ClassSignature, error) {
	toks, err := tokenize(r, filename)
	if err != nil {
		return nil, err
	}

	sig := &ClassSignature{}
	for i := 0; i < len(toks); {
		t := toks[i]
		switch {
		case t.kind == '@':
			i = skipAnnotation(toks, i)
		case isWord(t, "package"):
			var b strings.Builder
			for i++; i < len(toks) && toks[i].kind != ';'; i++ {
				b.WriteString(toks[i].text)
			}
			sig.Package = b.String()
		case t.kind == scanner.Ident && typeKeywords[t.text]:
			if i+1 >= len(toks) || toks[i+1].kind != scanner.Ident {
				return nil, fmt.Errorf("%s: %s without a name: %w", filename, t.text, ErrUnparsable)
			}
			sig.Name = toks[i+1].text
			open := indexOf(toks, i+2, '{')
			if open < 0 {
				return nil, fmt.Errorf("%s: %s %s has no body: %w", filename, t.text, sig.Name, ErrUnparsable)
			}
			body := open + 1
			if t.text == "enum" {
				// Enum constants come first and may carry arguments.
				body = skipEnumConstants(toks, body)
			}
			defaultVis := naming.PackagePrivate
			if t.text == "interface" {
				defaultVis = naming.Public
			}
			if err := parseBody(toks, body, sig, defaultVis); err != nil {
				return nil, fmt.Errorf("%s: %w", filename, err)
			}
			return sig, nil
		default:
			i++
		}
	}
	return nil, fmt.Errorf("%s: no type declaration: %w", filename, ErrUnparsable)
}

func tokenize(r io.Reader, filename string) ([]token, error) {
	var s scanner.Scanner
	s.Init(r)
	s.Filename = filename
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.IsIdentRune = func(ch rune, i int) bool {
		return ch == '_' || ch == '$' || unicode.IsLetter(ch) || (i > 0 && unicode.IsDigit(ch))
	}

	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("%s: %s: %w", s.Position, msg, ErrUnparsable)
		}
	}

	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		toks = append(toks, token{kind: tok, text: s.TokenText()})
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return toks, nil
}

func parseBody(toks []token, i int, sig *ClassSignature, defaultVis naming.Visibility) error {
	var decl []token
	for i < len(toks) {
		t := toks[i]
		switch t.kind {
		case '@':
			i = skipAnnotation(toks, i)
			continue
		case ';':
			decl = decl[:0]
			i++
			continue
		case '}':
			return nil
		case '{':
			// Initializer blocks and nested type bodies.
			i = skipBalanced(toks, i, '{', '}')
			decl = decl[:0]
			continue
		case '=':
			i = skipInitializer(toks, i)
			decl = decl[:0]
			continue
		case '(':
			if len(decl) == 0 || decl[len(decl)-1].kind != scanner.Ident || declaresType(decl) {
				i = skipBalanced(toks, i, '(', ')')
				continue
			}
			name := decl[len(decl)-1].text
			params, next := parseParams(toks, i)
			m := MethodSignature{Name: name, Visibility: visibility(decl, defaultVis), Params: params}
			if name == sig.Name && len(decl) == 1+countModifiers(decl) {
				sig.Constructors = append(sig.Constructors, m)
			} else {
				sig.Methods = append(sig.Methods, m)
			}

			// Skip a throws clause, then the body or the terminating semicolon.
			i = next
			for i < len(toks) && toks[i].kind != '{' && toks[i].kind != ';' {
				i++
			}
			if i < len(toks) && toks[i].kind == '{' {
				i = skipBalanced(toks, i, '{', '}')
			} else {
				i++
			}
			decl = decl[:0]
			continue
		}
		decl = append(decl, t)
		i++
	}
	return fmt.Errorf("class %s: unterminated body: %w", sig.Name, ErrUnparsable)
}

func parseParams(toks []token, i int) ([]string, int) {
	var (
		params []string
		seg    []token
		depth  int
	)
	flush := func() {
		for k := len(seg) - 1; k >= 0; k-- {
			if seg[k].kind == scanner.Ident {
				params = append(params, seg[k].text)
				break
			}
		}
		seg = seg[:0]
	}

	for i++; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case '@':
			i = skipAnnotation(toks, i) - 1
			continue
		case '<', '(':
			depth++
		case '>':
			depth--
		case ')':
			if depth == 0 {
				flush()
				return params, i + 1
			}
			depth--
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		seg = append(seg, t)
	}
	return params, len(toks)
}

// skipAnnotation returns the index after an annotation starting at i.
func skipAnnotation(toks []token, i int) int {
	i++
	if i < len(toks) && isWord(toks[i], "interface") {
		return i
	}
	for i < len(toks) && (toks[i].kind == scanner.Ident || toks[i].kind == '.') {
		i++
	}
	if i < len(toks) && toks[i].kind == '(' {
		i = skipBalanced(toks, i, '(', ')')
	}
	return i
}

// skipBalanced returns the index after the bracket closing the one at i.
func skipBalanced(toks []token, i int, open, close rune) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// skipInitializer returns the index after the semicolon ending a field
// initializer, stepping over lambdas and array literals.
func skipInitializer(toks []token, i int) int {
	for ; i < len(toks); i++ {
		switch toks[i].kind {
		case '{':
			i = skipBalanced(toks, i, '{', '}') - 1
		case '(':
			i = skipBalanced(toks, i, '(', ')') - 1
		case ';':
			return i + 1
		case '}':
			return i
		}
	}
	return len(toks)
}

func skipEnumConstants(toks []token, i int) int {
	for ; i < len(toks); i++ {
		switch toks[i].kind {
		case '(':
			i = skipBalanced(toks, i, '(', ')') - 1
		case '{':
			i = skipBalanced(toks, i, '{', '}') - 1
		case ';':
			return i + 1
		case '}':
			return i
		}
	}
	return len(toks)
}

func indexOf(toks []token, from int, kind rune) int {
	for i := from; i < len(toks); i++ {
		if toks[i].kind == kind {
			return i
		}
	}
	return -1
}

var modifiers = map[string]bool{
	"public": true, "protected": true, "private": true, "static": true,
	"final": true, "abstract": true, "synchronized": true, "native": true,
	"default": true, "strictfp": true,
}

func visibility(decl []token, fallback naming.Visibility) naming.Visibility {
	for _, t := range decl {
		switch {
		case isWord(t, "public"):
			return naming.Public
		case isWord(t, "protected"):
			return naming.Protected
		case isWord(t, "private"):
			return naming.Private
		}
	}
	return fallback
}

func countModifiers(decl []token) int {
	n := 0
	for _, t := range decl {
		if t.kind == scanner.Ident && modifiers[t.text] {
			n++
		}
	}
	return n
}

func declaresType(decl []token) bool {
	for _, t := range decl {
		if t.kind == scanner.Ident && typeKeywords[t.text] {
			return true
		}
	}
	return false
}

func isWord(t token, word string) bool {
	return t.kind == scanner.Ident && t.text == word
}
