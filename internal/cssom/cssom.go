// Package cssom parses CSS Syntax Level 3 stylesheets into the flat
// declaration/rule model the inliner's cascade resolver walks, building on
// aymerick/douceur's tokenizer-backed parser (itself built on
// gorilla/css's scanner) rather than hand-rolled regexes.
package cssom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Declaration is a single (property, value, important) triple. Value text
// is preserved as written; callers normalize quoting at emission time.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule pairs a raw, pre-split selector-group string with the range of
// Declarations it owns in the stylesheet's shared slice, plus the
// comma-separated branches douceur already split out for us.
type Rule struct {
	Selector string   // exactly as written, e.g. "h1, h2.title"
	Branches []string // Selector split on commas (douceur's split is not bracket- or quote-aware)
	Start    int
	End      int
}

// Stylesheet is the flat parse result for one CSS source (a <style> body,
// a fetched stylesheet, or extra_css).
type Stylesheet struct {
	Declarations []Declaration
	Rules        []Rule
	// AtRules holds every top-level at-rule block, space separated, for
	// optional re-emission (keep_at_rules). Each block is re-serialized
	// from douceur's parsed rule, not copied byte-for-byte from the input.
	AtRules string
}

// ParseError is the one-line message taxonomy from spec §7.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Parse parses a stylesheet body. A structurally invalid qualified rule or
// at-rule aborts with a *ParseError; individual invalid declarations are
// dropped silently, and unknown at-rule bodies parse fine but contribute
// nothing to Rules (they only show up in AtRules).
func Parse(body string) (*Stylesheet, error) {
	sheet, err := parser.Parse(body)
	if err != nil {
		return nil, classifyParseError(err)
	}
	out := &Stylesheet{}
	var atBuf strings.Builder
	collect(sheet.Rules, out, &atBuf)
	out.AtRules = atBuf.String()
	return out, nil
}

func collect(rules []*css.Rule, out *Stylesheet, atBuf *strings.Builder) {
	for _, r := range rules {
		switch r.Kind {
		case css.QualifiedRule:
			start := len(out.Declarations)
			for _, d := range r.Declarations {
				out.Declarations = append(out.Declarations, Declaration{
					Property:  strings.ToLower(strings.TrimSpace(d.Property)),
					Value:     strings.TrimSpace(d.Value),
					Important: d.Important,
				})
			}
			branches := r.Selectors
			if len(branches) == 0 {
				branches = splitSelectorGroup(r.Prelude)
			}
			out.Rules = append(out.Rules, Rule{
				Selector: r.Prelude,
				Branches: branches,
				Start:    start,
				End:      len(out.Declarations),
			})
		case css.AtRule:
			if atBuf.Len() > 0 {
				atBuf.WriteByte(' ')
			}
			atBuf.WriteString(r.String())
		}
	}
}

// splitSelectorGroup is the fallback comma splitter for a qualified rule
// whose Selectors douceur left empty. CSS Syntax Level 3 only, so a bracket/quote-aware split on
// top-level commas is sufficient (§4.3).
func splitSelectorGroup(text string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote rune
	for _, r := range text {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '[' || r == '(':
			depth++
			cur.WriteRune(r)
		case r == ']' || r == ')':
			depth--
			cur.WriteRune(r)
		case r == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

// ParseInlineStyle parses the contents of a style="" attribute into an
// ordered declaration list, reusing douceur's declaration-list parser
// instead of a second hand-rolled splitter. douceur's declaration parser
// is strict about a trailing semicolon, which plain style="" text doesn't
// require, so one is appended before parsing when missing.
func ParseInlineStyle(value string) ([]Declaration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && !strings.HasSuffix(trimmed, ";") {
		trimmed += ";"
	}
	decls, err := parser.ParseDeclarations(trimmed)
	if err != nil {
		return nil, classifyParseError(err)
	}
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, Declaration{
			Property:  strings.ToLower(strings.TrimSpace(d.Property)),
			Value:     strings.TrimSpace(d.Value),
			Important: d.Important,
		})
	}
	return out, nil
}

// classifyParseError maps a douceur/gorilla-css error onto the closest
// spec §7 one-line message. douceur doesn't expose cssparser's structured
// BasicParseErrorKind, so this is necessarily a best-effort mapping.
func classifyParseError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "EOF") || strings.Contains(msg, "end of input"):
		return &ParseError{Message: "End of input"}
	case strings.Contains(msg, "@"):
		return &ParseError{Message: fmt.Sprintf("Invalid @ rule: %s", msg)}
	case strings.Contains(msg, "token") || strings.Contains(msg, "Token"):
		return &ParseError{Message: fmt.Sprintf("Unexpected token: %s", msg)}
	default:
		return &ParseError{Message: "Unknown error"}
	}
}
