// Package selector compiles CSS selectors into matchers against the
// golang.org/x/net/html node tree, using andybalholm/cascadia for the
// actual matching (the same backend goquery itself delegates to) and
// computing the a/b/c specificity triple the cascade resolver needs.
package selector

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/css-inline/css-inline-go/internal/domtree"
)

// Specificity packs CSS specificity (a, b, c) into a single uint32 so
// cascade comparisons are a plain integer compare: a in bits 20-31, b in
// bits 10-19, c in bits 0-9 (§3, §4.3).
type Specificity uint32

// MaxSpecificity is assigned to declarations coming from a style=""
// attribute, so they always win a cascade tie against stylesheet rules
// unless beaten by !important bookkeeping (§4.5).
const MaxSpecificity Specificity = 0xFFFFFFFF

func newSpecificity(a, b, c int) Specificity {
	clamp := func(v, max int) uint32 {
		if v < 0 {
			return 0
		}
		if v > max {
			return uint32(max)
		}
		return uint32(v)
	}
	return Specificity(clamp(a, 0xFFF)<<20 | clamp(b, 0x3FF)<<10 | clamp(c, 0x3FF))
}

// Compiled is one branch of a (possibly comma-separated) selector group:
// a single cascadia matcher plus its specificity and special-case flags.
type Compiled struct {
	Text         string
	Specificity  Specificity
	matcher      cascadia.Sel
	neverMatches bool
	linkFilter   bool // strip :link/:any-link, then post-filter matches
	IndexHint    *IndexHint
}

// IndexHint describes the rightmost compound of a selector branch, used to
// shrink a full tree scan down to a candidate set when the document built
// id/class/tag indices (§4.4).
type IndexHint struct {
	Kind indexKind
	Name string
}

type indexKind int

const (
	HintNone indexKind = iota
	HintID
	HintClass
	HintTag
)

// dynamicPseudoClasses never match static documents (§4.3 Non-goals).
var dynamicPseudoClasses = []string{
	":active", ":focus", ":hover", ":enabled", ":disabled",
	":checked", ":indeterminate", ":visited",
}

var linkPseudoRe = regexp.MustCompile(`:any-link\b|:link\b`)

// Compile compiles a single selector branch (no top-level commas — split
// those with cssom.Rule.Branches first).
func Compile(text string) (*Compiled, error) {
	trimmed := strings.TrimSpace(text)
	c := &Compiled{Text: trimmed}

	lower := strings.ToLower(trimmed)
	for _, dyn := range dynamicPseudoClasses {
		if strings.Contains(lower, dyn) {
			c.neverMatches = true
		}
	}

	matchText := trimmed
	if linkPseudoRe.MatchString(lower) {
		c.linkFilter = true
		matchText = linkPseudoRe.ReplaceAllString(trimmed, "")
		if matchText == "" {
			matchText = "a, area, link"
		}
	}

	if !c.neverMatches {
		sel, err := cascadia.Compile(matchText)
		if err != nil {
			return nil, err
		}
		c.matcher = sel
	}

	c.Specificity = computeSpecificity(trimmed)
	c.IndexHint = computeIndexHint(trimmed)
	return c, nil
}

// Match reports whether n satisfies this compiled branch.
func (c *Compiled) Match(n *html.Node) bool {
	if c.neverMatches || c.matcher == nil {
		return false
	}
	if !c.matcher.Match(n) {
		return false
	}
	if c.linkFilter && !isLink(n) {
		return false
	}
	return true
}

func isLink(n *html.Node) bool {
	tag := domtree.TagName(n)
	if tag != "a" && tag != "area" && tag != "link" {
		return false
	}
	href, ok := domtree.Attr(n, "href")
	return ok && href != ""
}

// MatchAll scans candidates (either the full AllElements() list, or an
// index-derived candidate set) and returns the matching subset in
// document order.
func (c *Compiled) MatchAll(candidates []*html.Node) []*html.Node {
	if c.neverMatches {
		return nil
	}
	out := make([]*html.Node, 0, len(candidates))
	for _, n := range candidates {
		if c.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Candidates picks the narrowest known candidate set for this branch: an
// index lookup when the document is indexed and a hint was found,
// otherwise every element in the document.
func (c *Compiled) Candidates(doc *domtree.Document) []*html.Node {
	if doc.HasIndex() && c.IndexHint != nil {
		switch c.IndexHint.Kind {
		case HintID:
			return doc.ByID(c.IndexHint.Name)
		case HintClass:
			return doc.ByClass(c.IndexHint.Name)
		case HintTag:
			return doc.ByTag(c.IndexHint.Name)
		}
	}
	return doc.AllElements()
}

// compoundRe pulls the rightmost simple-selector compound out of a
// combinator chain (descendant/child/sibling), e.g. "div.a > #b.c" -> "#b.c".
var compoundRe = regexp.MustCompile(`[^\s>+~]+$`)

func computeIndexHint(sel string) *IndexHint {
	// Comma groups are split upstream; a combinator or pseudo-element
	// anywhere still allows hinting off the rightmost compound, since
	// cascadia re-verifies the full selector regardless — the hint only
	// narrows candidates, it never decides a match. Attribute selectors,
	// functional pseudo-classes, quotes and escapes can carry '#', '.' or
	// whitespace that would be misread as part of the rightmost compound,
	// so such branches get no hint and fall back to a full scan.
	if strings.ContainsAny(sel, "[(\"'\\") {
		return nil
	}
	m := compoundRe.FindString(sel)
	if m == "" {
		return nil
	}
	if idx := strings.IndexByte(m, '#'); idx >= 0 {
		name := idToken(m[idx+1:])
		if name != "" {
			return &IndexHint{Kind: HintID, Name: name}
		}
	}
	if idx := strings.IndexByte(m, '.'); idx >= 0 {
		name := idToken(m[idx+1:])
		if name != "" {
			return &IndexHint{Kind: HintClass, Name: name}
		}
	}
	tag := strings.ToLower(idToken(m))
	if tag != "" && tag != "*" {
		return &IndexHint{Kind: HintTag, Name: tag}
	}
	return nil
}

func idToken(s string) string {
	for i, r := range s {
		if r == '.' || r == '#' || r == '[' || r == ':' {
			return s[:i]
		}
	}
	return s
}

var (
	idRe    = regexp.MustCompile(`#[A-Za-z0-9_-]+`)
	classRe = regexp.MustCompile(`\.[A-Za-z0-9_-]+`)
	attrRe  = regexp.MustCompile(`\[[^\]]+\]`)
	// pseudoClassRe counts pseudo-classes but not pseudo-elements (::foo or
	// legacy single-colon :before/:after, which are element-level).
	pseudoClassRe   = regexp.MustCompile(`:[A-Za-z-]+(\([^)]*\))?`)
	pseudoElementRe = regexp.MustCompile(`::[A-Za-z-]+|:(before|after|first-line|first-letter)\b`)
	elementRe       = regexp.MustCompile(`(^|[\s>+~(,])([A-Za-z][A-Za-z0-9-]*)`)
)

// computeSpecificity counts ids (a), classes/attributes/pseudo-classes
// (b), and type selectors/pseudo-elements (c) per the CSS specificity
// algorithm (§4.3). It's a textual approximation like the teacher's
// regex-based calculator, sufficient since we never need exact parse-tree
// specificity, only a total cascade order.
func computeSpecificity(sel string) Specificity {
	a := len(idRe.FindAllString(sel, -1))

	pseudoElements := pseudoElementRe.FindAllString(sel, -1)
	withoutPseudoElements := pseudoElementRe.ReplaceAllString(sel, " ")

	b := len(classRe.FindAllString(withoutPseudoElements, -1))
	b += len(attrRe.FindAllString(withoutPseudoElements, -1))
	b += len(pseudoClassRe.FindAllString(withoutPseudoElements, -1))

	withoutIDs := idRe.ReplaceAllString(withoutPseudoElements, " ")
	withoutClasses := classRe.ReplaceAllString(withoutIDs, " ")
	withoutAttrs := attrRe.ReplaceAllString(withoutClasses, " ")
	withoutPseudoClasses := pseudoClassRe.ReplaceAllString(withoutAttrs, " ")

	c := len(elementRe.FindAllString(withoutPseudoClasses, -1))
	c += len(pseudoElements)
	// "*" is explicitly zero-specificity and elementRe never matches it.

	return newSpecificity(a, b, c)
}
