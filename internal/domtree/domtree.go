// Package domtree builds a small-integer-id overlay on top of the HTML
// tree produced by golang.org/x/net/html, so the rest of the inliner can
// address nodes by id (for auxiliary indices and style maps) instead of by
// pointer.
package domtree

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeID identifies a node within a Document. Zero is the sentinel "no
// node" value; the document root is always 1.
type NodeID int

const noNode NodeID = 0

// Kind mirrors the tagged payload variants of the data model: Document,
// Doctype, Text, Comment, ProcessingInstruction, Element.
type Kind int

const (
	KindDocument Kind = iota
	KindDoctype
	KindText
	KindComment
	KindProcessingInstruction
	KindElement
)

// Document is the arena: every node reachable from Root is addressable by
// a dense NodeID, and the tree itself is still the native *html.Node graph
// (parent/sibling/child pointers), so NodeKind queries fly through.
type Document struct {
	Root     *html.Node
	Fragment bool

	byID    []*html.Node // index 0 unused, index 1 is Root
	idOf    map[*html.Node]NodeID
	ignored map[*html.Node]bool
	keep    map[*html.Node]bool // data-css-inline="keep", <style> only

	styleNodes []NodeID
	linkNodes  []NodeID

	indexed    bool
	idIndex    map[string]NodeID
	classIndex map[string][]NodeID
	tagIndex   map[string][]NodeID
}

// indexThreshold matches spec §4.4: build auxiliary indices for documents
// larger than ~1 KiB of input.
const indexThreshold = 1024

// ID returns the id assigned to n, or 0 if n does not belong to this
// document (or is nil).
func (d *Document) ID(n *html.Node) NodeID {
	if n == nil {
		return noNode
	}
	return d.idOf[n]
}

// Node returns the node for id, or nil if id is out of range.
func (d *Document) Node(id NodeID) *html.Node {
	if id <= noNode || int(id) >= len(d.byID) {
		return nil
	}
	return d.byID[id]
}

// NodeKind classifies a node the way the spec's tagged payload does.
func NodeKind(n *html.Node) Kind {
	switch n.Type {
	case html.DocumentNode:
		return KindDocument
	case html.DoctypeNode:
		return KindDoctype
	case html.TextNode:
		return KindText
	case html.CommentNode:
		return KindComment
	case html.ElementNode:
		return KindElement
	default:
		// x/net/html folds processing instructions into bogus comments
		// during HTML5 parsing; we never produce KindProcessingInstruction
		// from the parser, but the variant exists in the data model for
		// callers constructing trees programmatically.
		return KindComment
	}
}

// IsIgnored reports whether n (or an ancestor) carries
// data-css-inline="ignore".
func (d *Document) IsIgnored(n *html.Node) bool {
	return d.ignored[n]
}

// IsKept reports whether a <style> node carries data-css-inline="keep".
func (d *Document) IsKept(n *html.Node) bool {
	return d.keep[n]
}

// StyleNodes returns registered <style> elements in document order.
func (d *Document) StyleNodes() []*html.Node {
	return d.resolve(d.styleNodes)
}

// LinkNodes returns registered stylesheet <link> elements in document order.
func (d *Document) LinkNodes() []*html.Node {
	return d.resolve(d.linkNodes)
}

func (d *Document) resolve(ids []NodeID) []*html.Node {
	out := make([]*html.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Node(id))
	}
	return out
}

// HasIndex reports whether the id/class/tag indices were built.
func (d *Document) HasIndex() bool {
	return d.indexed
}

// ByID returns the first element, in document order, whose id attribute
// equals want; the index keeps one element per id value, so later
// elements repeating that id are not returned.
func (d *Document) ByID(want string) []*html.Node {
	if !d.indexed {
		return nil
	}
	if id, ok := d.idIndex[want]; ok {
		return []*html.Node{d.Node(id)}
	}
	return nil
}

// ByClass returns elements carrying the given class token.
func (d *Document) ByClass(want string) []*html.Node {
	if !d.indexed {
		return nil
	}
	return d.resolve(d.classIndex[want])
}

// ByTag returns elements with the given local tag name.
func (d *Document) ByTag(want string) []*html.Node {
	if !d.indexed {
		return nil
	}
	return d.resolve(d.tagIndex[want])
}

// AllElements returns every element node in document order, index or not.
func (d *Document) AllElements() []*html.Node {
	out := make([]*html.Node, 0, len(d.byID))
	for _, n := range d.byID[1:] {
		if n != nil && n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out
}

// Attr returns the value of the named attribute (local name, no
// namespace), and whether it was present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr upserts an attribute, preserving the original position when it
// already exists.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Classes tokenizes the class attribute on whitespace.
func Classes(n *html.Node) []string {
	class, ok := Attr(n, "class")
	if !ok || class == "" {
		return nil
	}
	return strings.Fields(class)
}

// TagName returns the element's local name, lower-cased.
func TagName(n *html.Node) string {
	if n.DataAtom != 0 {
		return n.DataAtom.String()
	}
	return strings.ToLower(n.Data)
}

// TextContent concatenates the text of all descendant text nodes.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.TextNode {
				sb.WriteString(ch.Data)
			} else {
				walk(ch)
			}
		}
	}
	walk(n)
	return sb.String()
}

// SetTextContent replaces all children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Detach unlinks n from the tree without freeing it, as the spec requires.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func relHasStylesheetToken(n *html.Node) bool {
	rel, ok := Attr(n, "rel")
	if !ok {
		return false
	}
	for _, tok := range strings.Fields(rel) {
		if strings.EqualFold(tok, "stylesheet") {
			return true
		}
	}
	return false
}

// build assigns dense ids via document-order DFS, records the
// ignore/keep flags, populates the style/link registries, and builds the
// id/class/tag indices when the input is large enough to make them worth
// the memory (§4.4).
func build(root *html.Node, fragment bool, inputLen, capacityHint int) *Document {
	if capacityHint < 1 {
		capacityHint = 32
	}
	d := &Document{
		Root:     root,
		Fragment: fragment,
		byID:     make([]*html.Node, 1, capacityHint+1),
		idOf:     make(map[*html.Node]NodeID, capacityHint),
		ignored:  make(map[*html.Node]bool),
		keep:     make(map[*html.Node]bool),
	}
	d.indexed = inputLen > indexThreshold
	if d.indexed {
		d.idIndex = make(map[string]NodeID)
		d.classIndex = make(map[string][]NodeID)
		d.tagIndex = make(map[string][]NodeID)
	}

	var walk func(n *html.Node, parentIgnored bool)
	walk = func(n *html.Node, parentIgnored bool) {
		id := NodeID(len(d.byID))
		d.byID = append(d.byID, n)
		d.idOf[n] = id

		ignored := parentIgnored
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "data-css-inline"); ok && v == "ignore" {
				ignored = true
			}
			tag := TagName(n)
			switch {
			case n.DataAtom == atom.Style || tag == "style":
				if !ignored {
					d.styleNodes = append(d.styleNodes, id)
				}
				if v, ok := Attr(n, "data-css-inline"); ok && v == "keep" {
					d.keep[n] = true
				}
			case n.DataAtom == atom.Link || tag == "link":
				if !ignored && relHasStylesheetToken(n) {
					if href, ok := Attr(n, "href"); ok && href != "" {
						d.linkNodes = append(d.linkNodes, id)
					}
				}
			}
			if d.indexed {
				if idVal, ok := Attr(n, "id"); ok && idVal != "" {
					if _, exists := d.idIndex[idVal]; !exists {
						d.idIndex[idVal] = id
					}
				}
				for _, c := range Classes(n) {
					d.classIndex[c] = append(d.classIndex[c], id)
				}
				d.tagIndex[tag] = append(d.tagIndex[tag], id)
			}
		}
		if ignored {
			d.ignored[n] = true
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch, ignored)
		}
	}
	walk(root, false)
	return d
}
