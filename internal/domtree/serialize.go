package domtree

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// SerializeOptions controls which tags the writer is allowed to skip.
type SerializeOptions struct {
	KeepStyleTags bool
	KeepLinkTags  bool
}

// Serialize walks the document from Root in document order and writes
// HTML5 text, honoring the style/link suppression flags and the
// per-element data-css-inline="keep" override (§4.7).
func (d *Document) Serialize(w io.Writer, opts SerializeOptions) error {
	sw := &serializeWriter{w: w}
	for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
		d.serializeNode(sw, c, opts)
		if sw.err != nil {
			return sw.err
		}
	}
	return sw.err
}

type serializeWriter struct {
	w   io.Writer
	err error
}

func (s *serializeWriter) writeString(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (d *Document) serializeNode(w *serializeWriter, n *html.Node, opts SerializeOptions) {
	if w.err != nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		w.writeString(escapeText(n.Data))
	case html.CommentNode:
		w.writeString("<!--")
		w.writeString(n.Data)
		w.writeString("-->")
	case html.DoctypeNode:
		w.writeString("<!DOCTYPE ")
		w.writeString(n.Data)
		w.writeString(">\n")
	case html.ElementNode:
		tag := TagName(n)
		if tag == "style" && !opts.KeepStyleTags && !d.IsKept(n) {
			return
		}
		if tag == "link" && !opts.KeepLinkTags && relHasStylesheetToken(n) {
			return
		}
		d.serializeElement(w, n, tag, opts)
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			d.serializeNode(w, c, opts)
		}
	}
}

func (d *Document) serializeElement(w *serializeWriter, n *html.Node, tag string, opts SerializeOptions) {
	w.writeString("<")
	w.writeString(tag)
	for _, a := range n.Attr {
		w.writeString(" ")
		w.writeString(a.Key)
		w.writeString(`="`)
		w.writeString(escapeAttr(a.Val))
		w.writeString(`"`)
	}
	if voidElements[tag] {
		w.writeString(">")
		return
	}
	w.writeString(">")
	if rawTextElements[tag] {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				w.writeString(c.Data)
			}
		}
		w.writeString("</")
		w.writeString(tag)
		w.writeString(">")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.serializeNode(w, c, opts)
	}
	w.writeString("</")
	w.writeString(tag)
	w.writeString(">")
}

// voidElements never have a closing tag or children, per HTML5.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements emit their text content unescaped.
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

func escapeText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func escapeAttr(s string) string {
	return strings.NewReplacer("&", "&amp;", `"`, "&quot;").Replace(s)
}
