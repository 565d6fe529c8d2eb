package domtree

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDocument parses htmlText in full document mode, with implicit
// <html>/<head>/<body> insertion handled by golang.org/x/net/html's HTML5
// tree builder, then wraps the result in a Document overlay.
func ParseDocument(htmlText string, capacityHint int) (*Document, error) {
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}
	return build(root, false, len(htmlText), capacityHint), nil
}

// ParseFragment parses htmlText as an incomplete snippet inside a synthetic
// <body> context, then reparents the fragment's top-level nodes onto a bare
// Document node so the serializer never emits the wrapping <html>/<body>.
func ParseFragment(htmlText string, capacityHint int) (*Document, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(htmlText), context)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		// n may still be linked to the synthetic context; detach first.
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return build(root, true, len(htmlText), capacityHint), nil
}
