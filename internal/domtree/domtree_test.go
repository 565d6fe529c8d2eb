package domtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseDocumentAssignsRootID(t *testing.T) {
	doc, err := ParseDocument(`<html><body><h1>hi</h1></body></html>`, 32)
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), doc.ID(doc.Root))
}

func TestStyleNodesRegistered(t *testing.T) {
	doc, err := ParseDocument(`<html><head><style>h1{color:red}</style></head><body></body></html>`, 32)
	require.NoError(t, err)
	require.Len(t, doc.StyleNodes(), 1)
	assert.Equal(t, "style", TagName(doc.StyleNodes()[0]))
}

func TestIgnoredStyleNotRegistered(t *testing.T) {
	doc, err := ParseDocument(`<html><head><style data-css-inline="ignore">h1{color:red}</style></head><body></body></html>`, 32)
	require.NoError(t, err)
	assert.Len(t, doc.StyleNodes(), 0)
}

func TestKeepFlagDoesNotAffectRegistration(t *testing.T) {
	doc, err := ParseDocument(`<html><head><style data-css-inline="keep">h1{color:red}</style></head><body></body></html>`, 32)
	require.NoError(t, err)
	require.Len(t, doc.StyleNodes(), 1)
	assert.True(t, doc.IsKept(doc.StyleNodes()[0]))
}

func TestLinkNodesRequireStylesheetRelAndHref(t *testing.T) {
	html := `<html><head>
		<link rel="stylesheet" href="a.css">
		<link rel="icon" href="favicon.ico">
		<link rel="stylesheet" href="">
	</head><body></body></html>`
	doc, err := ParseDocument(html, 32)
	require.NoError(t, err)
	require.Len(t, doc.LinkNodes(), 1)
	href, _ := Attr(doc.LinkNodes()[0], "href")
	assert.Equal(t, "a.css", href)
}

func TestIgnoredDescendantsPropagate(t *testing.T) {
	doc, err := ParseDocument(`<html><body><div data-css-inline="ignore"><span id="x"></span></div></body></html>`, 32)
	require.NoError(t, err)
	var span *html.Node
	_ = span
	for _, n := range doc.AllElements() {
		if TagName(n) == "span" {
			span = n
		}
	}
	require.NotNil(t, span)
	assert.True(t, doc.IsIgnored(span))
}

func TestIndexingThreshold(t *testing.T) {
	small, err := ParseDocument(`<html><body><p id="a"></p></body></html>`, 32)
	require.NoError(t, err)
	assert.False(t, small.HasIndex())

	big := `<html><body>` + strings.Repeat(`<p class="x">padding text here to exceed the threshold</p>`, 40) + `</body></html>`
	large, err := ParseDocument(big, 32)
	require.NoError(t, err)
	assert.True(t, large.HasIndex())
	assert.NotEmpty(t, large.ByClass("x"))
}

func TestSerializeRoundTripNoStyle(t *testing.T) {
	input := `<html><head></head><body><h1 class="a">T</h1></body></html>`
	doc, err := ParseDocument(input, 32)
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, doc.Serialize(&sb, SerializeOptions{}))
	assert.Contains(t, sb.String(), `<h1 class="a">T</h1>`)
}

func TestSerializeSkipsStyleByDefault(t *testing.T) {
	doc, err := ParseDocument(`<html><head><style>h1{color:red}</style></head><body></body></html>`, 32)
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, doc.Serialize(&sb, SerializeOptions{}))
	assert.NotContains(t, sb.String(), "<style>")
}

func TestFragmentModeHasNoWrapper(t *testing.T) {
	doc, err := ParseFragment(`<h1>hi</h1><p>there</p>`, 32)
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, doc.Serialize(&sb, SerializeOptions{}))
	out := sb.String()
	assert.Contains(t, out, "<h1>hi</h1>")
	assert.NotContains(t, out, "<html>")
	assert.NotContains(t, out, "<body>")
}
