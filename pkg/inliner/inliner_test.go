package inliner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlineDefaults(t *testing.T, htmlText string) string {
	t.Helper()
	engine, err := New(DefaultOptions())
	require.NoError(t, err)
	out, err := engine.Inline(htmlText)
	require.NoError(t, err)
	return out
}

func TestScenario1BasicInline(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1 { color:blue; }</style></head><body><h1>T</h1></body></html>`)
	assert.Contains(t, out, `<h1 style="color: blue;">T</h1>`)
	assert.NotContains(t, out, "<style>")
}

func TestScenario2ExistingInlineStylePreserved(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1 { color:red }</style></head><body><h1 style="font-size: 1px">X</h1></body></html>`)
	assert.Contains(t, out, `font-size: 1px`)
	assert.Contains(t, out, `color: red`)
}

func TestScenario3SpecificityWins(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1 { color:red } #t { color:blue }</style></head><body><h1 id="t">X</h1></body></html>`)
	assert.Contains(t, out, `color: blue`)
	assert.NotContains(t, out, `color: red`)
}

func TestScenario4ImportantBeatsInline(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1 { color:blue !important }</style></head><body><h1 style="color:red">X</h1></body></html>`)
	assert.Contains(t, out, "color: blue")
	assert.NotContains(t, out, "color: blue !important", "!important must not be re-stamped onto a value that overwrote an existing inline declaration")
}

func TestScenario4InlineImportantWins(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1 { color:blue !important }</style></head><body><h1 style="color:red !important">X</h1></body></html>`)
	assert.Contains(t, out, "color: red !important")
}

func TestScenario5WidthMirroringImg(t *testing.T) {
	opts := DefaultOptions()
	opts.ApplyWidthAttributes = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>img { width:100px }</style></head><body><img src="a.png"></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, out, `width="100"`)
	assert.Contains(t, out, `style="width: 100px;"`)
}

func TestScenario5WidthNotMirroredOnDiv(t *testing.T) {
	opts := DefaultOptions()
	opts.ApplyWidthAttributes = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>div { width:100px }</style></head><body><div></div></body></html>`)
	require.NoError(t, err)
	assert.NotContains(t, out, `width=`)
}

func TestScenario6PercentMirroringTable(t *testing.T) {
	opts := DefaultOptions()
	opts.ApplyWidthAttributes = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>table { width:50% !important }</style></head><body><table></table></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, out, `width="50%"`)
	assert.Contains(t, out, `style="width: 50% !important;"`)
}

func TestScenario6PercentNotMirroredOnImg(t *testing.T) {
	opts := DefaultOptions()
	opts.ApplyWidthAttributes = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>img { width:50% }</style></head><body><img src="a.png"></body></html>`)
	require.NoError(t, err)
	assert.NotContains(t, out, `width="50%"`)
}

func TestIgnoredElementHasNoStyle(t *testing.T) {
	out := inlineDefaults(t, `<html><head><style>h1{color:red}</style></head><body><h1 data-css-inline="ignore">X</h1></body></html>`)
	assert.NotContains(t, out, "style=")
}

func TestRoundTripNoCSSPresent(t *testing.T) {
	out := inlineDefaults(t, `<html><head></head><body><p class="a" id="b">hello</p></body></html>`)
	assert.Contains(t, out, `<p class="a" id="b">hello</p>`)
}

func TestIdempotence(t *testing.T) {
	once := inlineDefaults(t, `<html><head><style>h1{color:blue}</style></head><body><h1>T</h1></body></html>`)
	twice := inlineDefaults(t, once)
	assert.Equal(t, once, twice)
}

func TestInlineFragment(t *testing.T) {
	engine, err := New(DefaultOptions())
	require.NoError(t, err)
	out, err := engine.InlineFragment(`<h1>T</h1>`, `h1{color:green}`)
	require.NoError(t, err)
	assert.Contains(t, out, `color: green`)
	assert.NotContains(t, out, "<html>")
}

func TestExtraCSSAppliedLast(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraCSS = "h1{color:green}"
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>h1{color:red}</style></head><body><h1>T</h1></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, out, "color: green")
}

func TestMinifyCSS(t *testing.T) {
	opts := DefaultOptions()
	opts.MinifyCSS = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>h1{color:blue;font-size:2px}</style></head><body><h1>T</h1></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, out, `style="color:blue;font-size:2px"`)
}

func TestOptionErrorOnNegativeCacheSize(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheSize = -1
	_, err := New(opts)
	require.Error(t, err)
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, KindOptionError, ierr.Kind)
}

func TestRemoveInlinedSelectorsDropsConsumedRule(t *testing.T) {
	opts := DefaultOptions()
	opts.RemoveInlinedSelectors = true
	opts.KeepStyleTags = true
	engine, err := New(opts)
	require.NoError(t, err)
	out, err := engine.Inline(`<html><head><style>h1{color:red} .unused{color:blue}</style></head><body><h1>T</h1></body></html>`)
	require.NoError(t, err)
	styleStart := indexOf(out, "<style>") + len("<style>")
	styleEnd := indexOf(out, "</style>")
	require.Greater(t, styleEnd, styleStart)
	styleBody := out[styleStart:styleEnd]
	assert.NotContains(t, styleBody, "h1")
	assert.Contains(t, styleBody, ".unused")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
