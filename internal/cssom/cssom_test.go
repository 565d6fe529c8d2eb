package cssom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicRule(t *testing.T) {
	sheet, err := Parse(`h1 { color: blue; font-size: 12px; }`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	rule := sheet.Rules[0]
	assert.Equal(t, []string{"h1"}, rule.Branches)
	decls := sheet.Declarations[rule.Start:rule.End]
	require.Len(t, decls, 2)
	assert.Equal(t, "color", decls[0].Property)
	assert.Equal(t, "blue", decls[0].Value)
	assert.False(t, decls[0].Important)
}

func TestParseCommaSelectorGroup(t *testing.T) {
	sheet, err := Parse(`h1, h2.title { color: red }`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []string{"h1", "h2.title"}, sheet.Rules[0].Branches)
}

func TestParseImportant(t *testing.T) {
	sheet, err := Parse(`p { color: blue !important }`)
	require.NoError(t, err)
	decls := sheet.Declarations[sheet.Rules[0].Start:sheet.Rules[0].End]
	require.Len(t, decls, 1)
	assert.True(t, decls[0].Important)
}

func TestParseAtRulePreserved(t *testing.T) {
	sheet, err := Parse(`@media screen { h1 { color: red } } p { color: blue }`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1, "rules inside an at-rule block are not flattened into the top-level rule list")
	assert.Equal(t, "p", sheet.Rules[0].Selector)
	assert.NotEmpty(t, sheet.AtRules)
}

func TestParseInlineStyle(t *testing.T) {
	decls, err := ParseInlineStyle(`font-size: 1px; color: red !important`)
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "font-size", decls[0].Property)
	assert.Equal(t, "1px", decls[0].Value)
	assert.True(t, decls[1].Important)
}

func TestSplitSelectorGroupBracketAware(t *testing.T) {
	parts := splitSelectorGroup(`a[href="a,b"], b`)
	require.Len(t, parts, 2)
	assert.Equal(t, `a[href="a,b"]`, parts[0])
	assert.Equal(t, "b", parts[1])
}
