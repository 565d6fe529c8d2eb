package inliner

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/css-inline/css-inline-go/internal/domtree"
)

// dimensionTags lists the elements eligible for width/height mirroring
// (§4.5 step 6).
var dimensionTags = map[string]bool{"table": true, "td": true, "th": true, "img": true}

// percentAllowedTags is the subset that may also mirror percentage values.
var percentAllowedTags = map[string]bool{"table": true, "td": true, "th": true}

var pxOrUnitlessRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(px)?$`)
var percentRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?%$`)

// mirrorDimensions applies §4.5 step 6: px/unitless/auto/percent-on-table
// values acquired from the cascade are copied onto the HTML width/height
// attribute, stripping units and !important, unless the attribute already
// has a value.
func mirrorDimensions(n *html.Node, es *elementStyle, applyWidth, applyHeight bool) {
	if es == nil {
		return
	}
	tag := domtree.TagName(n)
	if !dimensionTags[tag] {
		return
	}
	if applyWidth {
		mirrorOne(n, es, "width", tag)
	}
	if applyHeight {
		mirrorOne(n, es, "height", tag)
	}
}

func mirrorOne(n *html.Node, es *elementStyle, property, tag string) {
	entry, ok := es.values[property]
	if !ok {
		return
	}
	if _, exists := domtree.Attr(n, property); exists {
		return
	}
	mirrored, ok := mirrorableValue(entry.value, tag)
	if !ok {
		return
	}
	domtree.SetAttr(n, property, mirrored)
}

// mirrorableValue returns the HTML attribute text for a CSS dimension
// value, and false if the value is too complex to mirror (calc(), em,
// rem, vh, vw, ...).
func mirrorableValue(value, tag string) (string, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "!important")
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, " ", "")

	if v == "auto" {
		return "auto", true
	}
	if pxOrUnitlessRe.MatchString(v) {
		return strings.TrimSuffix(v, "px"), true
	}
	if percentAllowedTags[tag] && percentRe.MatchString(v) {
		return v, true
	}
	return "", false
}
