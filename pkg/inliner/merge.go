package inliner

import (
	"strings"

	"github.com/css-inline/css-inline-go/internal/cssom"
	"github.com/css-inline/css-inline-go/internal/selector"
)

// mergedDecl is one line of the final style="" attribute.
type mergedDecl struct {
	property  string
	value     string
	important bool
}

// mergeStyle implements spec §4.5 step 5: existing inline declarations are
// treated as carrying the maximum specificity (so they win ties against
// stylesheet rules), but the same shouldReplace comparator used for the
// stylesheet cascade still lets a stylesheet !important declaration beat
// a non-important inline one.
func mergeStyle(existingAttr string, es *elementStyle, minify bool) (string, error) {
	if es == nil || len(es.order) == 0 {
		return existingAttr, nil
	}

	existingDecls, err := cssom.ParseInlineStyle(existingAttr)
	if err != nil {
		return "", parseErr(err.Error())
	}

	existingOrder := make([]string, 0, len(existingDecls))
	existingByProp := make(map[string]*mergedDecl, len(existingDecls))
	for _, d := range existingDecls {
		if _, ok := existingByProp[d.Property]; !ok {
			existingOrder = append(existingOrder, d.Property)
		}
		existingByProp[d.Property] = &mergedDecl{property: d.Property, value: d.Value, important: d.Important}
	}

	for _, prop := range existingOrder {
		incoming, ok := es.values[prop]
		if !ok {
			continue
		}
		cur := existingByProp[prop]
		if shouldReplace(cur.important, selector.MaxSpecificity, incoming.important, incoming.specificity) {
			cur.value = incoming.value
			// !important only survives on a property when it's retained
			// from the existing inline declaration itself, never
			// re-stamped onto a value that overwrote it.
			cur.important = false
		}
	}

	final := make([]mergedDecl, 0, len(existingOrder)+len(es.order))
	for _, prop := range existingOrder {
		final = append(final, *existingByProp[prop])
	}
	for _, prop := range es.order {
		if _, already := existingByProp[prop]; already {
			continue
		}
		entry := es.values[prop]
		final = append(final, mergedDecl{property: prop, value: entry.value, important: entry.important})
	}

	return renderStyle(final, minify), nil
}

// renderStyle serializes a declaration list back into style="" text,
// normalizing embedded double quotes to single quotes (required because
// the attribute delimiter is a double quote) and optionally minifying.
func renderStyle(decls []mergedDecl, minify bool) string {
	var sb strings.Builder
	for i, d := range decls {
		value := strings.ReplaceAll(d.value, `"`, "'")
		if minify {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(d.property)
			sb.WriteByte(':')
			sb.WriteString(value)
			if d.important {
				sb.WriteString(" !important")
			}
			continue
		}
		sb.WriteString(d.property)
		sb.WriteString(": ")
		sb.WriteString(value)
		if d.important {
			sb.WriteString(" !important")
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
