package inliner

import (
	"strings"

	"github.com/css-inline/css-inline-go/internal/cssom"
)

// ruleConsumption tracks, for one parsed rule of a <style> tag, whether
// each of its selector branches matched at least one element. Used to
// rewrite the tag's body when RemoveInlinedSelectors is enabled (§4.7).
type ruleConsumption struct {
	rule     cssom.Rule
	branches []string
	consumed []bool
}

// rewriteStyleBody reproduces a <style> tag's text when
// remove_inlined_selectors drops fully-consumed rules (and partially
// trims comma groups down to their still-unmatched branches), optionally
// followed by the preserved at-rule text.
//
// The comma-joined remainder is normalized to ", " rather than replaying
// original inter-selector whitespace; spec.md §9 leaves this choice open.
func rewriteStyleBody(sheet *cssom.Stylesheet, consumption []ruleConsumption, keepAtRules bool) string {
	var sb strings.Builder
	for _, rc := range consumption {
		var remaining []string
		for i, branch := range rc.branches {
			if !rc.consumed[i] {
				remaining = append(remaining, branch)
			}
		}
		if len(remaining) == 0 {
			continue
		}
		sb.WriteString(strings.Join(remaining, ", "))
		sb.WriteString(" {\n")
		for _, d := range sheet.Declarations[rc.rule.Start:rc.rule.End] {
			sb.WriteString("  ")
			sb.WriteString(d.Property)
			sb.WriteString(": ")
			sb.WriteString(d.Value)
			if d.Important {
				sb.WriteString(" !important")
			}
			sb.WriteString(";\n")
		}
		sb.WriteString("}\n")
	}
	if keepAtRules && sheet.AtRules != "" {
		sb.WriteString(sheet.AtRules)
	}
	return sb.String()
}
