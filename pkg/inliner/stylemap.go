package inliner

import "github.com/css-inline/css-inline-go/internal/selector"

// styleEntry is one winning declaration in an element's style map (§3).
type styleEntry struct {
	value       string
	important   bool
	specificity selector.Specificity
}

// elementStyle is a small insertion-ordered map from property name to its
// current winning entry, built incrementally as rules are matched.
type elementStyle struct {
	order  []string
	values map[string]*styleEntry
}

func newElementStyle() *elementStyle {
	return &elementStyle{values: make(map[string]*styleEntry)}
}

// apply records an incoming (property, value, important, specificity)
// against the cascade rule from spec §4.5 step 4: importance decides
// first, then specificity with later-source-wins on ties.
func (es *elementStyle) apply(property, value string, important bool, specificity selector.Specificity) {
	existing, ok := es.values[property]
	if !ok {
		es.order = append(es.order, property)
		es.values[property] = &styleEntry{value: value, important: important, specificity: specificity}
		return
	}
	if shouldReplace(existing.important, existing.specificity, important, specificity) {
		existing.value = value
		existing.important = important
		existing.specificity = specificity
	}
}

// shouldReplace is the single comparator spec §4.5/§9 requires, reused
// both for stylesheet-vs-stylesheet cascade (here) and for the inline
// style merge (in merge.go, where the existing inline declaration is
// given selector.MaxSpecificity).
func shouldReplace(existingImportant bool, existingSpecificity selector.Specificity, incomingImportant bool, incomingSpecificity selector.Specificity) bool {
	if existingImportant != incomingImportant {
		return incomingImportant
	}
	return incomingSpecificity >= existingSpecificity
}
