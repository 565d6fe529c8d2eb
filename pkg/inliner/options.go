package inliner

import (
	"github.com/css-inline/css-inline-go/internal/cache"
	"github.com/css-inline/css-inline-go/internal/resolver"
)

// Options configures an Inliner, mirroring the option surface in spec §6.
// It follows the teacher's Config/Default() shape: a plain struct plus a
// zero-arg factory for the documented defaults, rather than a functional-
// options builder.
type Options struct {
	// InlineStyleTags considers <style> contents as CSS sources.
	InlineStyleTags bool
	// KeepStyleTags emits <style> elements in the output.
	KeepStyleTags bool
	// KeepLinkTags emits stylesheet <link> elements in the output.
	KeepLinkTags bool
	// KeepAtRules preserves at-rules, re-serialized by the CSS parser
	// rather than byte-for-byte, in rewritten <style> bodies (only
	// meaningful alongside RemoveInlinedSelectors).
	KeepAtRules bool
	// LoadRemoteStylesheets resolves linked stylesheets via Resolver.
	LoadRemoteStylesheets bool
	// BaseURL resolves relative/protocol-relative link hrefs.
	BaseURL string
	// ExtraCSS is parsed last and appended after all other sources.
	ExtraCSS string
	// MinifyCSS compacts the serialization of merged style attributes.
	MinifyCSS bool
	// PreallocateNodeCapacity hints the HTML tree's initial node count.
	PreallocateNodeCapacity int
	// RemoveInlinedSelectors drops selectors from <style> bodies once
	// every element they targeted has been inlined.
	RemoveInlinedSelectors bool
	// ApplyWidthAttributes mirrors width: onto the HTML width= attribute.
	ApplyWidthAttributes bool
	// ApplyHeightAttributes mirrors height: onto the HTML height= attribute.
	ApplyHeightAttributes bool
	// CacheSize is the bounded LRU capacity for resolved stylesheet
	// bodies. Zero disables caching.
	CacheSize int
	// Resolver overrides the default scheme-routing resolver.
	Resolver resolver.Resolver
}

// DefaultOptions returns the documented defaults from spec §6.
func DefaultOptions() Options {
	return Options{
		InlineStyleTags:         true,
		KeepStyleTags:           false,
		KeepLinkTags:            false,
		KeepAtRules:             false,
		LoadRemoteStylesheets:   true,
		BaseURL:                 "",
		ExtraCSS:                "",
		MinifyCSS:               false,
		PreallocateNodeCapacity: 32,
		RemoveInlinedSelectors:  false,
		ApplyWidthAttributes:    false,
		ApplyHeightAttributes:   false,
		CacheSize:               0,
		Resolver:                nil,
	}
}

func (o Options) newStylesheetCache() *cache.Cache[string] {
	return cache.New[string](o.CacheSize)
}

func (o Options) resolverOrDefault() resolver.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return resolver.NewDefault()
}
