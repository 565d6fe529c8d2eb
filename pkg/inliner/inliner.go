// Package inliner is the core CSS-inlining engine: it wires together the
// HTML parser, CSS parser, selector engine, resolver and cache into the
// single Inline/InlineFragment entry points.
package inliner

import (
	"bytes"
	"io"
	"net/url"

	"github.com/css-inline/css-inline-go/internal/cache"
	"github.com/css-inline/css-inline-go/internal/cssom"
	"github.com/css-inline/css-inline-go/internal/domtree"
	"github.com/css-inline/css-inline-go/internal/resolver"
	"github.com/css-inline/css-inline-go/internal/selector"
)

// Inliner is a configured, reusable engine. It is safe for concurrent use
// across goroutines: the only shared mutable state is the stylesheet
// cache, which guards its own lock (§5).
type Inliner struct {
	opts     Options
	cache    *cache.Cache[string]
	resolver resolver.Resolver
}

// New validates opts and builds an Inliner.
func New(opts Options) (*Inliner, error) {
	if opts.CacheSize < 0 {
		return nil, optionErr("cache size must be >= 0")
	}
	if opts.BaseURL != "" {
		if _, err := url.Parse(opts.BaseURL); err != nil {
			return nil, optionErr("base_url is not a valid URL: " + err.Error())
		}
	}
	return &Inliner{
		opts:     opts,
		cache:    opts.newStylesheetCache(),
		resolver: opts.resolverOrDefault(),
	}, nil
}

// NewWithDefaults builds an Inliner with DefaultOptions().
func NewWithDefaults() *Inliner {
	inl, _ := New(DefaultOptions())
	return inl
}

// Inline parses htmlText in document mode, inlines, and returns the
// serialized result.
func (inl *Inliner) Inline(htmlText string) (string, error) {
	var buf bytes.Buffer
	if err := inl.InlineTo(htmlText, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InlineTo is the streaming variant of Inline.
func (inl *Inliner) InlineTo(htmlText string, w io.Writer) error {
	doc, err := domtree.ParseDocument(htmlText, inl.opts.PreallocateNodeCapacity)
	if err != nil {
		return ioErr("", err)
	}
	if err := inl.run(doc); err != nil {
		return err
	}
	return inl.serialize(doc, w)
}

// InlineFragment parses htmlText in fragment mode, treating css as an
// additional <style> block, and returns the serialized result.
func (inl *Inliner) InlineFragment(htmlText, css string) (string, error) {
	var buf bytes.Buffer
	if err := inl.InlineFragmentTo(htmlText, css, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InlineFragmentTo is the streaming variant of InlineFragment.
func (inl *Inliner) InlineFragmentTo(htmlText, css string, w io.Writer) error {
	doc, err := domtree.ParseFragment(htmlText, inl.opts.PreallocateNodeCapacity)
	if err != nil {
		return ioErr("", err)
	}
	extra := inl.opts.ExtraCSS
	if css != "" {
		if extra != "" {
			extra = css + "\n" + extra
		} else {
			extra = css
		}
	}
	if err := inl.runWithExtra(doc, extra); err != nil {
		return err
	}
	return inl.serialize(doc, w)
}

func (inl *Inliner) run(doc *domtree.Document) error {
	return inl.runWithExtra(doc, inl.opts.ExtraCSS)
}

// runWithExtra is the shared orchestration body for spec §4.5 steps 1-6.
func (inl *Inliner) runWithExtra(doc *domtree.Document, extraCSS string) error {
	styles := make(map[domtree.NodeID]*elementStyle)
	styleConsumption := make(map[domtree.NodeID][]ruleConsumption)
	styleSheets := make(map[domtree.NodeID]*cssom.Stylesheet)

	apply := func(sheet *cssom.Stylesheet, source domtree.NodeID, track bool) error {
		var consumption []ruleConsumption
		for _, rule := range sheet.Rules {
			rc := ruleConsumption{rule: rule, branches: rule.Branches, consumed: make([]bool, len(rule.Branches))}
			for i, branchText := range rule.Branches {
				compiled, err := selector.Compile(branchText)
				if err != nil {
					// branch-level tolerance (§4.3, §7): skip, keep others.
					continue
				}
				candidates := compiled.Candidates(doc)
				matched := compiled.MatchAll(candidates)
				for _, n := range matched {
					if doc.IsIgnored(n) {
						continue
					}
					rc.consumed[i] = true
					id := doc.ID(n)
					es, ok := styles[id]
					if !ok {
						es = newElementStyle()
						styles[id] = es
					}
					for _, d := range sheet.Declarations[rule.Start:rule.End] {
						es.apply(d.Property, d.Value, d.Important, compiled.Specificity)
					}
				}
			}
			consumption = append(consumption, rc)
		}
		if track {
			styleConsumption[source] = consumption
			styleSheets[source] = sheet
		}
		return nil
	}

	// Step 1: <style> tags, in document order.
	if inl.opts.InlineStyleTags {
		for _, n := range doc.StyleNodes() {
			text := domtree.TextContent(n)
			sheet, err := cssom.Parse(text)
			if err != nil {
				return parseErr(err.Error())
			}
			if err := apply(sheet, doc.ID(n), inl.opts.RemoveInlinedSelectors); err != nil {
				return err
			}
		}
	}

	// Step 2: linked stylesheets, in document order.
	if inl.opts.LoadRemoteStylesheets {
		for _, n := range doc.LinkNodes() {
			href, _ := domtree.Attr(n, "href")
			location := resolver.ResolveURL(href, inl.opts.BaseURL)
			body, err := inl.fetch(location)
			if err != nil {
				return err
			}
			sheet, err := cssom.Parse(body)
			if err != nil {
				return parseErr(err.Error())
			}
			if err := apply(sheet, doc.ID(n), false); err != nil {
				return err
			}
		}
	}

	// Step 3: extra CSS, parsed last.
	if extraCSS != "" {
		sheet, err := cssom.Parse(extraCSS)
		if err != nil {
			return parseErr(err.Error())
		}
		if err := apply(sheet, 0, false); err != nil {
			return err
		}
	}

	// Steps 5-6: merge into style="" attributes, mirror dimensions.
	for id, es := range styles {
		n := doc.Node(id)
		if n == nil || doc.IsIgnored(n) {
			continue
		}
		existing, _ := domtree.Attr(n, "style")
		merged, err := mergeStyle(existing, es, inl.opts.MinifyCSS)
		if err != nil {
			return err
		}
		if merged != "" {
			domtree.SetAttr(n, "style", merged)
		}
		if inl.opts.ApplyWidthAttributes || inl.opts.ApplyHeightAttributes {
			mirrorDimensions(n, es, inl.opts.ApplyWidthAttributes, inl.opts.ApplyHeightAttributes)
		}
	}

	// Step: rewrite <style> bodies once every selector's consumption is known.
	if inl.opts.RemoveInlinedSelectors {
		for id, consumption := range styleConsumption {
			n := doc.Node(id)
			if n == nil {
				continue
			}
			sheet := styleSheets[id]
			domtree.SetTextContent(n, rewriteStyleBody(sheet, consumption, inl.opts.KeepAtRules))
		}
	}

	return nil
}

// fetch consults the cache before calling the resolver (§4.9), inserting
// successful responses afterward.
func (inl *Inliner) fetch(location string) (string, error) {
	if body, ok := inl.cache.Get(location); ok {
		return body, nil
	}
	body, err := inl.resolver.Retrieve(location)
	if err != nil {
		return "", translateResolverErr(location, err)
	}
	inl.cache.Set(location, body)
	return body, nil
}

func translateResolverErr(location string, err error) error {
	var rerr *resolver.Error
	if e, ok := err.(*resolver.Error); ok {
		rerr = e
	}
	if rerr == nil {
		return ioErr(location, err)
	}
	switch rerr.Kind {
	case resolver.KindMissingStylesheet:
		return missingStylesheetErr(location)
	case resolver.KindNetwork:
		return networkErr(location, rerr.Err)
	default:
		return ioErr(location, rerr.Err)
	}
}

func (inl *Inliner) serialize(doc *domtree.Document, w io.Writer) error {
	opts := domtree.SerializeOptions{
		KeepStyleTags: inl.opts.KeepStyleTags,
		KeepLinkTags:  inl.opts.KeepLinkTags,
	}
	if err := doc.Serialize(w, opts); err != nil {
		return ioErr("", err)
	}
	return nil
}
