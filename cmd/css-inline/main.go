// Command css-inline is the CLI front-end over pkg/inliner: it marshals
// flags into inliner.Options and drives the core over files or stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/css-inline/css-inline-go/pkg/inliner"
)

type flags struct {
	inlineStyleTags        bool
	keepStyleTags           bool
	keepLinkTags            bool
	keepAtRules             bool
	loadRemoteStylesheets   bool
	baseURL                 string
	extraCSS                string
	extraCSSFile            string
	minifyCSS               bool
	preallocateNodeCapacity int
	removeInlinedSelectors  bool
	applyWidthAttributes    bool
	applyHeightAttributes   bool
	cacheSize               int
	outputFilenamePrefix    string
}

func main() {
	f := &flags{}
	root := &cobra.Command{
		Use:   "css-inline [files...]",
		Short: "Inline CSS into HTML for email-safe output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f, args)
		},
	}

	fl := root.Flags()
	fl.BoolVar(&f.inlineStyleTags, "inline-style-tags", true, "consider <style> contents as CSS sources")
	fl.BoolVar(&f.keepStyleTags, "keep-style-tags", false, "emit <style> elements in output")
	fl.BoolVar(&f.keepLinkTags, "keep-link-tags", false, "emit stylesheet <link> elements in output")
	fl.BoolVar(&f.keepAtRules, "keep-at-rules", false, "preserve at-rules (re-serialized) in rewritten <style> bodies")
	fl.BoolVar(&f.loadRemoteStylesheets, "load-remote-stylesheets", true, "resolve linked stylesheets")
	fl.StringVar(&f.baseURL, "base-url", "", "URL used for relative/protocol-relative link resolution")
	fl.StringVar(&f.extraCSS, "extra-css", "", "extra CSS string appended after all other sources")
	fl.StringVar(&f.extraCSSFile, "extra-css-file", "", "file containing extra CSS")
	fl.BoolVar(&f.minifyCSS, "minify-css", false, "compact serialization of merged style attribute")
	fl.IntVar(&f.preallocateNodeCapacity, "preallocate-node-capacity", 32, "HTML tree node-vector capacity hint")
	fl.BoolVar(&f.removeInlinedSelectors, "remove-inlined-selectors", false, "drop selectors from <style> bodies once consumed")
	fl.BoolVar(&f.applyWidthAttributes, "apply-width-attributes", false, "mirror width: to width= attribute")
	fl.BoolVar(&f.applyHeightAttributes, "apply-height-attributes", false, "mirror height: to height= attribute")
	fl.IntVar(&f.cacheSize, "cache-size", 0, "bounded LRU capacity for resolved stylesheets (0 disables caching)")
	fl.StringVar(&f.outputFilenamePrefix, "output-filename-prefix", "inlined.", "prefix for output file names")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(f *flags, files []string) error {
	opts := inliner.DefaultOptions()
	opts.InlineStyleTags = f.inlineStyleTags
	opts.KeepStyleTags = f.keepStyleTags
	opts.KeepLinkTags = f.keepLinkTags
	opts.KeepAtRules = f.keepAtRules
	opts.LoadRemoteStylesheets = f.loadRemoteStylesheets
	opts.BaseURL = f.baseURL
	opts.MinifyCSS = f.minifyCSS
	opts.PreallocateNodeCapacity = f.preallocateNodeCapacity
	opts.RemoveInlinedSelectors = f.removeInlinedSelectors
	opts.ApplyWidthAttributes = f.applyWidthAttributes
	opts.ApplyHeightAttributes = f.applyHeightAttributes
	opts.CacheSize = f.cacheSize

	extra := f.extraCSS
	if f.extraCSSFile != "" {
		body, err := os.ReadFile(f.extraCSSFile)
		if err != nil {
			return fmt.Errorf("reading --extra-css-file: %w", err)
		}
		if extra != "" {
			extra = string(body) + "\n" + extra
		} else {
			extra = string(body)
		}
	}
	opts.ExtraCSS = extra

	engine, err := inliner.New(opts)
	if err != nil {
		reportError("", err)
		return err
	}

	if len(files) == 0 {
		return runStdin(engine)
	}
	return runFiles(engine, files, f.outputFilenamePrefix)
}

func runStdin(engine *inliner.Inliner) error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		reportErrorStdin(err)
		return err
	}
	out, err := engine.Inline(string(input))
	if err != nil {
		reportErrorStdin(err)
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

// runFiles processes positional file arguments independently and in
// parallel, the way css-inline's Rust CLI uses rayon's par_iter over
// files; here a goroutine + WaitGroup per file stands in for that.
func runFiles(engine *inliner.Inliner, files []string, prefix string) error {
	var wg sync.WaitGroup
	errs := make([]error, len(files))
	for i, name := range files {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs[i] = processFile(engine, name, prefix)
		}(i, name)
	}
	wg.Wait()

	var failed bool
	for _, err := range errs {
		if err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to process")
	}
	return nil
}

func processFile(engine *inliner.Inliner, name, prefix string) error {
	input, err := os.ReadFile(name)
	if err != nil {
		reportError(name, err)
		return err
	}
	out, err := engine.Inline(string(input))
	if err != nil {
		reportError(name, err)
		return err
	}
	outPath := filepath.Join(filepath.Dir(name), prefix+filepath.Base(name))
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		reportError(name, err)
		return err
	}
	return nil
}

func reportError(filename string, err error) {
	fmt.Fprintf(os.Stderr, "Filename: %s\nStatus: ERROR\nDetails: %s\n", filename, err)
}

func reportErrorStdin(err error) {
	fmt.Fprintf(os.Stderr, "Status: ERROR\nDetails: %s\n", err)
}
