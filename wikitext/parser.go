package wikitext

import (
	"fmt"

	"github.com/gowiki/wikitext/peg"
)

// Document is the top-level result of Parse: the page's #REDIRECT
// directive, if any, followed by its ordinary block sequence (spec
// section 4.H). It is a thin public wrapper around the internal
// documentRoot capture the grammar actually produces.
type Document struct {
	Redirect *Redirect
	Blocks   []Node
}

// Parse renders text through the preprocessor (section 4.F), runs the
// main grammar over the rendered text (section 4.G), and resolves the
// raw capture tree into a Document (section 4.H). It never panics on
// malformed input: anything the grammar can't make sense of falls
// through to plain text, following the teacher's no-backtracking-to-
// failure convention for a top-level entry point (see calculator.execute
// in peg/example/rpn for the same Match/Ok/full-length idiom).
func Parse(text string, opts ...Option) (*Document, []Diagnostic, error) {
	cfg := NewConfig(opts...)
	sink := newDiagnosticSink(&cfg)

	rendered := preprocess(text, cfg, sink)

	// The engine's default loop limit is sized for small pattern matches;
	// a document's block and inline loops legitimately iterate once per
	// block or per text fragment, so the limit is lifted (every grammar
	// loop consumes input, see grammar.go). The callstack limit stays
	// finite as a guard against runaway recursion depth.
	engineCfg := peg.Config{
		CallstackLimit:     peg.DefaultCallstackLimit * 20,
		LoopLimit:          0,
		DisableMemoization: !cfg.Memoization,
	}

	grammar := newMainGrammar(cfg, sink)
	result, err := peg.ConfiguredMatch(engineCfg, grammar, rendered)
	if err != nil {
		return nil, sink.items, fmt.Errorf("wikitext: parsing %q: %w", text, err)
	}
	if result == nil || !result.Ok || result.N != len(rendered) {
		return nil, sink.items, fmt.Errorf("wikitext: grammar did not fully match rendered text")
	}

	var root *documentRoot
	for _, c := range result.Captures {
		if r, ok := c.(*documentRoot); ok {
			root = r
			break
		}
	}
	if root == nil {
		return nil, sink.items, fmt.Errorf("wikitext: grammar produced no document capture")
	}

	return &Document{Redirect: root.Redirect, Blocks: root.Blocks}, sink.items, nil
}

// MustParse is a convenience wrapper for callers that treat a parse
// failure as a programming error (tests, one-off tools). It panics on
// any error from Parse.
func MustParse(text string, opts ...Option) *Document {
	doc, _, err := Parse(text, opts...)
	if err != nil {
		panic(err)
	}
	return doc
}
