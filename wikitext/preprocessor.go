package wikitext

import (
	"strings"

	"github.com/gowiki/wikitext/peg"
)

// PPNode is the preprocessor's own tree: the constructs of spec section
// 4.F (text, link, template, argument, comment, the three inclusion-region
// tags, and the dangling-close-tag fallback). It is a separate sum type
// from wikitext.Node (section 3's document AST) because the preprocessor
// runs a different grammar over the raw source; its output is rendered
// back to flat text for the main grammar, and exposed through Preprocess
// so a template evaluator can consume the PPTemplate/PPArgument nodes
// directly.
type PPNode interface {
	peg.Capture
	isPPNode()
}

type (
	// PPText is a run of plain characters.
	PPText struct{ Value string }

	// PPComment is one "<!-- ... -->" region, with its source offsets so
	// the renderer can apply the comment-alone rule.
	PPComment struct {
		Raw        string
		Start, End int
	}

	// PPIgnore is a dangling close tag for an inclusion region, consumed
	// and discarded.
	PPIgnore struct{ Raw string }

	// PPTemplate is a "{{ name | args... }}" transclusion reference. BOL
	// records whether the opening braces sat at the beginning of a line,
	// a quirk downstream consumers depend on.
	PPTemplate struct {
		BOL  bool
		Name []PPNode
		Args []*PPArg
	}

	// PPArg is one template argument, named or positional.
	PPArg struct {
		Named bool
		Name  []PPNode
		Value []PPNode
	}

	// PPArgument is a "{{{ name | default... }}}" parameter reference.
	PPArgument struct {
		Name     []PPNode
		Defaults [][]PPNode
	}

	// PPLink is a "[[ ... ]]" region; inside it "|" is ordinary text, so
	// a template argument list cannot leak across a link boundary.
	PPLink struct{ Content []PPNode }

	// PPNoInclude, PPIncludeOnly and PPOnlyInclude are the conditional
	// inclusion regions; a missing end tag closes at end of file.
	PPNoInclude   struct{ Content []PPNode }
	PPIncludeOnly struct{ Content []PPNode }
	PPOnlyInclude struct{ Content []PPNode }
)

func (*PPText) isPPNode()        {}
func (*PPComment) isPPNode()     {}
func (*PPIgnore) isPPNode()      {}
func (*PPTemplate) isPPNode()    {}
func (*PPArg) isPPNode()         {}
func (*PPArgument) isPPNode()    {}
func (*PPLink) isPPNode()        {}
func (*PPNoInclude) isPPNode()   {}
func (*PPIncludeOnly) isPPNode() {}
func (*PPOnlyInclude) isPPNode() {}

func (*PPText) IsTerminal() bool        { return true }
func (*PPComment) IsTerminal() bool     { return true }
func (*PPIgnore) IsTerminal() bool      { return true }
func (*PPTemplate) IsTerminal() bool    { return false }
func (*PPArg) IsTerminal() bool         { return false }
func (*PPArgument) IsTerminal() bool    { return false }
func (*PPLink) IsTerminal() bool        { return false }
func (*PPNoInclude) IsTerminal() bool   { return false }
func (*PPIncludeOnly) IsTerminal() bool { return false }
func (*PPOnlyInclude) IsTerminal() bool { return false }

// ppNodeList is a grouping wrapper used only to fish a sub-sequence of
// PPNode captures out of a larger CC invocation as a single slot (e.g. a
// template's name next to its BOL flag and its arg list), mirroring
// capturing.go's Variable wrapper, but unexported since it never escapes
// this file.
type ppNodeList struct{ Nodes []PPNode }

func (*ppNodeList) isPPNode()        {}
func (*ppNodeList) IsTerminal() bool { return false }

// ppBOLFlag records whether a template opening "{{" was found at the
// start of a line.
type ppBOLFlag struct{ BOL bool }

func (*ppBOLFlag) isPPNode()        {}
func (*ppBOLFlag) IsTerminal() bool { return true }

func toPPNodes(subs []peg.Capture) []PPNode {
	nodes := make([]PPNode, 0, len(subs))
	for _, c := range subs {
		nodes = append(nodes, c.(PPNode))
	}
	return nodes
}

func wrapPPList(subs []peg.Capture) (peg.Capture, error) {
	return &ppNodeList{Nodes: toPPNodes(subs)}, nil
}

func ppTextCons(span string, _ peg.Position) (peg.Capture, error) {
	return &PPText{Value: span}, nil
}

func ppIgnoreCons(span string, _ peg.Position) (peg.Capture, error) {
	return &PPIgnore{Raw: span}, nil
}

func ppCommentCons(span string, pos peg.Position) (peg.Capture, error) {
	return &PPComment{Raw: span, Start: pos.Offest, End: pos.Offest + len(span)}, nil
}

func ppTemplateCons(subs []peg.Capture) (peg.Capture, error) {
	bol := subs[0].(*ppBOLFlag).BOL
	name := subs[1].(*ppNodeList).Nodes
	args := make([]*PPArg, 0, len(subs)-2)
	for _, c := range subs[2:] {
		args = append(args, c.(*PPArg))
	}
	return &PPTemplate{BOL: bol, Name: name, Args: args}, nil
}

func ppNamedArgCons(subs []peg.Capture) (peg.Capture, error) {
	name := []PPNode{subs[0].(PPNode)}
	value := toPPNodes(subs[1:])
	return &PPArg{Named: true, Name: name, Value: value}, nil
}

func ppPositionalArgCons(subs []peg.Capture) (peg.Capture, error) {
	return &PPArg{Named: false, Value: toPPNodes(subs)}, nil
}

func ppArgumentCons(subs []peg.Capture) (peg.Capture, error) {
	name := subs[0].(*ppNodeList).Nodes
	var defaults [][]PPNode
	for _, c := range subs[1:] {
		defaults = append(defaults, c.(*ppNodeList).Nodes)
	}
	return &PPArgument{Name: name, Defaults: defaults}, nil
}

func ppLinkCons(subs []peg.Capture) (peg.Capture, error) {
	return &PPLink{Content: toPPNodes(subs)}, nil
}

func ppNoIncludeCons(subs []peg.Capture) (peg.Capture, error) {
	return &PPNoInclude{Content: toPPNodes(subs)}, nil
}

func ppIncludeOnlyCons(subs []peg.Capture) (peg.Capture, error) {
	return &PPIncludeOnly{Content: toPPNodes(subs)}, nil
}

func ppOnlyIncludeCons(subs []peg.Capture) (peg.Capture, error) {
	return &PPOnlyInclude{Content: toPPNodes(subs)}, nil
}

// Rule IDs for the preprocessor's peg.Memo wrapping (component B). None
// of these rules read the wikitext/ state stacks (the preprocessor never
// touches no/ifnot/bol_skip/wspre), so every recursive rule here is safe
// to memoize per spec 4.B/9's "memoize only rules that do not read
// state".
const (
	ppRuleElement = iota
	ppRuleText
	ppRuleComment
)

// newPreprocessorGrammar builds the Grammar-1 pattern tree (spec 4.F).
// Built fresh per parse (rather than as a package-level var) because the
// diagnostic sink is a closure-captured parameter, the same reason
// traps.go's pushNoHeading takes its comment pattern as an argument
// instead of being a fixed global.
func newPreprocessorGrammar(sink *diagnosticSink) peg.Pattern {
	stopper := peg.Alt(peg.T("|"), peg.T("}}"))
	argStopper := peg.Alt(peg.T("|"), peg.T("}}}"))

	bolFlag := peg.Alt(
		peg.CT(func(string, peg.Position) (peg.Capture, error) {
			return &ppBOLFlag{BOL: true}, nil
		}, peg.Test(peg.SOL)),
		peg.CT(func(string, peg.Position) (peg.Capture, error) {
			return &ppBOLFlag{BOL: false}, nil
		}, peg.True),
	)

	commentClosed := peg.Seq(peg.T("<!--"), peg.Q0(peg.Seq(peg.Not(peg.T("-->")), peg.Dot)), peg.T("-->"))
	commentUnclosed := peg.Seq(peg.T("<!--"), peg.Q0(peg.Seq(peg.Not(peg.EOF), peg.Dot)))
	comment := peg.CT(func(span string, pos peg.Position) (peg.Capture, error) {
		if !strings.HasSuffix(span, "-->") {
			sink.warn(pos, "unclosed comment")
		}
		return ppCommentCons(span, pos)
	}, peg.Memo(ppRuleComment, peg.Alt(commentClosed, commentUnclosed)))

	closeRegionTag := func(name string) peg.Pattern {
		return peg.TI("</" + name + ">")
	}
	openRegionTag := func(name string) peg.Pattern {
		return peg.TI("<" + name + ">")
	}

	ignore := peg.CT(ppIgnoreCons, peg.Alt(
		closeRegionTag("noinclude"), closeRegionTag("includeonly"), closeRegionTag("onlyinclude")))

	// The close tag sits inside the CC so a region whose end tag is
	// missing discards its trial captures wholesale before the unclosed
	// variant re-parses it; a capture pushed outside the CC would survive
	// the failed trial and duplicate the region.
	region := func(name string, cons peg.NonTerminalConstructor, inner peg.Pattern) peg.Pattern {
		open := openRegionTag(name)
		closed := peg.Seq(open, peg.CC(cons, peg.Seq(
			peg.Q0(peg.Seq(peg.Not(closeRegionTag(name)), inner)),
			closeRegionTag(name))))
		unclosed := peg.Trigger(func(_ string, pos peg.Position) error {
			sink.warn(pos, "unclosed <%s>", name)
			return nil
		}, peg.Seq(open, peg.CC(cons, peg.Q0(peg.Seq(peg.Not(peg.EOF), inner)))))
		return peg.Alt(closed, unclosed)
	}

	textRun := peg.CT(ppTextCons, peg.Memo(ppRuleText, peg.Q1(peg.NS("\n{}|=[]<"))))
	fallthroughChar := peg.CT(ppTextCons, peg.Dot)

	rules := map[string]peg.Pattern{
		"element": peg.Memo(ppRuleElement, peg.Alt(
			comment,
			peg.V("onlyinclude"),
			peg.V("noinclude"),
			peg.V("includeonly"),
			ignore,
			peg.V("argument"),
			peg.V("template"),
			peg.V("link"),
			textRun,
			fallthroughChar,
		)),

		"elementNoOnlyInclude": peg.Alt(
			comment, peg.V("noinclude"), peg.V("includeonly"), ignore,
			peg.V("argument"), peg.V("template"), peg.V("link"),
			textRun, fallthroughChar,
		),

		"onlyinclude": region("onlyinclude", ppOnlyIncludeCons, peg.V("elementNoOnlyInclude")),
		"noinclude":   region("noinclude", ppNoIncludeCons, peg.V("element")),
		"includeonly": region("includeonly", ppIncludeOnlyCons, peg.V("element")),

		"link": peg.CC(ppLinkCons, peg.Seq(
			peg.T("[["),
			peg.Q0(peg.Seq(peg.Not(peg.T("]]")), peg.V("element"))),
			peg.T("]]"))),

		"template": peg.CC(ppTemplateCons, peg.Seq(
			bolFlag,
			peg.T("{{"),
			peg.CC(wrapPPList, peg.Q0(peg.Seq(peg.Not(stopper), peg.V("element")))),
			peg.Q0(peg.V("templateArg")),
			peg.T("}}"))),

		"templateArg": peg.Seq(peg.T("|"), peg.Alt(peg.V("namedArg"), peg.V("positionalArg"))),

		"namedArg": peg.CC(ppNamedArgCons, peg.Seq(
			peg.CT(ppTextCons, peg.Q1(peg.NS("=|}"))),
			peg.T("="),
			peg.Q0(peg.Seq(peg.Not(stopper), peg.V("element"))))),

		"positionalArg": peg.CC(ppPositionalArgCons, peg.Q0(peg.Seq(peg.Not(stopper), peg.V("element")))),

		"argument": peg.CC(ppArgumentCons, peg.Seq(
			peg.T("{{{"),
			peg.CC(wrapPPList, peg.Q0(peg.Seq(peg.Not(argStopper), peg.V("element")))),
			peg.Q0(peg.Seq(peg.T("|"),
				peg.CC(wrapPPList, peg.Q0(peg.Seq(peg.Not(argStopper), peg.V("element")))))),
			peg.T("}}}"))),
	}

	return peg.Let(rules, peg.Seq(
		peg.Q0(peg.Seq(peg.V("element"), peg.Cut())),
		peg.EOF))
}

// InclusionMode selects which conditional-inclusion regions render into
// the flat text handed to the main grammar (spec 4.F): InclusionView (the
// default) is "this page is being read directly" -- noinclude content
// shows, includeonly content is hidden. InclusionTransclude is "this page
// is being transcluded elsewhere" -- the reverse, plus restricting to
// onlyinclude regions when any exist. The core does not perform
// transclusion itself (spec Non-goals); this only controls which source
// regions the preprocessor's own output keeps.
type InclusionMode int

const (
	InclusionView InclusionMode = iota
	InclusionTransclude
)

// Preprocessed is the result of running Grammar-1 over a document: the
// raw preprocessor tree (PPTemplate/PPArgument nodes and the rest) plus
// the flat text the main grammar would parse, with comments stripped and
// inclusion regions selected.
type Preprocessed struct {
	Nodes []PPNode
	Text  string
}

// Preprocess runs the preprocessor grammar (spec section 4.F) on its own
// and returns both the preprocessor tree and the rendered flat text. A
// template evaluator consumes the PPTemplate nodes from here; Parse uses
// only the rendered text.
func Preprocess(text string, opts ...Option) (*Preprocessed, []Diagnostic, error) {
	cfg := NewConfig(opts...)
	sink := newDiagnosticSink(&cfg)
	nodes, rendered := runPreprocessor(text, cfg, sink)
	return &Preprocessed{Nodes: nodes, Text: rendered}, sink.items, nil
}

// preprocess is Parse's entry into the preprocessor stage: it shares the
// caller's sink and only needs the rendered text.
func preprocess(src string, cfg Config, sink *diagnosticSink) string {
	_, rendered := runPreprocessor(src, cfg, sink)
	return rendered
}

func runPreprocessor(src string, cfg Config, sink *diagnosticSink) ([]PPNode, string) {
	grammar := newPreprocessorGrammar(sink)
	pcfg := peg.Config{
		CallstackLimit: peg.DefaultCallstackLimit * 20,
		LoopLimit:      0,
	}
	if !cfg.Memoization {
		pcfg.DisableMemoization = true
	}
	result, err := peg.ConfiguredMatch(pcfg, grammar, src)
	if err != nil || result == nil || !result.Ok {
		// The grammar always falls through to single-character text, so
		// a non-match here means a structural engine error, not bad
		// input; surface the original source unchanged rather than
		// losing it.
		return []PPNode{&PPText{Value: src}}, src
	}
	nodes := toPPNodes(result.Captures)
	return nodes, renderDocument(nodes, src, cfg)
}

func renderDocument(nodes []PPNode, full string, cfg Config) string {
	mode := cfg.Inclusion
	if mode == InclusionTransclude {
		var only []PPNode
		for _, n := range nodes {
			if oi, ok := n.(*PPOnlyInclude); ok {
				only = append(only, oi)
			}
		}
		if len(only) > 0 {
			return renderNodes(only, full, cfg, mode)
		}
	}
	return renderNodes(nodes, full, cfg, mode)
}

func renderNodes(nodes []PPNode, full string, cfg Config, mode InclusionMode) string {
	var b strings.Builder
	swallow := false
	for _, n := range nodes {
		switch v := n.(type) {
		case *PPText:
			s := v.Value
			if swallow {
				s = swallowLeadingNewline(s, &swallow)
			}
			b.WriteString(s)
		case *PPComment:
			// A comment alone on its line vanishes along with the line; any
			// other comment (including one on the document's first line,
			// the preserved quirk) renders through verbatim and reaches the
			// main grammar as an inline Comment.
			if isCommentAlone(full, v.Start, v.End, cfg.StripCommentsOnFirstLine) {
				trimTrailingBlank(&b)
				swallow = true
			} else {
				b.WriteString(v.Raw)
			}
		case *PPIgnore:
			// dangling close tag: discarded, per spec 4.F.
		case *PPNoInclude:
			if mode == InclusionView {
				b.WriteString(renderNodes(v.Content, full, cfg, mode))
			}
		case *PPIncludeOnly:
			if mode == InclusionTransclude {
				b.WriteString(renderNodes(v.Content, full, cfg, mode))
			}
		case *PPOnlyInclude:
			b.WriteString(renderNodes(v.Content, full, cfg, mode))
		case *PPTemplate:
			b.WriteString(renderTemplate(v, full, cfg, mode))
		case *PPArgument:
			b.WriteString(renderArgument(v, full, cfg, mode))
		case *PPLink:
			b.WriteString("[[")
			b.WriteString(renderNodes(v.Content, full, cfg, mode))
			b.WriteString("]]")
		}
	}
	return b.String()
}

func renderTemplate(t *PPTemplate, full string, cfg Config, mode InclusionMode) string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(renderNodes(t.Name, full, cfg, mode))
	for _, a := range t.Args {
		b.WriteString("|")
		if a.Named {
			b.WriteString(renderNodes(a.Name, full, cfg, mode))
			b.WriteString("=")
		}
		b.WriteString(renderNodes(a.Value, full, cfg, mode))
	}
	b.WriteString("}}")
	return b.String()
}

func renderArgument(a *PPArgument, full string, cfg Config, mode InclusionMode) string {
	var b strings.Builder
	b.WriteString("{{{")
	b.WriteString(renderNodes(a.Name, full, cfg, mode))
	for _, d := range a.Defaults {
		b.WriteString("|")
		b.WriteString(renderNodes(d, full, cfg, mode))
	}
	b.WriteString("}}}")
	return b.String()
}

// isCommentAlone implements the comment_alone quirk (spec 4.F): the
// comment must be preceded only by blanks back to a newline or start of
// file, and followed only by blanks up to a newline or EOF; a comment on
// the document's first line is excluded from this unless cfg opts in.
func isCommentAlone(full string, start, end int, stripFirstLine bool) bool {
	i := start
	for i > 0 && (full[i-1] == ' ' || full[i-1] == '\t') {
		i--
	}
	lineStartOK := i == 0 || full[i-1] == '\n'
	if !lineStartOK {
		return false
	}

	j := end
	for j < len(full) && (full[j] == ' ' || full[j] == '\t') {
		j++
	}
	lineEndOK := j == len(full) || full[j] == '\n'
	if !lineEndOK {
		return false
	}

	isFirstLine := !strings.Contains(full[:start], "\n")
	if isFirstLine && !stripFirstLine {
		return false
	}
	return true
}

func trimTrailingBlank(b *strings.Builder) {
	s := b.String()
	trimmed := strings.TrimRight(s, " \t")
	if len(trimmed) == len(s) {
		return
	}
	b.Reset()
	b.WriteString(trimmed)
}

// swallowLeadingNewline consumes leading blanks from s; once it consumes
// an actual newline it clears *swallow. If s is blank all the way through
// without a newline, it returns "" and leaves *swallow set so the next
// sibling continues the search.
func swallowLeadingNewline(s string, swallow *bool) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i == len(s) {
		return ""
	}
	if s[i] == '\r' {
		i++
		if i < len(s) && s[i] == '\n' {
			i++
		}
		*swallow = false
		return s[i:]
	}
	if s[i] == '\n' {
		*swallow = false
		return s[i+1:]
	}
	*swallow = false
	return s
}
