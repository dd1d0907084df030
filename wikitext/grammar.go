package wikitext

import (
	"strings"

	"github.com/gowiki/wikitext/peg"
	"github.com/gowiki/wikitext/peg/pegutil"
)

// Rule IDs for the handful of main-grammar productions that never read a
// state stack and so are safe to wrap in peg.Memo (spec section 4.B/4.D,
// grounded on peg/memo.go). Most of the grammar is state-dependent (it
// reads "no"/"ifnot"/"bol_skip"/"wspre" through traps.go) and is never
// memoized.
const (
	ruleEntity = iota
)

// newline matches and consumes exactly one physical line terminator;
// unlike peg.EOL (predicating.go, a zero-width lookahead) it actually
// advances the cursor, which every block rule below needs in order to
// leave the next SOL lookahead true. lineBreak additionally accepts
// end-of-file as a valid, zero-width line terminator, for block rules
// that may legally be the last thing in the document; it is never used
// inside a repetition whose other elements could also match zero-width,
// to avoid a stuck loop.
var (
	newline   peg.Pattern = pegutil.Newline
	lineBreak peg.Pattern = peg.Alt(newline, peg.EOF)
)

// listMarkerAny matches any of the four list/definition marker runes, used
// to detect same-line nested-list continuation (spec section 4.G).
var listMarkerAny = peg.S("*#;:")

// charLiteral consumes one rune as plain Text; the fallback alternative to
// Entity() wherever entities and literal characters are both legal (e.g.
// attribute values).
var charLiteral peg.Pattern = peg.CT(textCons, peg.Dot)

// commentPlain is the non-capturing comment shape. Patterns stored on the
// "no"/"ifnot" stacks run inside lookahead trials, where a capturing
// pattern would leak its constructed node into the enclosing rule's
// capture list; every terminator pattern that may contain a comment
// (heading terminators in particular) therefore uses this shape, and the
// capturing Comment production in newMainGrammar wraps it separately.
var commentPlain = peg.Seq(
	peg.T("<!--"),
	peg.Q0(peg.Seq(peg.Not(peg.T("-->")), peg.Dot)),
	peg.Alt(peg.T("-->"), peg.EOF),
)

// Element-name classes (spec section 4.G): the name gates which element
// subgrammar applies; a tag whose name is in none of the classes is not an
// element at all and falls through to literal text.
var (
	inlineTagNames = map[string]bool{
		"abbr": true, "big": true, "b": true, "cite": true, "code": true,
		"data": true, "del": true, "dfn": true, "em": true, "font": true,
		"ins": true, "i": true, "kbd": true, "mark": true, "samp": true,
		"small": true, "span": true, "strong": true, "sub": true,
		"sup": true, "strike": true, "s": true, "time": true, "tt": true,
		"u": true, "var": true,
	}

	blockDocTagNames = map[string]bool{
		"div": true, "center": true, "references": true,
		"table": true, "tr": true, "td": true, "th": true,
		"ul": true, "ol": true, "dl": true,
		"li": true, "dt": true, "dd": true,
	}
)

func tagInClass(names map[string]bool) func(string) bool {
	return func(span string) bool { return names[strings.ToLower(span)] }
}

func isHeadingTag(s string) bool {
	return len(s) == 2 && (s[0] == 'h' || s[0] == 'H') && s[1] >= '1' && s[1] <= '6'
}

func isBlockLevelTag(s string) bool {
	l := strings.ToLower(s)
	return blockDocTagNames[l] || l == "blockquote" || l == "p" || l == "pre" || isHeadingTag(s)
}

// blockOpenGuard matches the start of a block-level HTML element ("<" plus
// a block-class tag name). It is non-capturing so it can live on the "no"
// stack: a paragraph's greedy inline loop stops at it and hands control
// back to the block dispatcher (block_anywhere in spec section 4.G).
var blockOpenGuard = peg.Seq(peg.T("<"), peg.Check(isBlockLevelTag, htmlTagName))

// attrJunk consumes one blank-delimited token that is not a well-formed
// attribute; junk between attributes is tolerated, but "<" is not allowed
// in junk (spec section 4.G). Attributes and junk never cross a line
// break: table syntax reuses this machinery and its row separators live
// on their own lines.
var attrJunk = peg.Seq(
	peg.Q1(peg.S(" \t")),
	peg.Q1(peg.Seq(peg.Not(pegutil.Whitespace), peg.Not(peg.S("<>/")), peg.Dot)),
)

// cellAttrSep is the single "|" separating a cell's attributes from its
// content; it must not be the "||" cell separator.
var cellAttrSep = peg.Seq(blankLine0, peg.T("|"), peg.Not(peg.T("|")))

// attrPlain consumes exactly what the capturing "attr" rule consumes,
// constructing nothing. cellAttrs tests with it first, so a cell whose
// leading text merely looks like attributes (no "|" separator follows)
// never has half-parsed Attr captures leak into the cell.
var attrPlain = peg.Seq(
	peg.Q1(peg.S(" \t")),
	htmlTagName,
	peg.Q01(peg.Seq(
		blankLine0, peg.T("="), blankLine0,
		peg.Alt(
			peg.Seq(peg.T("\""), peg.Q0(peg.Seq(peg.Not(peg.T("\"")), peg.Dot)), peg.T("\"")),
			peg.Seq(peg.T("'"), peg.Q0(peg.Seq(peg.Not(peg.T("'")), peg.Dot)), peg.T("'")),
			peg.Q0(peg.Seq(peg.Not(pegutil.Whitespace), peg.Not(peg.S(">/")), peg.Dot)),
		),
	)),
)

// cellAttrs recognizes a cell's optional "attrs |" prefix: commit to
// capturing the attributes only after a lookahead confirms the whole run
// is terminated by the single-pipe separator.
var cellAttrs = peg.Q01(peg.Seq(
	peg.Test(peg.Seq(peg.Q1(attrPlain), cellAttrSep)),
	peg.Q1(peg.V("attr")),
	cellAttrSep,
))

// paragraphBreak is pushed onto the "no" stack for the lifetime of a
// paragraph (and checked, like every other "no" entry, before each inline
// step): at the start of a line, it matches a blank line or the opening of
// another block construct, stopping the paragraph's greedy inline loop
// from running on into the next block. Anywhere in a line, it matches a
// block-level HTML open tag (block_anywhere). It mirrors how push_no_hN
// stops heading content at its own terminator (traps.go), generalized to
// the paragraph fallback's much larger terminator set.
var paragraphBreak = peg.Alt(
	peg.Seq(peg.SOL, blankLine0, peg.Alt(
		newline, peg.EOF,
		peg.T("="), peg.T("{|"), peg.T("|}"), listMarkerAny, peg.Qn(4, peg.T("-")),
		peg.T("__"),
	)),
	blockOpenGuard,
)

// blankRun is an internal marker node, never exported, standing for a run
// of one or more blank lines inside a block sequence. builder.go's
// resolveParagraphs turns a single-line run into the following paragraph's
// LeadingBr and a longer run into a standalone br-only Paragraph, per spec
// section 4.G/4.H.
type blankRun struct{ N int }

func (*blankRun) isNode()          {}
func (*blankRun) IsTerminal() bool { return true }

// quoteMark is an internal sentinel pushed into an inline content list by
// the main grammar whenever it recognizes a run of apostrophes that is (or
// reduces to, after peeling) a bold/italic/both delimiter of width 2, 3 or
// 5. builder.go's resolveQuotes consumes these sentinels and produces the
// actual Bold/Italic/BoldItalic nodes; this mirrors MediaWiki's own
// doQuotes, which is a dedicated post-process over a line's apostrophe
// runs rather than part of the recursive grammar (see DESIGN.md).
type quoteMark struct{ Width int }

func (*quoteMark) isNode()          {}
func (*quoteMark) IsTerminal() bool { return true }

// inlineList wraps a resolved run of inline Nodes as a single peg.Capture,
// so a CC constructor building an enclosing node (link, cell, caption,
// ...) can tell "the inline content I should attach here" apart from
// sibling captures (Attr, Token, ...) positionally pushed alongside it.
type inlineList struct{ Nodes []Node }

func (*inlineList) isNode()          {}
func (*inlineList) IsTerminal() bool { return false }

// documentRoot carries the two top-level productions (an optional
// supplemental #REDIRECT and the block sequence) out of the grammar,
// before builder.go's resolveParagraphs turns blankRun markers into
// Paragraph break flags and parser.go unwraps it into Document.
type documentRoot struct {
	Redirect *Redirect
	Blocks   []Node
}

func (*documentRoot) isNode()          {}
func (*documentRoot) IsTerminal() bool { return false }

func toNodes(subs []peg.Capture) []Node {
	out := make([]Node, 0, len(subs))
	for _, s := range subs {
		if n, ok := s.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func wrapInline(subs []peg.Capture) (peg.Capture, error) {
	return &inlineList{Nodes: resolveQuotes(toNodes(subs))}, nil
}

func textCons(span string, _ peg.Position) (peg.Capture, error) {
	return &Text{Value: span}, nil
}

func lineBreakCons(_ string, _ peg.Position) (peg.Capture, error) {
	return &LineBreak{}, nil
}

// newMainGrammar builds Grammar-2 (spec section 4.G): the document loop,
// block dispatch, and inline content rules, closing over cfg and sink so
// entity resolution, scheme policy and diagnostics are available to every
// constructor without a second pass.
func newMainGrammar(cfg Config, sink *diagnosticSink) peg.Pattern {
	// A comment that is alone on its line never reaches the main grammar
	// (the preprocessor strips it, spec section 4.F); any other comment is
	// rendered through verbatim and lands here as an inline Comment node.
	comment := peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
		raw := ""
		if len(subs) > 0 {
			if t, ok := subs[0].(*Text); ok {
				raw = t.Value
			}
		}
		return &Comment{Raw: raw}, nil
	}, peg.Seq(
		peg.T("<!--"),
		peg.CT(textCons, peg.Q0(peg.Seq(peg.Not(peg.T("-->")), peg.Dot))),
		peg.Alt(peg.T("-->"), peg.EOF),
	))

	entity := peg.Memo(ruleEntity, Entity(cfg.Entities))

	literalApos := peg.CT(textCons, peg.T("'"))

	quoteMarkOfWidth := func(width int) peg.Pattern {
		return peg.CT(func(_ string, _ peg.Position) (peg.Capture, error) {
			return &quoteMark{Width: width}, nil
		}, peg.Seq(peg.Qnn(width, peg.T("'")), peg.Not(peg.T("'"))))
	}

	// linkTrail is the contiguous run of letters and lone apostrophes
	// joined onto an internal link, e.g. "[[cat]]s". A doubled apostrophe
	// is never part of the trail: it belongs to the quote machinery.
	linkTrail := peg.Q0(peg.Alt(
		peg.R('a', 'z', 'A', 'Z'),
		peg.Seq(peg.T("'"), peg.Not(peg.T("'"))),
	))

	schemes := cfg.AllowSchemes
	if len(schemes) == 0 {
		schemes = defaultSchemes
	}
	// Each alternative carries its own ":" so a prefix scheme ("http")
	// failing at the colon does not veto a longer one ("https") — ordered
	// choice never retries an alternative that already matched.
	schemePats := make([]peg.Pattern, len(schemes))
	for i, s := range schemes {
		schemePats[i] = peg.Seq(peg.TI(s), peg.T(":"))
	}
	schemeHead := peg.Alt(schemePats...)

	// Bracketed external link URLs run to the first whitespace or
	// delimiter; protocol-relative "//" is accepted alongside the
	// configured schemes.
	urlChar := peg.NS(" \t\r\n<>\"[]")
	extLinkURL := peg.Seq(peg.Alt(schemeHead, peg.T("//")), peg.Q1(urlChar))

	// A free-standing URL never absorbs trailing punctuation: its body is
	// a run of (punctuation*, solid-char) groups, so the last consumed
	// rune is always a solid one. A closing ")" counts as solid only when
	// a "(" appears somewhere within the URL (spec section 4.G).
	urlPunct := peg.S(".,;:!?")
	urlSolid := peg.NS(" \t\r\n<>\"[].,;:!?()")
	urlSolidParen := peg.NS(" \t\r\n<>\"[].,;:!?")
	plainURL := peg.Alt(
		peg.Check(func(s string) bool { return strings.Contains(s, "(") },
			peg.Seq(schemeHead, peg.Q1(peg.Seq(peg.Q0(urlPunct), urlSolidParen)))),
		peg.Seq(schemeHead, peg.Q1(peg.Seq(peg.Q0(urlPunct), urlSolid))),
	)

	rules := map[string]peg.Pattern{
		// ---- document ----
		"document": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			root := &documentRoot{}
			var blocks []Node
			for _, s := range subs {
				switch v := s.(type) {
				case *Redirect:
					root.Redirect = v
				default:
					if n, ok := s.(Node); ok {
						blocks = append(blocks, n)
					}
				}
			}
			root.Blocks = resolveParagraphs(blocks)
			return root, nil
		}, peg.Seq(
			peg.Q01(peg.V("redirect")),
			peg.Q0(peg.Seq(peg.V("documentBlock"), peg.Cut())),
			peg.EOF,
		)),

		"redirect": peg.CC(consRedirect, peg.Seq(
			peg.SOL,
			peg.Q0(peg.Seq(blankLine0, newline)),
			peg.TI("#redirect"),
			blankLine0,
			peg.T("[["),
			peg.CT(textCons, peg.Q0(peg.NS("|]\n"))),
			peg.Q01(peg.Seq(peg.T("|"), pushIfnotLinkClose(), pushIfnotPipe(),
				peg.CC(wrapInline,
					peg.Q0(peg.Seq(checkIfnot(), peg.V("inlineElement")))),
				popIfnot(), popIfnot())),
			peg.T("]]"),
			blankLine0,
			lineBreak,
		)),

		"documentBlock": peg.Alt(
			peg.V("blankRun"),
			peg.V("heading"),
			peg.V("hr"),
			peg.V("toc"),
			peg.V("table"),
			peg.V("list"),
			peg.V("indentPre"),
			peg.V("htmlBlock"),
			peg.V("paragraph"),
			peg.V("rawLine"),
		),

		// blankRun's repeated line must require a real newline, never EOF:
		// letting the last, unterminated line of a file count as "blank"
		// would let this Q1 match zero width forever at true EOF.
		"blankRun": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &blankRun{N: len(subs)}, nil
		}, peg.Q1(peg.Seq(peg.SOL, blankLine0, newline, peg.CT(textCons, peg.True)))),

		// ---- headings ----
		"heading": peg.Alt(
			peg.V("heading6"), peg.V("heading5"), peg.V("heading4"),
			peg.V("heading3"), peg.V("heading2"), peg.V("heading1"),
		),

		"heading1": headingRule(1), "heading2": headingRule(2),
		"heading3": headingRule(3), "heading4": headingRule(4),
		"heading5": headingRule(5), "heading6": headingRule(6),

		// ---- horizontal rule ----
		"hr": peg.CC(func([]peg.Capture) (peg.Capture, error) {
			return &HorizontalRule{}, nil
		}, peg.Seq(peg.SOL, peg.Qn(4, peg.T("-")), blankLine0, lineBreak)),

		// ---- TOC markers ----
		"toc": peg.Alt(
			peg.CC(func([]peg.Capture) (peg.Capture, error) { return &TocMarker{Kind: TocForce}, nil },
				peg.Seq(peg.SOL, blankLine0, peg.T("__FORCETOC__"), blankLine0, lineBreak)),
			peg.CC(func([]peg.Capture) (peg.Capture, error) { return &TocMarker{Kind: TocSuppress}, nil },
				peg.Seq(peg.SOL, blankLine0, peg.T("__NOTOC__"), blankLine0, lineBreak)),
			peg.CC(func([]peg.Capture) (peg.Capture, error) { return &TocMarker{Kind: TocDefault}, nil },
				peg.Seq(peg.SOL, blankLine0, peg.T("__TOC__"), blankLine0, lineBreak)),
		),

		// ---- lists ----
		// Nesting depth is the number of marker runes stacked at the start
		// of a single line ("**a" is a UL inside a UL); bol_skip holds one
		// entry per currently-open level and check_bol_skip (traps.go)
		// validates that a continuation line repeats the full prefix.
		"list": peg.Alt(peg.V("listUL"), peg.V("listOL"), peg.V("listDL")),

		"listUL": peg.CC(makeList(ListUL), peg.Q1(listItemRule(ulMarker, pushBolSkipUL, ListUL, true))),
		"listOL": peg.CC(makeList(ListOL), peg.Q1(listItemRule(olMarker, pushBolSkipOL, ListOL, true))),
		"listDL": peg.CC(makeList(ListDL),
			peg.Q1(peg.Alt(dlItemRule(";", true), dlItemRule(":", true)))),

		"listNested": peg.Alt(peg.V("nestedUL"), peg.V("nestedOL"), peg.V("nestedDL")),

		"nestedUL": peg.CC(makeList(ListUL), peg.Seq(
			listItemRule(ulMarker, pushBolSkipUL, ListUL, false),
			peg.Q0(listItemRule(ulMarker, pushBolSkipUL, ListUL, true)))),
		"nestedOL": peg.CC(makeList(ListOL), peg.Seq(
			listItemRule(olMarker, pushBolSkipOL, ListOL, false),
			peg.Q0(listItemRule(olMarker, pushBolSkipOL, ListOL, true)))),
		"nestedDL": peg.CC(makeList(ListDL), peg.Seq(
			peg.Alt(dlItemRule(";", false), dlItemRule(":", false)),
			peg.Q0(peg.Alt(dlItemRule(";", true), dlItemRule(":", true))))),

		// ---- indent-pre ----
		// One space at start of line opens the block when wspre is
		// enabled; the first line must carry non-blank content, and a
		// block-level HTML element terminates the block. The single-space
		// prefix for continuation lines goes through the bol_skip stack
		// exactly like nested list markers do.
		"indentPre": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &IndentPre{Inline: resolveQuotes(toNodes(subs))}, nil
		}, peg.Seq(
			peg.SOL, checkWspre(), peg.T(" "),
			peg.Not(peg.Seq(blankLine0, peg.Alt(newline, peg.EOF))),
			peg.Not(blockOpenGuard),
			pushBolSkipWspre(),
			pushNoNewline(),
			peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement"))),
			peg.Q0(peg.Seq(newline, peg.SOL, checkWspre(), checkBolSkip(),
				peg.Not(blockOpenGuard),
				peg.CT(lineBreakCons, peg.True),
				peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement"))))),
			popNo(),
			popBolSkip(),
			lineBreak,
		)),

		// ---- tables ----
		"table": peg.CC(buildTable, peg.Seq(
			peg.SOL,
			peg.CT(textCons, peg.Q0(peg.T(":"))),
			peg.T("{|"),
			peg.Q0(peg.Alt(peg.V("attr"), attrJunk)),
			blankLine0, lineBreak,
			peg.Q01(peg.V("tableCaption")),
			peg.Q01(peg.V("tableFirstRow")),
			peg.Q0(peg.V("tableRow")),
			peg.SOL, blankLine0, peg.T("|}"), blankLine0, lineBreak,
		)),

		"tableCaption": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &peg.Variable{Name: "caption", Subs: subs}, nil
		}, peg.Seq(
			peg.SOL, blankLine0, peg.T("|+"), blankLine0,
			pushNoNewline(),
			peg.CC(wrapInline, peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement")))),
			popNo(),
			lineBreak,
		)),

		// The first row of a table needs no "|-" lead; all later rows do.
		"tableFirstRow": peg.CC(consTableRow, peg.Q1(peg.V("tableLine"))),

		"tableRow": peg.CC(consTableRow, peg.Seq(
			peg.SOL, blankLine0, peg.T("|-"),
			peg.Q0(peg.Alt(peg.V("attr"), attrJunk)),
			blankLine0, lineBreak,
			peg.Q0(peg.V("tableLine")),
		)),

		// One physical line of cells. The first marker decides the line's
		// cell kind: "!" opens header cells (where "||" is a synonym for
		// "!!"), "|" opens data cells separated by "||". The data lead must
		// not swallow a row separator ("|-"), the closing "|}", or the
		// caption's "|+".
		"tableLine": peg.Alt(
			peg.Seq(
				peg.SOL, blankLine0, peg.T("!"),
				tableCellBody(CellHeader),
				peg.Q0(peg.Seq(peg.Alt(peg.T("!!"), peg.T("||")), tableCellBody(CellHeader))),
				peg.Alt(peg.Test(peg.SOL), lineBreak),
			),
			peg.Seq(
				peg.SOL, blankLine0, peg.T("|"), peg.Not(peg.S("-}+")),
				tableCellBody(CellData),
				peg.Q0(peg.Seq(peg.T("||"), tableCellBody(CellData))),
				peg.Alt(peg.Test(peg.SOL), lineBreak),
			),
		),

		"attr": peg.CC(consAttr, peg.Seq(
			peg.Q1(peg.S(" \t")),
			peg.CT(textCons, htmlTagName),
			peg.Q01(peg.Seq(
				blankLine0, peg.T("="), blankLine0,
				peg.Alt(
					peg.Seq(peg.T("\""), peg.CC(decodeAttrValue,
						peg.Q0(peg.Seq(peg.Not(peg.T("\"")), peg.Alt(entity, charLiteral)))), peg.T("\"")),
					peg.Seq(peg.T("'"), peg.CC(decodeAttrValue,
						peg.Q0(peg.Seq(peg.Not(peg.T("'")), peg.Alt(entity, charLiteral)))), peg.T("'")),
					peg.CC(decodeAttrValue,
						peg.Q0(peg.Seq(peg.Not(pegutil.Whitespace), peg.Not(peg.S(">/")), peg.Alt(entity, charLiteral)))),
				),
			)),
		)),

		// ---- links ----
		// The pipe separator disables indent-pre inside the link text.
		"internalLink": peg.CC(consInternalLink, peg.Seq(
			peg.T("[["),
			peg.CT(textCons, peg.Q0(peg.NS("|]\n"))),
			peg.Q01(peg.Seq(peg.T("|"),
				pushWspreOff(), pushIfnotLinkClose(), pushIfnotPipe(), pushNoNewline(),
				peg.CC(wrapInline, peg.Q0(peg.Seq(checkIfnot(), checkNo(), peg.V("inlineElement")))),
				popNo(), popIfnot(), popIfnot(), popWspre())),
			peg.T("]]"),
			peg.CT(textCons, linkTrail),
		)),

		"externalLink": peg.CC(consExternalLink, peg.Seq(
			peg.T("["),
			peg.CT(textCons, extLinkURL),
			peg.Q0(peg.S(" \t")),
			pushIfnotExtLinkClose(), pushNoNewline(),
			peg.CC(wrapInline, peg.Q0(peg.Seq(checkIfnot(), checkNo(), peg.V("inlineElement")))),
			popNo(), popIfnot(),
			peg.T("]"),
		)),

		"plainLink": peg.CT(func(span string, _ peg.Position) (peg.Capture, error) {
			return &PlainLink{URL: span}, nil
		}, plainURL),

		// ---- html-like elements ----
		"htmlBlock": peg.Alt(
			htmlPreRule(sink),
			htmlElementRule(tagInClass(blockDocTagNames), htmlDocContent(false), sink),
			htmlElementRule(func(s string) bool { return strings.EqualFold(s, "blockquote") },
				htmlDocContent(true), sink),
			htmlElementRule(func(s string) bool { return strings.EqualFold(s, "p") },
				htmlInlineContent(true), sink),
			htmlElementRule(isHeadingTag, htmlInlineContent(false), sink),
		),

		"inlineHtml": htmlInlineRule(),

		// Outside <pre>, a missing </nowiki> is closed by end of file.
		"nowiki": peg.CC(consNowiki, peg.Seq(
			peg.TI("<nowiki>"),
			peg.CT(textCons, peg.Q0(peg.Seq(peg.Not(peg.TI("</nowiki>")), peg.Dot))),
			peg.Alt(peg.TI("</nowiki>"), peg.EOF),
		)),

		// ref appears inline but holds a block document. The wspre
		// off-then-on pair mirrors the original's own re-enable dance and
		// is a known limitation, kept rather than fixed (see DESIGN.md).
		"ref": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &Ref{Blocks: resolveParagraphs(toNodes(subs))}, nil
		}, peg.Seq(
			peg.Rx(`(?i)<ref(?:\s[^>/]*)?>`),
			pushWspreOff(),
			setWspreOn(),
			peg.PushStack(stackNo, refCloseTag, peg.True),
			peg.Q0(peg.Seq(checkNo(), peg.V("documentBlock"))),
			popNo(),
			popWspre(),
			popWspre(),
			refCloseTag,
		)),

		// ---- paragraph fallback ----
		// The inline loop consumes the paragraph's own final line
		// terminator (the break only matches at a fresh line start) and,
		// mid-line after a block open tag, the tail of the tag's line;
		// trimLineEnds removes exactly those two, keeping interior line
		// breaks as content.
		"paragraph": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &Paragraph{Inline: trimLineEnds(resolveQuotes(toNodes(subs)))}, nil
		}, peg.Seq(
			peg.PushStack(stackNo, paragraphBreak, peg.True),
			peg.Q1(peg.Seq(checkNo(), peg.V("inlineElement"))),
			popNo(),
		)),

		// rawLine is the block-level safety net: a line that trips the
		// paragraph's own terminator guard but fails every real block rule
		// (a lone "{|" with no closing "|}", a "=" line that is not a
		// heading) is consumed verbatim as one paragraph line, never a
		// parse failure (spec section 7: the parser does not fail on
		// ill-formed input).
		"rawLine": peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
			return &Paragraph{Inline: toNodes(subs)}, nil
		}, peg.Seq(peg.Not(peg.EOF), peg.CT(textCons, peg.Rx(`[^\n]*`)), lineBreak)),

		// ---- inline content ----
		"inlineElement": peg.Alt(
			comment,
			entity,
			peg.V("internalLink"),
			peg.V("externalLink"),
			peg.V("nowiki"),
			peg.V("ref"),
			peg.CT(lineBreakCons, peg.Rx(`(?i)<br[ \t]*/?>`)),
			peg.V("inlineHtml"),
			peg.V("plainLink"),
			peg.When(peg.Test(peg.T("''")), peg.V("quoteRun")),
			// The batched run stops one rune short of anything that could be
			// the first character of a currently pushed no/ifnot pattern
			// that isn't itself anchored to SOL (heading terminators "=",
			// cell/link closers "|"/"!"/":"), so checkIfnots() gets a real
			// chance to re-evaluate at that position instead of the whole
			// terminator being swallowed as plain text inside one token. It
			// also stops short of anywhere a scheme URL could start, so
			// plainLink gets the same re-evaluation chance mid-run.
			peg.CT(textCons, peg.Seq(checkIfnots(), peg.Q1(peg.Seq(
				peg.Not(schemeHead), peg.NS("'&[]<\n=|!:"))))),
			peg.Seq(checkIfnots(), peg.CT(textCons, peg.Dot)),
		),

		"quoteRun": peg.Alt(
			quoteMarkOfWidth(5),
			quoteMarkOfWidth(3),
			quoteMarkOfWidth(2),
			peg.Seq(literalApos, peg.V("quoteRun")),
		),
	}

	return peg.Let(rules, peg.V("document"))
}

// refCloseTag is the fixed close pattern for <ref> blocks, pushed onto the
// "no" stack for the duration of the nested document.
var refCloseTag = peg.Rx(`(?i)</ref[ \t]*>`)

func decodeAttrValue(subs []peg.Capture) (peg.Capture, error) {
	var b strings.Builder
	for _, s := range subs {
		switch v := s.(type) {
		case *Text:
			b.WriteString(v.Value)
		case *HtmlEntity:
			if v.Code != 0 {
				b.WriteRune(v.Code)
			} else {
				b.WriteString(v.Raw)
			}
		}
	}
	return &Text{Value: b.String()}, nil
}

func consAttr(subs []peg.Capture) (peg.Capture, error) {
	attr := &Attr{}
	if len(subs) > 0 {
		if t, ok := subs[0].(*Text); ok {
			attr.Name = t.Value
		}
	}
	if len(subs) > 1 {
		if t, ok := subs[1].(*Text); ok {
			attr.Value = t.Value
		}
	}
	return attr, nil
}

func consRedirect(subs []peg.Capture) (peg.Capture, error) {
	r := &Redirect{}
	for _, s := range subs {
		switch v := s.(type) {
		case *Text:
			r.Target = v.Value
		case *inlineList:
			r.Text = v.Nodes
		}
	}
	return r, nil
}

func consInternalLink(subs []peg.Capture) (peg.Capture, error) {
	link := &InternalLink{}
	var texts []*Text
	for _, s := range subs {
		switch v := s.(type) {
		case *Text:
			texts = append(texts, v)
		case *inlineList:
			link.Text = v.Nodes
		}
	}
	if len(texts) > 0 {
		link.Target = texts[0].Value
	}
	if len(texts) > 1 {
		link.Trail = texts[len(texts)-1].Value
	}
	return link, nil
}

func consExternalLink(subs []peg.Capture) (peg.Capture, error) {
	link := &ExternalLink{}
	for _, s := range subs {
		switch v := s.(type) {
		case *Text:
			link.URL = v.Value
		case *inlineList:
			link.Text = v.Nodes
		}
	}
	return link, nil
}

func consNowiki(subs []peg.Capture) (peg.Capture, error) {
	raw := ""
	if len(subs) > 0 {
		if t, ok := subs[0].(*Text); ok {
			raw = t.Value
		}
	}
	return &Nowiki{Raw: raw}, nil
}

func consTableRow(subs []peg.Capture) (peg.Capture, error) {
	row := &TableRow{}
	for _, s := range subs {
		switch v := s.(type) {
		case *Attr:
			row.Attrs = append(row.Attrs, *v)
		case *TableCell:
			row.Cells = append(row.Cells, v)
		}
	}
	return row, nil
}

// headingRule builds the level-N heading production: "=" * level, inline
// content guarded by push_no_hN/pop_no (spec section 4.E/4.G), then the
// same terminator consumed literally. The blanks after the opening marker
// are consumed outside any capture, the same way indentPre consumes its
// leading space, and the blanks the greedy text run absorbed ahead of the
// closing marker are trimmed in the constructor, so "== Hello ==" yields
// Text("Hello"), not Text(" Hello "). Empty lines directly after the
// heading are consumed here so they never become paragraph breaks.
func headingRule(level int) peg.Pattern {
	term := headingTerminator(level, commentPlain)
	return peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
		return &Heading{Level: level, Inline: trimBlankEnds(resolveQuotes(toNodes(subs)))}, nil
	}, peg.Seq(
		peg.SOL, peg.Qnn(level, peg.T("=")), peg.Not(peg.T("=")),
		blankLine0,
		pushNoHeading(level, commentPlain),
		pushNoNewline(),
		peg.Q0(peg.Seq(peg.Not(term), checkNo(), peg.V("inlineElement"))),
		popNo(),
		popNo(),
		term, lineBreak,
		peg.Q0(peg.Seq(blankLine0, newline)),
	))
}

// listItemRule builds one list-item production for the given marker and
// bol_skip pusher (spec section 4.E push_bol_skip_ul/_ol/_dl, section
// 4.G). When anchored, the item must start a fresh line whose accumulated
// bol_skip prefix (the markers of every currently-open enclosing level)
// still matches; when not anchored, it is the first item of a nested list
// recognized immediately after its parent's own marker, on the same line,
// so no line start is required. A same-line run of further marker runes
// after this item's own marker recurses into listNested instead of being
// treated as this item's inline content.
func listItemRule(marker peg.Pattern, push func() peg.Pattern, kind ListKind, anchored bool) peg.Pattern {
	var lineStart peg.Pattern = peg.True
	if anchored {
		lineStart = peg.Seq(peg.SOL, checkBolSkip())
	}
	return peg.CC(listItemCons(kind), peg.Seq(
		lineStart,
		peg.CT(textCons, marker), push(),
		peg.Alt(
			peg.Seq(peg.Test(listMarkerAny), peg.V("listNested")),
			// The blanks after the marker belong to the markup, not the
			// item: consumed here, outside the content capture.
			peg.Seq(blankLine0, pushNoNewline(),
				peg.CC(wrapInline, peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement")))),
				popNo()),
		),
		popBolSkip(),
		// The nested branch already consumed its own trailing line break
		// (listNested bottoms out in a listItemRule of its own), landing
		// exactly at the next line's start; only the plain-content branch
		// still needs one consumed here.
		peg.Alt(peg.Test(peg.SOL), lineBreak),
	))
}

// dlItemRule builds a definition-list item for one of the two markers. A
// ";" term may share its line with a definition: the term's inline content
// stops at a ":" (push_ifnot via the colon closer), and the remainder of
// the line after the ":" becomes an inline-only DefDef on the same item.
// Only inline content is admitted after the ":", preserved as-is even
// though it may be too restrictive (see DESIGN.md).
func dlItemRule(markerLit string, anchored bool) peg.Pattern {
	var lineStart peg.Pattern = peg.True
	if anchored {
		lineStart = peg.Seq(peg.SOL, checkBolSkip())
	}

	var content peg.Pattern
	if markerLit == ";" {
		content = peg.Seq(
			blankLine0, pushNoNewline(), pushIfnotColon(),
			peg.CC(wrapInline, peg.Q0(peg.Seq(checkNo(), checkIfnot(), peg.V("inlineElement")))),
			popIfnot(),
			peg.Q01(peg.Seq(peg.T(":"), blankLine0,
				peg.CC(wrapInline, peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement")))))),
			popNo(),
		)
	} else {
		content = peg.Seq(
			blankLine0, pushNoNewline(),
			peg.CC(wrapInline, peg.Q0(peg.Seq(checkNo(), peg.V("inlineElement")))),
			popNo(),
		)
	}

	return peg.CC(listItemCons(ListDL), peg.Seq(
		lineStart,
		peg.CT(textCons, peg.T(markerLit)), pushBolSkipDL(),
		peg.Alt(
			peg.Seq(peg.Test(listMarkerAny), peg.V("listNested")),
			content,
		),
		popBolSkip(),
		peg.Alt(peg.Test(peg.SOL), lineBreak),
	))
}

// listItemCons builds a ListItem, wrapping its content as DefTerm/DefDef
// for a definition list depending on which of ";"/":" was actually
// matched (ast.go models a definition-list entry as a ListItem whose
// Content nodes are DefTerm/DefDef).
func listItemCons(kind ListKind) peg.NonTerminalConstructor {
	return func(subs []peg.Capture) (peg.Capture, error) {
		item := &ListItem{}
		marker := ""
		var inlines []*inlineList
		for _, s := range subs {
			switch v := s.(type) {
			case *Text:
				marker = v.Value
			case *List:
				item.Sublists = append(item.Sublists, v)
			case *inlineList:
				inlines = append(inlines, v)
			}
		}
		switch {
		case kind == ListDL && marker == ";":
			if len(inlines) > 0 {
				item.Content = []Node{&DefTerm{Content: trimBlankEnds(inlines[0].Nodes)}}
			}
			if len(inlines) > 1 {
				item.Content = append(item.Content, &DefDef{Content: trimBlankEnds(inlines[1].Nodes)})
			}
		case kind == ListDL:
			if len(inlines) > 0 {
				item.Content = []Node{&DefDef{Content: trimBlankEnds(inlines[0].Nodes)}}
			}
		default:
			if len(inlines) > 0 {
				item.Content = trimBlankEnds(inlines[0].Nodes)
			}
		}
		return item, nil
	}
}

func makeList(kind ListKind) peg.NonTerminalConstructor {
	return func(subs []peg.Capture) (peg.Capture, error) {
		list := &List{Kind: kind}
		for _, s := range subs {
			if it, ok := s.(*ListItem); ok {
				list.Items = append(list.Items, it)
			}
		}
		list.Items = normalizeListItems(list.Items)
		return list, nil
	}
}

// tableCellBody parses everything after a cell's lead marker: optional
// attributes before a single "|" separator, then inline content bounded by
// its own line, the next cell separator and the next table line. A cell's
// content is inline-only (Open Question decision recorded in DESIGN.md),
// so it is bounded exactly like a heading or list item.
func tableCellBody(kind TableCellKind) peg.Pattern {
	sep := ifnotDoublePipe
	if kind == CellHeader {
		sep = ifnotCellSeparator
	}
	return peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
		cell := &TableCell{Kind: kind}
		var inline []Node
		for _, s := range subs {
			switch v := s.(type) {
			case *Attr:
				cell.Attrs = append(cell.Attrs, *v)
			default:
				if n, ok := s.(Node); ok {
					inline = append(inline, n)
				}
			}
		}
		cell.Content = trimBlankEnds(resolveQuotes(inline))
		return cell, nil
	}, peg.Seq(
		cellAttrs,
		blankLine0,
		pushNoNewline(),
		pushNoTableLine(),
		pushIfnot(sep),
		peg.Q0(peg.Seq(checkNo(), checkIfnot(), peg.V("inlineElement"))),
		popIfnot(),
		popNo(),
		popNo(),
	))
}

func buildTable(subs []peg.Capture) (peg.Capture, error) {
	t := &Table{}
	indentSeen := false
	for _, s := range subs {
		switch v := s.(type) {
		case *Text:
			if !indentSeen {
				t.Indent = len(v.Value)
				indentSeen = true
			}
		case *Attr:
			t.Attrs = append(t.Attrs, *v)
		case *TableRow:
			t.Rows = append(t.Rows, v)
		case *peg.Variable:
			if v.Name == "caption" {
				for _, c := range v.Subs {
					if il, ok := c.(*inlineList); ok {
						t.Caption = trimBlankEnds(il.Nodes)
					}
				}
			}
		}
	}
	return t, nil
}

// consHtmlElement collects an element's captures (first Text is the tag
// name, Attr captures are attributes, everything else is content). With
// resolveBlocks set, the content came from the block loop and its blankRun
// markers are resolved into paragraph break flags.
func consHtmlElement(resolveBlocks bool) peg.NonTerminalConstructor {
	return func(subs []peg.Capture) (peg.Capture, error) {
		el := &HtmlElement{}
		named := false
		var content []Node
		for _, s := range subs {
			switch v := s.(type) {
			case *Text:
				if !named {
					el.Name = v.Value
					named = true
				} else {
					content = append(content, v)
				}
			case *Attr:
				el.Attrs = append(el.Attrs, *v)
			case *inlineList:
				content = append(content, v.Nodes...)
			default:
				if n, ok := s.(Node); ok {
					content = append(content, n)
				}
			}
		}
		if resolveBlocks {
			content = resolveParagraphs(content)
		}
		el.Content = content
		return el, nil
	}
}

// htmlOpenTag matches "<name attrs...>" for names accepted by check,
// capturing the name (as a Text node and the "tag" named group the dynamic
// close-tag pattern reads back) and the attributes.
func htmlOpenTag(check func(string) bool) peg.Pattern {
	return peg.Seq(
		peg.T("<"),
		peg.CT(textCons, peg.Check(check, peg.NG("tag", htmlTagName))),
		peg.Q0(peg.Alt(peg.V("attr"), attrJunk)),
		blankLine0,
		peg.T(">"),
	)
}

// htmlDocContent is the content sequence for elements that nest a block
// document. The dynamic close tag is pushed onto "no" (rather than just
// tested at the top of the loop) so a nested paragraph's own greedy inline
// consumption also stops at it. With wspreDance set, the wspre toggle is
// pushed off and immediately re-enabled, mirroring the original's noted
// FIXME for blockquote-like blocks (see DESIGN.md).
func htmlDocContent(wspreDance bool) []peg.Pattern {
	loop := []peg.Pattern{
		peg.PushStack(stackNo, dynamicCloseTagPattern, peg.True),
		peg.Q0(peg.Seq(checkNo(), peg.V("documentBlock"))),
		popNo(),
	}
	if !wspreDance {
		return loop
	}
	out := []peg.Pattern{pushWspreOff(), setWspreOn()}
	out = append(out, loop...)
	out = append(out, popWspre(), popWspre())
	return out
}

// htmlInlineContent is the content sequence for elements that hold inline
// content only (<p>, <h1>..<h6>); wspreOff additionally disables
// indent-pre for the nested content.
func htmlInlineContent(wspreOff bool) []peg.Pattern {
	loop := []peg.Pattern{
		pushIfnotHtmlTag(),
		peg.CC(wrapInline, peg.Q0(peg.Seq(checkIfnot(), checkNo(), peg.V("inlineElement")))),
		popIfnot(),
	}
	if !wspreOff {
		return loop
	}
	out := []peg.Pattern{pushWspreOff()}
	out = append(out, loop...)
	out = append(out, popWspre())
	return out
}

// htmlElementRule builds one block-element production: the gated open tag,
// the class-specific content sequence, then the close tag. A missing close
// tag consumes to end of file and emits a warning instead of failing, so
// an unclosed <div> degrades the way spec section 7 describes.
func htmlElementRule(check func(string) bool, content []peg.Pattern, sink *diagnosticSink) peg.Pattern {
	cons := consHtmlElement(true)
	open := htmlOpenTag(check)

	closedSeq := append([]peg.Pattern{open}, content...)
	closedSeq = append(closedSeq, dynamicCloseTagPattern, peg.Q01(peg.Seq(blankLine0, newline)))
	closed := peg.CC(cons, peg.Seq(closedSeq...))

	unclosedSeq := append([]peg.Pattern{open}, content...)
	unclosedSeq = append(unclosedSeq, peg.EOF)
	unclosed := peg.CC(cons, peg.Trigger(func(_ string, pos peg.Position) error {
		sink.warn(pos, "unclosed html element")
		return nil
	}, peg.Seq(unclosedSeq...)))

	return peg.Alt(closed, unclosed)
}

// htmlPreRule recognizes <pre>: content is verbatim until the close tag,
// except that a <nowiki> region shields anything inside it (including a
// literal "</pre>"). Inside a pre the nowiki close tag is mandatory,
// unlike elsewhere: an unclosed <nowiki> simply stops shielding.
func htmlPreRule(sink *diagnosticSink) peg.Pattern {
	isPre := func(s string) bool { return strings.EqualFold(s, "pre") }
	preClose := peg.Rx(`(?i)</pre[ \t]*>`)
	nowikiShield := peg.Seq(
		peg.TI("<nowiki>"),
		peg.Q0(peg.Seq(peg.Not(peg.TI("</nowiki>")), peg.Dot)),
		peg.TI("</nowiki>"),
	)
	verbatim := peg.CT(textCons, peg.Q0(peg.Alt(
		nowikiShield,
		peg.Seq(peg.Not(preClose), peg.Dot),
	)))
	return htmlElementRule(isPre, []peg.Pattern{verbatim}, sink)
}

// htmlInlineRule recognizes a generic inline HTML-like element (b, i, u,
// span, ...), whose content is inline rather than block. Self-closing and
// paired forms are distinct alternatives so SelfClosing never needs a
// sentinel threaded through the capture stream; the close tag of the
// paired form is optional, letting an unclosed inline tag run to the end
// of its enclosing inline context.
func htmlInlineRule() peg.Pattern {
	open := peg.Seq(
		peg.T("<"),
		peg.CT(textCons, peg.Check(tagInClass(inlineTagNames), peg.NG("tag", htmlTagName))),
		peg.Q0(peg.Alt(peg.V("attr"), attrJunk)),
		blankLine0,
	)
	selfClosing := peg.CC(func(subs []peg.Capture) (peg.Capture, error) {
		cap, err := consHtmlElement(false)(subs)
		if err != nil {
			return nil, err
		}
		cap.(*HtmlElement).SelfClosing = true
		return cap, nil
	}, peg.Seq(open, peg.T("/>")))
	paired := peg.CC(consHtmlElement(false), peg.Seq(
		open, peg.T(">"),
		pushIfnotHtmlTag(),
		peg.CC(wrapInline, peg.Q0(peg.Seq(checkIfnot(), checkNo(), peg.V("inlineElement")))),
		popIfnot(),
		peg.Q01(dynamicCloseTagPattern),
	))
	return peg.Alt(selfClosing, paired)
}
