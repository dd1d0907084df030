package wikitext

import (
	"github.com/gowiki/wikitext/peg"
	"github.com/gowiki/wikitext/peg/pegutil"
)

// Names of the four named auxiliary stacks (spec section 3, section 4.C).
// Entries pushed onto them are always compiled peg.Pattern values, never
// raw strings, per spec section 9 ("pre-compile the fixed-form patterns...
// store compiled matchers... not strings").
const (
	stackNo      = "no"
	stackIfnot   = "ifnot"
	stackBolSkip = "bol_skip"
	stackWspre   = "wspre"
)

// wspreOn/wspreOff are the two markers pushed onto the wspre toggle stack.
var (
	wspreOn  peg.Pattern = peg.True
	wspreOff peg.Pattern = peg.False
)

// htmlTagName matches an HTML-like element or attribute name, per spec
// section 4.G: "[:A-Z_a-z0-9][:A-Z_a-z0-9\-.]*".
var htmlTagName = peg.Rx(`[:A-Za-z_0-9][:A-Za-z_0-9.\-]*`)

// blankLine0 matches horizontal whitespace that is not a newline.
var blankLine0 = peg.Q0(peg.S(" \t"))

// dynamicCloseTagPattern builds "</name\s*>" where name is read back from
// the "tag" named group captured by the opening tag rule (spec section
// 4.E, push_ifnot_html_tag: "captures the matched tag name and pushes a
// close-tag pattern... onto ifnot").
var dynamicCloseTagPattern peg.Pattern = peg.Seq(
	peg.T("</"), peg.Ref("tag"), peg.Q0(pegutil.Whitespace), peg.T(">"))

// headingTerminator builds the "no" pattern for push_no_hN: a run of N
// "=" characters, optionally followed by a comment, then end-of-line or
// end-of-file (spec section 4.E, 4.G).
func headingTerminator(level int, comment peg.Pattern) peg.Pattern {
	return peg.Seq(
		peg.Qnn(level, peg.T("=")),
		blankLine0,
		peg.Q01(comment),
		blankLine0,
		peg.Alt(peg.EOL, peg.EOF))
}

// pushNoHeading implements push_no_h1..push_no_h6: pushes the heading-N
// terminator onto the "no" stack. comment is the compiled comment pattern
// (grammar.go's non-capturing commentPlain), so the terminator recognizes a
// trailing "<!-- ... -->", closed or running to end of file.
func pushNoHeading(level int, comment peg.Pattern) peg.Pattern {
	return peg.PushStack(stackNo, headingTerminator(level, comment), peg.True)
}

// popNo implements pop_no: removes the top of the "no" stack.
func popNo() peg.Pattern {
	return peg.PopStack(stackNo, peg.True)
}

// pushNoNewline implements push_no_nl: pushes a bare newline onto "no",
// preventing inline rules from crossing a line break.
func pushNoNewline() peg.Pattern {
	return peg.PushStack(stackNo, pegutil.Newline, peg.True)
}

// pushNoTableLine implements push_no_tableline: pushes "^[ \t]*[|!]" onto
// "no" so a table cell's embedded block content does not consume the
// start of the next cell or row.
func pushNoTableLine() peg.Pattern {
	pat := peg.Seq(peg.SOL, blankLine0, peg.S("|!"))
	return peg.PushStack(stackNo, pat, peg.True)
}

// checkNo implements check_no: fails if any "no" top matches here.
func checkNo() peg.Pattern {
	return peg.Not(peg.CheckStackAny(stackNo))
}

// Marker patterns for the three nested-list kinds, pushed by
// push_bol_skip_ul/_ol/_dl.
var (
	ulMarker peg.Pattern = peg.T("*")
	olMarker peg.Pattern = peg.T("#")
	dlMarker peg.Pattern = peg.S(";:")
)

func pushBolSkipUL() peg.Pattern { return peg.PushStack(stackBolSkip, ulMarker, peg.True) }
func pushBolSkipOL() peg.Pattern { return peg.PushStack(stackBolSkip, olMarker, peg.True) }
func pushBolSkipDL() peg.Pattern { return peg.PushStack(stackBolSkip, dlMarker, peg.True) }

// pushBolSkipWspre implements push_bol_skip_wspre: pushes the single-space
// prefix consumed on each line of an indent-pre block.
func pushBolSkipWspre() peg.Pattern {
	return peg.PushStack(stackBolSkip, peg.T(" "), peg.True)
}

// popBolSkip implements pop_bol_skip: removes the top of "bol_skip".
func popBolSkip() peg.Pattern {
	return peg.PopStack(stackBolSkip, peg.True)
}

// checkBolSkip implements check_bol_skip: at the start of a new line,
// consumes every pattern on "bol_skip" bottom-to-top, failing (and so
// terminating the enclosing nested context) if any entry dismatches.
func checkBolSkip() peg.Pattern {
	return peg.CheckStackConsume(stackBolSkip)
}

// ifnotClosers are the fixed ifnot closing delimiters: link and external
// link closers, the pipe of a piped link, the data-cell separator, the
// header-cell separators (after "!", "||" is a synonym for "!!"), and the
// dt/dd separator.
var (
	ifnotLinkClose     peg.Pattern = peg.T("]]")
	ifnotExtLinkClose  peg.Pattern = peg.T("]")
	ifnotPipe          peg.Pattern = peg.T("|")
	ifnotDoublePipe    peg.Pattern = peg.T("||")
	ifnotCellSeparator peg.Pattern = peg.Alt(peg.T("!!"), peg.T("||"))
	ifnotColon         peg.Pattern = peg.T(":")
)

func pushIfnot(closer peg.Pattern) peg.Pattern {
	return peg.PushStack(stackIfnot, closer, peg.True)
}

func pushIfnotLinkClose() peg.Pattern     { return pushIfnot(ifnotLinkClose) }
func pushIfnotExtLinkClose() peg.Pattern  { return pushIfnot(ifnotExtLinkClose) }
func pushIfnotPipe() peg.Pattern          { return pushIfnot(ifnotPipe) }
func pushIfnotDoublePipe() peg.Pattern    { return pushIfnot(ifnotDoublePipe) }
func pushIfnotCellSeparator() peg.Pattern { return pushIfnot(ifnotCellSeparator) }
func pushIfnotColon() peg.Pattern         { return pushIfnot(ifnotColon) }

// pushIfnotHtmlTag implements push_ifnot_html_tag: the open-tag rule has
// already captured the matched tag name into the "tag" named group, and
// this pushes the corresponding close-tag pattern onto "ifnot". The pushed
// pattern resolves the name via peg.Ref("tag"), which walks outward
// through the live call stack to find the named group — correct as long
// as the caller pops before returning from the same element rule
// invocation that pushed it, exactly the bracketing every push_*/pop_*
// pair in this file already requires.
func pushIfnotHtmlTag() peg.Pattern {
	return peg.PushStack(stackIfnot, dynamicCloseTagPattern, peg.True)
}

// popIfnot implements pop_ifnot: removes the top of "ifnot".
func popIfnot() peg.Pattern {
	return peg.PopStack(stackIfnot, peg.True)
}

// checkIfnot implements check_ifnot: fails if any "ifnot" top matches.
func checkIfnot() peg.Pattern {
	return peg.Not(peg.CheckStackAny(stackIfnot))
}

// checkIfnots implements check_ifnots: check_ifnot followed by check_no,
// used before every generic character consumption in inline contexts.
func checkIfnots() peg.Pattern {
	return peg.Seq(checkIfnot(), checkNo())
}

// pushWspreOff implements push_wspre_off: disables indent-pre recognition
// for the nested context (internal link text, <p>, blockquote-like
// blocks).
func pushWspreOff() peg.Pattern {
	return peg.PushStack(stackWspre, wspreOff, peg.True)
}

// setWspreOn implements set_wspre_on: explicitly re-enables indent-pre
// recognition by pushing an "on" marker, e.g. inside a <ref> or other
// block that resumes normal block parsing.
func setWspreOn() peg.Pattern {
	return peg.PushStack(stackWspre, wspreOn, peg.True)
}

// popWspre implements pop_wspre: removes the top of the wspre toggle
// stack, restoring the enclosing context's indent-pre recognition state.
func popWspre() peg.Pattern {
	return peg.PopStack(stackWspre, peg.True)
}

// checkWspre implements check_wspre: fails if the top of "wspre" is the
// "off" marker (spec section 4.C). An empty stack means indent-pre is
// enabled at the document root.
func checkWspre() peg.Pattern {
	return peg.Not(peg.CheckStackTop(stackWspre, wspreOff))
}
