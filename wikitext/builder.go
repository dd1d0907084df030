package wikitext

import "strings"

// builder.go holds the post-processing passes that run over the raw trees
// grammar.go builds (spec section 4.H): resolving apostrophe quote-mark
// sentinels into Bold/Italic/BoldItalic, turning blankRun markers into
// Paragraph.LeadingBr/TrailingBr or standalone empty paragraphs, and the
// small edge trims below. All are flat, single-pass transforms over a
// []Node, deliberately kept separate from the grammar itself because none
// is expressible as a clean recursive-descent production (see DESIGN.md).

// Quote kinds tracked by resolveQuotes' frame stack.
const (
	quoteBold = iota
	quoteItalic
)

type quoteFrame struct {
	kind   int
	buf    []Node
	pairID int // nonzero when opened together by a single width-5 marker
}

// resolveQuotes replicates MediaWiki's doQuotes: a line's apostrophe runs
// are scanned once, left to right, maintaining a stack of currently-open
// bold/italic frames. A width-2 quoteMark toggles italic, width-3 toggles
// bold, and width-5 toggles both; "toggle" means close the innermost
// still-open frame of that kind (and everything nested inside it, which
// flows into the parent frame) if one is open, or open a new frame if
// not. Unterminated frames at the end of input are closed anyway, wrapping
// their accumulated content in an (functionally empty-delimited) node
// rather than discarding the text they contain.
func resolveQuotes(nodes []Node) []Node {
	hasQuoteMark := false
	for _, n := range nodes {
		if _, ok := n.(*quoteMark); ok {
			hasQuoteMark = true
			break
		}
	}
	if !hasQuoteMark {
		return nodes
	}

	var stack []*quoteFrame
	ground := make([]Node, 0, len(nodes))
	pairSeq := 0

	emit := func(n Node) {
		if len(stack) == 0 {
			ground = append(ground, n)
			return
		}
		top := stack[len(stack)-1]
		top.buf = append(top.buf, n)
	}

	popFrame := func() *quoteFrame {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	closeTop := func() {
		top := popFrame()
		if top.kind == quoteBold {
			emit(&Bold{Inline: top.buf})
		} else {
			emit(&Italic{Inline: top.buf})
		}
	}

	hasOpen := func(kind int) bool {
		for _, f := range stack {
			if f.kind == kind {
				return true
			}
		}
		return false
	}

	// closeOrOpen closes every open frame from the top of the stack down
	// through (and including) the innermost frame of kind, or opens a new
	// one of kind if none is open.
	closeOrOpen := func(kind int) {
		if !hasOpen(kind) {
			stack = append(stack, &quoteFrame{kind: kind})
			return
		}
		for {
			top := stack[len(stack)-1].kind
			closeTop()
			if top == kind {
				return
			}
		}
	}

	// firstOpened returns whichever of a/b was opened earliest (appears
	// closest to the bottom of the stack), so closing on it also closes
	// through the other.
	firstOpened := func(a, b int) int {
		for _, f := range stack {
			if f.kind == a || f.kind == b {
				return f.kind
			}
		}
		return a
	}

	for _, n := range nodes {
		qm, ok := n.(*quoteMark)
		if !ok {
			emit(n)
			continue
		}
		switch qm.Width {
		case 2:
			closeOrOpen(quoteItalic)
		case 3:
			closeOrOpen(quoteBold)
		case 5:
			switch {
			case hasOpen(quoteBold) && hasOpen(quoteItalic):
				// Close down from the top through (and including) whichever
				// of bold/italic was opened first. If exactly the two frames
				// a single prior width-5 marker pushed together come off in
				// this one closing (same pairID, nothing else interleaved),
				// collapse them into a single BoldItalic instead of the
				// generic Bold{Italic{...}} nesting closeOrOpen would give.
				first := firstOpened(quoteBold, quoteItalic)
				var closed []*quoteFrame
				for {
					f := popFrame()
					closed = append(closed, f)
					if f.kind == first {
						break
					}
				}
				if len(closed) == 2 && closed[0].pairID != 0 && closed[0].pairID == closed[1].pairID {
					emit(&BoldItalic{Inline: closed[0].buf})
					break
				}
				for i, f := range closed {
					var node Node
					if f.kind == quoteBold {
						node = &Bold{Inline: f.buf}
					} else {
						node = &Italic{Inline: f.buf}
					}
					if i == len(closed)-1 {
						emit(node)
					} else {
						closed[i+1].buf = append(closed[i+1].buf, node)
					}
				}
			case hasOpen(quoteBold):
				closeOrOpen(quoteItalic)
			case hasOpen(quoteItalic):
				closeOrOpen(quoteBold)
			default:
				pairSeq++
				stack = append(stack, &quoteFrame{kind: quoteBold, pairID: pairSeq})
				stack = append(stack, &quoteFrame{kind: quoteItalic, pairID: pairSeq})
			}
		}
	}

	for len(stack) > 0 {
		closeTop()
	}

	return ground
}

// resolveParagraphs turns blankRun markers (grammar.go) left by the
// document/ref/htmlBlock block loops into paragraph breaks: a single
// empty line attaches as the following paragraph's leading br (falling
// back to the preceding paragraph's trailing br when nothing paragraph-
// like follows), and two or more empty lines produce a separate br-only
// paragraph (spec section 4.G/4.H). A run of empty lines at the very end
// of the sequence is the empty tail and is dropped outright rather than
// producing trailing brs.
func resolveParagraphs(blocks []Node) []Node {
	out := make([]Node, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		run, isBlank := blocks[i].(*blankRun)
		if !isBlank {
			out = append(out, blocks[i])
			continue
		}
		if i+1 >= len(blocks) {
			continue
		}
		if run.N >= 2 {
			out = append(out, &Paragraph{LeadingBr: true, TrailingBr: true})
			continue
		}
		if p, ok := blocks[i+1].(*Paragraph); ok {
			p.LeadingBr = true
			continue
		}
		if n := len(out); n > 0 {
			if p, ok := out[n-1].(*Paragraph); ok {
				p.TrailingBr = true
				continue
			}
		}
		out = append(out, &Paragraph{LeadingBr: true, TrailingBr: true})
	}

	if n := len(out); n > 0 {
		if p, ok := out[n-1].(*Paragraph); ok && len(p.Inline) == 0 {
			out = out[:n-1]
		}
	}
	return out
}

// trimBlankEnds strips the space/tab run at the edges of an inline run:
// the blanks between a heading's content and its closing "=" run, between
// a list item's content and its line end, around a table cell's content.
// The grammar consumes the marker-adjacent blanks itself (outside any
// capture); this handles the trailing side, which the greedy text run has
// already absorbed into its last Text token by the time the terminator is
// seen. Only edge Text nodes are touched, and never in place — a new node
// replaces a trimmed one.
func trimBlankEnds(nodes []Node) []Node {
	nodes = trimTextEdge(nodes, true, func(v string) string { return strings.TrimLeft(v, " \t") })
	nodes = trimTextEdge(nodes, false, func(v string) string { return strings.TrimRight(v, " \t") })
	return nodes
}

// trimLineEnds strips one leading and one trailing line terminator from a
// paragraph's inline run: the leading one is the tail of the line a
// mid-line block open tag sat on, the trailing one is the terminator of
// the paragraph's own last line, consumed by the inline loop before the
// break pattern could see the fresh line start.
func trimLineEnds(nodes []Node) []Node {
	nodes = trimTextEdge(nodes, true, trimOneNewline(strings.TrimPrefix))
	nodes = trimTextEdge(nodes, false, trimOneNewline(strings.TrimSuffix))
	return nodes
}

func trimOneNewline(trim func(string, string) string) func(string) string {
	return func(v string) string {
		for _, nl := range []string{"\r\n", "\n", "\r"} {
			if out := trim(v, nl); out != v {
				return out
			}
		}
		return v
	}
}

func trimTextEdge(nodes []Node, leading bool, trim func(string) string) []Node {
	i := len(nodes) - 1
	if leading {
		i = 0
	}
	if i < 0 {
		return nodes
	}
	t, ok := nodes[i].(*Text)
	if !ok {
		return nodes
	}
	v := trim(t.Value)
	if v == t.Value {
		return nodes
	}
	out := append([]Node(nil), nodes...)
	if v == "" {
		return append(out[:i], out[i+1:]...)
	}
	out[i] = &Text{Value: v}
	return out
}

// normalizeListItems merges a content-less item produced by a nested
// marker run immediately following its parent's own marker (e.g. the
// second "*" of "**") into the preceding item's sublists, rather than
// leaving it as a sibling entry of its own: the grammar's line loop sees
// such a line as a fresh top-level item whose only content is the
// recursively-parsed sublist, but it belongs attached to whatever item
// came before it (spec section 4.H).
func normalizeListItems(items []*ListItem) []*ListItem {
	out := make([]*ListItem, 0, len(items))
	for _, it := range items {
		if len(it.Content) == 0 && len(it.Sublists) > 0 && len(out) > 0 {
			prev := out[len(out)-1]
			prev.Sublists = append(prev.Sublists, it.Sublists...)
			continue
		}
		out = append(out, it)
	}
	return out
}
