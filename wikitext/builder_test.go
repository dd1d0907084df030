package wikitext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveQuotesSimpleItalicAndBold(t *testing.T) {
	in := []Node{
		&quoteMark{Width: 2},
		&Text{Value: "hi"},
		&quoteMark{Width: 2},
	}
	out := resolveQuotes(in)
	require.Len(t, out, 1)
	it, ok := out[0].(*Italic)
	require.True(t, ok)
	require.Equal(t, "hi", flattenText(it.Inline))
}

func TestResolveQuotesBoldInsideItalic(t *testing.T) {
	// ''italic '''both''' still italic''
	in := []Node{
		&quoteMark{Width: 2},
		&Text{Value: "a"},
		&quoteMark{Width: 3},
		&Text{Value: "b"},
		&quoteMark{Width: 3},
		&Text{Value: "c"},
		&quoteMark{Width: 2},
	}
	out := resolveQuotes(in)
	require.Len(t, out, 1)
	it, ok := out[0].(*Italic)
	require.True(t, ok)
	require.Len(t, it.Inline, 3)
	require.Equal(t, "a", flattenText(it.Inline[:1]))
	bold, ok := it.Inline[1].(*Bold)
	require.True(t, ok)
	require.Equal(t, "b", flattenText(bold.Inline))
	require.Equal(t, "c", flattenText(it.Inline[2:]))
}

func TestResolveQuotesUnterminatedFrameClosesAtEnd(t *testing.T) {
	in := []Node{
		&quoteMark{Width: 3},
		&Text{Value: "dangling"},
	}
	out := resolveQuotes(in)
	require.Len(t, out, 1)
	b, ok := out[0].(*Bold)
	require.True(t, ok)
	require.Equal(t, "dangling", flattenText(b.Inline))
}

func TestResolveQuotesWidthFiveTogglesBoth(t *testing.T) {
	// A width-5 marker opening and closing together, with nothing else
	// interleaved, collapses to a single BoldItalic rather than nesting
	// Bold/Italic.
	in := []Node{
		&quoteMark{Width: 5},
		&Text{Value: "x"},
		&quoteMark{Width: 5},
	}
	out := resolveQuotes(in)
	require.Len(t, out, 1)
	both, ok := out[0].(*BoldItalic)
	require.True(t, ok)
	require.Equal(t, "x", flattenText(both.Inline))
}

func TestResolveQuotesWidthFiveAsymmetricCloseStaysNested(t *testing.T) {
	// '''''x''y''' : the inner width-2 closes only italic, so the later
	// width-3 closes plain bold around it - no single paired width-5
	// close, so it must stay a nested Bold{Italic{...}}, not BoldItalic.
	in := []Node{
		&quoteMark{Width: 5},
		&Text{Value: "x"},
		&quoteMark{Width: 2},
		&Text{Value: "y"},
		&quoteMark{Width: 3},
	}
	out := resolveQuotes(in)
	require.Len(t, out, 1)
	outer, ok := out[0].(*Bold)
	require.True(t, ok)
	require.Len(t, outer.Inline, 2)
	inner, ok := outer.Inline[0].(*Italic)
	require.True(t, ok)
	require.Equal(t, "x", flattenText(inner.Inline))
	require.Equal(t, "y", flattenText(outer.Inline[1:]))
}

func TestResolveQuotesNoMarksPassesThrough(t *testing.T) {
	in := []Node{&Text{Value: "plain"}}
	out := resolveQuotes(in)
	require.Equal(t, in, out)
}

func TestResolveParagraphsSingleBlankLineBecomesLeadingBr(t *testing.T) {
	in := []Node{
		&Paragraph{Inline: []Node{&Text{Value: "a"}}},
		&blankRun{N: 1},
		&Paragraph{Inline: []Node{&Text{Value: "b"}}},
	}
	out := resolveParagraphs(in)
	require.Len(t, out, 2)
	first := out[0].(*Paragraph)
	require.False(t, first.TrailingBr)
	second := out[1].(*Paragraph)
	require.True(t, second.LeadingBr)
}

func TestResolveParagraphsDoubleBlankLineBecomesBrOnlyParagraph(t *testing.T) {
	in := []Node{
		&Paragraph{Inline: []Node{&Text{Value: "a"}}},
		&blankRun{N: 2},
		&Paragraph{Inline: []Node{&Text{Value: "b"}}},
	}
	out := resolveParagraphs(in)
	require.Len(t, out, 3)
	sep, ok := out[1].(*Paragraph)
	require.True(t, ok)
	require.Empty(t, sep.Inline)
	require.True(t, sep.LeadingBr)
	require.True(t, sep.TrailingBr)
	require.False(t, out[2].(*Paragraph).LeadingBr)
}

func TestResolveParagraphsSingleBlankBeforeNonParagraphSetsTrailingBr(t *testing.T) {
	in := []Node{
		&Paragraph{Inline: []Node{&Text{Value: "a"}}},
		&blankRun{N: 1},
		&Heading{Level: 2, Inline: []Node{&Text{Value: "h"}}},
	}
	out := resolveParagraphs(in)
	require.Len(t, out, 2)
	require.True(t, out[0].(*Paragraph).TrailingBr)
}

func TestResolveParagraphsBlankRunWithNoParagraphNeighborBecomesStandalone(t *testing.T) {
	in := []Node{
		&Heading{Level: 1, Inline: []Node{&Text{Value: "h"}}},
		&blankRun{N: 2},
		&Heading{Level: 1, Inline: []Node{&Text{Value: "h2"}}},
	}
	out := resolveParagraphs(in)
	require.Len(t, out, 3)
	p, ok := out[1].(*Paragraph)
	require.True(t, ok)
	require.True(t, p.LeadingBr)
	require.True(t, p.TrailingBr)
	require.Empty(t, p.Inline)
}

func TestResolveParagraphsDropsEmptyTail(t *testing.T) {
	in := []Node{
		&Paragraph{Inline: []Node{&Text{Value: "a"}}},
		&blankRun{N: 3},
	}
	out := resolveParagraphs(in)
	require.Len(t, out, 1)
	p := out[0].(*Paragraph)
	require.False(t, p.TrailingBr)
}

func TestNormalizeListItemsMergesContentLessSublistItem(t *testing.T) {
	inner := &List{Kind: ListUL, Items: []*ListItem{
		{Content: []Node{&Text{Value: "b"}}},
	}}
	items := []*ListItem{
		{Content: []Node{&Text{Value: "a"}}},
		{Sublists: []*List{inner}},
	}
	out := normalizeListItems(items)
	require.Len(t, out, 1)
	require.Equal(t, "a", flattenText(out[0].Content))
	require.Len(t, out[0].Sublists, 1)
	require.Same(t, inner, out[0].Sublists[0])
}

func TestNormalizeListItemsLeavesOrdinaryItemsAlone(t *testing.T) {
	items := []*ListItem{
		{Content: []Node{&Text{Value: "a"}}},
		{Content: []Node{&Text{Value: "b"}}},
	}
	out := normalizeListItems(items)
	require.Len(t, out, 2)
}

func TestNormalizeListItemsLeadingSublistOnlyItemStaysAsIs(t *testing.T) {
	// A content-less sublist item with nothing preceding it has no sibling
	// to attach to, so it must survive unmerged.
	inner := &List{Kind: ListUL, Items: []*ListItem{
		{Content: []Node{&Text{Value: "b"}}},
	}}
	items := []*ListItem{
		{Sublists: []*List{inner}},
	}
	out := normalizeListItems(items)
	require.Len(t, out, 1)
	require.Empty(t, out[0].Content)
	require.Len(t, out[0].Sublists, 1)
}
