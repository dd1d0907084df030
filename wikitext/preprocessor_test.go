package wikitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func ppFlatten(nodes []PPNode) string {
	var b strings.Builder
	for _, n := range nodes {
		if t, ok := n.(*PPText); ok {
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

func firstTemplate(t *testing.T, nodes []PPNode) *PPTemplate {
	t.Helper()
	for _, n := range nodes {
		if tpl, ok := n.(*PPTemplate); ok {
			return tpl
		}
	}
	t.Fatalf("no template in %#v", nodes)
	return nil
}

func TestPreprocessTemplateStructure(t *testing.T) {
	pp, _, err := Preprocess("{{t|a|k=v}}")
	require.NoError(t, err)

	tpl := firstTemplate(t, pp.Nodes)
	require.Equal(t, "t", ppFlatten(tpl.Name))
	require.Len(t, tpl.Args, 2)

	require.False(t, tpl.Args[0].Named)
	require.Equal(t, "a", ppFlatten(tpl.Args[0].Value))

	require.True(t, tpl.Args[1].Named)
	require.Equal(t, "k", ppFlatten(tpl.Args[1].Name))
	require.Equal(t, "v", ppFlatten(tpl.Args[1].Value))
}

func TestPreprocessTemplateBOLFlag(t *testing.T) {
	pp, _, err := Preprocess("{{t}}")
	require.NoError(t, err)
	require.True(t, firstTemplate(t, pp.Nodes).BOL)

	pp, _, err = Preprocess("x{{t}}")
	require.NoError(t, err)
	require.False(t, firstTemplate(t, pp.Nodes).BOL)
}

func TestPreprocessNestedTemplate(t *testing.T) {
	pp, _, err := Preprocess("{{outer|{{inner}}}}")
	require.NoError(t, err)
	outer := firstTemplate(t, pp.Nodes)
	require.Equal(t, "outer", ppFlatten(outer.Name))
	require.Len(t, outer.Args, 1)
	inner := firstTemplate(t, outer.Args[0].Value)
	require.Equal(t, "inner", ppFlatten(inner.Name))
}

func TestPreprocessArgument(t *testing.T) {
	pp, _, err := Preprocess("{{{name|fallback}}}")
	require.NoError(t, err)

	var arg *PPArgument
	for _, n := range pp.Nodes {
		if a, ok := n.(*PPArgument); ok {
			arg = a
		}
	}
	require.NotNil(t, arg)
	require.Equal(t, "name", ppFlatten(arg.Name))
	require.Len(t, arg.Defaults, 1)
	require.Equal(t, "fallback", ppFlatten(arg.Defaults[0]))
}

func TestPreprocessMalformedTemplateFallsToText(t *testing.T) {
	pp, _, err := Preprocess("{{never closed")
	require.NoError(t, err)
	for _, n := range pp.Nodes {
		_, isTemplate := n.(*PPTemplate)
		require.False(t, isTemplate)
	}
	require.Equal(t, "{{never closed", pp.Text)
}

func TestPreprocessLinkKeepsPipeOrdinary(t *testing.T) {
	pp, _, err := Preprocess("[[a|{{t}}]]")
	require.NoError(t, err)

	var link *PPLink
	for _, n := range pp.Nodes {
		if l, ok := n.(*PPLink); ok {
			link = l
		}
	}
	require.NotNil(t, link)
	require.Equal(t, "[[a|{{t}}]]", pp.Text)
}

func TestPreprocessCommentAloneSwallowsOneNewline(t *testing.T) {
	pp, _, err := Preprocess("x\n<!-- c -->\ny")
	require.NoError(t, err)
	require.Equal(t, "x\ny", pp.Text)
}

func TestPreprocessCommentAloneWithSurroundingBlanks(t *testing.T) {
	pp, _, err := Preprocess("x\n  <!-- c -->  \ny")
	require.NoError(t, err)
	require.Equal(t, "x\ny", pp.Text)
}

func TestPreprocessFirstLineCommentPreserved(t *testing.T) {
	pp, _, err := Preprocess("<!-- c -->\ny")
	require.NoError(t, err)
	require.Equal(t, "<!-- c -->\ny", pp.Text)
}

func TestPreprocessFirstLineCommentStrippedWhenConfigured(t *testing.T) {
	pp, _, err := Preprocess("<!-- c -->\ny", WithStripCommentsOnFirstLine(true))
	require.NoError(t, err)
	require.Equal(t, "y", pp.Text)
}

func TestPreprocessMidLineCommentPreserved(t *testing.T) {
	pp, _, err := Preprocess("a<!-- c -->b")
	require.NoError(t, err)
	require.Equal(t, "a<!-- c -->b", pp.Text)
}

func TestPreprocessUnclosedCommentWarns(t *testing.T) {
	_, diags, err := Preprocess("a<!-- runs to end")
	require.NoError(t, err)

	var warned bool
	for _, d := range diags {
		if strings.Contains(d.Message, "unclosed comment") {
			warned = true
			require.Equal(t, SeverityWarning, d.Severity)
		}
	}
	require.True(t, warned)
}

func TestPreprocessNoIncludeModes(t *testing.T) {
	pp, _, err := Preprocess("a<noinclude>b</noinclude>c")
	require.NoError(t, err)
	require.Equal(t, "abc", pp.Text)

	pp, _, err = Preprocess("a<noinclude>b</noinclude>c", WithInclusion(InclusionTransclude))
	require.NoError(t, err)
	require.Equal(t, "ac", pp.Text)
}

func TestPreprocessIncludeOnlyModes(t *testing.T) {
	pp, _, err := Preprocess("a<includeonly>b</includeonly>c")
	require.NoError(t, err)
	require.Equal(t, "ac", pp.Text)

	pp, _, err = Preprocess("a<includeonly>b</includeonly>c", WithInclusion(InclusionTransclude))
	require.NoError(t, err)
	require.Equal(t, "abc", pp.Text)
}

func TestPreprocessOnlyIncludeRestrictsTransclusion(t *testing.T) {
	pp, _, err := Preprocess("x<onlyinclude>y</onlyinclude>z")
	require.NoError(t, err)
	require.Equal(t, "xyz", pp.Text)

	pp, _, err = Preprocess("x<onlyinclude>y</onlyinclude>z", WithInclusion(InclusionTransclude))
	require.NoError(t, err)
	require.Equal(t, "y", pp.Text)
}

func TestPreprocessUnclosedInclusionRunsToEOF(t *testing.T) {
	pp, diags, err := Preprocess("a<noinclude>rest of file")
	require.NoError(t, err)
	require.Equal(t, "arest of file", pp.Text)

	var warned bool
	for _, d := range diags {
		if strings.Contains(d.Message, "unclosed <noinclude>") {
			warned = true
		}
	}
	require.True(t, warned)
}

func TestPreprocessDanglingCloseTagIgnored(t *testing.T) {
	pp, _, err := Preprocess("a</noinclude>b")
	require.NoError(t, err)
	require.Equal(t, "ab", pp.Text)
}
