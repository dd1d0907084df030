package wikitext

import (
	"fmt"

	"github.com/gowiki/wikitext/peg"
)

// Node is implemented by every AST variant, block and inline alike. It
// embeds peg.Capture so grammar rules can push nodes directly onto the
// engine's capstack via peg.CC/peg.CT the same way the teacher builds
// peg.Variable/peg.Token trees in capturing.go; IsTerminal distinguishes
// leaf nodes (Text, Comment, ...) from nodes that themselves hold child
// Nodes, matching peg.Token vs peg.Variable. isNode is unexported so Node
// cannot be implemented outside this package, closing the variant set.
type Node interface {
	peg.Capture
	isNode()
}

// Block nodes.
type (
	Heading struct {
		Level  int
		Inline []Node
	}

	HorizontalRule struct{}

	ListKind int

	List struct {
		Kind  ListKind
		Items []*ListItem
	}

	ListItem struct {
		Content  []Node
		Sublists []*List
	}

	DefTerm struct{ Content []Node }
	DefDef  struct{ Content []Node }

	Table struct {
		// Indent counts the ":" runes preceding "{|" on the opening line
		// (the indent-table idiom); the leading indent is preserved.
		Indent  int
		Attrs   []Attr
		Caption []Node
		Rows    []*TableRow
	}

	TableRow struct {
		Attrs []Attr
		Cells []*TableCell
	}

	TableCellKind int

	TableCell struct {
		Kind    TableCellKind
		Attrs   []Attr
		Content []Node
	}

	IndentPre struct{ Inline []Node }

	Paragraph struct {
		Inline     []Node
		LeadingBr  bool
		TrailingBr bool
	}

	TocKind int

	TocMarker struct{ Kind TocKind }

	// Redirect is the supplemental block recognized ahead of the rest of
	// the document when it begins with "#REDIRECT [[target]]".
	Redirect struct {
		Target string
		Text   []Node
	}
)

const (
	ListUL ListKind = iota
	ListOL
	ListDL
)

const (
	CellData TableCellKind = iota
	CellHeader
)

const (
	TocDefault TocKind = iota
	TocForce
	TocSuppress
)

// Inline nodes.
type (
	Text struct{ Value string }

	Bold       struct{ Inline []Node }
	Italic     struct{ Inline []Node }
	BoldItalic struct{ Inline []Node }

	InternalLink struct {
		Target string
		Text   []Node
		Trail  string
	}

	ExternalLink struct {
		URL  string
		Text []Node
	}

	PlainLink struct{ URL string }

	EntityKind int

	HtmlEntity struct {
		Kind EntityKind
		Name string // for EntityNamed
		Code rune   // resolved code point, for EntityDecimal/EntityHex, or EntityNamed once resolved
		Raw  string // original source span, preserved when unresolved
	}

	Nowiki struct{ Raw string }

	Comment struct{ Raw string }

	Attr struct {
		Name  string
		Value string
	}

	HtmlElement struct {
		Name        string
		Attrs       []Attr
		Content     []Node
		SelfClosing bool
	}

	Ref struct{ Blocks []Node }

	LineBreak struct{}
)

const (
	EntityNamed EntityKind = iota
	EntityDecimal
	EntityHex
)

func (*Heading) isNode()        {}
func (*HorizontalRule) isNode() {}
func (*List) isNode()           {}
func (*ListItem) isNode()       {}
func (*DefTerm) isNode()        {}
func (*DefDef) isNode()         {}
func (*Table) isNode()          {}
func (*TableRow) isNode()       {}
func (*TableCell) isNode()      {}
func (*IndentPre) isNode()      {}
func (*Paragraph) isNode()      {}
func (*TocMarker) isNode()      {}
func (*Redirect) isNode()       {}

func (*Text) isNode()         {}
func (*Bold) isNode()         {}
func (*Italic) isNode()       {}
func (*BoldItalic) isNode()   {}
func (*InternalLink) isNode() {}
func (*ExternalLink) isNode() {}
func (*PlainLink) isNode()    {}
func (*HtmlEntity) isNode()   {}
func (*Nowiki) isNode()       {}
func (*Comment) isNode()      {}
func (*Attr) isNode()         {}
func (*HtmlElement) isNode()  {}
func (*Ref) isNode()          {}
func (*LineBreak) isNode()    {}

// IsTerminal matches peg.Capture; true for leaf nodes that hold no child
// Nodes, false for nodes constructed around nested content.
func (*Heading) IsTerminal() bool        { return false }
func (*HorizontalRule) IsTerminal() bool { return true }
func (*List) IsTerminal() bool           { return false }
func (*ListItem) IsTerminal() bool       { return false }
func (*DefTerm) IsTerminal() bool        { return false }
func (*DefDef) IsTerminal() bool         { return false }
func (*Table) IsTerminal() bool          { return false }
func (*TableRow) IsTerminal() bool       { return false }
func (*TableCell) IsTerminal() bool      { return false }
func (*IndentPre) IsTerminal() bool      { return false }
func (*Paragraph) IsTerminal() bool      { return false }
func (*TocMarker) IsTerminal() bool      { return true }
func (*Redirect) IsTerminal() bool       { return false }

func (*Text) IsTerminal() bool         { return true }
func (*Bold) IsTerminal() bool         { return false }
func (*Italic) IsTerminal() bool       { return false }
func (*BoldItalic) IsTerminal() bool   { return false }
func (*InternalLink) IsTerminal() bool { return false }
func (*ExternalLink) IsTerminal() bool { return false }
func (*PlainLink) IsTerminal() bool    { return true }
func (*HtmlEntity) IsTerminal() bool   { return true }
func (*Nowiki) IsTerminal() bool       { return true }
func (*Comment) IsTerminal() bool      { return true }
func (*Attr) IsTerminal() bool         { return true }
func (*HtmlElement) IsTerminal() bool  { return false }
func (*Ref) IsTerminal() bool          { return false }
func (*LineBreak) IsTerminal() bool    { return true }

func (k ListKind) String() string {
	switch k {
	case ListUL:
		return "ul"
	case ListOL:
		return "ol"
	case ListDL:
		return "dl"
	default:
		return fmt.Sprintf("ListKind(%d)", int(k))
	}
}

func (k TableCellKind) String() string {
	if k == CellHeader {
		return "header"
	}
	return "data"
}
