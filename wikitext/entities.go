package wikitext

import (
	"strconv"
	"strings"

	"github.com/gowiki/wikitext/peg"
	"github.com/gowiki/wikitext/peg/pegutil"
)

// EntityResolver maps a named HTML entity (without the leading "&" or
// trailing ";") to its Unicode code point. A host collaborator owns the
// mapping (spec section 6: "Entity resolver: the mapping from named
// entity to code point is external"); HTMLEntities below is a small
// built-in default covering the common named entities so the package is
// directly usable without a caller-supplied table.
type EntityResolver interface {
	Resolve(name string) (rune, bool)
}

// EntityResolverFunc adapts a function to EntityResolver.
type EntityResolverFunc func(name string) (rune, bool)

func (fn EntityResolverFunc) Resolve(name string) (rune, bool) {
	return fn(name)
}

var commonNamedEntities = map[string]rune{
	"amp":    '&',
	"lt":     '<',
	"gt":     '>',
	"quot":   '"',
	"apos":   '\'',
	"nbsp":   ' ',
	"mdash":  '—',
	"ndash":  '–',
	"hellip": '…',
	"copy":   '©',
	"reg":    '®',
	"trade":  '™',
	"deg":    '°',
	"middot": '·',
	"para":   '¶',
	"sect":   '§',
	"laquo":  '«',
	"raquo":  '»',
	"lsquo":  '‘',
	"rsquo":  '’',
	"ldquo":  '“',
	"rdquo":  '”',
	"minus":  '−',
	"times":  '×',
	"divide": '÷',
	"frac12": '½',
	"frac14": '¼',
	"frac34": '¾',
	"shy":    '­',
}

// HTMLEntities is the default EntityResolver, covering the common named
// entities. Hosts that need the full HTML5 named character reference
// table supply their own EntityResolver via wikitext.WithEntities.
var HTMLEntities = EntityResolverFunc(func(name string) (rune, bool) {
	r, ok := commonNamedEntities[name]
	return r, ok
})

// entityName matches the bare name of a named entity, e.g. "amp" in
// "&amp;". Grounded on pegutil's ASCII rune-class helpers rather than
// pegutil.Identifier, since entity names may start with a digit (e.g.
// historical numeric-looking named references).
var entityName = peg.Q1(pegutil.ASCIILetterDigit)

// entityNamedPattern, entityDecimalPattern and entityHexPattern are the
// bare (uncaptured) shapes of the three entity forms, reused by the main
// grammar driver wherever it needs to recognize an entity without
// constructing a node (e.g. inside attribute values, per spec 4.G).
var (
	entityNamedPattern   = peg.Seq(peg.T("&"), entityName, peg.T(";"))
	entityDecimalPattern = peg.Seq(peg.T("&#"), pegutil.DecUint32, peg.T(";"))
	entityHexPattern     = peg.Seq(peg.T("&#"), peg.S("xX"), pegutil.HexUint32, peg.T(";"))
)

// EntityPattern matches any of the three HTML entity forms (spec section
// 4.G), without constructing an HtmlEntity node.
var EntityPattern = peg.Alt(entityNamedPattern, entityDecimalPattern, entityHexPattern)

// Entity matches any of the three HTML entity forms and constructs the
// corresponding *HtmlEntity node, resolving named entities through
// resolve. An unresolved named entity keeps its raw source span rather
// than failing the rule, matching spec section 4.H step 3 ("materializes
// entity references... otherwise preserves raw form").
func Entity(resolve EntityResolver) peg.Pattern {
	return peg.Alt(
		peg.CT(newEntityConstructor(EntityNamed, resolve), entityNamedPattern),
		peg.CT(newEntityConstructor(EntityDecimal, nil), entityDecimalPattern),
		peg.CT(newEntityConstructor(EntityHex, nil), entityHexPattern),
	)
}

func newEntityConstructor(kind EntityKind, resolve EntityResolver) peg.TerminalConstructor {
	return func(span string, _ peg.Position) (peg.Capture, error) {
		ent := &HtmlEntity{Kind: kind, Raw: span}
		body := strings.TrimSuffix(span, ";")
		switch kind {
		case EntityNamed:
			ent.Name = strings.TrimPrefix(body, "&")
			if resolve != nil {
				if code, ok := resolve.Resolve(ent.Name); ok {
					ent.Code = code
				}
			}
		case EntityDecimal:
			digits := strings.TrimPrefix(body, "&#")
			if n, err := strconv.ParseUint(digits, 10, 32); err == nil {
				ent.Code = rune(n)
			}
		case EntityHex:
			digits := strings.TrimPrefix(body, "&#")
			digits = digits[1:] // drop the x/X radix marker
			if n, err := strconv.ParseUint(digits, 16, 32); err == nil {
				ent.Code = rune(n)
			}
		}
		return ent, nil
	}
}
