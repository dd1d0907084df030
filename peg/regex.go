package peg

import (
	"fmt"
	"regexp"
)

// Underlying type implementing Pattern interface.
type patternRegex struct {
	source string
	re     *regexp.Regexp
}

// Rx compiles pattern as a regular expression and matches it anchored at the
// current position: it never skips leading text and never matches elsewhere
// in the buffer, unlike an unanchored regexp.MatchString would. Panics if
// pattern fails to compile.
//
// Rx is the component A "regex-anchored matching at a position" primitive;
// prefer the rune-class patterns (S, R, U) for single characters and Rx only
// for terminals that are naturally expressed as a regular expression (e.g.
// fixed-width numeric runs, heading terminators).
func Rx(pattern string) Pattern {
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		panic(fmt.Errorf("peg: Rx(%q): %w", pattern, err))
	}
	return &patternRegex{source: pattern, re: re}
}

func (pat *patternRegex) match(ctx *context) error {
	loc := pat.re.FindStringIndex(ctx.text[ctx.at:])
	if loc == nil {
		return ctx.returnsPredication(false)
	}
	ctx.consume(loc[1] - loc[0])
	return ctx.returnsMatched()
}

func (pat *patternRegex) String() string {
	return fmt.Sprintf("/%s/", pat.source)
}
