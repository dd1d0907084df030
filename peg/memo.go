package peg

import "fmt"

// memoKey identifies a single (rule, position) pair in the memo table, per
// spec component B: "Caches (rule, position) -> (result, end-position) to
// guarantee linear time."
type memoKey struct {
	ruleID int
	at     int
}

// memoEntry is the cached outcome of a past evaluation of a memoized rule.
// A failed match is cached too (entry.ok == false), since re-trying a
// dismatch at the same position is exactly the redundant work memoization
// exists to avoid.
type memoEntry struct {
	ok          bool
	n           int
	groups      []string
	namedGroups map[string]string
	caps        []Capture
}

// Underlying type implementing Pattern interface.
type patternMemo struct {
	ruleID int
	pat    Pattern
}

// Underlying type implementing Pattern interface.
type patternCut struct{}

// Memo wraps pat so repeated evaluation at the same position is served from
// a cache instead of re-matched. Only rules whose outcome depends solely on
// the text and position should be wrapped: a rule that reads the no/ifnot/
// bol_skip/wspre stacks (see stacks.go) must never be memoized, since its
// result is a function of stack state the (ruleID, position) key does not
// capture. ruleID need only be unique within one grammar; grammars typically
// assign one per named rule using a small iota block.
func Memo(ruleID int, pat Pattern) Pattern {
	return &patternMemo{ruleID: ruleID, pat: pat}
}

// Cut purges memo entries at or below the current position, bounding memo
// growth to the size of the longest un-cut span (spec component B). It
// always succeeds, consuming no text. It does not commit earlier choices:
// an enclosing Alt or qualifier can still backtrack past a Cut. Grammar drivers apply it after every
// top-level element (spec 4.F, 4.G): `Seq(element, Cut())` repeated via Q0.
func Cut() Pattern {
	return patternCut{}
}

func (pat *patternMemo) match(ctx *context) error {
	if !ctx.justReturned() {
		if !ctx.config.DisableMemoization {
			if entry, ok := ctx.memoLookup(pat.ruleID, ctx.at); ok {
				return ctx.replayMemoEntry(entry)
			}
		}
		ctx.locals.mark = ctx.at
		ctx.locals.n2 = len(ctx.currentArgs())
		return ctx.call(pat.pat)
	}

	ret := ctx.ret
	if !ctx.config.DisableMemoization {
		entry := memoEntry{ok: ret.ok}
		if ret.ok {
			entry.n = ret.n
			entry.groups = ret.groups
			entry.namedGroups = ret.namedGroups
			entry.caps = append([]Capture(nil), ctx.currentArgs()[ctx.locals.n2:]...)
		}
		ctx.memoStore(pat.ruleID, ctx.locals.mark, entry)
	}
	if !ret.ok {
		return ctx.returnsPredication(false)
	}
	ctx.consume(ret.n)
	return ctx.returnsMatched()
}

func (pat *patternMemo) String() string {
	return fmt.Sprintf("memo_%d{%s}", pat.ruleID, pat.pat)
}

func (patternCut) match(ctx *context) error {
	ctx.cutMemoBelow(ctx.at)
	return ctx.returnsPredication(true)
}

func (patternCut) String() string {
	return ">>"
}

// currentArgs returns the arguments accumulated so far in the innermost
// non-terminal under construction.
func (ctx *context) currentArgs() []Capture {
	return ctx.capstack[len(ctx.capstack)-1].args
}

func (ctx *context) memoLookup(ruleID, at int) (memoEntry, bool) {
	if ctx.memo == nil {
		return memoEntry{}, false
	}
	entry, ok := ctx.memo[memoKey{ruleID, at}]
	return entry, ok
}

func (ctx *context) memoStore(ruleID, at int, entry memoEntry) {
	if ctx.memo == nil {
		ctx.memo = make(map[memoKey]memoEntry)
	}
	ctx.memo[memoKey{ruleID, at}] = entry
}

func (ctx *context) cutMemoBelow(at int) {
	for key := range ctx.memo {
		if key.at <= at {
			delete(ctx.memo, key)
		}
	}
}

// replayMemoEntry re-applies a cached outcome without re-running the rule:
// it advances the cursor, re-pushes the cached captures onto the current
// non-terminal under construction, and signals the same ok/n to the caller
// that the original evaluation did.
func (ctx *context) replayMemoEntry(entry memoEntry) error {
	if !entry.ok {
		return ctx.returnsPredication(false)
	}
	ctx.consume(entry.n)
	for _, cap := range entry.caps {
		if err := ctx.push(cap); err != nil {
			return err
		}
	}
	if len(ctx.groups) == 0 {
		ctx.groups = entry.groups
	} else {
		ctx.groups = append(ctx.groups, entry.groups...)
	}
	if len(entry.namedGroups) != 0 {
		if ctx.namedGroups == nil {
			ctx.namedGroups = make(map[string]string, len(entry.namedGroups))
		}
		for name, g := range entry.namedGroups {
			ctx.namedGroups[name] = g
		}
	}
	return ctx.returnsMatched()
}
