package peg

import (
	"fmt"
	"strings"
)

// Underlying types implementing Pattern interface.
type (
	patternStackPush struct {
		name  string
		value Pattern
		pat   Pattern
	}

	patternStackPop struct {
		name string
		pat  Pattern
	}

	patternStackCheck struct {
		name string
		all  bool
	}

	patternStackConsume struct {
		name string
	}

	patternStackTop struct {
		name string
		want Pattern
	}
)

// PushStack matches pat, and if it matches, pushes value onto the named
// stack as a side effect. value is itself a compiled Pattern (per spec
// component C, the stacks hold compiled matchers, never raw strings), so a
// later CheckStackAny/CheckStackAll/CheckStackConsume on the same name can
// run it directly instead of re-deriving it from saved text.
func PushStack(name string, value, pat Pattern) Pattern {
	return &patternStackPush{name: name, value: value, pat: pat}
}

// PopStack matches pat, and if it matches, pops and discards the top entry
// of the named stack. Popping an empty stack is a no-op: callers are
// expected to balance every PushStack with exactly one PopStack on every
// exit path, but a trap misfiring on an already-empty stack should not
// panic the parse.
func PopStack(name string, pat Pattern) Pattern {
	return &patternStackPop{name: name, pat: pat}
}

// CheckStackAny predicates true, consuming no text, if the current position
// matches at least one pattern currently on the named stack. An empty stack
// predicates false. Built as an ephemeral Or over the stack snapshot and
// delegated to the existing Test/Or machinery, so it gets backtracking and
// rollback for free rather than needing a parallel mechanism.
func CheckStackAny(name string) Pattern {
	return &patternStackCheck{name: name, all: false}
}

// CheckStackAll predicates true, consuming no text, only if the current
// position matches every pattern currently on the named stack. An empty
// stack predicates true (vacuously).
func CheckStackAll(name string) Pattern {
	return &patternStackCheck{name: name, all: true}
}

// CheckStackConsume matches the named stack's entries in order,
// bottom-to-top, consuming each one at the current position; it dismatches
// as soon as one entry fails to match, terminating the enclosing nested
// context, exactly like a Seq over the stack snapshot. This is the
// sequential, consuming shape that check_bol_skip needs, distinct from
// CheckStackAny/CheckStackAll's pure (non-consuming) lookahead.
func CheckStackConsume(name string) Pattern {
	return &patternStackConsume{name: name}
}

// CheckStackTop predicates true, consuming no text, if the named stack is
// non-empty and its top entry is identical (by interface equality) to
// want. This is for stacks whose entries are markers rather than
// matchers — e.g. a toggle stack holding two singleton Pattern values
// standing for "on"/"off" — where CheckStackAny's match-against-input
// semantics do not apply. want must be a comparable Pattern (a pointer or
// other comparable value); passing a slice- or map-backed Pattern panics,
// same as comparing any other non-comparable interface value.
func CheckStackTop(name string, want Pattern) Pattern {
	return &patternStackTop{name: name, want: want}
}

// Matches if pat matches; as a side effect of matching, pushes value onto
// the named stack (stacks.go, see context.go's ctx.stacks).
func (pat *patternStackPush) match(ctx *context) error {
	if !ctx.justReturned() {
		return ctx.call(pat.pat)
	}

	ret := ctx.ret
	if !ret.ok {
		return ctx.returnsPredication(false)
	}
	ctx.consume(ret.n)
	ctx.pushStack(pat.name, pat.value)
	return ctx.returnsMatched()
}

// Matches if pat matches; as a side effect of matching, pops the named
// stack.
func (pat *patternStackPop) match(ctx *context) error {
	if !ctx.justReturned() {
		return ctx.call(pat.pat)
	}

	ret := ctx.ret
	if !ret.ok {
		return ctx.returnsPredication(false)
	}
	ctx.consume(ret.n)
	ctx.popStack(pat.name)
	return ctx.returnsMatched()
}

// Predicates over the current contents of the named stack. Delegates to
// Test/And/Or the same way patternIf delegates to its branches: no call/
// return cycle of its own, so no justReturned() check is needed here.
func (pat *patternStackCheck) match(ctx *context) error {
	stack := ctx.stacks[pat.name]
	if len(stack) == 0 {
		return ctx.returnsPredication(pat.all)
	}
	if pat.all {
		return ctx.execute(Test(And(stack...)))
	}
	return ctx.execute(Test(Or(stack...)))
}

// Consumes the named stack's entries in order, bottom-to-top; dismatches
// as soon as one entry fails to match.
func (pat *patternStackConsume) match(ctx *context) error {
	for ctx.locals.i < len(ctx.stacks[pat.name]) {
		if !ctx.justReturned() {
			return ctx.call(ctx.stacks[pat.name][ctx.locals.i])
		}

		ret := ctx.ret
		if !ret.ok {
			return ctx.returnsPredication(false)
		}
		ctx.consume(ret.n)
		ctx.locals.i++
	}
	return ctx.returnsMatched()
}

// Predicates whether the named stack's top entry equals want.
func (pat *patternStackTop) match(ctx *context) error {
	s := ctx.stacks[pat.name]
	if len(s) == 0 {
		return ctx.returnsPredication(false)
	}
	return ctx.returnsPredication(s[len(s)-1] == pat.want)
}

func (pat *patternStackPush) String() string {
	return fmt.Sprintf("push_%s(%s)", pat.name, pat.pat)
}

func (pat *patternStackPop) String() string {
	return fmt.Sprintf("pop_%s(%s)", pat.name, pat.pat)
}

func (pat *patternStackCheck) String() string {
	if pat.all {
		return fmt.Sprintf("check_all_%s?", pat.name)
	}
	return fmt.Sprintf("check_any_%s?", pat.name)
}

func (pat *patternStackConsume) String() string {
	return fmt.Sprintf("consume_%s*", pat.name)
}

func (pat *patternStackTop) String() string {
	return fmt.Sprintf("top_%s==%s?", pat.name, pat.want)
}

// pushStack appends value to the named stack, creating it on first use.
func (ctx *context) pushStack(name string, value Pattern) {
	if ctx.stacks == nil {
		ctx.stacks = make(map[string][]Pattern)
	}
	ctx.stacks[name] = append(ctx.stacks[name], value)
}

// popStack removes and returns the top entry of the named stack. Popping
// an empty or absent stack is a no-op, returning (nil, false).
func (ctx *context) popStack(name string) (Pattern, bool) {
	s := ctx.stacks[name]
	if len(s) == 0 {
		return nil, false
	}
	top := s[len(s)-1]
	ctx.stacks[name] = s[:len(s)-1]
	return top, true
}

// stacksSnapshot records the current height of every named stack, so a
// backtrack point can later rewind any stack to that height regardless of
// whether the stack already existed when the snapshot was taken.
func (ctx *context) stacksSnapshot() map[string]int {
	if len(ctx.stacks) == 0 {
		return nil
	}
	snap := make(map[string]int, len(ctx.stacks))
	for name, s := range ctx.stacks {
		snap[name] = len(s)
	}
	return snap
}

// stacksRewind truncates every named stack back to the height recorded in
// snap, discarding any push_* side effects a failed or abandoned trial
// performed since the snapshot. A stack absent from snap (because it did
// not exist yet) is truncated to height zero, undoing it entirely.
func (ctx *context) stacksRewind(snap map[string]int) {
	for name, s := range ctx.stacks {
		h := snap[name]
		if h < len(s) {
			ctx.stacks[name] = s[:h]
		}
	}
}

// stacksDump renders the current named stacks for diagnostics, e.g. when a
// grammar fails to balance a push_* with its matching pop_* and a caller
// wants to know which stacks were left non-empty at end of parse.
func stacksDump(stacks map[string][]Pattern) string {
	if len(stacks) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for name, s := range stacks {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s:%d", name, len(s))
	}
	b.WriteByte('}')
	return b.String()
}
