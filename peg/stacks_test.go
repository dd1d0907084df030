package peg

import "testing"

// Tests PushStack, PopStack, CheckStackAny, CheckStackAll,
// CheckStackConsume, CheckStackTop.

func TestStackPushCheckPop(t *testing.T) {
	data := []patternTestData{
		// An empty stack predicates false for Any, true for All.
		{"A", false, 0, false, ``, ``, CheckStackAny("s")},
		{"A", true, 0, false, ``, ``, CheckStackAll("s")},

		// A pushed pattern gates the check at the current position.
		{"A", true, 0, false, ``, ``,
			Seq(PushStack("s", T("A"), True), CheckStackAny("s"))},
		{"B", false, 0, false, ``, ``,
			Seq(PushStack("s", T("A"), True), CheckStackAny("s"))},

		// Pop removes the gate again.
		{"A", false, 0, false, ``, ``,
			Seq(PushStack("s", T("A"), True), PopStack("s", True), CheckStackAny("s"))},

		// Popping an empty stack is a no-op, not an error.
		{"A", true, 0, false, ``, ``, PopStack("s", True)},

		// All requires every entry to match, Any just one.
		{"A", false, 0, false, ``, ``,
			Seq(PushStack("s", T("A"), True), PushStack("s", T("B"), True), CheckStackAll("s"))},
		{"A", true, 0, false, ``, ``,
			Seq(PushStack("s", T("A"), True), PushStack("s", T("B"), True), CheckStackAny("s"))},

		// The check never consumes text.
		{"AA", true, 1, false, ``, ``,
			Seq(PushStack("s", T("A"), True), CheckStackAny("s"), Dot)},

		// A push rides on its pattern's match: a dismatching pattern
		// leaves the stack untouched.
		{"B", false, 0, false, ``, ``,
			Seq(Q01(PushStack("s", T("X"), T("A"))), CheckStackAny("s"))},
		{"AB", false, 2, false, ``, ``,
			Seq(PushStack("s", T("X"), T("A")), Dot, CheckStackAny("s"))},
	}

	for _, d := range data {
		runPatternTestData(t, d)
	}
}

func TestStackRewindOnBacktrack(t *testing.T) {
	data := []patternTestData{
		// A push inside an abandoned Alt choice is rewound before the
		// next choice runs: the check in the second choice sees an empty
		// stack and predicates false, failing the whole Alt.
		{"A", false, 0, false, ``, ``, Alt(
			Seq(PushStack("s", T("A"), True), False),
			CheckStackAny("s"))},

		// The same trial failure inside a qualifier is rewound too.
		{"A", false, 0, false, ``, ``, Seq(
			Q0(Seq(PushStack("s", T("A"), True), False)),
			CheckStackAny("s"))},

		// A push inside a lookahead never survives the trial, matched or
		// not.
		{"A", false, 0, false, ``, ``, Seq(
			Test(PushStack("s", T("A"), True)),
			CheckStackAny("s"))},
		{"A", false, 0, false, ``, ``, Seq(
			Q01(Not(PushStack("s", T("A"), True))),
			CheckStackAny("s"))},

		// A push on the committed path does survive.
		{"A", true, 0, false, ``, ``, Alt(
			Seq(PushStack("s", T("A"), True), CheckStackAny("s")),
			False)},
	}

	for _, d := range data {
		runPatternTestData(t, d)
	}
}

func TestStackConsumeBottomToTop(t *testing.T) {
	push := func(lit string) Pattern { return PushStack("bol", T(lit), True) }
	data := []patternTestData{
		// Entries are consumed in push order, each advancing the cursor.
		{"AB", true, 2, false, ``, ``,
			Seq(push("A"), push("B"), CheckStackConsume("bol"))},
		{"BA", false, 0, false, ``, ``,
			Seq(push("A"), push("B"), CheckStackConsume("bol"))},
		// An empty stack consumes nothing and matches.
		{"AB", true, 0, false, ``, ``, CheckStackConsume("bol")},
		// A dismatching entry fails the whole consume.
		{"AX", false, 0, false, ``, ``,
			Seq(push("A"), push("B"), CheckStackConsume("bol"))},
	}

	for _, d := range data {
		runPatternTestData(t, d)
	}
}

func TestStackTopMarker(t *testing.T) {
	on := True
	off := False
	data := []patternTestData{
		{"", false, 0, false, ``, ``, CheckStackTop("w", off)},
		{"", true, 0, false, ``, ``,
			Seq(PushStack("w", off, True), CheckStackTop("w", off))},
		{"", false, 0, false, ``, ``,
			Seq(PushStack("w", off, True), PushStack("w", on, True), CheckStackTop("w", off))},
		{"", true, 0, false, ``, ``,
			Seq(PushStack("w", off, True), PushStack("w", on, True), PopStack("w", True),
				CheckStackTop("w", off))},
	}

	for _, d := range data {
		runPatternTestData(t, d)
	}
}

// A full match leaves every stack at the height the pattern's own
// push/pop balance dictates; a balanced grammar ends with all stacks
// empty.
func TestStackBalanceAfterMatch(t *testing.T) {
	pat := Seq(
		PushStack("no", T("x"), True),
		Q0(Seq(Not(CheckStackAny("no")), Dot)),
		PopStack("no", True),
		T("x"),
	)
	ctx := newContext(pat, "abcx", defaultConfig)
	if err := ctx.match(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ctx.ret.ok || ctx.ret.n != 4 {
		t.Fatalf("expected full match, got ok=%v n=%d", ctx.ret.ok, ctx.ret.n)
	}
	for name, s := range ctx.stacks {
		if len(s) != 0 {
			t.Errorf("stack %q left non-empty: %s", name, stacksDump(ctx.stacks))
		}
	}
}
