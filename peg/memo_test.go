package peg

import (
	"strconv"
	"testing"
)

// Tests Memo, Cut.

func TestMemoTransparency(t *testing.T) {
	data := []patternTestData{
		// A memoized rule behaves exactly like its body.
		{"ab", true, 2, false, ``, ``, Memo(0, T("ab"))},
		{"ab", false, 0, false, ``, ``, Memo(0, T("ba"))},

		// The second evaluation of the same (rule, position) pair is
		// served from the table; the outcome is identical either way.
		{"abc", true, 3, false, ``, ``, Alt(
			Seq(Memo(0, T("ab")), T("X")),
			Seq(Memo(0, T("ab")), T("c")))},

		// A cached failure is replayed too.
		{"abc", true, 3, false, ``, ``, Seq(
			Q01(Seq(Memo(0, T("xy")), T("z"))),
			Q01(Memo(0, T("xy"))),
			T("abc"))},

		// Cut always matches and consumes nothing.
		{"a", true, 1, false, ``, ``, Seq(Cut(), Dot, Cut())},
	}

	for _, d := range data {
		runPatternTestData(t, d)
	}
}

// A memoized rule's captures are replayed on a cache hit, so the capture
// stream is identical whether a position is evaluated fresh or from the
// table. Each alternative wraps itself in CC, the same discipline real
// grammars use so an abandoned trial discards its partial captures.
func TestMemoReplaysCaptures(t *testing.T) {
	letter := CT(func(span string, _ Position) (Capture, error) {
		return &Token{Type: 1, Value: span}, nil
	}, T("a"))

	branch := func(tail string) Pattern {
		return CC(func(subs []Capture) (Capture, error) {
			return &Variable{Name: "b", Subs: subs}, nil
		}, Seq(Memo(7, letter), T(tail)))
	}
	pat := Alt(branch("X"), branch("b"))

	r, err := Match(pat, "ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Ok || r.N != 2 {
		t.Fatalf("expected full match, got ok=%v n=%d", r.Ok, r.N)
	}
	if len(r.Captures) != 1 {
		t.Fatalf("expected exactly one capture, got %d", len(r.Captures))
	}
	v, ok := r.Captures[0].(*Variable)
	if !ok || len(v.Subs) != 1 {
		t.Fatalf("unexpected capture %v", r.Captures[0])
	}
	tok, ok := v.Subs[0].(*Token)
	if !ok || tok.Value != "a" {
		t.Fatalf("unexpected replayed capture %v", v.Subs[0])
	}
}

// DisableMemoization must not change any outcome, only the table usage.
func TestMemoDisabledEquivalence(t *testing.T) {
	number := Memo(3, CT(func(span string, _ Position) (Capture, error) {
		n, err := strconv.Atoi(span)
		if err != nil {
			return nil, err
		}
		return &Token{Type: n, Value: span}, nil
	}, Q1(R('0', '9'))))
	pat := Alt(
		Seq(number, T("!")),
		Seq(number, T("?")),
	)

	on := defaultConfig
	off := defaultConfig
	off.DisableMemoization = true

	for _, text := range []string{"42?", "7!", "x?"} {
		r0, err0 := ConfiguredMatch(on, pat, text)
		r1, err1 := ConfiguredMatch(off, pat, text)
		if (err0 == nil) != (err1 == nil) {
			t.Fatalf("error divergence on %q: %v vs %v", text, err0, err1)
		}
		if err0 != nil {
			continue
		}
		if r0.Ok != r1.Ok || r0.N != r1.N || len(r0.Captures) != len(r1.Captures) {
			t.Errorf("memo divergence on %q: (%v,%d,%d) vs (%v,%d,%d)", text,
				r0.Ok, r0.N, len(r0.Captures), r1.Ok, r1.N, len(r1.Captures))
		}
	}
}

// Cut drops every memo entry at or below the current position, bounding
// the table to the un-cut span.
func TestCutPurgesMemoBelow(t *testing.T) {
	element := Memo(5, Q1(R('a', 'z')))
	pat := Q0(Seq(element, Q01(T(" ")), Cut()))

	ctx := newContext(pat, "abc def", defaultConfig)
	if err := ctx.match(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ctx.ret.ok || ctx.ret.n != len("abc def") {
		t.Fatalf("expected full match, got ok=%v n=%d", ctx.ret.ok, ctx.ret.n)
	}
	// Entries from before the last cut are gone; only the final failed
	// trial at the current position may remain.
	for key := range ctx.memo {
		if key.at < ctx.at {
			t.Errorf("memo entry at %d survived a cut at %d", key.at, ctx.at)
		}
	}
}
