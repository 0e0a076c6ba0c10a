package vca

import (
	"errors"
	"testing"
)

// #region helpers

func anbnAlphabet(t *testing.T) *Alphabet {
	t.Helper()
	a, err := NewAlphabet([]Symbol{"a"}, []Symbol{"b"}, []Symbol{"c"})
	if err != nil {
		t.Fatalf("NewAlphabet: %v", err)
	}
	return a
}

// anbn builds a 1-VCA for {aⁿbⁿ | n>0}, or n≥0 when acceptEmpty is set.
func anbn(t *testing.T, alphabet *Alphabet, acceptEmpty bool) *VCA {
	t.Helper()
	v := New(alphabet, 1)
	q0 := v.AddLocation(acceptEmpty)
	up := v.AddLocation(false)
	down := v.AddLocation(true)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("SetSuccessor: %v", err)
		}
	}
	must(v.SetSuccessor(q0, 0, "a", up))
	must(v.SetSuccessor(up, 1, "a", up))
	must(v.SetSuccessor(up, 1, "b", down))
	must(v.SetSuccessor(down, 1, "b", down))
	return v
}

func word(s string) Word { return ParseWord(s) }

// #endregion helpers

// #region alphabet-tests

func TestAlphabet_CounterValue(t *testing.T) {
	a := anbnAlphabet(t)
	cases := []struct {
		w    string
		want CounterValue
		h    int
	}{
		{"", 0, 0},
		{"a a b", 1, 2},
		{"a c b", 0, 1},
		{"b", InvalidCounter, -1},
		{"a b b a", InvalidCounter, -1},
	}
	for _, tc := range cases {
		if got := a.CounterValue(word(tc.w)); got != tc.want {
			t.Errorf("CounterValue(%q) = %d, want %d", tc.w, got, tc.want)
		}
		if got := a.Height(word(tc.w)); got != tc.h {
			t.Errorf("Height(%q) = %d, want %d", tc.w, got, tc.h)
		}
	}
}

func TestAlphabet_RejectsDuplicates(t *testing.T) {
	_, err := NewAlphabet([]Symbol{"a"}, []Symbol{"a"}, nil)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := NewAlphabet([]Symbol{"a b"}, nil, nil); err == nil {
		t.Fatal("expected error for symbol with whitespace")
	}
}

func TestCounterValue_Decrement(t *testing.T) {
	if CounterValue(0).Decrement().IsValid() {
		t.Error("decrementing zero should be invalid")
	}
	if got := CounterValue(2).Decrement(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if !CounterValue(0).IsZero() {
		t.Error("zero should be zero")
	}
}

// #endregion alphabet-tests

// #region vca-tests

func TestVCA_AcceptsAnBn(t *testing.T) {
	v := anbn(t, anbnAlphabet(t), false)

	for _, w := range []string{"a b", "a a b b", "a a a b b b"} {
		if !v.Accepts(word(w)) {
			t.Errorf("expected %q accepted", w)
		}
	}
	for _, w := range []string{"", "a", "b", "a a b", "a b b", "a b a", "a c b"} {
		if v.Accepts(word(w)) {
			t.Errorf("expected %q rejected", w)
		}
	}
}

func TestVCA_CounterIndexCapped(t *testing.T) {
	v := anbn(t, anbnAlphabet(t), false)
	// Stored at index 1, visible at every counter ≥ 1.
	for cv := CounterValue(1); cv < 5; cv++ {
		if _, ok := v.Successor(1, "a", cv); !ok {
			t.Errorf("expected transition at counter %d", cv)
		}
	}
	if _, ok := v.Successor(1, "a", 0); ok {
		t.Error("unexpected transition at counter 0")
	}
}

func TestVCA_SetSuccessorValidation(t *testing.T) {
	v := New(anbnAlphabet(t), 1)
	q := v.AddLocation(false)

	if err := v.SetSuccessor(q, -1, "a", q); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative counter: expected ErrInvalidParameter, got %v", err)
	}
	if err := v.SetSuccessor(q, 0, "z", q); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown symbol: expected ErrInvalidParameter, got %v", err)
	}
	if err := v.SetSuccessor(q, 0, "a", 7); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown target: expected ErrInvalidParameter, got %v", err)
	}
}

func TestVCA_AcceptedWord(t *testing.T) {
	v := anbn(t, anbnAlphabet(t), false)
	w, ok := v.AcceptedWord()
	if !ok {
		t.Fatal("expected an accepted word")
	}
	if w.String() != "a b" {
		t.Errorf("expected shortest word 'a b', got %q", w)
	}

	empty := New(anbnAlphabet(t), 0)
	empty.AddLocation(false)
	if _, ok := empty.AcceptedWord(); ok {
		t.Error("empty language should have no accepted word")
	}
}

func TestVCA_Transitions(t *testing.T) {
	v := anbn(t, anbnAlphabet(t), false)
	got := v.Transitions()
	if len(got) != 4 {
		t.Fatalf("expected 4 transitions, got %d", len(got))
	}
	if got[0].From != 0 || got[0].Symbol != "a" || got[0].To != 1 || got[0].Counter != 0 {
		t.Errorf("unexpected first transition %+v", got[0])
	}
}

func TestState_Equal(t *testing.T) {
	if !Sink.Equal(State{Location: NoLocation, Counter: 3}) {
		t.Error("sinks should be equal regardless of counter")
	}
	if Sink.Equal(State{Location: 0}) {
		t.Error("sink should differ from a location")
	}
	if !(State{1, 2}).Equal(State{1, 2}) || (State{1, 2}).Equal(State{1, 3}) {
		t.Error("state equality should compare location and counter")
	}
}

// #endregion vca-tests

// #region product-tests

func TestProduct_XORIsSymmetricDifference(t *testing.T) {
	alphabet := anbnAlphabet(t)
	positive := anbn(t, alphabet, false)
	withEmpty := anbn(t, alphabet, true)

	p := NewProduct(alphabet, positive, withEmpty, XOR)
	if !Accepts(p, Word{}) {
		t.Error("product should accept ε")
	}
	for _, w := range []string{"a b", "a a b b", "a", "b", "a b a"} {
		if Accepts(p, word(w)) {
			t.Errorf("product should reject %q", w)
		}
	}

	w, ok := AcceptedWord(p, 20)
	if !ok || len(w) != 0 {
		t.Fatalf("expected ε as witness, got %v (ok=%v)", w, ok)
	}
}

func TestProduct_EqualOperandsAcceptNothing(t *testing.T) {
	alphabet := anbnAlphabet(t)
	p := NewProduct(alphabet, anbn(t, alphabet, false), anbn(t, alphabet, false), XOR)
	if w, ok := AcceptedWord(p, SearchBound(p)); ok {
		t.Fatalf("expected empty product, got %q", w)
	}
}

func TestProduct_OneSidedSink(t *testing.T) {
	alphabet := anbnAlphabet(t)
	left := anbn(t, alphabet, false)
	right := New(alphabet, 0)
	right.AddLocation(false)

	p := NewProduct(alphabet, left, right, XOR)
	if !Accepts(p, word("a a b b")) {
		t.Error("product should keep following the live operand")
	}
	and := NewProduct(alphabet, left, right, AND)
	if Accepts(and, word("a b")) {
		t.Error("AND product with empty operand accepts nothing")
	}
}

// #endregion product-tests
