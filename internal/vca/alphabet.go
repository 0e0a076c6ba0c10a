package vca

import (
	"fmt"
	"strings"
)

// #region symbol-type

// SymbolType tags a symbol of a visibly pushdown alphabet.
type SymbolType int

const (
	Internal SymbolType = iota
	Call
	Return
)

const numSymbolTypes = 3

func (t SymbolType) String() string {
	switch t {
	case Call:
		return "call"
	case Return:
		return "return"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("SymbolType(%d)", int(t))
	}
}

// Delta is the counter change caused by reading a symbol of this type.
func (t SymbolType) Delta() int {
	switch t {
	case Call:
		return 1
	case Return:
		return -1
	default:
		return 0
	}
}

// Apply moves a counter value across a symbol of this type.
func (t SymbolType) Apply(cv CounterValue) CounterValue {
	switch t {
	case Call:
		return cv.Increment()
	case Return:
		return cv.Decrement()
	default:
		return cv
	}
}

// #endregion symbol-type

// #region alphabet

// Symbol is one letter of the input alphabet.
type Symbol string

// Alphabet is an ordered visibly pushdown alphabet: calls first, then
// returns, then internals.
type Alphabet struct {
	symbols []Symbol
	types   map[Symbol]SymbolType
	index   map[Symbol]int
}

// NewAlphabet builds an alphabet from its three partitions. Symbols must be
// non-empty, contain no whitespace, and appear only once.
func NewAlphabet(calls, returns, internals []Symbol) (*Alphabet, error) {
	a := &Alphabet{
		types: make(map[Symbol]SymbolType),
		index: make(map[Symbol]int),
	}
	groups := []struct {
		typ  SymbolType
		syms []Symbol
	}{{Call, calls}, {Return, returns}, {Internal, internals}}
	for _, g := range groups {
		for _, s := range g.syms {
			if s == "" || strings.ContainsAny(string(s), " \t\r\n") {
				return nil, fmt.Errorf("symbol %q: %w", s, ErrInvalidParameter)
			}
			if _, dup := a.types[s]; dup {
				return nil, fmt.Errorf("duplicate symbol %q: %w", s, ErrInvalidParameter)
			}
			a.types[s] = g.typ
			a.index[s] = len(a.symbols)
			a.symbols = append(a.symbols, s)
		}
	}
	return a, nil
}

// MustAlphabet is NewAlphabet for statically known symbol sets.
func MustAlphabet(calls, returns, internals []Symbol) *Alphabet {
	a, err := NewAlphabet(calls, returns, internals)
	if err != nil {
		panic(err)
	}
	return a
}

// Symbols returns the symbols in alphabet order.
func (a *Alphabet) Symbols() []Symbol {
	out := make([]Symbol, len(a.symbols))
	copy(out, a.symbols)
	return out
}

func (a *Alphabet) Size() int { return len(a.symbols) }

// Index returns the position of s in alphabet order.
func (a *Alphabet) Index(s Symbol) (int, bool) {
	i, ok := a.index[s]
	return i, ok
}

// Type returns the type of s.
func (a *Alphabet) Type(s Symbol) (SymbolType, bool) {
	t, ok := a.types[s]
	return t, ok
}

// Contains reports whether s belongs to the alphabet.
func (a *Alphabet) Contains(s Symbol) bool {
	_, ok := a.types[s]
	return ok
}

// OfType returns the symbols of one type in alphabet order.
func (a *Alphabet) OfType(t SymbolType) []Symbol {
	var out []Symbol
	for _, s := range a.symbols {
		if a.types[s] == t {
			out = append(out, s)
		}
	}
	return out
}

// CounterValue replays w from counter zero. The result is invalid if the
// counter ever drops below zero or w uses a foreign symbol.
func (a *Alphabet) CounterValue(w Word) CounterValue {
	cv := CounterValue(0)
	for _, s := range w {
		t, ok := a.types[s]
		if !ok {
			return InvalidCounter
		}
		cv = t.Apply(cv)
		if !cv.IsValid() {
			return InvalidCounter
		}
	}
	return cv
}

// Height is the largest counter value reached while reading w, or -1 if w
// leaves the domain.
func (a *Alphabet) Height(w Word) int {
	cv := CounterValue(0)
	height := 0
	for _, s := range w {
		t, ok := a.types[s]
		if !ok {
			return -1
		}
		cv = t.Apply(cv)
		if !cv.IsValid() {
			return -1
		}
		if int(cv) > height {
			height = int(cv)
		}
	}
	return height
}

// ParseWord splits a whitespace separated word and checks its symbols.
func (a *Alphabet) ParseWord(s string) (Word, error) {
	w := ParseWord(s)
	for _, sym := range w {
		if !a.Contains(sym) {
			return nil, fmt.Errorf("unknown symbol %q: %w", sym, ErrInvalidParameter)
		}
	}
	return w, nil
}

// #endregion alphabet
