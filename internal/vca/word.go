package vca

import "strings"

// Word is a finite sequence of symbols.
type Word []Symbol

// Epsilon is printed for the empty word.
const Epsilon = "ε"

// ParseWord splits s on whitespace. Empty input and "ε" give the empty word.
func ParseWord(s string) Word {
	fields := strings.Fields(s)
	if len(fields) == 1 && fields[0] == Epsilon {
		return Word{}
	}
	w := make(Word, len(fields))
	for i, f := range fields {
		w[i] = Symbol(f)
	}
	return w
}

// Concat returns a fresh word u·v.
func Concat(u, v Word) Word {
	w := make(Word, 0, len(u)+len(v))
	w = append(w, u...)
	return append(w, v...)
}

// Append returns a fresh word w·s without aliasing w.
func (w Word) Append(s Symbol) Word {
	out := make(Word, len(w)+1)
	copy(out, w)
	out[len(w)] = s
	return out
}

// Key is a map key that identifies w.
func (w Word) Key() string {
	parts := make([]string, len(w))
	for i, s := range w {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

func (w Word) String() string {
	if len(w) == 0 {
		return Epsilon
	}
	return w.Key()
}

// Equal reports whether w and v spell the same word.
func (w Word) Equal(v Word) bool {
	if len(w) != len(v) {
		return false
	}
	for i := range w {
		if w[i] != v[i] {
			return false
		}
	}
	return true
}

// Prefixes returns ε, w[:1], ..., w in increasing length.
func (w Word) Prefixes() []Word {
	out := make([]Word, 0, len(w)+1)
	for i := 0; i <= len(w); i++ {
		p := make(Word, i)
		copy(p, w[:i])
		out = append(out, p)
	}
	return out
}
