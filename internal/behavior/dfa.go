package behavior

import "github.com/danielpatrickdp/vcalearn/internal/vca"

// DFA is a finite deterministic acceptor. State 0 is initial; missing
// transitions reject.
type DFA struct {
	alphabet  *vca.Alphabet
	accepting []bool
	next      []map[vca.Symbol]int
}

func newDFA(alphabet *vca.Alphabet) *DFA { return &DFA{alphabet: alphabet} }

func (d *DFA) addState(accepting bool) int {
	d.accepting = append(d.accepting, accepting)
	d.next = append(d.next, make(map[vca.Symbol]int))
	return len(d.accepting) - 1
}

func (d *DFA) setTransition(from int, sym vca.Symbol, to int) { d.next[from][sym] = to }

func (d *DFA) NumStates() int { return len(d.accepting) }

func (d *DFA) IsAccepting(state int) bool { return d.accepting[state] }

// Transition returns the successor of state on sym.
func (d *DFA) Transition(state int, sym vca.Symbol) (int, bool) {
	to, ok := d.next[state][sym]
	return to, ok
}

func (d *DFA) Accepts(w vca.Word) bool {
	if len(d.accepting) == 0 {
		return false
	}
	s := 0
	for _, sym := range w {
		to, ok := d.next[s][sym]
		if !ok {
			return false
		}
		s = to
	}
	return d.accepting[s]
}

// AcceptedWords lists every accepted word of length at most maxLen in
// breadth-first, alphabet order.
func (d *DFA) AcceptedWords(maxLen int) []vca.Word {
	if len(d.accepting) == 0 {
		return nil
	}
	type item struct {
		state int
		word  vca.Word
	}
	var out []vca.Word
	queue := []item{{0, vca.Word{}}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if d.accepting[it.state] {
			out = append(out, it.word)
		}
		if len(it.word) == maxLen {
			continue
		}
		for _, sym := range d.alphabet.Symbols() {
			if to, ok := d.next[it.state][sym]; ok {
				queue = append(queue, item{to, it.word.Append(sym)})
			}
		}
	}
	return out
}
