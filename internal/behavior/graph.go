package behavior

import (
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region graph

// Graph is a behavior graph explored one transition at a time. Transitions
// take the counter value before the symbol is read.
type Graph interface {
	Alphabet() *vca.Alphabet
	Initial() StateBG
	Transition(s StateBG, sym vca.Symbol, cv vca.CounterValue) (StateBG, bool)
	IsAccepting(s StateBG, cv vca.CounterValue) bool
}

// #endregion graph

// #region behavior-graph

// BehaviorGraph is the possibly infinite graph generated by a Description.
type BehaviorGraph struct {
	desc *Description
}

func NewBehaviorGraph(d *Description) *BehaviorGraph { return &BehaviorGraph{desc: d} }

func (g *BehaviorGraph) Description() *Description { return g.desc }
func (g *BehaviorGraph) Alphabet() *vca.Alphabet   { return g.desc.alphabet }
func (g *BehaviorGraph) Initial() StateBG          { return g.desc.initial }

func (g *BehaviorGraph) Transition(s StateBG, sym vca.Symbol, cv vca.CounterValue) (StateBG, bool) {
	tau := g.desc.Tau(s.Index)
	if tau == nil {
		return StateBG{}, false
	}
	class, ok := tau.lookup(s.Class, sym)
	if !ok {
		return StateBG{}, false
	}
	t, ok := g.desc.alphabet.Type(sym)
	if !ok {
		return StateBG{}, false
	}
	next := g.desc.nextIndex(s.Index, t, cv)
	if next < 0 {
		return StateBG{}, false
	}
	return StateBG{Index: next, Class: class}, true
}

func (g *BehaviorGraph) IsAccepting(s StateBG, cv vca.CounterValue) bool {
	return cv.IsZero() && g.desc.accepting[s]
}

// #endregion behavior-graph

// #region to-dfa

type unrollKey struct {
	index, class, cv, loops int
}

// ToDFA unrolls the description into an explicit acceptor restricted to
// counter values at most threshold. States are the distinct
// (index, class, counter, loops) tuples reached by a depth-first expansion
// from the initial state.
func (g *BehaviorGraph) ToDFA(threshold int) *DFA {
	d := g.desc
	dfa := newDFA(d.alphabet)
	ids := make(map[unrollKey]int)

	start := unrollKey{index: d.initial.Index, class: d.initial.Class}
	ids[start] = dfa.addState(d.accepting[d.initial])
	stack := []unrollKey{start}
	symbols := d.alphabet.Symbols()

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, sym := range symbols {
			class, ok := d.taus[cur.index].lookup(cur.class, sym)
			if !ok {
				continue
			}
			t, _ := d.alphabet.Type(sym)
			cv := cur.cv + t.Delta()
			if cv < 0 || cv > threshold {
				continue
			}
			index, loops := cur.index, cur.loops
			switch t {
			case vca.Call:
				index++
				if index == d.offset+d.period {
					index = d.offset
					loops++
				}
			case vca.Return:
				if index == d.offset && loops > 0 {
					index = d.offset + d.period - 1
					loops--
				} else {
					index--
				}
			}
			if index < 0 {
				continue
			}
			next := unrollKey{index: index, class: class, cv: cv, loops: loops}
			id, seen := ids[next]
			if !seen {
				accepting := cv == 0 && d.accepting[StateBG{index, class}]
				id = dfa.addState(accepting)
				ids[next] = id
				stack = append(stack, next)
			}
			dfa.setTransition(ids[cur], sym, id)
		}
	}
	return dfa
}

// #endregion to-dfa
