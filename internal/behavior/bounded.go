package behavior

import (
	"github.com/danielpatrickdp/vcalearn/internal/partition"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region bounded-graph

type boundedNode struct {
	accepting bool
	next      map[vca.Symbol]StateBG
}

// BoundedGraph is the behavior graph of an automaton restricted to counter
// values up to a threshold. Nodes are StateBG{Index: level, Class: c} with
// classes numbered per level in breadth-first discovery order. Dead
// configurations are left out.
type BoundedGraph struct {
	alphabet  *vca.Alphabet
	threshold int
	levels    [][]boundedNode
	initial   StateBG
}

// Bound computes the bounded behavior graph of a: the reachable, live
// configurations with counter at most threshold, merged by equivalence on
// words that stay inside the window.
func Bound(a vca.Automaton, threshold int) *BoundedGraph {
	part := partition.Compute(a, threshold)
	g := &BoundedGraph{
		alphabet:  a.Alphabet(),
		threshold: part.Threshold(),
		levels:    make([][]boundedNode, part.Threshold()+1),
	}

	type classKey struct{ level, class int }
	nodes := make(map[classKey]StateBG)
	var reps []vca.State

	add := func(s vca.State) StateBG {
		key := classKey{int(s.Counter), part.Class(s)}
		if n, ok := nodes[key]; ok {
			return n
		}
		level := int(s.Counter)
		g.levels[level] = append(g.levels[level], boundedNode{
			accepting: vca.IsAcceptingState(a, s),
			next:      make(map[vca.Symbol]StateBG),
		})
		n := StateBG{Index: level, Class: len(g.levels[level])}
		nodes[key] = n
		reps = append(reps, s)
		return n
	}

	start := vca.InitialState(a)
	if start.IsSink() {
		g.levels[0] = append(g.levels[0], boundedNode{next: make(map[vca.Symbol]StateBG)})
		g.initial = StateBG{Index: 0, Class: 1}
		return g
	}
	g.initial = add(start)

	symbols := a.Alphabet().Symbols()
	for head := 0; head < len(reps); head++ {
		s := reps[head]
		from := nodes[classKey{int(s.Counter), part.Class(s)}]
		for _, sym := range symbols {
			t := vca.Step(a, s, sym)
			if t.IsSink() || int(t.Counter) > g.threshold || part.IsDead(t) {
				continue
			}
			to := add(t)
			g.levels[from.Index][from.Class-1].next[sym] = to
		}
	}
	return g
}

func (g *BoundedGraph) Alphabet() *vca.Alphabet { return g.alphabet }
func (g *BoundedGraph) Initial() StateBG        { return g.initial }
func (g *BoundedGraph) Threshold() int          { return g.threshold }

// Width is the number of nodes at one level.
func (g *BoundedGraph) Width(level int) int {
	if level < 0 || level >= len(g.levels) {
		return 0
	}
	return len(g.levels[level])
}

// NumNodes counts all nodes.
func (g *BoundedGraph) NumNodes() int {
	n := 0
	for _, l := range g.levels {
		n += len(l)
	}
	return n
}

func (g *BoundedGraph) node(s StateBG) (boundedNode, bool) {
	if s.Index < 0 || s.Index >= len(g.levels) || s.Class < 1 || s.Class > len(g.levels[s.Index]) {
		return boundedNode{}, false
	}
	return g.levels[s.Index][s.Class-1], true
}

// Transition ignores cv: a bounded node already carries its level.
func (g *BoundedGraph) Transition(s StateBG, sym vca.Symbol, _ vca.CounterValue) (StateBG, bool) {
	n, ok := g.node(s)
	if !ok {
		return StateBG{}, false
	}
	to, ok := n.next[sym]
	return to, ok
}

func (g *BoundedGraph) IsAccepting(s StateBG, cv vca.CounterValue) bool {
	n, ok := g.node(s)
	return ok && cv.IsZero() && n.accepting
}

// #endregion bounded-graph
