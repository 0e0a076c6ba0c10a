package oracle

import (
	"context"
	"log"
	"sync"

	"github.com/danielpatrickdp/vcalearn/internal/behavior"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region partial-oracle

// PartialEquivalenceOracle compares hypotheses with a reference automaton
// on the bounded window [0, threshold] only. Besides language agreement it
// demands that both bounded behavior graphs have the same shape.
type PartialEquivalenceOracle struct {
	target vca.Automaton

	mu   sync.Mutex
	refs map[int]*behavior.BoundedGraph
}

func NewPartialEquivalenceOracle(target vca.Automaton) *PartialEquivalenceOracle {
	return &PartialEquivalenceOracle{target: target, refs: make(map[int]*behavior.BoundedGraph)}
}

// Reference returns the target's bounded behavior graph, computed once per
// threshold.
func (o *PartialEquivalenceOracle) Reference(threshold int) *behavior.BoundedGraph {
	o.mu.Lock()
	defer o.mu.Unlock()
	if g, ok := o.refs[threshold]; ok {
		return g
	}
	g := behavior.Bound(o.target, threshold)
	o.refs[threshold] = g
	return g
}

// FindCounterExample traverses the reference and hypothesis graphs in
// lockstep and returns the first mismatch.
func (o *PartialEquivalenceOracle) FindCounterExample(hyp behavior.Graph, threshold int) (behavior.Mismatch, bool) {
	return behavior.Compare(o.Reference(threshold), hyp, threshold)
}

// Counterexample bounds hyp at threshold and compares it with the
// reference. Transition and structure mismatches are extended by the
// shortest continuation on which target and hypothesis disagree, so the
// returned word is one they classify differently whenever such a
// continuation exists inside the window.
func (o *PartialEquivalenceOracle) Counterexample(ctx context.Context, hyp vca.Automaton, threshold int) (vca.Word, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m, found := o.FindCounterExample(behavior.Bound(hyp, threshold), threshold)
	if !found {
		return nil, false, nil
	}
	if m.Kind == behavior.Acceptance {
		return m.Word, true, nil
	}
	for _, w := range append([]vca.Word{m.Word}, m.Earlier...) {
		if u, ok := o.continuation(hyp, w, threshold); ok {
			return vca.Concat(w, u), true, nil
		}
	}
	log.Printf("[ORACLE] %s has no distinguishing continuation within %d", m, threshold)
	return m.Word, true, nil
}

// continuation searches breadth-first for the shortest u, keeping the
// counter inside [0, threshold], such that target and hyp disagree on w·u.
func (o *PartialEquivalenceOracle) continuation(hyp vca.Automaton, w vca.Word, threshold int) (vca.Word, bool) {
	alphabet := o.target.Alphabet()
	cv := alphabet.CounterValue(w)
	if !cv.IsValid() || int(cv) > threshold {
		return nil, false
	}
	type key struct {
		t, h vca.State
		cv   int
	}
	type node struct {
		key    key
		parent int
		sym    vca.Symbol
	}
	start := key{
		t:  vca.Run(o.target, vca.InitialState(o.target), w),
		h:  vca.Run(hyp, vca.InitialState(hyp), w),
		cv: int(cv),
	}
	nodes := []node{{key: start, parent: -1}}
	seen := map[key]bool{start: true}

	for head := 0; head < len(nodes); head++ {
		cur := nodes[head].key
		if vca.IsAcceptingState(o.target, cur.t) != vca.IsAcceptingState(hyp, cur.h) {
			var u vca.Word
			for i := head; nodes[i].parent >= 0; i = nodes[i].parent {
				u = append(u, nodes[i].sym)
			}
			for l, r := 0, len(u)-1; l < r; l, r = l+1, r-1 {
				u[l], u[r] = u[r], u[l]
			}
			return u, true
		}
		for _, sym := range alphabet.Symbols() {
			typ, _ := alphabet.Type(sym)
			next := cur.cv + typ.Delta()
			if next < 0 || next > threshold {
				continue
			}
			k := key{t: vca.Step(o.target, cur.t, sym), h: vca.Step(hyp, cur.h, sym), cv: next}
			if (k.t.IsSink() && k.h.IsSink()) || seen[k] {
				continue
			}
			seen[k] = true
			nodes = append(nodes, node{key: k, parent: head, sym: sym})
		}
	}
	return nil, false
}

// #endregion partial-oracle
