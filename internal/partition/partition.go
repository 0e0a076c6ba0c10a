// Package partition computes bounded behavioral equivalence between the
// configurations of a visibly one-counter automaton.
//
// Two configurations are equivalent when no word whose run keeps the counter
// inside [0, threshold] separates them. The computation is the pair-marking
// algorithm of Hopcroft and Ullman: pairs with different acceptance are
// marked first, then every remaining pair either finds a marked successor
// pair or registers itself as dependent on its successor pairs. Marking a
// pair marks its dependents through a worklist.
package partition

import (
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region types

type pair struct{ x, y int }

func makePair(x, y int) pair {
	if x > y {
		x, y = y, x
	}
	return pair{x, y}
}

// Partition is the result of Compute.
type Partition struct {
	automaton vca.Automaton
	threshold int
	n         int
	sink      int
	distinct  map[pair]bool
	// class per configuration id; 0 is the class of the sink.
	class      []int
	numClasses int
}

// #endregion types

// #region compute

// Compute partitions all configurations with counter in [0, threshold],
// plus the sink, into equivalence classes.
func Compute(a vca.Automaton, threshold int) *Partition {
	if threshold < 0 {
		threshold = 0
	}
	n := a.NumLocations()
	p := &Partition{
		automaton: a,
		threshold: threshold,
		n:         n,
		sink:      (threshold + 1) * n,
		distinct:  make(map[pair]bool),
	}
	symbols := a.Alphabet().Symbols()

	// Candidate pairs: same counter value, or any configuration with the sink.
	var candidates []pair
	for cv := 0; cv <= threshold; cv++ {
		for i := 0; i < n; i++ {
			x := cv*n + i
			for j := i + 1; j < n; j++ {
				candidates = append(candidates, makePair(x, cv*n+j))
			}
			candidates = append(candidates, makePair(x, p.sink))
		}
	}

	for _, c := range candidates {
		if p.accepting(c.x) != p.accepting(c.y) {
			p.distinct[c] = true
		}
	}

	deps := make(map[pair][]pair)
	for _, c := range candidates {
		if p.distinct[c] {
			continue
		}
		var waiting []pair
		marked := false
		for _, sym := range symbols {
			sx, okx := p.successor(c.x, sym)
			sy, oky := p.successor(c.y, sym)
			if !okx || !oky || sx == sy {
				continue
			}
			q := makePair(sx, sy)
			if p.distinct[q] {
				marked = true
				break
			}
			waiting = append(waiting, q)
		}
		if marked {
			p.mark(c, deps)
			continue
		}
		for _, q := range waiting {
			deps[q] = append(deps[q], c)
		}
	}

	p.assignClasses()
	return p
}

// mark sets c distinct and propagates to every pair waiting on it.
func (p *Partition) mark(c pair, deps map[pair][]pair) {
	work := []pair{c}
	for len(work) > 0 {
		q := work[len(work)-1]
		work = work[:len(work)-1]
		if p.distinct[q] {
			continue
		}
		p.distinct[q] = true
		work = append(work, deps[q]...)
		delete(deps, q)
	}
}

func (p *Partition) assignClasses() {
	p.class = make([]int, p.sink+1)
	p.numClasses = 1
	for cv := 0; cv <= p.threshold; cv++ {
		var reps []int
		for i := 0; i < p.n; i++ {
			x := cv*p.n + i
			if !p.distinct[makePair(x, p.sink)] {
				p.class[x] = 0
				continue
			}
			found := false
			for _, r := range reps {
				if !p.distinct[makePair(x, r)] {
					p.class[x] = p.class[r]
					found = true
					break
				}
			}
			if !found {
				p.class[x] = p.numClasses
				p.numClasses++
				reps = append(reps, x)
			}
		}
	}
}

// #endregion compute

// #region queries

// Equivalent reports whether two configurations inside the window are
// equivalent. Configurations outside the window are never equivalent to
// anything but themselves.
func (p *Partition) Equivalent(s, t vca.State) bool {
	x, okx := p.id(s)
	y, oky := p.id(t)
	if !okx || !oky {
		return s.Equal(t)
	}
	return x == y || p.class[x] == p.class[y]
}

// Class returns the class of a configuration; 0 is the sink's class and -1
// is returned outside the window.
func (p *Partition) Class(s vca.State) int {
	x, ok := p.id(s)
	if !ok {
		return -1
	}
	return p.class[x]
}

// IsDead reports whether s cannot reach acceptance within the window.
func (p *Partition) IsDead(s vca.State) bool { return p.Class(s) == 0 }

// NumClasses counts the classes including the sink's.
func (p *Partition) NumClasses() int { return p.numClasses }

func (p *Partition) Threshold() int { return p.threshold }

// #endregion queries

// #region configurations

func (p *Partition) id(s vca.State) (int, bool) {
	if s.IsSink() {
		return p.sink, true
	}
	if !s.Counter.IsValid() || int(s.Counter) > p.threshold || int(s.Location) >= p.n {
		return 0, false
	}
	return int(s.Counter)*p.n + int(s.Location), true
}

func (p *Partition) state(x int) vca.State {
	if x == p.sink {
		return vca.Sink
	}
	return vca.State{Location: vca.Location(x % p.n), Counter: vca.CounterValue(x / p.n)}
}

func (p *Partition) accepting(x int) bool {
	return vca.IsAcceptingState(p.automaton, p.state(x))
}

// successor reports false when the successor leaves the window upwards.
func (p *Partition) successor(x int, sym vca.Symbol) (int, bool) {
	next := vca.Step(p.automaton, p.state(x), sym)
	if next.IsSink() {
		return p.sink, true
	}
	if int(next.Counter) > p.threshold {
		return 0, false
	}
	return int(next.Counter)*p.n + int(next.Location), true
}

// #endregion configurations
