package vca

// #region automaton

// Automaton is the capability shared by concrete automata and lazy products.
type Automaton interface {
	Alphabet() *Alphabet
	Initial() Location
	Successor(loc Location, sym Symbol, cv CounterValue) (Location, bool)
	IsAccepting(loc Location) bool
	// Threshold is the counter value above which transitions are stationary.
	Threshold() int
	NumLocations() int
}

// #endregion automaton

// #region state

// State is a configuration: a location together with a counter value.
type State struct {
	Location Location
	Counter  CounterValue
}

// Sink absorbs all input and never accepts.
var Sink = State{Location: NoLocation, Counter: 0}

func (s State) IsSink() bool { return s.Location == NoLocation }

// Equal holds iff both states are the sink, or location and counter agree.
func (s State) Equal(o State) bool {
	if s.IsSink() || o.IsSink() {
		return s.IsSink() && o.IsSink()
	}
	return s.Location == o.Location && s.Counter == o.Counter
}

// InitialState is the initial configuration of a.
func InitialState(a Automaton) State {
	if a.Initial() == NoLocation {
		return Sink
	}
	return State{Location: a.Initial(), Counter: 0}
}

// Step reads one symbol. Undefined transitions and negative counters lead
// to the sink.
func Step(a Automaton, s State, sym Symbol) State {
	if s.IsSink() {
		return Sink
	}
	t, ok := a.Alphabet().Type(sym)
	if !ok {
		return Sink
	}
	next := t.Apply(s.Counter)
	if !next.IsValid() {
		return Sink
	}
	loc, ok := a.Successor(s.Location, sym, s.Counter)
	if !ok {
		return Sink
	}
	return State{Location: loc, Counter: next}
}

// Run reads w from s.
func Run(a Automaton, s State, w Word) State {
	for _, sym := range w {
		s = Step(a, s, sym)
		if s.IsSink() {
			return Sink
		}
	}
	return s
}

// IsAcceptingState holds for accepting locations at counter zero.
func IsAcceptingState(a Automaton, s State) bool {
	return !s.IsSink() && s.Counter.IsZero() && a.IsAccepting(s.Location)
}

// Accepts reports whether a accepts w.
func Accepts(a Automaton, w Word) bool {
	return IsAcceptingState(a, Run(a, InitialState(a), w))
}

// #endregion state

// #region search

// maxSearchCounter caps SearchBound so emptiness checks on large products
// stay tractable.
const maxSearchCounter = 1 << 14

// SearchBound is the default counter bound for emptiness search: the
// threshold plus the square of the location count.
func SearchBound(a Automaton) int {
	n := a.NumLocations()
	bound := a.Threshold() + n*n + 1
	if bound > maxSearchCounter {
		return maxSearchCounter
	}
	return bound
}

// AcceptedWord searches breadth-first for a shortest accepted word whose
// run keeps the counter at or below bound. Each configuration is visited
// once.
func AcceptedWord(a Automaton, bound int) (Word, bool) {
	start := InitialState(a)
	if start.IsSink() {
		return nil, false
	}
	type node struct {
		state  State
		parent int
		sym    Symbol
	}
	nodes := []node{{state: start, parent: -1}}
	seen := map[State]bool{start: true}
	symbols := a.Alphabet().Symbols()

	for head := 0; head < len(nodes); head++ {
		cur := nodes[head]
		if IsAcceptingState(a, cur.state) {
			var w Word
			for i := head; nodes[i].parent >= 0; i = nodes[i].parent {
				w = append(w, nodes[i].sym)
			}
			for l, r := 0, len(w)-1; l < r; l, r = l+1, r-1 {
				w[l], w[r] = w[r], w[l]
			}
			if w == nil {
				w = Word{}
			}
			return w, true
		}
		for _, sym := range symbols {
			next := Step(a, cur.state, sym)
			if next.IsSink() || int(next.Counter) > bound || seen[next] {
				continue
			}
			seen[next] = true
			nodes = append(nodes, node{state: next, parent: head, sym: sym})
		}
	}
	return nil, false
}

// #endregion search
