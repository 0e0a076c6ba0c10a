package vca

import "fmt"

// #region location

// Location is a handle into the location arena of one automaton.
type Location int

// NoLocation stands for an undefined successor, i.e. the sink.
const NoLocation Location = -1

type locationData struct {
	accepting bool
	// succ[type][min(counter, m)] maps a symbol of that type to its target.
	succ [numSymbolTypes][]map[Symbol]Location
}

// #endregion location

// #region vca

// VCA is a deterministic m-visibly one-counter automaton. Its transition
// function reads the counter value capped at the threshold m, so behavior
// above m is stationary.
type VCA struct {
	alphabet  *Alphabet
	m         int
	initial   Location
	locations []locationData
}

// New creates an empty m-VCA. A negative threshold is treated as zero.
func New(alphabet *Alphabet, m int) *VCA {
	if m < 0 {
		m = 0
	}
	return &VCA{alphabet: alphabet, m: m, initial: NoLocation}
}

// AddLocation appends a location to the arena. The first location becomes
// the initial one.
func (v *VCA) AddLocation(accepting bool) Location {
	var d locationData
	d.accepting = accepting
	for t := range d.succ {
		d.succ[t] = make([]map[Symbol]Location, v.m+1)
	}
	v.locations = append(v.locations, d)
	loc := Location(len(v.locations) - 1)
	if v.initial == NoLocation {
		v.initial = loc
	}
	return loc
}

// SetInitial changes the initial location.
func (v *VCA) SetInitial(loc Location) error {
	if !v.valid(loc) {
		return fmt.Errorf("initial location %d: %w", loc, ErrInvalidParameter)
	}
	v.initial = loc
	return nil
}

// SetSuccessor defines the transition of from on sym when the counter is
// cv. The transition is stored under min(cv, m).
func (v *VCA) SetSuccessor(from Location, cv CounterValue, sym Symbol, to Location) error {
	if !v.valid(from) || !v.valid(to) {
		return fmt.Errorf("transition %d -%s-> %d: %w", from, sym, to, ErrInvalidParameter)
	}
	if !cv.IsValid() {
		return fmt.Errorf("counter index %d: %w", cv, ErrInvalidParameter)
	}
	t, ok := v.alphabet.Type(sym)
	if !ok {
		return fmt.Errorf("symbol %q: %w", sym, ErrInvalidParameter)
	}
	idx := v.counterIndex(cv)
	table := v.locations[from].succ[t]
	if table[idx] == nil {
		table[idx] = make(map[Symbol]Location)
	}
	table[idx][sym] = to
	return nil
}

// Successor looks up the transition of from on sym at counter cv.
func (v *VCA) Successor(from Location, sym Symbol, cv CounterValue) (Location, bool) {
	if !v.valid(from) || !cv.IsValid() {
		return NoLocation, false
	}
	t, ok := v.alphabet.Type(sym)
	if !ok {
		return NoLocation, false
	}
	to, ok := v.locations[from].succ[t][v.counterIndex(cv)][sym]
	return to, ok
}

func (v *VCA) IsAccepting(loc Location) bool {
	return v.valid(loc) && v.locations[loc].accepting
}

func (v *VCA) Alphabet() *Alphabet { return v.alphabet }
func (v *VCA) Initial() Location   { return v.initial }
func (v *VCA) Threshold() int      { return v.m }
func (v *VCA) NumLocations() int   { return len(v.locations) }

// Accepts runs w from the initial configuration.
func (v *VCA) Accepts(w Word) bool { return Accepts(v, w) }

// AcceptedWord returns a shortest accepted word, if one exists within the
// default search bound.
func (v *VCA) AcceptedWord() (Word, bool) { return AcceptedWord(v, SearchBound(v)) }

func (v *VCA) counterIndex(cv CounterValue) int {
	if int(cv) > v.m {
		return v.m
	}
	return int(cv)
}

func (v *VCA) valid(loc Location) bool {
	return loc >= 0 && int(loc) < len(v.locations)
}

// #endregion vca

// #region transitions

// Transition is one stored entry of the transition function.
type Transition struct {
	From    Location
	Counter int // counter index, already capped at the threshold
	Symbol  Symbol
	To      Location
}

// Transitions enumerates the arena in location, counter and alphabet order.
func (v *VCA) Transitions() []Transition {
	var out []Transition
	for from := range v.locations {
		for c := 0; c <= v.m; c++ {
			for _, sym := range v.alphabet.symbols {
				t := v.alphabet.types[sym]
				to, ok := v.locations[from].succ[t][c][sym]
				if !ok {
					continue
				}
				out = append(out, Transition{From: Location(from), Counter: c, Symbol: sym, To: to})
			}
		}
	}
	return out
}

// #endregion transitions
