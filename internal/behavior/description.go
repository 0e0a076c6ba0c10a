package behavior

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region state-bg

// StateBG is a node of a behavior graph: a tau-mapping index (or a level,
// for bounded graphs) and a local class numbered from 1.
type StateBG struct {
	Index int
	Class int
}

func (s StateBG) String() string { return fmt.Sprintf("(%d,%d)", s.Index, s.Class) }

// #endregion state-bg

// #region description

// Description is a periodic presentation of a behavior graph: tau mappings
// τ₀…τ_{offset+period−1}. For levels at or above offset the mappings repeat
// with the given period.
type Description struct {
	alphabet  *vca.Alphabet
	offset    int
	period    int
	width     int
	taus      []*TauMapping
	initial   StateBG
	accepting map[StateBG]bool
}

// NewDescription allocates offset+period empty tau mappings of the given
// width. The initial state defaults to (0,1).
func NewDescription(alphabet *vca.Alphabet, offset, period, width int) (*Description, error) {
	if offset < 0 || period < 1 || width < 1 {
		return nil, fmt.Errorf("description offset=%d period=%d width=%d: %w",
			offset, period, width, vca.ErrInvalidParameter)
	}
	d := &Description{
		alphabet:  alphabet,
		offset:    offset,
		period:    period,
		width:     width,
		initial:   StateBG{Index: 0, Class: 1},
		accepting: make(map[StateBG]bool),
	}
	d.taus = make([]*TauMapping, offset+period)
	for i := range d.taus {
		d.taus[i] = NewTauMapping(width)
	}
	return d, nil
}

func (d *Description) Alphabet() *vca.Alphabet { return d.alphabet }
func (d *Description) Offset() int             { return d.offset }
func (d *Description) Period() int             { return d.period }
func (d *Description) Width() int              { return d.width }
func (d *Description) Initial() StateBG        { return d.initial }

// Tau returns τ_i, or nil outside [0, offset+period).
func (d *Description) Tau(i int) *TauMapping {
	if i < 0 || i >= len(d.taus) {
		return nil
	}
	return d.taus[i]
}

// SetInitial makes (0, class) the initial state.
func (d *Description) SetInitial(class int) error {
	if class < 1 || class > d.width {
		return fmt.Errorf("initial class %d: %w", class, vca.ErrInvalidParameter)
	}
	d.initial = StateBG{Index: 0, Class: class}
	return nil
}

// SetAccepting marks (index, class) as accepting.
func (d *Description) SetAccepting(index, class int) error {
	if index < 0 || index >= len(d.taus) || class < 1 || class > d.width {
		return fmt.Errorf("accepting state (%d,%d): %w", index, class, vca.ErrInvalidParameter)
	}
	d.accepting[StateBG{index, class}] = true
	return nil
}

func (d *Description) IsAccepting(s StateBG) bool { return d.accepting[s] }

// Validate checks that the initial state is defined at level 0 and that
// every tau mapping has the description's width.
func (d *Description) Validate() error {
	if d.initial.Index != 0 || d.initial.Class < 1 || d.initial.Class > d.width {
		return fmt.Errorf("initial state %s: %w", d.initial, vca.ErrInvalidParameter)
	}
	for i, t := range d.taus {
		if t == nil || t.width != d.width {
			return fmt.Errorf("tau %d width mismatch: %w", i, vca.ErrInvalidParameter)
		}
	}
	return nil
}

// nextIndex moves a tau-mapping index across a symbol of type t read at
// counter cv. It returns -1 when the move leaves the domain.
func (d *Description) nextIndex(i int, t vca.SymbolType, cv vca.CounterValue) int {
	switch t {
	case vca.Call:
		if i+1 == d.offset+d.period {
			return d.offset
		}
		return i + 1
	case vca.Return:
		if cv <= 0 {
			return -1
		}
		// At the offset with a counter above it at least one period
		// has been completed, so the return wraps back into the cycle.
		if i == d.offset && int(cv) > d.offset {
			return d.offset + d.period - 1
		}
		return i - 1
	default:
		return i
	}
}

// Key is a canonical rendering used to deduplicate descriptions.
func (d *Description) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "o=%d p=%d k=%d i=%s", d.offset, d.period, d.width, d.initial)
	for i, t := range d.taus {
		fmt.Fprintf(&b, " t%d=%s", i, t)
	}
	acc := make([]string, 0, len(d.accepting))
	for s := range d.accepting {
		acc = append(acc, s.String())
	}
	sort.Strings(acc)
	fmt.Fprintf(&b, " f=%s", strings.Join(acc, ","))
	return b.String()
}

// #endregion description

// #region to-vca

// ToVCA materialises the description as an explicit automaton whose
// locations are the (index, class) pairs reachable from the initial state.
// Its threshold is offset+1: that is the only counter distinction the
// description needs, namely whether a return at the offset wraps back into
// the cycle.
func (d *Description) ToVCA() (*vca.VCA, error) {
	m := d.offset + 1
	v := vca.New(d.alphabet, m)
	locs := make(map[StateBG]vca.Location)
	var order []StateBG

	add := func(s StateBG) {
		if _, ok := locs[s]; ok {
			return
		}
		locs[s] = v.AddLocation(d.accepting[s])
		order = append(order, s)
	}
	add(d.initial)

	symbols := d.alphabet.Symbols()
	for head := 0; head < len(order); head++ {
		s := order[head]
		for c := 0; c <= m; c++ {
			for _, sym := range symbols {
				t, _ := d.alphabet.Type(sym)
				class, ok := d.taus[s.Index].lookup(s.Class, sym)
				if !ok {
					continue
				}
				next := d.nextIndex(s.Index, t, vca.CounterValue(c))
				if next < 0 {
					continue
				}
				target := StateBG{Index: next, Class: class}
				add(target)
				if err := v.SetSuccessor(locs[s], vca.CounterValue(c), sym, locs[target]); err != nil {
					return nil, fmt.Errorf("description to vca: %w", err)
				}
			}
		}
	}
	return v, nil
}

// #endregion to-vca
