package vca

// #region combiner

// Combiner merges the acceptance bits of two operands. Combiners must map
// (false, false) to false so the joint sink stays rejecting.
type Combiner func(left, right bool) bool

var (
	// XOR accepts exactly the words on which the operands disagree.
	XOR Combiner = func(l, r bool) bool { return l != r }
	AND Combiner = func(l, r bool) bool { return l && r }
	OR  Combiner = func(l, r bool) bool { return l || r }
)

// #endregion combiner

// #region product

// Product is the synchronised product of two automata over one alphabet.
// Every pair of operand locations, including each operand's implicit sink,
// is a product location; nothing is filtered against reachability.
type Product struct {
	alphabet    *Alphabet
	left, right Automaton
	combine     Combiner
	ln, rn      int
}

func NewProduct(alphabet *Alphabet, left, right Automaton, combine Combiner) *Product {
	return &Product{
		alphabet: alphabet,
		left:     left,
		right:    right,
		combine:  combine,
		ln:       left.NumLocations(),
		rn:       right.NumLocations(),
	}
}

func (p *Product) Alphabet() *Alphabet { return p.alphabet }

func (p *Product) NumLocations() int { return (p.ln + 1) * (p.rn + 1) }

func (p *Product) Threshold() int {
	if p.left.Threshold() > p.right.Threshold() {
		return p.left.Threshold()
	}
	return p.right.Threshold()
}

func (p *Product) Initial() Location {
	return p.encode(p.left.Initial(), p.right.Initial())
}

// Successor advances both operands independently. The pair of sinks is
// reported as undefined.
func (p *Product) Successor(loc Location, sym Symbol, cv CounterValue) (Location, bool) {
	l, r := p.decode(loc)
	nl, nr := NoLocation, NoLocation
	if l != NoLocation {
		if to, ok := p.left.Successor(l, sym, cv); ok {
			nl = to
		}
	}
	if r != NoLocation {
		if to, ok := p.right.Successor(r, sym, cv); ok {
			nr = to
		}
	}
	if nl == NoLocation && nr == NoLocation {
		return NoLocation, false
	}
	return p.encode(nl, nr), true
}

func (p *Product) IsAccepting(loc Location) bool {
	l, r := p.decode(loc)
	la := l != NoLocation && p.left.IsAccepting(l)
	ra := r != NoLocation && p.right.IsAccepting(r)
	return p.combine(la, ra)
}

// Operands splits a product location into the operand locations.
func (p *Product) Operands(loc Location) (Location, Location) { return p.decode(loc) }

func (p *Product) encode(l, r Location) Location {
	li, ri := int(l), int(r)
	if l == NoLocation {
		li = p.ln
	}
	if r == NoLocation {
		ri = p.rn
	}
	return Location(li*(p.rn+1) + ri)
}

func (p *Product) decode(loc Location) (Location, Location) {
	li, ri := int(loc)/(p.rn+1), int(loc)%(p.rn+1)
	l, r := Location(li), Location(ri)
	if li == p.ln {
		l = NoLocation
	}
	if ri == p.rn {
		r = NoLocation
	}
	return l, r
}

// #endregion product
