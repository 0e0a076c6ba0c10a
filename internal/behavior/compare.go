package behavior

import (
	"fmt"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region mismatch

// MismatchKind says how two behavior graphs disagree.
type MismatchKind int

const (
	// Acceptance: one graph accepts Word and the other rejects it.
	Acceptance MismatchKind = iota
	// Transition: one graph can read the last symbol of Word and the other cannot.
	Transition
	// Structure: Word and an Earlier word reach the same node in one graph
	// and different nodes in the other.
	Structure
)

func (k MismatchKind) String() string {
	switch k {
	case Acceptance:
		return "acceptance"
	case Transition:
		return "transition"
	case Structure:
		return "structure"
	default:
		return fmt.Sprintf("MismatchKind(%d)", int(k))
	}
}

// Mismatch is the first difference found by Compare.
type Mismatch struct {
	Kind    MismatchKind
	Word    vca.Word
	Earlier []vca.Word
}

func (m Mismatch) String() string {
	if len(m.Earlier) == 0 {
		return fmt.Sprintf("%s mismatch on %s", m.Kind, m.Word)
	}
	return fmt.Sprintf("%s mismatch on %s (earlier %s)", m.Kind, m.Word, m.Earlier[0])
}

// #endregion mismatch

// #region compare

type nodeAt struct {
	node StateBG
	cv   int
}

type seenAt struct {
	other StateBG
	word  vca.Word
}

// Compare explores ref and hyp in lockstep over words whose counter stays
// within [0, threshold]. It returns the first mismatch in breadth-first
// order, or false when the two graphs agree on the whole window and their
// node correspondence is a bijection.
func Compare(ref, hyp Graph, threshold int) (Mismatch, bool) {
	type item struct {
		r, h StateBG
		cv   int
		word vca.Word
	}
	refSeen := make(map[nodeAt]seenAt)
	hypSeen := make(map[nodeAt]seenAt)

	start := item{r: ref.Initial(), h: hyp.Initial(), word: vca.Word{}}
	refSeen[nodeAt{start.r, 0}] = seenAt{start.h, start.word}
	hypSeen[nodeAt{start.h, 0}] = seenAt{start.r, start.word}
	queue := []item{start}
	symbols := ref.Alphabet().Symbols()

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		cv := vca.CounterValue(it.cv)
		if ref.IsAccepting(it.r, cv) != hyp.IsAccepting(it.h, cv) {
			return Mismatch{Kind: Acceptance, Word: it.word}, true
		}
		for _, sym := range symbols {
			t, _ := ref.Alphabet().Type(sym)
			next := it.cv + t.Delta()
			if next < 0 || next > threshold {
				continue
			}
			r, rok := ref.Transition(it.r, sym, cv)
			h, hok := hyp.Transition(it.h, sym, cv)
			word := it.word.Append(sym)
			if rok != hok {
				return Mismatch{Kind: Transition, Word: word}, true
			}
			if !rok {
				continue
			}
			rs, rseen := refSeen[nodeAt{r, next}]
			hs, hseen := hypSeen[nodeAt{h, next}]
			switch {
			case rseen && rs.other != h:
				return Mismatch{Kind: Structure, Word: word, Earlier: []vca.Word{rs.word}}, true
			case hseen && hs.other != r:
				return Mismatch{Kind: Structure, Word: word, Earlier: []vca.Word{hs.word}}, true
			case rseen:
				continue
			}
			refSeen[nodeAt{r, next}] = seenAt{h, word}
			hypSeen[nodeAt{h, next}] = seenAt{r, word}
			queue = append(queue, item{r: r, h: h, cv: next, word: word})
		}
	}
	return Mismatch{}, false
}

// #endregion compare
