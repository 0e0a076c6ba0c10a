package oracle

import (
	"context"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region equivalence

// EquivalenceOracle decides whether a hypothesis matches the target and
// returns a witness when it does not.
type EquivalenceOracle interface {
	FindCounterExample(ctx context.Context, hyp vca.Automaton) (vca.Word, bool, error)
}

// EquivalenceVCAOracle compares hypotheses with a known target through
// their XOR product: any word the product accepts is a counterexample.
type EquivalenceVCAOracle struct {
	target vca.Automaton
}

func NewEquivalenceVCAOracle(target vca.Automaton) *EquivalenceVCAOracle {
	return &EquivalenceVCAOracle{target: target}
}

func (o *EquivalenceVCAOracle) FindCounterExample(ctx context.Context, hyp vca.Automaton) (vca.Word, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p := vca.NewProduct(o.target.Alphabet(), o.target, hyp, vca.XOR)
	w, ok := vca.AcceptedWord(p, vca.SearchBound(p))
	return w, ok, nil
}

// #endregion equivalence
