package oracle

import (
	"context"
	"sync/atomic"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region query

// Query asks whether Prefix·Suffix belongs to the target language.
type Query struct {
	Prefix vca.Word
	Suffix vca.Word
}

// Word is the concatenation the query stands for.
func (q Query) Word() vca.Word { return vca.Concat(q.Prefix, q.Suffix) }

// MembershipOracle answers a batch of queries in submission order.
type MembershipOracle interface {
	Answer(ctx context.Context, queries []Query) ([]bool, error)
}

// #endregion query

// #region automaton-oracle

// AutomatonOracle answers queries by running them on a known automaton.
type AutomatonOracle struct {
	target  vca.Automaton
	queries atomic.Int64
}

func NewAutomatonOracle(target vca.Automaton) *AutomatonOracle {
	return &AutomatonOracle{target: target}
}

func (o *AutomatonOracle) Target() vca.Automaton { return o.target }

func (o *AutomatonOracle) Answer(ctx context.Context, queries []Query) ([]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]bool, len(queries))
	for i, q := range queries {
		out[i] = vca.Accepts(o.target, q.Word())
	}
	o.queries.Add(int64(len(queries)))
	return out, nil
}

// Queries counts the queries answered so far.
func (o *AutomatonOracle) Queries() int64 { return o.queries.Load() }

// #endregion automaton-oracle
