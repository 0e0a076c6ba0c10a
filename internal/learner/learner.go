package learner

import (
	"context"
	"fmt"
	"log"

	"github.com/danielpatrickdp/vcalearn/internal/behavior"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/table"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region partial-oracle

// PartialOracle checks a hypothesis on the counter window [0, threshold].
type PartialOracle interface {
	Counterexample(ctx context.Context, hyp vca.Automaton, threshold int) (vca.Word, bool, error)
}

// #endregion partial-oracle

// #region learner-struct

// Learner drives the stratified table towards hypotheses. It learns the
// bounded behavior graph at the current threshold, proposes the periodic
// descriptions of that graph, and raises the threshold once every
// candidate has been refuted.
type Learner struct {
	cfg        Config
	alphabet   *vca.Alphabet
	membership oracle.MembershipOracle
	partial    PartialOracle

	table      *table.Table
	phase      Phase
	threshold  int
	hypothesis *vca.VCA

	candidates   []Candidate
	next         int
	descriptions int

	counterexamples []vca.Word
	verdicts        map[string]bool
}

// New creates an idle learner.
func New(alphabet *vca.Alphabet, membership oracle.MembershipOracle, partial PartialOracle, cfg Config) (*Learner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Learner{
		cfg:        cfg,
		alphabet:   alphabet,
		membership: membership,
		partial:    partial,
		phase:      PhaseIdle,
		verdicts:   make(map[string]bool),
	}, nil
}

func (l *Learner) Phase() Phase         { return l.phase }
func (l *Learner) Threshold() int       { return l.threshold }
func (l *Learner) Table() *table.Table  { return l.table }
func (l *Learner) Hypothesis() *vca.VCA { return l.hypothesis }
func (l *Learner) Counterexamples() []vca.Word {
	return append([]vca.Word(nil), l.counterexamples...)
}

// Descriptions counts the periodic descriptions found at the current
// threshold.
func (l *Learner) Descriptions() int { return l.descriptions }

// Remaining counts the untried candidates.
func (l *Learner) Remaining() int { return len(l.candidates) - l.next }

// #endregion learner-struct

// #region start

// StartLearning seeds the table with {ε} as prefixes and suffixes at the
// initial threshold and learns the first batch of candidates.
func (l *Learner) StartLearning(ctx context.Context) error {
	if l.phase != PhaseIdle {
		return fmt.Errorf("start learning in phase %s: %w", l.phase, vca.ErrPrecondition)
	}
	l.phase = PhaseLearning
	l.threshold = l.cfg.InitialThreshold

	t, err := table.New(l.alphabet, l.threshold)
	if err != nil {
		return err
	}
	l.table = t
	if _, err := l.table.Initialize(ctx, nil, nil, l.membership); err != nil {
		return fmt.Errorf("start learning: %w", err)
	}
	if err := l.learnBounded(ctx); err != nil {
		return fmt.Errorf("start learning: %w", err)
	}
	l.computeCandidates()
	l.phase = PhaseHypothesisReady
	return nil
}

// #endregion start

// #region hypothesis

// GetHypothesisModel returns the next untried candidate.
func (l *Learner) GetHypothesisModel() (Candidate, bool) {
	if l.phase != PhaseHypothesisReady || l.next >= len(l.candidates) {
		return Candidate{}, false
	}
	c := l.candidates[l.next]
	l.next++
	return c, true
}

// Finish marks the learner done after a hypothesis was accepted.
func (l *Learner) Finish() { l.phase = PhaseDone }

// #endregion hypothesis

// #region refine

// RefineHypothesis records a counterexample to the last candidate. The
// remaining candidates that misclassify any recorded counterexample are
// dropped; when none is left the threshold is raised to at least the
// height of every counterexample and the table re-learned.
func (l *Learner) RefineHypothesis(ctx context.Context, ce vca.Word) error {
	if l.phase != PhaseHypothesisReady {
		return fmt.Errorf("refine in phase %s: %w", l.phase, vca.ErrPrecondition)
	}
	h := l.alphabet.Height(ce)
	if h < 0 {
		return fmt.Errorf("counterexample %s leaves the domain: %w", ce, vca.ErrInvalidParameter)
	}
	l.phase = PhaseRefining

	if _, seen := l.verdicts[ce.Key()]; !seen {
		answers, err := l.membership.Answer(ctx, []oracle.Query{{Prefix: ce}})
		if err != nil {
			l.phase = PhaseHypothesisReady
			return fmt.Errorf("refine: %w", err)
		}
		if len(answers) != 1 {
			l.phase = PhaseHypothesisReady
			return fmt.Errorf("refine: oracle answered %d of 1 queries: %w", len(answers), vca.ErrPrecondition)
		}
		l.verdicts[ce.Key()] = answers[0]
		l.counterexamples = append(l.counterexamples, ce)
	}
	l.candidates = l.consistent(l.candidates[l.next:])
	l.next = 0
	log.Printf("[LEARN] counterexample %s (height %d, accepted=%v): %d candidates left at threshold %d",
		ce, h, l.verdicts[ce.Key()], len(l.candidates), l.threshold)

	for len(l.candidates) == 0 {
		next := l.threshold + l.cfg.ThresholdStep
		for _, w := range l.counterexamples {
			if ch := l.alphabet.Height(w); ch > next {
				next = ch
			}
		}
		if err := l.escalate(ctx, next); err != nil {
			return fmt.Errorf("refine: %w", err)
		}
	}
	l.phase = PhaseHypothesisReady
	return nil
}

// escalate raises the horizon, feeds every counterexample to the table and
// re-learns. Queries already answered stay valid at the new level.
func (l *Learner) escalate(ctx context.Context, threshold int) error {
	log.Printf("[LEARN] threshold %d -> %d", l.threshold, threshold)
	l.phase = PhaseLearning
	if _, err := l.table.IncreaseLevel(ctx, threshold, l.membership); err != nil {
		return err
	}
	l.threshold = threshold
	for _, ce := range l.counterexamples {
		if err := l.addCounterexample(ctx, ce); err != nil {
			return err
		}
	}
	if err := l.learnBounded(ctx); err != nil {
		return err
	}
	l.computeCandidates()
	l.phase = PhaseRefining
	return nil
}

// #endregion refine

// #region bounded-learning

// learnBounded closes the table and checks it against the partial oracle
// until the hypothesis agrees with the target on the current window.
func (l *Learner) learnBounded(ctx context.Context) error {
	for round := 0; round < l.cfg.MaxTableRounds; round++ {
		if err := l.closeAndConsistent(ctx); err != nil {
			return err
		}
		h, err := l.table.ToVCA()
		if err != nil {
			return err
		}
		ce, found, err := l.partial.Counterexample(ctx, h, l.threshold)
		if err != nil {
			return fmt.Errorf("partial equivalence: %w", err)
		}
		if !found {
			l.hypothesis = h
			st := l.table.Stats()
			log.Printf("[LEARN] threshold %d learned: %d locations, short=%d long=%d queries=%d",
				l.threshold, h.NumLocations(), st.ShortRows, st.LongRows, st.Queries)
			return nil
		}
		if err := l.addCounterexample(ctx, ce); err != nil {
			return err
		}
	}
	return fmt.Errorf("threshold %d after %d rounds: %w", l.threshold, l.cfg.MaxTableRounds, ErrNoProgress)
}

// closeAndConsistent promotes unclosed successors and splits inconsistent
// rows until the table is closed and consistent.
func (l *Learner) closeAndConsistent(ctx context.Context) error {
	for {
		if r, sym, ok := l.table.FindUnclosedRow(); ok {
			if _, err := l.table.AddShortPrefixes(ctx, []vca.Word{r.Prefix().Append(sym)}, l.membership); err != nil {
				return err
			}
			continue
		}
		if inc, ok := l.table.FindInconsistency(); ok {
			s, level, ok := l.table.DistinguishingSuffix(inc)
			if !ok {
				return fmt.Errorf("rows %s and %s on %s: no distinguishing suffix: %w",
					inc.First, inc.Second, inc.Symbol, vca.ErrPrecondition)
			}
			if _, err := l.table.AddSuffixes(ctx, []vca.Word{s}, []int{level}, l.membership); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// addCounterexample adds the prefixes of ce as short rows and every suffix
// ce[i:] at the level of ce[:i].
func (l *Learner) addCounterexample(ctx context.Context, ce vca.Word) error {
	if l.alphabet.Height(ce) > l.threshold {
		return nil
	}
	if _, err := l.table.AddShortPrefixes(ctx, []vca.Word{ce}, l.membership); err != nil {
		return err
	}
	suffixes := make([]vca.Word, 0, len(ce)+1)
	levels := make([]int, 0, len(ce)+1)
	for i := 0; i <= len(ce); i++ {
		suffixes = append(suffixes, append(vca.Word(nil), ce[i:]...))
		levels = append(levels, int(l.alphabet.CounterValue(ce[:i])))
	}
	_, err := l.table.AddSuffixes(ctx, suffixes, levels, l.membership)
	return err
}

// #endregion bounded-learning

// #region candidates

// computeCandidates lists the periodic descriptions of the learned bounded
// graph, then the table hypothesis itself, minus those refuted already.
func (l *Learner) computeCandidates() {
	g := behavior.Bound(l.hypothesis, l.threshold)
	limit := l.cfg.DescriptionLimit(l.threshold)
	var cands []Candidate
	descs := behavior.FindDescriptionsFunc(g, limit, l.cfg.MaxDescriptions, func(d *behavior.Description) bool {
		v, err := d.ToVCA()
		if err != nil {
			log.Printf("[LEARN] description o=%d p=%d skipped: %v", d.Offset(), d.Period(), err)
			return false
		}
		c := Candidate{Kind: FromDescription, Threshold: l.threshold, Description: d, VCA: v}
		if len(l.consistent([]Candidate{c})) == 0 {
			return false
		}
		cands = append(cands, c)
		return true
	})
	l.descriptions = len(descs)

	cands = append(cands, Candidate{Kind: FromTable, Threshold: l.threshold, VCA: l.hypothesis})
	l.candidates = l.consistent(cands)
	l.next = 0
	log.Printf("[LEARN] threshold %d: %d descriptions within level %d, %d candidates",
		l.threshold, len(descs), limit, len(l.candidates))
}

// consistent keeps the candidates that classify every recorded
// counterexample like the target does.
func (l *Learner) consistent(cands []Candidate) []Candidate {
	var out []Candidate
	for _, c := range cands {
		ok := true
		for _, w := range l.counterexamples {
			if c.VCA.Accepts(w) != l.verdicts[w.Key()] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// #endregion candidates
