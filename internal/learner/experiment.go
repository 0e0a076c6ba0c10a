package learner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/vcalearn/internal/logging"
	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/store"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
	"github.com/google/uuid"
)

// #region experiment-struct

// Experiment runs the learner against an equivalence oracle until a
// hypothesis is accepted or the round budget is spent.
type Experiment struct {
	learner     *Learner
	equivalence oracle.EquivalenceOracle
	maxRounds   int

	store  *store.Store
	target string

	ran    bool
	runID  string
	rounds int
	final  *Candidate
}

// NewExperiment wires a learner to an equivalence oracle.
func NewExperiment(l *Learner, equivalence oracle.EquivalenceOracle) *Experiment {
	return &Experiment{
		learner:     l,
		equivalence: equivalence,
		maxRounds:   l.cfg.MaxRounds,
	}
}

// WithStore records the run and every round in s under the target name.
func (e *Experiment) WithStore(s *store.Store, target string) *Experiment {
	e.store = s
	e.target = target
	return e
}

func (e *Experiment) RunID() string     { return e.runID }
func (e *Experiment) Rounds() int       { return e.rounds }
func (e *Experiment) Learner() *Learner { return e.learner }

// #endregion experiment-struct

// #region run

// Run executes the experiment. It may be called once.
func (e *Experiment) Run(ctx context.Context) error {
	if e.ran {
		return fmt.Errorf("experiment already ran: %w", vca.ErrPrecondition)
	}
	e.ran = true

	if e.store != nil {
		rec, err := e.store.CreateRun(e.target)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		e.runID = rec.RunID
	} else {
		e.runID = uuid.New().String()
	}

	err := e.run(ctx)
	e.finish(err)
	return err
}

func (e *Experiment) run(ctx context.Context) error {
	if err := e.learner.StartLearning(ctx); err != nil {
		return err
	}
	for e.rounds < e.maxRounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		cand, ok := e.learner.GetHypothesisModel()
		if !ok {
			return fmt.Errorf("round %d: no candidate in phase %s: %w", e.rounds+1, e.learner.Phase(), vca.ErrPrecondition)
		}
		e.rounds++

		ce, found, err := e.equivalence.FindCounterExample(ctx, cand.VCA)
		if err != nil {
			return fmt.Errorf("round %d: equivalence: %w", e.rounds, err)
		}
		e.journal(cand, ce, found)
		if !found {
			e.final = &cand
			e.learner.Finish()
			log.Printf("[RUN] %s learned in %d rounds: %s candidate, threshold %d, %d locations",
				e.runID, e.rounds, cand.Kind, cand.Threshold, cand.VCA.NumLocations())
			return nil
		}
		log.Printf("[RUN] %s round %d: %s candidate refuted by %q", e.runID, e.rounds, cand.Kind, ce.String())
		if err := e.learner.RefineHypothesis(ctx, ce); err != nil {
			return fmt.Errorf("round %d: %w", e.rounds, err)
		}
	}
	return fmt.Errorf("%d rounds: %w", e.maxRounds, ErrBudgetExhausted)
}

// #endregion run

// #region result

// FinalHypothesis returns the accepted candidate.
func (e *Experiment) FinalHypothesis() (Candidate, error) {
	if !e.ran || e.final == nil {
		return Candidate{}, fmt.Errorf("no accepted hypothesis: %w", vca.ErrPrecondition)
	}
	return *e.final, nil
}

// HypothesisRecord is the JSON stored with a finished run.
type HypothesisRecord struct {
	Kind       CandidateKind     `json:"kind"`
	Threshold  int               `json:"threshold"`
	Offset     int               `json:"offset,omitempty"`
	Period     int               `json:"period,omitempty"`
	Width      int               `json:"width,omitempty"`
	Definition *model.Definition `json:"definition"`
}

// HypothesisJSON renders c for storage.
func HypothesisJSON(name string, c Candidate) (string, error) {
	rec := HypothesisRecord{
		Kind:       c.Kind,
		Threshold:  c.Threshold,
		Definition: model.FromVCA(name, c.VCA),
	}
	if d := c.Description; d != nil {
		rec.Offset, rec.Period, rec.Width = d.Offset(), d.Period(), d.Width()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal hypothesis: %w", err)
	}
	return string(data), nil
}

// DecodeHypothesis parses what HypothesisJSON produced.
func DecodeHypothesis(s string) (HypothesisRecord, error) {
	var rec HypothesisRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return HypothesisRecord{}, fmt.Errorf("decode hypothesis: %w", err)
	}
	if rec.Definition == nil {
		return HypothesisRecord{}, fmt.Errorf("decode hypothesis: no definition: %w", vca.ErrInvalidParameter)
	}
	return rec, nil
}

// #endregion result

// #region journal

func (e *Experiment) journal(c Candidate, ce vca.Word, found bool) {
	if e.store == nil {
		return
	}
	st := e.learner.Table().Stats()
	rec := logging.TableRecord{
		MaxLevel:  st.MaxLevel,
		ShortRows: st.ShortRows,
		LongRows:  st.LongRows,
		Suffixes:  st.Suffixes,
		Queries:   st.Queries,
		Forks:     st.Forks,

		Descriptions: e.learner.Descriptions(),
		Remaining:    e.learner.Remaining(),
	}
	tableJSON, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[RUN] marshal table record for round %d: %v", e.rounds, err)
	}

	entry := logging.RoundEntry{
		RunID:     e.runID,
		Round:     e.rounds,
		Threshold: c.Threshold,
		Candidate: string(c.Kind),
		Locations: c.VCA.NumLocations(),
		Outcome:   "learned",
		TableJSON: string(tableJSON),
		CreatedAt: time.Now().UTC(),
	}
	if found {
		entry.Outcome = "counterexample"
		entry.Counterexample = ce.String()
	}
	if err := logging.LogRound(e.store.DB(), entry); err != nil {
		log.Printf("[RUN] journal round %d: %v", e.rounds, err)
	}
}

func (e *Experiment) finish(runErr error) {
	if e.store == nil {
		return
	}
	status := store.StatusLearned
	hyp := ""
	switch {
	case errors.Is(runErr, ErrBudgetExhausted):
		status = store.StatusBudgetExhausted
	case runErr != nil:
		status = store.StatusFailed
	default:
		s, err := HypothesisJSON(e.target, *e.final)
		if err != nil {
			log.Printf("[RUN] %v", err)
		}
		hyp = s
	}
	if err := e.store.FinishRun(e.runID, status, e.learner.Threshold(), e.rounds, hyp); err != nil {
		log.Printf("[RUN] finish %s: %v", e.runID, err)
	}
}

// #endregion journal
