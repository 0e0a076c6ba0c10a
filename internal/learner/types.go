package learner

import (
	"errors"

	"github.com/danielpatrickdp/vcalearn/internal/behavior"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region errors

var (
	// ErrBudgetExhausted is returned when an experiment runs out of rounds.
	ErrBudgetExhausted = errors.New("round budget exhausted")
	// ErrNoProgress is returned when the table stops improving at a threshold.
	ErrNoProgress = errors.New("table made no progress")
)

// #endregion errors

// #region phase

// Phase is the learner's lifecycle state.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseLearning        Phase = "learning"
	PhaseHypothesisReady Phase = "hypothesis_ready"
	PhaseRefining        Phase = "refining"
	PhaseDone            Phase = "done"
)

// #endregion phase

// #region candidate

// CandidateKind says where a hypothesis came from.
type CandidateKind string

const (
	// FromDescription: a periodic description of the bounded behavior graph.
	FromDescription CandidateKind = "description"
	// FromTable: the bounded table hypothesis itself.
	FromTable CandidateKind = "table"
)

// Candidate is one hypothesis offered to the equivalence oracle.
type Candidate struct {
	Kind        CandidateKind
	Threshold   int
	Description *behavior.Description // nil for FromTable
	VCA         *vca.VCA
}

// #endregion candidate
