package store

import (
	"context"
	"time"
)

// #region query-cache
// QueryCache remembers membership answers per target, keyed by word.
type QueryCache interface {
	// Lookup returns the cached answers among words.
	Lookup(ctx context.Context, target string, words []string) (map[string]bool, error)
	Save(ctx context.Context, target string, answers map[string]bool) error
}
// #endregion query-cache

// #region run-record
// RunRecord is one learning run.
type RunRecord struct {
	RunID          string
	Target         string
	Status         string // "running" | "learned" | "budget_exhausted" | "failed"
	Threshold      int
	Rounds         int
	HypothesisJSON string
	StartedAt      time.Time
	FinishedAt     time.Time
}
// #endregion run-record

// #region run-status
const (
	StatusRunning         = "running"
	StatusLearned         = "learned"
	StatusBudgetExhausted = "budget_exhausted"
	StatusFailed          = "failed"
)
// #endregion run-status
