package learner

import (
	"fmt"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region config

// Config tunes the learning loop.
type Config struct {
	// InitialThreshold is the table horizon after StartLearning.
	InitialThreshold int
	// ThresholdStep is the minimum raise when every candidate is refuted.
	ThresholdStep int
	// MaxDescriptions caps the periodic descriptions tried per threshold.
	MaxDescriptions int
	// MaxTableRounds caps partial-oracle rounds at one threshold.
	MaxTableRounds int
	// MaxRounds caps equivalence queries in an experiment.
	MaxRounds int
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		InitialThreshold: 0,
		ThresholdStep:    1,
		MaxDescriptions:  8,
		MaxTableRounds:   256,
		MaxRounds:        64,
	}
}

// DescriptionLimit is the highest level trusted when searching for periodic
// descriptions at threshold. The top third of the window is left out since
// it cannot see the levels above it.
func (c Config) DescriptionLimit(threshold int) int {
	return threshold - threshold/3
}

func (c Config) validate() error {
	switch {
	case c.InitialThreshold < 0:
		return fmt.Errorf("initial threshold %d: %w", c.InitialThreshold, vca.ErrInvalidParameter)
	case c.ThresholdStep < 1:
		return fmt.Errorf("threshold step %d: %w", c.ThresholdStep, vca.ErrInvalidParameter)
	case c.MaxDescriptions < 1:
		return fmt.Errorf("max descriptions %d: %w", c.MaxDescriptions, vca.ErrInvalidParameter)
	case c.MaxTableRounds < 1:
		return fmt.Errorf("max table rounds %d: %w", c.MaxTableRounds, vca.ErrInvalidParameter)
	case c.MaxRounds < 1:
		return fmt.Errorf("max rounds %d: %w", c.MaxRounds, vca.ErrInvalidParameter)
	}
	return nil
}

// #endregion config
