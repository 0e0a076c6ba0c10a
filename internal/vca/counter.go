package vca

import "errors"

// #region errors

var (
	// ErrInvalidParameter marks a contract violation by the caller.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrPrecondition marks an operation invoked in the wrong state.
	ErrPrecondition = errors.New("precondition failed")
)

// #endregion errors

// #region counter

// CounterValue is the number of unmatched calls read so far.
type CounterValue int

// InvalidCounter is the value of a word that returned below zero.
const InvalidCounter CounterValue = -1

func (c CounterValue) Increment() CounterValue {
	if !c.IsValid() {
		return InvalidCounter
	}
	return c + 1
}

// Decrement yields InvalidCounter when c is zero.
func (c CounterValue) Decrement() CounterValue {
	if c <= 0 {
		return InvalidCounter
	}
	return c - 1
}

func (c CounterValue) IsZero() bool  { return c == 0 }
func (c CounterValue) IsValid() bool { return c >= 0 }

// #endregion counter
