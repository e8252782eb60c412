// Package errs holds the typed errors shared by the resampling filters and
// the ensemble. All are returned as pointers and match with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// ConfigError is an invalid option or option combination.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InsufficientDataError reports a class that has too few instances for the
// requested operation.
type InsufficientDataError struct {
	Class  string
	Have   int
	Need   int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for class %q: have %d, need %d: %s", e.Class, e.Have, e.Need, e.Reason)
}

// InvalidFoldError is a fold count or fold index outside [0, folds).
type InvalidFoldError struct {
	Folds int
	Index int
}

func (e *InvalidFoldError) Error() string {
	if e.Folds <= 0 {
		return fmt.Sprintf("invalid fold count %d: must be > 0", e.Folds)
	}
	return fmt.Sprintf("invalid fold index %d: must be in [0,%d)", e.Index, e.Folds)
}

// TrainingError wraps the failure of one ensemble member's fit.
type TrainingError struct {
	Member int
	Err    error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training member %d: %v", e.Member, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// PredictionError wraps the failure of one ensemble member at inference.
type PredictionError struct {
	Member int
	Err    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction by member %d: %v", e.Member, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

var ErrNotBuilt = errors.New("ensemble not built")
