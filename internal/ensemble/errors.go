package ensemble

import "hypersmurf/internal/errs"

// The error taxonomy lives in internal/errs so the filters can share it.
type (
	ConfigError           = errs.ConfigError
	InsufficientDataError = errs.InsufficientDataError
	InvalidFoldError      = errs.InvalidFoldError
	TrainingError         = errs.TrainingError
	PredictionError       = errs.PredictionError
)

var ErrNotBuilt = errs.ErrNotBuilt
