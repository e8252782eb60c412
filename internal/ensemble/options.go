package ensemble

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

// Options configures an Ensemble. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Partitions     int   `yaml:"partitions" toml:"partitions" validate:"gte=1"`
	Seed           int64 `yaml:"seed" toml:"seed"`
	ExecutionSlots int   `yaml:"execution_slots" toml:"execution_slots" validate:"gte=0"`

	// SMOTE
	Percentage       float64 `yaml:"percentage" toml:"percentage" validate:"gte=0"`
	NearestNeighbors int     `yaml:"nearest_neighbors" toml:"nearest_neighbors" validate:"gte=1"`
	ClassValue       int     `yaml:"class_value" toml:"class_value" validate:"gte=0"`

	// SpreadSubsample
	DistributionSpread float64 `yaml:"distribution_spread" toml:"distribution_spread" validate:"gte=0"`
	MaxCount           int     `yaml:"max_count" toml:"max_count" validate:"gte=0"`
	AdjustWeights      bool    `yaml:"adjust_weights" toml:"adjust_weights"`

	// base learner
	Learner          string `yaml:"learner" toml:"learner" validate:"omitempty,oneof=rf bagging dt gb"`
	NumTrees         int    `yaml:"num_trees" toml:"num_trees" validate:"gte=0"`
	MaxDepth         int    `yaml:"max_depth" toml:"max_depth" validate:"gte=0"`
	NumFeatures      int    `yaml:"num_features" toml:"num_features" validate:"gte=0"`
	RFExecutionSlots int    `yaml:"rf_execution_slots" toml:"rf_execution_slots" validate:"gte=0"`
}

func DefaultOptions() Options {
	return Options{
		Partitions:       10,
		Seed:             1,
		ExecutionSlots:   1,
		Percentage:       100,
		NearestNeighbors: 5,
		Learner:          "rf",
		NumTrees:         10,
		RFExecutionSlots: 1,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate reports every violated constraint, each as a *ConfigError,
// combined with multierr.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ConfigError{Field: "options", Reason: "cannot validate", Err: err}
	}
	var out error
	for _, fe := range verrs {
		reason := fe.Tag()
		if fe.Param() != "" {
			reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		out = multierr.Append(out, &ConfigError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("%v violates %s", fe.Value(), reason),
		})
	}
	return out
}
