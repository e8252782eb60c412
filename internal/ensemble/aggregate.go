package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"hypersmurf/internal/data"
	"hypersmurf/internal/models"
)

// Aggregate combines the members' outputs for in.
//
// For a nominal class the member distributions are summed and normalized;
// when the sum is exactly zero the zero vector is returned as is. For a
// numeric class the result is a one-element vector holding the mean of the
// non-missing member predictions, or data.Missing() if there is none.
// The first member error aborts with a *PredictionError.
func Aggregate(learners []models.Learner, in data.Instance, numericClass bool) ([]float64, error) {
	if len(learners) == 0 {
		return nil, ErrNotBuilt
	}
	if numericClass {
		return aggregateNumeric(learners, in)
	}

	var sum []float64
	for i, l := range learners {
		dist, err := l.Distribution(in)
		if err != nil {
			return nil, &PredictionError{Member: i, Err: err}
		}
		if sum == nil {
			sum = make([]float64, len(dist))
		}
		if len(dist) != len(sum) {
			return nil, &PredictionError{Member: i, Err: fmt.Errorf("distribution has %d values, want %d", len(dist), len(sum))}
		}
		floats.Add(sum, dist)
	}
	if total := floats.Sum(sum); total != 0 {
		floats.Scale(1/total, sum)
	}
	return sum, nil
}

func aggregateNumeric(learners []models.Learner, in data.Instance) ([]float64, error) {
	var sum float64
	var n int
	for i, l := range learners {
		v, err := l.Predict(in)
		if err != nil {
			return nil, &PredictionError{Member: i, Err: err}
		}
		if data.IsMissing(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return []float64{data.Missing()}, nil
	}
	return []float64{sum / float64(n)}, nil
}
