package models

import (
	"fmt"

	"hypersmurf/internal/data"
)

// Learner is the base-learner contract consumed by the ensemble.
// Distribution is used for nominal targets, Predict for numeric ones; a
// numeric Predict may return data.Missing().
type Learner interface {
	Fit(ds *data.Dataset) error
	Distribution(in data.Instance) ([]float64, error)
	Predict(in data.Instance) (float64, error)
	Name() string
}

// Randomizable learners accept a seed before Fit.
type Randomizable interface {
	SetSeed(seed int64)
}

//go:generate mockgen -source=model.go -destination=mock_models/mock_models.go -package=mock_models

// Builder returns a fresh, unfitted learner.
type Builder func() Learner

// TreeParams are shared by the tree-based learners.
type TreeParams struct {
	NumTrees    int
	MaxDepth    int
	NumFeatures int
	MinSamples  int
	Slots       int
}

// NewBuilder maps a learner selector (rf, bagging, dt, gb) to a Builder.
func NewBuilder(selector string, p TreeParams) (Builder, error) {
	switch selector {
	case "", "rf":
		return func() Learner {
			rf := NewRandomForest()
			rf.NumTrees = p.NumTrees
			rf.MaxDepth = p.MaxDepth
			rf.MaxFeatures = p.NumFeatures
			rf.Slots = p.Slots
			if p.MinSamples > 0 {
				rf.MinSamples = p.MinSamples
			}
			return rf
		}, nil
	case "bagging":
		return func() Learner {
			bg := NewBagging()
			bg.NumTrees = p.NumTrees
			bg.MaxDepth = p.MaxDepth
			bg.Slots = p.Slots
			if p.MinSamples > 0 {
				bg.MinSamples = p.MinSamples
			}
			return bg
		}, nil
	case "dt":
		return func() Learner {
			dt := NewDecisionTree()
			dt.MaxDepth = p.MaxDepth
			dt.MaxFeatures = p.NumFeatures
			if p.MinSamples > 0 {
				dt.MinSamplesSplit = p.MinSamples
			}
			return dt
		}, nil
	case "gb":
		return func() Learner {
			gb := NewGradientBoosting()
			if p.NumTrees > 0 {
				gb.NumEstimators = p.NumTrees
			}
			if p.MinSamples > 0 {
				gb.MinSamples = p.MinSamples
			}
			return gb
		}, nil
	}
	return nil, fmt.Errorf("unknown learner %q (want rf|bagging|dt|gb)", selector)
}
