package models

import (
	"fmt"
	"math"

	"hypersmurf/internal/data"
)

// RandomForest is bagging with a random feature subset per split.
// MaxFeatures 0 uses sqrt of the feature count.
type RandomForest struct {
	NumTrees           int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Slots              int
	Trees              []*DecisionTree

	seed int64
}

func NewRandomForest() *RandomForest {
	return &RandomForest{NumTrees: 10, MinSamples: 2, MaxThresholdsPerFe: 32, Slots: 1, seed: 1}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) SetSeed(seed int64) { rf.seed = seed }

func (rf *RandomForest) Fit(ds *data.Dataset) error {
	nFeats := ds.NumAttributes() - 1
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
	}
	trees, err := growTrees(ds, rf.NumTrees, rf.Slots, rf.seed, func() *DecisionTree {
		dt := NewDecisionTree()
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamples
		dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
		dt.MaxFeatures = maxFeatures
		return dt
	})
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	rf.Trees = trees
	return nil
}

func (rf *RandomForest) Distribution(in data.Instance) ([]float64, error) {
	return averageDistribution(rf.Trees, in)
}

func (rf *RandomForest) Predict(in data.Instance) (float64, error) {
	return predictFromDistribution(rf.Trees, in)
}

func (rf *RandomForest) String() string { return dumpTrees(rf.Name(), rf.Trees) }
