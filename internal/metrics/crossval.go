package metrics

import (
	"fmt"
	"math/rand"

	"hypersmurf/internal/data"
	"hypersmurf/internal/models"
)

// StratifiedSplit shuffles every class separately and puts the first
// trainFrac of each into train, the rest into test.
func StratifiedSplit(ds *data.Dataset, trainFrac float64, seed int64) (train, test *data.Dataset) {
	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, idx := range classGroups(ds) {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := int(trainFrac * float64(len(idx)))
		trainIdx = append(trainIdx, idx[:n]...)
		testIdx = append(testIdx, idx[n:]...)
	}
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	return ds.Subset(trainIdx), ds.Subset(testIdx)
}

// StratifiedFolds deals the shuffled instances of every class round-robin
// into k folds.
func StratifiedFolds(ds *data.Dataset, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if ds.Len() < k {
		return nil, fmt.Errorf("%d instances cannot fill %d folds", ds.Len(), k)
	}
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	next := 0
	for _, idx := range classGroups(ds) {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, i := range idx {
			folds[next%k] = append(folds[next%k], i)
			next++
		}
	}
	return folds, nil
}

// classGroups lists instance positions per class value; a numeric class
// yields a single group. Missing classes are skipped.
func classGroups(ds *data.Dataset) [][]int {
	if ds.NumericClass() {
		var idx []int
		for i, in := range ds.Instances {
			if !in.IsMissing(ds.ClassIndex) {
				idx = append(idx, i)
			}
		}
		return [][]int{idx}
	}
	groups := make([][]int, ds.NumClasses())
	for c := range groups {
		groups[c] = ds.IndicesOfClass(c)
	}
	return groups
}

// Scores returns 0/1 labels (class value == positive) and the learner's
// probability of positive for every instance of test.
func Scores(l models.Learner, test *data.Dataset, positive int) (y []int, ps []float64, err error) {
	y = make([]int, 0, test.Len())
	ps = make([]float64, 0, test.Len())
	for i, in := range test.Instances {
		if in.IsMissing(test.ClassIndex) {
			continue
		}
		dist, err := l.Distribution(in)
		if err != nil {
			return nil, nil, fmt.Errorf("instance %d: %w", i, err)
		}
		if positive >= len(dist) {
			return nil, nil, fmt.Errorf("instance %d: distribution has %d values, positive class is %d", i, len(dist), positive)
		}
		label := 0
		if int(test.ClassValue(i)) == positive {
			label = 1
		}
		y = append(y, label)
		ps = append(ps, dist[positive])
	}
	return y, ps, nil
}

// CrossValidate fits a fresh learner per stratified fold and pools the
// held-out scores of class value positive.
func CrossValidate(build models.Builder, ds *data.Dataset, k, positive int, seed int64) (y []int, ps []float64, err error) {
	if ds.NumericClass() {
		return nil, nil, fmt.Errorf("cross-validation scores need a nominal class")
	}
	folds, err := StratifiedFolds(ds, k, seed)
	if err != nil {
		return nil, nil, err
	}
	for f, test := range folds {
		var trainIdx []int
		for g, fold := range folds {
			if g != f {
				trainIdx = append(trainIdx, fold...)
			}
		}
		l := build()
		if err := l.Fit(ds.Subset(trainIdx)); err != nil {
			return nil, nil, fmt.Errorf("fold %d: %w", f, err)
		}
		fy, fps, err := Scores(l, ds.Subset(test), positive)
		if err != nil {
			return nil, nil, fmt.Errorf("fold %d: %w", f, err)
		}
		y = append(y, fy...)
		ps = append(ps, fps...)
	}
	return y, ps, nil
}
