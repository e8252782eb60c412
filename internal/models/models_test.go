package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypersmurf/internal/data"
)

// stepData has class 1 exactly when x > 5; z is noise.
func stepData(t *testing.T, n int, seed int64) *data.Dataset {
	t.Helper()
	ds, err := data.New("step", []data.Attribute{
		data.NumericAttribute("x"),
		data.NumericAttribute("z"),
		data.NominalAttribute("y", "neg", "pos"),
	}, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		x := rng.Float64() * 10
		y := 0.0
		if x > 5 {
			y = 1
		}
		require.NoError(t, ds.Add(data.NewInstance(x, rng.Float64(), y)))
	}
	return ds
}

func regressionData(t *testing.T, n int) *data.Dataset {
	t.Helper()
	ds, err := data.New("reg", []data.Attribute{data.NumericAttribute("x"), data.NumericAttribute("y")}, 1)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n) * 10
		y := 1.0
		if x > 5 {
			y = 3
		}
		require.NoError(t, ds.Add(data.NewInstance(x, y)))
	}
	return ds
}

func TestDecisionTreeSeparatesStep(t *testing.T) {
	ds := stepData(t, 300, 1)
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(ds))

	for _, x := range []float64{0.5, 2, 4.5, 5.5, 8, 9.9} {
		pred, err := dt.Predict(data.NewInstance(x, 0.5, data.Missing()))
		require.NoError(t, err)
		want := 0.0
		if x > 5 {
			want = 1
		}
		assert.Equal(t, want, pred, "x=%v", x)
	}
	dist, err := dt.Distribution(data.NewInstance(9, 0.1, data.Missing()))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist[0]+dist[1], 1e-9)
	assert.Contains(t, dt.String(), "x <= ")
}

func TestDecisionTreeMissingValueFollowsHeavierBranch(t *testing.T) {
	ds := stepData(t, 200, 2)
	dt := NewDecisionTree()
	dt.MaxDepth = 1
	require.NoError(t, dt.Fit(ds))
	_, err := dt.Distribution(data.NewInstance(data.Missing(), data.Missing(), data.Missing()))
	assert.NoError(t, err)
}

func TestDecisionTreeRegression(t *testing.T) {
	ds := regressionData(t, 100)
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(ds))
	lo, err := dt.Predict(data.NewInstance(1, data.Missing()))
	require.NoError(t, err)
	hi, err := dt.Predict(data.NewInstance(9, data.Missing()))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lo, 1e-9)
	assert.InDelta(t, 3.0, hi, 1e-9)
}

func TestUnfittedModelsFail(t *testing.T) {
	in := data.NewInstance(1, 2, 0)
	for _, m := range []Learner{NewDecisionTree(), NewRandomForest(), NewBagging(), NewGradientBoosting()} {
		_, err := m.Distribution(in)
		assert.ErrorIs(t, err, ErrNotFitted, m.Name())
	}
}

func TestRandomForestIsSeededAndSlotIndependent(t *testing.T) {
	ds := stepData(t, 200, 3)
	fit := func(slots int, seed int64) *RandomForest {
		rf := NewRandomForest()
		rf.NumTrees = 8
		rf.Slots = slots
		rf.SetSeed(seed)
		require.NoError(t, rf.Fit(ds))
		return rf
	}
	a, b, c := fit(1, 11), fit(4, 11), fit(1, 12)
	probe := data.NewInstance(5.2, 0.3, data.Missing())
	pa, err := a.Distribution(probe)
	require.NoError(t, err)
	pb, err := b.Distribution(probe)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())
	assert.Contains(t, a.String(), "Tree 7")
}

func TestBaggingPredictsStep(t *testing.T) {
	ds := stepData(t, 200, 4)
	bg := NewBagging()
	bg.NumTrees = 5
	require.NoError(t, bg.Fit(ds))
	pred, err := bg.Predict(data.NewInstance(9, 0.5, data.Missing()))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred)
}

func TestGradientBoostingBinaryAndNumeric(t *testing.T) {
	gb := NewGradientBoosting()
	require.NoError(t, gb.Fit(stepData(t, 300, 5)))
	dist, err := gb.Distribution(data.NewInstance(8, 0.5, data.Missing()))
	require.NoError(t, err)
	require.Len(t, dist, 2)
	assert.Greater(t, dist[1], 0.5)
	assert.InDelta(t, 1.0, dist[0]+dist[1], 1e-12)

	reg := NewGradientBoosting()
	reg.NumEstimators = 200
	require.NoError(t, reg.Fit(regressionData(t, 100)))
	hi, err := reg.Predict(data.NewInstance(9, data.Missing()))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, hi, 0.1)
	assert.Contains(t, reg.String(), "stumps")
}

func TestGradientBoostingRejectsMulticlass(t *testing.T) {
	ds, err := data.New("m", []data.Attribute{data.NumericAttribute("x"), data.NominalAttribute("y", "a", "b", "c")}, 1)
	require.NoError(t, err)
	require.NoError(t, ds.Add(data.NewInstance(1, 2)))
	assert.Error(t, NewGradientBoosting().Fit(ds))
}

func TestNewBuilder(t *testing.T) {
	p := TreeParams{NumTrees: 3, MaxDepth: 4, NumFeatures: 1, Slots: 2}
	for sel, name := range map[string]string{"": "RandomForest", "rf": "RandomForest", "bagging": "Bagging", "dt": "DecisionTree", "gb": "GradientBoosting"} {
		b, err := NewBuilder(sel, p)
		require.NoError(t, err)
		assert.Equal(t, name, b().Name())
	}
	b, _ := NewBuilder("rf", p)
	rf := b().(*RandomForest)
	assert.Equal(t, 3, rf.NumTrees)
	assert.Equal(t, 4, rf.MaxDepth)
	assert.Equal(t, 1, rf.MaxFeatures)
	assert.Equal(t, 2, rf.Slots)

	_, err := NewBuilder("svm", p)
	assert.Error(t, err)
}
