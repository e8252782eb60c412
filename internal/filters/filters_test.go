package filters

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypersmurf/internal/data"
	"hypersmurf/internal/errs"
)

// imbalanced builds minority instances (class "pos") inside [10,11]^2 and
// majority instances (class "neg") inside [0,1]^2.
func imbalanced(t *testing.T, minority, majority int) *data.Dataset {
	t.Helper()
	ds, err := data.New("imb", []data.Attribute{
		data.NumericAttribute("a"),
		data.NumericAttribute("b"),
		data.NominalAttribute("class", "neg", "pos"),
	}, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < majority; i++ {
		require.NoError(t, ds.Add(data.NewInstance(rng.Float64(), rng.Float64(), 0)))
	}
	for i := 0; i < minority; i++ {
		require.NoError(t, ds.Add(data.NewInstance(10+rng.Float64(), 10+rng.Float64(), 1)))
	}
	return ds
}

func TestSMOTEAppendsInterpolatedMinority(t *testing.T) {
	ds := imbalanced(t, 20, 100)
	s := NewSMOTE()
	s.Percentage = 150
	require.NoError(t, s.SetInputFormat(ds))

	out, err := s.Apply(ds)
	require.NoError(t, err)
	require.Equal(t, 150, out.Len())
	assert.Equal(t, []int{100, 50}, out.ClassCounts())
	assert.Equal(t, 120, ds.Len(), "input must not change")

	for i := 0; i < ds.Len(); i++ {
		assert.Equal(t, ds.Instances[i].Values, out.Instances[i].Values)
	}
	for _, in := range out.Instances[ds.Len():] {
		assert.Equal(t, 1.0, in.Values[2])
		for j := 0; j < 2; j++ {
			assert.GreaterOrEqual(t, in.Values[j], 10.0)
			assert.LessOrEqual(t, in.Values[j], 11.0)
		}
	}
}

func TestSMOTEIsSeeded(t *testing.T) {
	ds := imbalanced(t, 15, 40)
	run := func(seed int64) *data.Dataset {
		s := NewSMOTE()
		s.SetSeed(seed)
		require.NoError(t, s.SetInputFormat(ds))
		out, err := s.Apply(ds)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, run(3).Instances, run(3).Instances)
	assert.NotEqual(t, run(3).Instances, run(4).Instances)
}

func TestSMOTEExplicitClassValue(t *testing.T) {
	ds := imbalanced(t, 20, 30)
	s := NewSMOTE()
	s.ClassValue = 1 // "neg"
	s.Percentage = 10
	require.NoError(t, s.SetInputFormat(ds))
	out, err := s.Apply(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{33, 20}, out.ClassCounts())
}

func TestSMOTEInsufficientNeighbors(t *testing.T) {
	ds := imbalanced(t, 5, 30)
	s := NewSMOTE()
	require.NoError(t, s.SetInputFormat(ds))
	_, err := s.Apply(ds)
	var ide *errs.InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, "pos", ide.Class)
	assert.Equal(t, 5, ide.Have)
}

func TestSMOTEOptionErrors(t *testing.T) {
	ds := imbalanced(t, 10, 10)
	cases := map[string]func(s *SMOTE){
		"percentage":        func(s *SMOTE) { s.Percentage = -1 },
		"nearest_neighbors": func(s *SMOTE) { s.NearestNeighbors = 0 },
		"class_value":       func(s *SMOTE) { s.ClassValue = 3 },
	}
	for field, mutate := range cases {
		s := NewSMOTE()
		mutate(s)
		var ce *errs.ConfigError
		require.ErrorAs(t, s.SetInputFormat(ds), &ce, field)
		assert.Equal(t, field, ce.Field)
	}
}

func TestSMOTENominalAttributeVote(t *testing.T) {
	ds, err := data.New("nom", []data.Attribute{
		data.NumericAttribute("a"),
		data.NominalAttribute("color", "red", "blue"),
		data.NominalAttribute("class", "neg", "pos"),
	}, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, ds.Add(data.NewInstance(float64(i), 1, 1)))
		require.NoError(t, ds.Add(data.NewInstance(float64(i), 0, 0)))
		require.NoError(t, ds.Add(data.NewInstance(float64(i), 0, 0)))
	}
	s := NewSMOTE()
	s.NearestNeighbors = 3
	require.NoError(t, s.SetInputFormat(ds))
	out, err := s.Apply(ds)
	require.NoError(t, err)
	for _, in := range out.Instances[ds.Len():] {
		assert.Equal(t, 1.0, in.Values[1])
	}
}

func TestSpreadSubsample(t *testing.T) {
	ds := imbalanced(t, 10, 100)

	for _, tc := range []struct {
		name   string
		spread float64
		max    int
		want   []int
	}{
		{"ratio", 2, 0, []int{20, 10}},
		{"uniform", 1, 0, []int{10, 10}},
		{"max count", 0, 5, []int{5, 5}},
		{"no limit", 0, 0, []int{100, 10}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSpreadSubsample()
			s.DistributionSpread = tc.spread
			s.MaxCount = tc.max
			require.NoError(t, s.SetInputFormat(ds))
			out, err := s.Apply(ds)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.ClassCounts())
		})
	}
}

func TestSpreadSubsampleKeepsOrderAndAdjustsWeights(t *testing.T) {
	ds := imbalanced(t, 10, 100)
	s := NewSpreadSubsample()
	s.DistributionSpread = 2
	s.AdjustWeights = true
	require.NoError(t, s.SetInputFormat(ds))
	out, err := s.Apply(ds)
	require.NoError(t, err)

	w := out.ClassWeights()
	assert.InDelta(t, 100.0, w[0], 1e-9)
	assert.InDelta(t, 10.0, w[1], 1e-9)

	// majority instances were generated first and must stay first
	for i := 0; i < 20; i++ {
		assert.Equal(t, 0.0, out.ClassValue(i))
	}
	for i := 20; i < 30; i++ {
		assert.Equal(t, 1.0, out.ClassValue(i))
	}
}

func TestSpreadSubsampleIsSeeded(t *testing.T) {
	ds := imbalanced(t, 10, 100)
	run := func(seed int64) *data.Dataset {
		s := NewSpreadSubsample()
		s.DistributionSpread = 1
		s.SetSeed(seed)
		require.NoError(t, s.SetInputFormat(ds))
		out, err := s.Apply(ds)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, run(9).Instances, run(9).Instances)
	assert.NotEqual(t, run(9).Instances, run(10).Instances)
}

func TestSpreadSubsampleNoInstances(t *testing.T) {
	ds := imbalanced(t, 0, 0)
	s := NewSpreadSubsample()
	require.NoError(t, s.SetInputFormat(ds))
	_, err := s.Apply(ds)
	var ide *errs.InsufficientDataError
	assert.ErrorAs(t, err, &ide)
}

func TestNumericClassPassesThrough(t *testing.T) {
	ds, err := data.New("reg", []data.Attribute{data.NumericAttribute("x"), data.NumericAttribute("y")}, 1)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, ds.Add(data.NewInstance(float64(i), float64(i*i))))
	}
	m := NewMultiFilter(NewSMOTE(), NewSpreadSubsample())
	require.NoError(t, m.SetInputFormat(ds))
	out, err := m.Apply(ds)
	require.NoError(t, err)
	assert.Equal(t, ds.Instances, out.Instances)
}

func TestMultiFilterAppliesInOrder(t *testing.T) {
	ds := imbalanced(t, 10, 100)
	smote := NewSMOTE()
	spread := NewSpreadSubsample()
	spread.DistributionSpread = 1
	m := NewMultiFilter(smote, spread)
	require.NoError(t, m.SetInputFormat(ds))

	out, err := m.Apply(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 20}, out.ClassCounts())
}

func TestMultiFilterRequiresInputFormat(t *testing.T) {
	ds := imbalanced(t, 10, 10)
	_, err := NewMultiFilter(NewSMOTE()).Apply(ds)
	assert.ErrorIs(t, err, ErrNoInputFormat)

	var ce *errs.ConfigError
	bad := NewSpreadSubsample()
	bad.MaxCount = -1
	assert.ErrorAs(t, NewMultiFilter(NewSMOTE(), bad).SetInputFormat(ds), &ce)
}
