package filters

import (
	"math/rand"
	"sort"

	"hypersmurf/internal/data"
	"hypersmurf/internal/errs"
)

// SpreadSubsample randomly drops instances of classes that exceed the
// allowed size. DistributionSpread caps the ratio between any class and the
// smallest non-empty class (0 = no cap, 1 = uniform); MaxCount caps every
// class (0 = no cap). With AdjustWeights each class keeps its total weight.
type SpreadSubsample struct {
	DistributionSpread float64
	MaxCount           int
	AdjustWeights      bool
	Seed               int64

	header *data.Dataset
}

func NewSpreadSubsample() *SpreadSubsample {
	return &SpreadSubsample{Seed: 1}
}

func (s *SpreadSubsample) Name() string { return "SpreadSubsample" }

func (s *SpreadSubsample) SetSeed(seed int64) { s.Seed = seed }

func (s *SpreadSubsample) SetInputFormat(format *data.Dataset) error {
	if s.DistributionSpread < 0 {
		return &errs.ConfigError{Field: "distribution_spread", Reason: "must be >= 0"}
	}
	if s.MaxCount < 0 {
		return &errs.ConfigError{Field: "max_count", Reason: "must be >= 0"}
	}
	s.header = format.Empty()
	return nil
}

func (s *SpreadSubsample) Apply(ds *data.Dataset) (*data.Dataset, error) {
	if err := checkFormat(s.header, ds); err != nil {
		return nil, err
	}
	if ds.NumericClass() {
		return ds.Clone(), nil
	}
	counts := ds.ClassCounts()
	min := 0
	for _, c := range counts {
		if c > 0 && (min == 0 || c < min) {
			min = c
		}
	}
	if min == 0 {
		return nil, &errs.InsufficientDataError{Class: ds.ClassAttribute().Name, Need: 1, Reason: "no class value has instances"}
	}

	rng := rand.New(rand.NewSource(s.Seed))
	keep := make([]bool, ds.Len())
	for c, cnt := range counts {
		limit := s.limit(cnt, min)
		idx := ds.IndicesOfClass(c)
		if cnt > limit {
			rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
			idx = idx[:limit]
			sort.Ints(idx)
		}
		for _, i := range idx {
			keep[i] = true
		}
	}

	out := ds.Empty()
	for i, in := range ds.Instances {
		if keep[i] {
			out.Instances = append(out.Instances, in.Copy())
		}
	}
	if s.AdjustWeights {
		before := ds.ClassWeights()
		after := out.ClassWeights()
		for i := range out.Instances {
			c := int(out.ClassValue(i))
			if after[c] > 0 {
				out.Instances[i].Weight *= before[c] / after[c]
			}
		}
	}
	return out, nil
}

func (s *SpreadSubsample) limit(count, min int) int {
	limit := count
	if s.DistributionSpread > 0 {
		if l := int(float64(min) * s.DistributionSpread); l < limit {
			limit = l
		}
	}
	if s.MaxCount > 0 && s.MaxCount < limit {
		limit = s.MaxCount
	}
	return limit
}
