package filters

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"hypersmurf/internal/data"
	"hypersmurf/internal/errs"
)

// SMOTE appends ceil(n*Percentage/100) synthetic instances of the target
// class, n being its instance count. Each synthetic instance lies on the
// segment between a seed instance and one of its NearestNeighbors nearest
// same-class neighbors. ClassValue is the 1-based label index to oversample;
// 0 picks the smallest non-empty class.
type SMOTE struct {
	Percentage       float64
	NearestNeighbors int
	ClassValue       int
	Seed             int64

	header *data.Dataset
}

func NewSMOTE() *SMOTE {
	return &SMOTE{Percentage: 100, NearestNeighbors: 5, Seed: 1}
}

func (s *SMOTE) Name() string { return "SMOTE" }

func (s *SMOTE) SetSeed(seed int64) { s.Seed = seed }

func (s *SMOTE) SetInputFormat(format *data.Dataset) error {
	if s.Percentage < 0 {
		return &errs.ConfigError{Field: "percentage", Reason: "must be >= 0"}
	}
	if s.NearestNeighbors < 1 {
		return &errs.ConfigError{Field: "nearest_neighbors", Reason: "at least 1 neighbor necessary"}
	}
	if s.ClassValue < 0 || (!format.NumericClass() && s.ClassValue > format.NumClasses()) {
		return &errs.ConfigError{Field: "class_value", Reason: "must be 0 (auto) or a 1-based class value index"}
	}
	s.header = format.Empty()
	return nil
}

func (s *SMOTE) Apply(ds *data.Dataset) (*data.Dataset, error) {
	if err := checkFormat(s.header, ds); err != nil {
		return nil, err
	}
	out := ds.Clone()
	if ds.NumericClass() || s.Percentage == 0 {
		return out, nil
	}
	target, err := s.targetClass(ds)
	if err != nil {
		return nil, err
	}
	minority := ds.IndicesOfClass(target)
	n := len(minority)
	if s.NearestNeighbors >= n {
		return nil, &errs.InsufficientDataError{
			Class:  ds.ClassAttribute().Values[target],
			Have:   n,
			Need:   s.NearestNeighbors + 1,
			Reason: "SMOTE needs more minority instances than nearest neighbors",
		}
	}

	total := int(math.Ceil(float64(n)*s.Percentage/100 - 1e-9))
	rng := rand.New(rand.NewSource(s.Seed))
	nn := newNeighborIndex(ds, minority, s.NearestNeighbors)

	// full rounds cycle over every minority instance, the remainder uses a
	// random subset without replacement
	seeds := make([]int, 0, total)
	for len(seeds)+n <= total {
		for k := 0; k < n; k++ {
			seeds = append(seeds, k)
		}
	}
	if rem := total - len(seeds); rem > 0 {
		seeds = append(seeds, rng.Perm(n)[:rem]...)
	}

	for _, k := range seeds {
		neighbors := nn.neighbors(k)
		nb := neighbors[rng.Intn(len(neighbors))]
		gap := rng.Float64()
		out.Instances = append(out.Instances, s.synthesize(ds, minority, k, nb, neighbors, gap, target))
	}
	return out, nil
}

func (s *SMOTE) synthesize(ds *data.Dataset, minority []int, k, nb int, neighbors []int, gap float64, target int) data.Instance {
	seed := ds.Instances[minority[k]]
	other := ds.Instances[minority[nb]]
	values := make([]float64, ds.NumAttributes())
	for j, a := range ds.Attributes {
		switch {
		case j == ds.ClassIndex:
			values[j] = float64(target)
		case a.IsNominal():
			values[j] = voteNominal(ds, minority, k, neighbors, j)
		case data.IsMissing(seed.Values[j]):
			values[j] = data.Missing()
		case data.IsMissing(other.Values[j]):
			values[j] = seed.Values[j]
		default:
			values[j] = seed.Values[j] + gap*(other.Values[j]-seed.Values[j])
		}
	}
	return data.NewInstance(values...)
}

// voteNominal takes the most frequent value among the seed and its
// neighbors; ties go to the seed's value, then to the lowest label index.
func voteNominal(ds *data.Dataset, minority []int, k int, neighbors []int, j int) float64 {
	counts := make([]int, ds.Attributes[j].NumValues())
	seedVal := ds.Instances[minority[k]].Values[j]
	if !data.IsMissing(seedVal) {
		counts[int(seedVal)]++
	}
	for _, nb := range neighbors {
		if v := ds.Instances[minority[nb]].Values[j]; !data.IsMissing(v) {
			counts[int(v)]++
		}
	}
	best := -1
	for c, cnt := range counts {
		if cnt == 0 {
			continue
		}
		if best < 0 || cnt > counts[best] {
			best = c
		}
	}
	if best < 0 {
		return data.Missing()
	}
	if !data.IsMissing(seedVal) && counts[int(seedVal)] == counts[best] {
		return seedVal
	}
	return float64(best)
}

func (s *SMOTE) targetClass(ds *data.Dataset) (int, error) {
	if s.ClassValue > 0 {
		return s.ClassValue - 1, nil
	}
	counts := ds.ClassCounts()
	target := -1
	for c, cnt := range counts {
		if cnt > 0 && (target < 0 || cnt < counts[target]) {
			target = c
		}
	}
	if target < 0 {
		return 0, &errs.InsufficientDataError{Class: ds.ClassAttribute().Name, Need: 1, Reason: "no class value has instances"}
	}
	return target, nil
}

// neighborIndex lazily computes the nearest same-class neighbors of each
// minority instance, by position in the minority slice.
type neighborIndex struct {
	ds       *data.Dataset
	minority []int
	k        int
	ranges   []float64
	cache    [][]int
}

func newNeighborIndex(ds *data.Dataset, minority []int, k int) *neighborIndex {
	ni := &neighborIndex{ds: ds, minority: minority, k: k, cache: make([][]int, len(minority))}
	ni.ranges = make([]float64, ds.NumAttributes())
	col := make([]float64, 0, ds.Len())
	for j, a := range ds.Attributes {
		if j == ds.ClassIndex || a.IsNominal() {
			continue
		}
		col = col[:0]
		for _, in := range ds.Instances {
			if v := in.Values[j]; !data.IsMissing(v) {
				col = append(col, v)
			}
		}
		if len(col) > 0 {
			ni.ranges[j] = floats.Max(col) - floats.Min(col)
		}
	}
	return ni
}

func (ni *neighborIndex) neighbors(k int) []int {
	if ni.cache[k] != nil {
		return ni.cache[k]
	}
	type cand struct {
		pos  int
		dist float64
	}
	cands := make([]cand, 0, len(ni.minority)-1)
	a := ni.ds.Instances[ni.minority[k]]
	for p, i := range ni.minority {
		if p == k {
			continue
		}
		cands = append(cands, cand{pos: p, dist: ni.distance(a, ni.ds.Instances[i])})
	}
	sort.SliceStable(cands, func(x, y int) bool { return cands[x].dist < cands[y].dist })
	out := make([]int, ni.k)
	for i := range out {
		out[i] = cands[i].pos
	}
	ni.cache[k] = out
	return out
}

// distance is Euclidean over range-scaled numeric differences and 0/1
// nominal mismatches; a missing value on either side counts as 1.
func (ni *neighborIndex) distance(a, b data.Instance) float64 {
	diffs := make([]float64, 0, len(a.Values))
	for j, attr := range ni.ds.Attributes {
		if j == ni.ds.ClassIndex {
			continue
		}
		va, vb := a.Values[j], b.Values[j]
		switch {
		case data.IsMissing(va) || data.IsMissing(vb):
			diffs = append(diffs, 1)
		case attr.IsNominal():
			if va != vb {
				diffs = append(diffs, 1)
			} else {
				diffs = append(diffs, 0)
			}
		case ni.ranges[j] == 0:
			diffs = append(diffs, 0)
		default:
			diffs = append(diffs, (va-vb)/ni.ranges[j])
		}
	}
	if len(diffs) == 0 {
		return 0
	}
	return floats.Norm(diffs, 2)
}
