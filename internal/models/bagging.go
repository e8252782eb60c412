package models

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/sync/errgroup"

	"hypersmurf/internal/data"
)

type Bagging struct {
	NumTrees           int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	Slots              int
	Trees              []*DecisionTree

	seed int64
}

func NewBagging() *Bagging {
	return &Bagging{NumTrees: 10, MinSamples: 2, MaxThresholdsPerFe: 32, Slots: 1, seed: 1}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) SetSeed(seed int64) { bg.seed = seed }

func (bg *Bagging) Fit(ds *data.Dataset) error {
	trees, err := growTrees(ds, bg.NumTrees, bg.Slots, bg.seed, func() *DecisionTree {
		dt := NewDecisionTree()
		dt.MaxDepth = bg.MaxDepth
		dt.MinSamplesSplit = bg.MinSamples
		dt.MaxThresholdsPerFe = bg.MaxThresholdsPerFe
		return dt
	})
	if err != nil {
		return fmt.Errorf("bagging: %w", err)
	}
	bg.Trees = trees
	return nil
}

func (bg *Bagging) Distribution(in data.Instance) ([]float64, error) {
	return averageDistribution(bg.Trees, in)
}

func (bg *Bagging) Predict(in data.Instance) (float64, error) {
	return predictFromDistribution(bg.Trees, in)
}

func (bg *Bagging) String() string { return dumpTrees(bg.Name(), bg.Trees) }

// growTrees fits n trees on bootstrap samples of ds, at most slots at a
// time. Tree seeds and bootstrap indices are drawn up front so the result
// does not depend on scheduling.
func growTrees(ds *data.Dataset, n, slots int, seed int64, newTree func() *DecisionTree) ([]*DecisionTree, error) {
	if n <= 0 {
		n = 10
	}
	if ds.Len() == 0 {
		return nil, errors.New("empty training set")
	}
	if slots <= 0 {
		slots = 1
	}
	rng := rand.New(rand.NewSource(seed))
	trees := make([]*DecisionTree, n)
	samples := make([]*data.Dataset, n)
	for k := 0; k < n; k++ {
		trees[k] = newTree()
		trees[k].SetSeed(rng.Int63())
		samples[k] = bootstrap(ds, rng)
	}

	var g errgroup.Group
	g.SetLimit(slots)
	for k := range trees {
		g.Go(func() error {
			if err := trees[k].Fit(samples[k]); err != nil {
				return fmt.Errorf("tree %d: %w", k, err)
			}
			samples[k] = nil
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// bootstrap draws len(ds) instances with replacement. Instances share their
// value slices with ds.
func bootstrap(ds *data.Dataset, rng *rand.Rand) *data.Dataset {
	n := ds.Len()
	out := ds.Empty()
	out.Instances = make([]data.Instance, n)
	for i := 0; i < n; i++ {
		out.Instances[i] = ds.Instances[rng.Intn(n)]
	}
	return out
}

func averageDistribution(trees []*DecisionTree, in data.Instance) ([]float64, error) {
	if len(trees) == 0 {
		return nil, ErrNotFitted
	}
	var out []float64
	for _, dt := range trees {
		p, err := dt.Distribution(in)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make([]float64, len(p))
		}
		for i := range p {
			out[i] += p[i]
		}
	}
	m := float64(len(trees))
	for i := range out {
		out[i] /= m
	}
	return out, nil
}

func predictFromDistribution(trees []*DecisionTree, in data.Instance) (float64, error) {
	p, err := averageDistribution(trees, in)
	if err != nil {
		return 0, err
	}
	if trees[0].header.NumericClass() {
		return p[0], nil
	}
	return float64(argmax(p)), nil
}

func dumpTrees(name string, trees []*DecisionTree) string {
	if len(trees) == 0 {
		return name + ": not fitted"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s of %d trees\n\n", name, len(trees))
	for i, dt := range trees {
		fmt.Fprintf(&sb, "Tree %d\n", i)
		dt.writeNode(&sb, dt.Root, 0)
		sb.WriteString("\n")
	}
	return sb.String()
}
