package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"hypersmurf/internal/data"
)

var ErrNotFitted = errors.New("model not fitted")

type DTNode struct {
	Feature     int
	Threshold   float64
	Left        *DTNode
	Right       *DTNode
	IsLeaf      bool
	MissingLeft bool
	Dist        []float64
	Value       float64
	Weight      float64
}

// DecisionTree is a weighted CART tree. Nominal targets use gini impurity
// and leaves hold class distributions, numeric targets use squared error and
// leaves hold the weighted mean. Nominal attributes are split on their label
// index. MaxDepth 0 grows until leaves are pure or too small.
type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Root               *DTNode

	header *data.Dataset
	seed   int64
	rng    *rand.Rand
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MinSamplesSplit: 2, MaxThresholdsPerFe: 64, seed: 1}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) SetSeed(seed int64) { dt.seed = seed }

func (dt *DecisionTree) Fit(ds *data.Dataset) error {
	if ds.Len() == 0 {
		return errors.New("decision tree: empty training set")
	}
	dt.header = ds.Empty()
	dt.rng = rand.New(rand.NewSource(dt.seed))
	idx := make([]int, 0, ds.Len())
	for i, in := range ds.Instances {
		if !in.IsMissing(ds.ClassIndex) && in.Weight > 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return errors.New("decision tree: no instance with a class value and positive weight")
	}
	dt.Root = dt.build(ds, idx, 0)
	dt.rng = nil
	return nil
}

func (dt *DecisionTree) Distribution(in data.Instance) ([]float64, error) {
	leaf, err := dt.leaf(in)
	if err != nil {
		return nil, err
	}
	if dt.header.NumericClass() {
		return []float64{leaf.Value}, nil
	}
	out := make([]float64, len(leaf.Dist))
	copy(out, leaf.Dist)
	return out, nil
}

func (dt *DecisionTree) Predict(in data.Instance) (float64, error) {
	leaf, err := dt.leaf(in)
	if err != nil {
		return 0, err
	}
	if dt.header.NumericClass() {
		return leaf.Value, nil
	}
	return float64(argmax(leaf.Dist)), nil
}

func (dt *DecisionTree) leaf(in data.Instance) (*DTNode, error) {
	n := dt.Root
	if n == nil {
		return nil, ErrNotFitted
	}
	if len(in.Values) != dt.header.NumAttributes() {
		return nil, fmt.Errorf("instance has %d values, model expects %d", len(in.Values), dt.header.NumAttributes())
	}
	for !n.IsLeaf {
		v := in.Values[n.Feature]
		goLeft := v <= n.Threshold
		if data.IsMissing(v) {
			goLeft = n.MissingLeft
		}
		if goLeft {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n, nil
}

func (dt *DecisionTree) build(ds *data.Dataset, idx []int, depth int) *DTNode {
	node := dt.makeLeaf(ds, idx)
	if len(idx) < dt.MinSamplesSplit || (dt.MaxDepth > 0 && depth >= dt.MaxDepth) || dt.pure(ds, idx, node) {
		return node
	}

	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	for _, f := range dt.pickFeatures(ds) {
		for _, thr := range dt.candidateThresholds(ds, idx, f) {
			lIdx, rIdx, _ := splitIdx(ds, idx, f, thr)
			if len(lIdx) == 0 || len(rIdx) == 0 {
				continue
			}
			imp := impurity(ds, lIdx) + impurity(ds, rIdx)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
			}
		}
	}
	if bestFeature == -1 {
		return node
	}

	lIdx, rIdx, missing := splitIdx(ds, idx, bestFeature, bestThr)
	node.MissingLeft = totalWeight(ds, lIdx) >= totalWeight(ds, rIdx)
	if node.MissingLeft {
		lIdx = append(lIdx, missing...)
	} else {
		rIdx = append(rIdx, missing...)
	}
	node.IsLeaf = false
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(ds, lIdx, depth+1)
	node.Right = dt.build(ds, rIdx, depth+1)
	return node
}

func (dt *DecisionTree) makeLeaf(ds *data.Dataset, idx []int) *DTNode {
	node := &DTNode{IsLeaf: true, Weight: totalWeight(ds, idx)}
	if ds.NumericClass() {
		sum := 0.0
		for _, i := range idx {
			in := ds.Instances[i]
			sum += in.Weight * in.Values[ds.ClassIndex]
		}
		if node.Weight > 0 {
			node.Value = sum / node.Weight
		}
		return node
	}
	node.Dist = classDist(ds, idx)
	if node.Weight > 0 {
		for c := range node.Dist {
			node.Dist[c] /= node.Weight
		}
	}
	return node
}

func (dt *DecisionTree) pure(ds *data.Dataset, idx []int, node *DTNode) bool {
	if ds.NumericClass() {
		return impurity(ds, idx) <= 1e-12
	}
	for _, p := range node.Dist {
		if p > 0 && p < 1 {
			return false
		}
	}
	return true
}

func classDist(ds *data.Dataset, idx []int) []float64 {
	dist := make([]float64, ds.NumClasses())
	for _, i := range idx {
		in := ds.Instances[i]
		dist[int(in.Values[ds.ClassIndex])] += in.Weight
	}
	return dist
}

// impurity is weighted gini (nominal) or weighted squared error (numeric),
// scaled by the side weight so that sides can be summed.
func impurity(ds *data.Dataset, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	w := totalWeight(ds, idx)
	if w == 0 {
		return 0
	}
	if ds.NumericClass() {
		mean := 0.0
		for _, i := range idx {
			in := ds.Instances[i]
			mean += in.Weight * in.Values[ds.ClassIndex]
		}
		mean /= w
		sse := 0.0
		for _, i := range idx {
			in := ds.Instances[i]
			d := in.Values[ds.ClassIndex] - mean
			sse += in.Weight * d * d
		}
		return sse
	}
	g := 1.0
	for _, c := range classDist(ds, idx) {
		p := c / w
		g -= p * p
	}
	return w * g
}

func totalWeight(ds *data.Dataset, idx []int) float64 {
	w := 0.0
	for _, i := range idx {
		w += ds.Instances[i].Weight
	}
	return w
}

func splitIdx(ds *data.Dataset, idx []int, f int, thr float64) (l, r, missing []int) {
	l = make([]int, 0, len(idx))
	r = make([]int, 0, len(idx))
	for _, i := range idx {
		v := ds.Instances[i].Values[f]
		switch {
		case data.IsMissing(v):
			missing = append(missing, i)
		case v <= thr:
			l = append(l, i)
		default:
			r = append(r, i)
		}
	}
	return l, r, missing
}

func (dt *DecisionTree) candidateThresholds(ds *data.Dataset, idx []int, f int) []float64 {
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if v := ds.Instances[i].Values[f]; !data.IsMissing(v) {
			values = append(values, v)
		}
	}
	dt.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	m := len(values)
	if dt.MaxThresholdsPerFe > 0 && dt.MaxThresholdsPerFe < m {
		m = dt.MaxThresholdsPerFe
	}
	return values[:m]
}

func (dt *DecisionTree) pickFeatures(ds *data.Dataset) []int {
	feats := make([]int, 0, ds.NumAttributes()-1)
	for j := range ds.Attributes {
		if j != ds.ClassIndex {
			feats = append(feats, j)
		}
	}
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= len(feats) {
		return feats
	}
	dt.rng.Shuffle(len(feats), func(i, j int) { feats[i], feats[j] = feats[j], feats[i] })
	return feats[:dt.MaxFeatures]
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func (dt *DecisionTree) String() string {
	if dt.Root == nil {
		return "DecisionTree: not fitted"
	}
	var sb strings.Builder
	sb.WriteString("DecisionTree\n")
	dt.writeNode(&sb, dt.Root, 0)
	return sb.String()
}

func (dt *DecisionTree) writeNode(sb *strings.Builder, n *DTNode, depth int) {
	indent := strings.Repeat("|   ", depth)
	if n.IsLeaf {
		fmt.Fprintf(sb, "%s=> %s (%.1f)\n", indent, dt.leafLabel(n), n.Weight)
		return
	}
	name := dt.header.Attributes[n.Feature].Name
	fmt.Fprintf(sb, "%s%s <= %g\n", indent, name, n.Threshold)
	dt.writeNode(sb, n.Left, depth+1)
	fmt.Fprintf(sb, "%s%s > %g\n", indent, name, n.Threshold)
	dt.writeNode(sb, n.Right, depth+1)
}

func (dt *DecisionTree) leafLabel(n *DTNode) string {
	if dt.header.NumericClass() {
		return fmt.Sprintf("%g", n.Value)
	}
	return dt.header.ClassAttribute().Values[argmax(n.Dist)]
}
