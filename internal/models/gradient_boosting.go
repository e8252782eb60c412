package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"hypersmurf/internal/data"
)

type gbTree struct {
	Feature     int
	Threshold   float64
	LeftVal     float64
	RightVal    float64
	MissingLeft bool
}

func (t gbTree) value(in data.Instance) float64 {
	v := in.Values[t.Feature]
	if data.IsMissing(v) {
		if t.MissingLeft {
			return t.LeftVal
		}
		return t.RightVal
	}
	if v <= t.Threshold {
		return t.LeftVal
	}
	return t.RightVal
}

// GradientBoosting fits regression stumps on residuals. A two-valued
// nominal target uses the logistic loss, a numeric target least squares.
type GradientBoosting struct {
	NumEstimators      int
	LearningRate       float64
	MinSamples         int
	MaxThresholdsPerFe int
	Init               float64
	Trees              []gbTree

	header *data.Dataset
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NumEstimators: 50, LearningRate: 0.1, MinSamples: 1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(ds *data.Dataset) error {
	if !ds.NumericClass() && ds.NumClasses() != 2 {
		return fmt.Errorf("gradient boosting: needs a binary or numeric class, %q has %d values", ds.ClassAttribute().Name, ds.NumClasses())
	}
	rows := make([]data.Instance, 0, ds.Len())
	for _, in := range ds.Instances {
		if !in.IsMissing(ds.ClassIndex) {
			rows = append(rows, in)
		}
	}
	n := len(rows)
	if n == 0 {
		return errors.New("gradient boosting: empty training set")
	}
	gb.header = ds.Empty()
	gb.Trees = nil
	numeric := ds.NumericClass()
	y := make([]float64, n)
	for i, in := range rows {
		y[i] = in.Values[ds.ClassIndex]
	}

	if numeric {
		sum := 0.0
		for i := range y {
			sum += y[i]
		}
		gb.Init = sum / float64(n)
	} else {
		pos := 0.0
		for i := range y {
			pos += y[i]
		}
		base := pos / float64(n)
		if base <= 1e-3 {
			base = 1e-3
		}
		if base >= 1-1e-3 {
			base = 1 - 1e-3
		}
		gb.Init = math.Log(base / (1.0 - base))
	}
	F := make([]float64, n)
	for i := range F {
		F[i] = gb.Init
	}

	r := make([]float64, n)
	for m := 0; m < gb.NumEstimators; m++ {
		for i := 0; i < n; i++ {
			if numeric {
				r[i] = y[i] - F[i]
			} else {
				r[i] = y[i] - sigmoid(F[i])
			}
		}

		best := gbTree{Feature: -1}
		bestSSE := math.MaxFloat64
		for j := range ds.Attributes {
			if j == ds.ClassIndex {
				continue
			}
			for _, thr := range gbCandidateThresholds(rows, j, gb.MaxThresholdsPerFe) {
				t, sse, ok := fitStump(rows, r, j, thr, gb.MinSamples)
				if ok && sse < bestSSE {
					bestSSE = sse
					best = t
				}
			}
		}
		if best.Feature == -1 {
			break
		}
		gb.Trees = append(gb.Trees, best)
		for i := 0; i < n; i++ {
			F[i] += gb.LearningRate * best.value(rows[i])
		}
	}
	return nil
}

func fitStump(rows []data.Instance, r []float64, j int, thr float64, minSamples int) (gbTree, float64, bool) {
	leftSum, leftCount := 0.0, 0.0
	rightSum, rightCount := 0.0, 0.0
	for i, in := range rows {
		v := in.Values[j]
		if data.IsMissing(v) {
			continue
		}
		if v <= thr {
			leftSum += r[i]
			leftCount++
		} else {
			rightSum += r[i]
			rightCount++
		}
	}
	if leftCount == 0 || rightCount == 0 {
		return gbTree{}, 0, false
	}
	if int(leftCount) < minSamples || int(rightCount) < minSamples {
		return gbTree{}, 0, false
	}
	t := gbTree{
		Feature:     j,
		Threshold:   thr,
		LeftVal:     leftSum / leftCount,
		RightVal:    rightSum / rightCount,
		MissingLeft: leftCount >= rightCount,
	}
	sse := 0.0
	for i, in := range rows {
		d := r[i] - t.value(in)
		sse += d * d
	}
	return t, sse, true
}

func (gb *GradientBoosting) score(in data.Instance) (float64, error) {
	if gb.header == nil {
		return 0, ErrNotFitted
	}
	if len(in.Values) != gb.header.NumAttributes() {
		return 0, fmt.Errorf("instance has %d values, model expects %d", len(in.Values), gb.header.NumAttributes())
	}
	f := gb.Init
	for _, t := range gb.Trees {
		f += gb.LearningRate * t.value(in)
	}
	return f, nil
}

func (gb *GradientBoosting) Distribution(in data.Instance) ([]float64, error) {
	f, err := gb.score(in)
	if err != nil {
		return nil, err
	}
	if gb.header.NumericClass() {
		return []float64{f}, nil
	}
	p := sigmoid(f)
	return []float64{1 - p, p}, nil
}

func (gb *GradientBoosting) Predict(in data.Instance) (float64, error) {
	f, err := gb.score(in)
	if err != nil {
		return 0, err
	}
	if gb.header.NumericClass() {
		return f, nil
	}
	if sigmoid(f) >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (gb *GradientBoosting) String() string {
	if gb.header == nil {
		return "GradientBoosting: not fitted"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "GradientBoosting: init %g, %d stumps, learning rate %g\n", gb.Init, len(gb.Trees), gb.LearningRate)
	for i, t := range gb.Trees {
		fmt.Fprintf(&sb, "%3d: %s <= %g ? %g : %g\n", i, gb.header.Attributes[t.Feature].Name, t.Threshold, t.LeftVal, t.RightVal)
	}
	return sb.String()
}

func gbCandidateThresholds(rows []data.Instance, j int, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	vals := make([]float64, 0, len(rows))
	for _, in := range rows {
		if v := in.Values[j]; !data.IsMissing(v) {
			vals = append(vals, v)
		}
	}
	n := len(vals)
	if n == 0 {
		return nil
	}
	sort.Float64s(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if idx <= 0 || idx >= n {
			continue
		}
		thr := vals[idx]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[i]
		}
		out = append(out, sum/float64(n))
	}
	return out
}
