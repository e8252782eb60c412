// Package metrics scores binary predictions: y holds 0/1 labels and ps the
// predicted probability of label 1.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
	PRAUC     float64 `json:"pr_auc"`
	Threshold float64 `json:"threshold"`
}

func Evaluate(y []int, ps []float64, thr float64) Summary {
	p, r, f1 := PrecisionRecallF1(y, ps, thr)
	return Summary{
		Accuracy:  Accuracy(y, ToPredictions(ps, thr)),
		Precision: p,
		Recall:    r,
		F1:        f1,
		ROCAUC:    ROCAUC(y, ps),
		PRAUC:     PRAUC(y, ps),
		Threshold: thr,
	}
}

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

func ToPredictions(ps []float64, thr float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= thr {
			out[i] = 1
		}
	}
	return out
}

func Confusion(y []int, ps []float64, thr float64) (tp, fp, tn, fn int) {
	for i := range y {
		pred := ps[i] >= thr
		switch {
		case pred && y[i] == 1:
			tp++
		case pred:
			fp++
		case y[i] == 1:
			fn++
		default:
			tn++
		}
	}
	return
}

func PrecisionRecallF1(y []int, ps []float64, thr float64) (precision, recall, f1 float64) {
	tp, fp, _, fn := Confusion(y, ps, thr)
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

// ROCAUC is the area under the ROC curve, 0 when only one label occurs.
func ROCAUC(y []int, ps []float64) float64 {
	var pos int
	for _, v := range y {
		pos += v
	}
	if pos == 0 || pos == len(y) {
		return 0
	}
	scores, classes := sortedByScore(y, ps, false)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// PRAUC is the step-wise area under the precision/recall curve.
func PRAUC(y []int, ps []float64) float64 {
	scores, classes := sortedByScore(y, ps, true)
	var tp, fp, fn int
	for _, c := range classes {
		if c {
			fn++
		}
	}
	var prevRec, auc float64
	for i := range scores {
		if classes[i] {
			tp++
			fn--
		} else {
			fp++
		}
		var prec, rec float64
		if tp+fp > 0 {
			prec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rec = float64(tp) / float64(tp+fn)
		}
		auc += (rec - prevRec) * prec
		prevRec = rec
	}
	return auc
}

func sortedByScore(y []int, ps []float64, desc bool) ([]float64, []bool) {
	idx := make([]int, len(ps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return ps[idx[a]] > ps[idx[b]]
		}
		return ps[idx[a]] < ps[idx[b]]
	})
	scores := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for i, j := range idx {
		scores[i] = ps[j]
		classes[i] = y[j] == 1
	}
	return scores, classes
}

// BestThresholdF1 scans thresholds 0, 0.005, ..., 1 for the highest F1.
func BestThresholdF1(y []int, ps []float64) (thr, best float64) {
	return bestThreshold(ps, func(t float64) float64 {
		_, _, f1 := PrecisionRecallF1(y, ps, t)
		return f1
	})
}

func BestThresholdAccuracy(y []int, ps []float64) (thr, best float64) {
	return bestThreshold(ps, func(t float64) float64 {
		return Accuracy(y, ToPredictions(ps, t))
	})
}

func bestThreshold(ps []float64, score func(float64) float64) (thr, best float64) {
	if len(ps) == 0 {
		return 0.5, 0
	}
	const steps = 200
	best = math.Inf(-1)
	thr = 0.5
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		if s := score(t); s > best {
			best, thr = s, t
		}
	}
	return
}
