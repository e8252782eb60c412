package ensemble

import (
	"hypersmurf/internal/data"
)

// MinorityClass returns the non-empty class value with the fewest
// instances. Ties go to the lowest index.
func MinorityClass(ds *data.Dataset) (int, error) {
	counts := ds.ClassCounts()
	minority := -1
	for c, n := range counts {
		if n > 0 && (minority < 0 || n < counts[minority]) {
			minority = c
		}
	}
	if minority < 0 {
		return 0, &InsufficientDataError{Class: ds.ClassAttribute().Name, Need: 1, Reason: "no class value has instances"}
	}
	return minority, nil
}

// SplitByClass copies the instances of class label into minority and every
// other instance with a defined class into majority, keeping input order.
func SplitByClass(ds *data.Dataset, label int) (minority, majority *data.Dataset) {
	var minIdx, majIdx []int
	for i, in := range ds.Instances {
		v := in.Values[ds.ClassIndex]
		switch {
		case data.IsMissing(v):
		case int(v) == label:
			minIdx = append(minIdx, i)
		default:
			majIdx = append(majIdx, i)
		}
	}
	return ds.Subset(minIdx), ds.Subset(majIdx)
}

// Partition returns fold index of folds over majority (instance i belongs to
// fold i mod folds) followed by a copy of every minority instance.
// The arguments are validated before either dataset is read.
func Partition(majority, minority *data.Dataset, folds, index int) (*data.Dataset, error) {
	if folds <= 0 || index < 0 || index >= folds {
		return nil, &InvalidFoldError{Folds: folds, Index: index}
	}
	out := majority.Empty()
	out.Instances = make([]data.Instance, 0, majority.Len()/folds+1+minority.Len())
	for i := index; i < majority.Len(); i += folds {
		out.Instances = append(out.Instances, majority.Instances[i].Copy())
	}
	if err := out.Append(minority); err != nil {
		return nil, err
	}
	return out, nil
}
