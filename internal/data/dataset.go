package data

import (
	"errors"
	"fmt"
)

var ErrNoClass = errors.New("dataset has no class attribute")

// Dataset is an ordered set of instances sharing one attribute schema with
// exactly one class attribute.
type Dataset struct {
	Name       string
	Attributes []Attribute
	ClassIndex int
	Instances  []Instance
}

func New(name string, attrs []Attribute, classIndex int) (*Dataset, error) {
	if classIndex < 0 || classIndex >= len(attrs) {
		return nil, fmt.Errorf("class index %d out of range [0,%d): %w", classIndex, len(attrs), ErrNoClass)
	}
	if attrs[classIndex].IsNominal() && attrs[classIndex].NumValues() == 0 {
		return nil, fmt.Errorf("nominal class attribute %q has no values", attrs[classIndex].Name)
	}
	a := make([]Attribute, len(attrs))
	copy(a, attrs)
	return &Dataset{Name: name, Attributes: a, ClassIndex: classIndex}, nil
}

// Empty returns a dataset with the same schema and no instances.
func (d *Dataset) Empty() *Dataset {
	return &Dataset{Name: d.Name, Attributes: d.Attributes, ClassIndex: d.ClassIndex}
}

func (d *Dataset) Len() int { return len(d.Instances) }

func (d *Dataset) NumAttributes() int { return len(d.Attributes) }

func (d *Dataset) ClassAttribute() Attribute { return d.Attributes[d.ClassIndex] }

func (d *Dataset) NumericClass() bool { return !d.ClassAttribute().IsNominal() }

// NumClasses is the class cardinality, 1 for a numeric class.
func (d *Dataset) NumClasses() int {
	if d.NumericClass() {
		return 1
	}
	return d.ClassAttribute().NumValues()
}

func (d *Dataset) ClassValue(i int) float64 { return d.Instances[i].Values[d.ClassIndex] }

// Add appends an instance after checking it against the schema.
func (d *Dataset) Add(in Instance) error {
	if len(in.Values) != len(d.Attributes) {
		return fmt.Errorf("instance has %d values, schema has %d attributes", len(in.Values), len(d.Attributes))
	}
	d.Instances = append(d.Instances, in)
	return nil
}

// Append adds copies of every instance of other, which must share the schema.
func (d *Dataset) Append(other *Dataset) error {
	if other.NumAttributes() != d.NumAttributes() || other.ClassIndex != d.ClassIndex {
		return errors.New("cannot append dataset with a different schema")
	}
	for _, in := range other.Instances {
		d.Instances = append(d.Instances, in.Copy())
	}
	return nil
}

func (d *Dataset) Clone() *Dataset {
	c := d.Empty()
	c.Instances = make([]Instance, len(d.Instances))
	for i, in := range d.Instances {
		c.Instances[i] = in.Copy()
	}
	return c
}

// Subset copies the instances at idx, in idx order.
func (d *Dataset) Subset(idx []int) *Dataset {
	c := d.Empty()
	c.Instances = make([]Instance, len(idx))
	for j, i := range idx {
		c.Instances[j] = d.Instances[i].Copy()
	}
	return c
}

// WithoutMissingClass returns a copy holding only instances with a defined class.
func (d *Dataset) WithoutMissingClass() *Dataset {
	c := d.Empty()
	c.Instances = make([]Instance, 0, len(d.Instances))
	for _, in := range d.Instances {
		if in.IsMissing(d.ClassIndex) {
			continue
		}
		c.Instances = append(c.Instances, in.Copy())
	}
	return c
}

// ClassCounts counts instances per nominal class value. Missing classes are skipped.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.NumClasses())
	if d.NumericClass() {
		counts[0] = d.countDefined()
		return counts
	}
	for _, in := range d.Instances {
		v := in.Values[d.ClassIndex]
		if IsMissing(v) {
			continue
		}
		counts[int(v)]++
	}
	return counts
}

// ClassWeights sums instance weights per nominal class value.
func (d *Dataset) ClassWeights() []float64 {
	w := make([]float64, d.NumClasses())
	for _, in := range d.Instances {
		v := in.Values[d.ClassIndex]
		if IsMissing(v) {
			continue
		}
		if d.NumericClass() {
			w[0] += in.Weight
			continue
		}
		w[int(v)] += in.Weight
	}
	return w
}

// IndicesOfClass lists positions of instances whose class equals label.
func (d *Dataset) IndicesOfClass(label int) []int {
	var idx []int
	for i, in := range d.Instances {
		v := in.Values[d.ClassIndex]
		if !IsMissing(v) && int(v) == label {
			idx = append(idx, i)
		}
	}
	return idx
}

func (d *Dataset) countDefined() int {
	n := 0
	for _, in := range d.Instances {
		if !in.IsMissing(d.ClassIndex) {
			n++
		}
	}
	return n
}

func (d *Dataset) String() string {
	return fmt.Sprintf("%s: %d instances, %d attributes, class %q (%s)",
		d.Name, d.Len(), d.NumAttributes(), d.ClassAttribute().Name, d.ClassAttribute().Kind)
}
