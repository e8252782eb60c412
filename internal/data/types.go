package data

import "math"

type AttributeKind int

const (
	Numeric AttributeKind = iota
	Nominal
)

func (k AttributeKind) String() string {
	if k == Nominal {
		return "nominal"
	}
	return "numeric"
}

// Attribute describes one column. Nominal values are stored in instances
// as the float64 index into Values.
type Attribute struct {
	Name   string        `json:"name"`
	Kind   AttributeKind `json:"kind"`
	Values []string      `json:"values,omitempty"`
}

func NumericAttribute(name string) Attribute { return Attribute{Name: name, Kind: Numeric} }

func NominalAttribute(name string, values ...string) Attribute {
	return Attribute{Name: name, Kind: Nominal, Values: values}
}

func (a Attribute) IsNominal() bool { return a.Kind == Nominal }

func (a Attribute) NumValues() int { return len(a.Values) }

// IndexOf returns the index of a nominal label or -1.
func (a Attribute) IndexOf(label string) int {
	for i, v := range a.Values {
		if v == label {
			return i
		}
	}
	return -1
}

// Instance is one row. A NaN value is missing.
type Instance struct {
	Values []float64 `json:"values"`
	Weight float64   `json:"weight"`
}

func NewInstance(values ...float64) Instance {
	return Instance{Values: values, Weight: 1}
}

func (in Instance) Copy() Instance {
	v := make([]float64, len(in.Values))
	copy(v, in.Values)
	return Instance{Values: v, Weight: in.Weight}
}

func (in Instance) IsMissing(attr int) bool { return IsMissing(in.Values[attr]) }

func Missing() float64 { return math.NaN() }

func IsMissing(v float64) bool { return math.IsNaN(v) }
