package filters

import (
	"errors"
	"fmt"

	"hypersmurf/internal/data"
)

var ErrNoInputFormat = errors.New("filter input format not set")

// Filter transforms a dataset without changing its schema. SetInputFormat
// binds the filter to a schema and validates its options against it; Apply
// may only be called afterwards and never mutates its input.
type Filter interface {
	Name() string
	SetInputFormat(format *data.Dataset) error
	Apply(ds *data.Dataset) (*data.Dataset, error)
}

// MultiFilter applies its filters in order.
type MultiFilter struct {
	Filters []Filter
}

func NewMultiFilter(fs ...Filter) *MultiFilter { return &MultiFilter{Filters: fs} }

func (m *MultiFilter) Name() string { return "MultiFilter" }

func (m *MultiFilter) SetInputFormat(format *data.Dataset) error {
	for _, f := range m.Filters {
		if err := f.SetInputFormat(format); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return nil
}

func (m *MultiFilter) Apply(ds *data.Dataset) (*data.Dataset, error) {
	out := ds
	for _, f := range m.Filters {
		next, err := f.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
		out = next
	}
	if out == ds {
		out = ds.Clone()
	}
	return out, nil
}

func checkFormat(header, ds *data.Dataset) error {
	if header == nil {
		return ErrNoInputFormat
	}
	if header.NumAttributes() != ds.NumAttributes() || header.ClassIndex != ds.ClassIndex {
		return errors.New("dataset does not match the filter input format")
	}
	return nil
}
