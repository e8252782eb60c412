package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// ReadCSVFile loads a CSV file with a header row. classColumn names the
// class attribute; empty means the last column.
func ReadCSVFile(path, classColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSV(f, name, classColumn)
}

// ReadCSV parses CSV rows into a dataset. A column whose defined cells all
// parse as numbers is numeric, any other column is nominal with labels in
// first-seen order. Empty cells and "?" are missing.
func ReadCSV(r io.Reader, name, classColumn string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("read csv: empty input")
	}
	header := rows[0]
	body := rows[1:]

	var rowErrs error
	for i, row := range body {
		if len(row) != len(header) {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("line %d: %d fields, header has %d", i+2, len(row), len(header)))
		}
	}
	if rowErrs != nil {
		return nil, rowErrs
	}

	classIndex := len(header) - 1
	if classColumn != "" {
		classIndex = -1
		for j, h := range header {
			if strings.TrimSpace(h) == classColumn {
				classIndex = j
			}
		}
		if classIndex < 0 {
			return nil, fmt.Errorf("class column %q not in header", classColumn)
		}
	}

	attrs := make([]Attribute, len(header))
	for j, h := range header {
		attrs[j] = inferAttribute(strings.TrimSpace(h), body, j)
	}
	ds, err := New(name, attrs, classIndex)
	if err != nil {
		return nil, err
	}
	for _, row := range body {
		vals := make([]float64, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			switch {
			case isMissingCell(cell):
				vals[j] = Missing()
			case attrs[j].IsNominal():
				vals[j] = float64(attrs[j].IndexOf(cell))
			default:
				vals[j], _ = strconv.ParseFloat(cell, 64)
			}
		}
		if err := ds.Add(NewInstance(vals...)); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func inferAttribute(name string, rows [][]string, col int) Attribute {
	numeric := true
	seen := map[string]bool{}
	var labels []string
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if isMissingCell(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
		}
		if !seen[cell] {
			seen[cell] = true
			labels = append(labels, cell)
		}
	}
	if numeric {
		return NumericAttribute(name)
	}
	return NominalAttribute(name, labels...)
}

func isMissingCell(s string) bool { return s == "" || s == "?" }

// WriteCSV writes ds with a header row, nominal values as labels.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	header := make([]string, ds.NumAttributes())
	for j, a := range ds.Attributes {
		header[j] = a.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, ds.NumAttributes())
	for _, in := range ds.Instances {
		for j, v := range in.Values {
			switch {
			case IsMissing(v):
				rec[j] = "?"
			case ds.Attributes[j].IsNominal():
				rec[j] = ds.Attributes[j].Values[int(v)]
			default:
				rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
