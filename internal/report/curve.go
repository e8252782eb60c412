// Package report writes metric curves as CSV tables and PNG line plots.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type Series struct {
	Name   string
	Values []float64
}

// Curve is a set of metric series sampled at the same X positions.
type Curve struct {
	Title  string
	XLabel string
	YLabel string
	X      []int
	Series []Series
}

func (c *Curve) Add(name string, values []float64) {
	c.Series = append(c.Series, Series{Name: name, Values: values})
}

func (c *Curve) check() error {
	for _, s := range c.Series {
		if len(s.Values) != len(c.X) {
			return fmt.Errorf("series %q has %d values for %d points", s.Name, len(s.Values), len(c.X))
		}
	}
	return nil
}

// WriteCSV writes one row per X position, one column per series.
func WriteCSV(path string, c *Curve) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{c.XLabel}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, x := range c.X {
		rec := []string{strconv.Itoa(x)}
		for _, s := range c.Series {
			rec = append(rec, fmt.Sprintf("%.6f", s.Values[i]))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// PlotPNG draws every series as a line with points on a [0,1] Y axis.
func PlotPNG(path string, c *Curve) error {
	if err := c.check(); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0
	p.Y.Max = 1

	lines := make([]interface{}, 0, 2*len(c.Series))
	for _, s := range c.Series {
		pts := make(plotter.XYs, len(c.X))
		for i := range c.X {
			pts[i].X = float64(c.X[i])
			pts[i].Y = s.Values[i]
		}
		lines = append(lines, s.Name, pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// CurveSizes returns up to points increasing training sizes from min to
// total, spaced geometrically when useLog is set. The last size is total.
func CurveSizes(total, points, min int, useLog bool) []int {
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > total {
		min = int(math.Max(10, float64(total)/2))
	}
	sizes := make([]int, 0, points)
	if useLog {
		ratio := math.Pow(float64(total)/float64(min), 1.0/float64(points-1))
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)*math.Pow(ratio, float64(i)))))
		}
	} else {
		step := float64(total-min) / float64(points-1)
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)+float64(i)*step)))
		}
	}
	cleaned := make([]int, 0, len(sizes))
	last := -1
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > total {
			s = total
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	cleaned[len(cleaned)-1] = total
	return cleaned
}
