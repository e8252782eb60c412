package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCurve() *Curve {
	c := &Curve{Title: "AUC", XLabel: "partitions", YLabel: "auc", X: []int{1, 5, 10}}
	c.Add("roc_auc", []float64{0.8, 0.9, 0.95})
	c.Add("pr_auc", []float64{0.4, 0.5, 0.55})
	return c
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "curve.csv")
	require.NoError(t, WriteCSV(path, sampleCurve()))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "partitions,roc_auc,pr_auc", lines[0])
	assert.Equal(t, "10,0.950000,0.550000", lines[3])
}

func TestPlotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	require.NoError(t, PlotPNG(path, sampleCurve()))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}

func TestCurveRejectsRaggedSeries(t *testing.T) {
	c := sampleCurve()
	c.Add("broken", []float64{1})
	assert.Error(t, WriteCSV(filepath.Join(t.TempDir(), "x.csv"), c))
	assert.Error(t, PlotPNG(filepath.Join(t.TempDir(), "x.png"), c))
}

func TestCurveSizes(t *testing.T) {
	assert.Equal(t, []int{100, 400, 700, 1000}, CurveSizes(1000, 4, 100, false))

	sizes := CurveSizes(10000, 5, 10, true)
	require.Len(t, sizes, 5)
	assert.Equal(t, 10, sizes[0])
	assert.Equal(t, 10000, sizes[4])
	for i := 1; i < len(sizes); i++ {
		assert.Greater(t, sizes[i], sizes[i-1])
	}
}
