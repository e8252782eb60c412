package data

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoClassSchema() []Attribute {
	return []Attribute{NumericAttribute("x"), NominalAttribute("y", "neg", "pos")}
}

func TestNewRejectsBadClassIndex(t *testing.T) {
	_, err := New("d", twoClassSchema(), 2)
	assert.ErrorIs(t, err, ErrNoClass)

	_, err = New("d", []Attribute{NominalAttribute("y")}, 0)
	assert.Error(t, err)
}

func TestWithoutMissingClass(t *testing.T) {
	ds, err := New("d", twoClassSchema(), 1)
	require.NoError(t, err)
	require.NoError(t, ds.Add(NewInstance(1, 0)))
	require.NoError(t, ds.Add(NewInstance(2, Missing())))
	require.NoError(t, ds.Add(NewInstance(Missing(), 1)))

	clean := ds.WithoutMissingClass()
	assert.Equal(t, 2, clean.Len())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []int{1, 1}, clean.ClassCounts())
	assert.True(t, clean.Instances[1].IsMissing(0))
}

func TestAddChecksSchema(t *testing.T) {
	ds, err := New("d", twoClassSchema(), 1)
	require.NoError(t, err)
	assert.Error(t, ds.Add(NewInstance(1, 2, 3)))
}

func TestSubsetCopiesInstances(t *testing.T) {
	ds, err := New("d", twoClassSchema(), 1)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, ds.Add(NewInstance(float64(i), float64(i%2))))
	}
	sub := ds.Subset([]int{3, 1})
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, 3.0, sub.Instances[0].Values[0])
	sub.Instances[0].Values[0] = 42
	assert.Equal(t, 3.0, ds.Instances[3].Values[0])
	assert.Equal(t, []int{1, 3}, ds.IndicesOfClass(1))
}

func TestClassWeights(t *testing.T) {
	ds, err := New("d", twoClassSchema(), 1)
	require.NoError(t, err)
	require.NoError(t, ds.Add(Instance{Values: []float64{0, 0}, Weight: 2}))
	require.NoError(t, ds.Add(Instance{Values: []float64{0, 1}, Weight: 0.5}))
	require.NoError(t, ds.Add(Instance{Values: []float64{0, 1}, Weight: 0.5}))
	assert.Equal(t, []float64{2, 1}, ds.ClassWeights())
}

func TestReadCSVInfersSchema(t *testing.T) {
	in := "a,color,label\n1.5,red,no\n?,blue,yes\n3,red,\n"
	ds, err := ReadCSV(strings.NewReader(in), "t", "label")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.ClassIndex)
	assert.False(t, ds.Attributes[0].IsNominal())
	assert.Equal(t, []string{"red", "blue"}, ds.Attributes[1].Values)
	assert.Equal(t, []string{"no", "yes"}, ds.ClassAttribute().Values)
	assert.True(t, ds.Instances[1].IsMissing(0))
	assert.True(t, ds.Instances[2].IsMissing(2))
	assert.Equal(t, 1.0, ds.Instances[1].Values[1])
}

func TestReadCSVReportsRaggedRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1\n1,2,3\n"), "t", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "line 3")

	_, err = ReadCSV(strings.NewReader("a,b\n1,2\n"), "t", "c")
	assert.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := GenerateExpenses(50, 0.05, 3)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))
	back, err := ReadCSV(&buf, "expenses", "fraud")
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), back.Len())
	assert.Equal(t, ds.Instances[7].Values[0], back.Instances[7].Values[0])
}

func TestGenerateExpensesIsSeededAndImbalanced(t *testing.T) {
	a := GenerateExpenses(2000, 0.02, 7)
	b := GenerateExpenses(2000, 0.02, 7)
	assert.Equal(t, a.Instances, b.Instances)
	counts := a.ClassCounts()
	assert.Greater(t, counts[1], 0)
	assert.Greater(t, counts[0], 5*counts[1])
}
