package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypersmurf/internal/ensemble"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "run.yaml", `
ensemble:
  partitions: 20
  execution_slots: 4
  percentage: 200.0
  learner: dt
log:
  level: debug
server:
  addr: ":9090"
data:
  path: data/train.csv
  class_column: fraud
`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, f.Ensemble.Partitions)
	assert.Equal(t, 4, f.Ensemble.ExecutionSlots)
	assert.Equal(t, 200.0, f.Ensemble.Percentage)
	assert.Equal(t, "dt", f.Ensemble.Learner)
	assert.Equal(t, 5, f.Ensemble.NearestNeighbors, "unset keys keep defaults")
	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, ":9090", f.Server.Addr)
	assert.Equal(t, "fraud", f.Data.ClassColumn)
	assert.Equal(t, 0.8, f.Data.TrainFrac)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "run.toml", `
[ensemble]
partitions = 7
seed = 42
adjust_weights = true

[server]
api_key = "secret"
`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, f.Ensemble.Partitions)
	assert.Equal(t, int64(42), f.Ensemble.Seed)
	assert.True(t, f.Ensemble.AdjustWeights)
	assert.Equal(t, "secret", f.Server.APIKey)
	assert.Equal(t, ":8080", f.Server.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := write(t, "bad.yaml", `
ensemble:
  execution_slots: -1
log:
  level: chatty
`)
	_, err := Load(path)
	require.Error(t, err)
	var ce *ensemble.ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "Level")
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := Load(write(t, "run.json", `{}`))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFlagsOverridesFile(t *testing.T) {
	path := write(t, "run.yaml", `
ensemble:
  partitions: 20
  seed: 3
`)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	extra := fs.Bool("dump", false, "")
	f, err := ParseFlags(fs, []string{"-config", path, "-partitions", "5", "-dump"})
	require.NoError(t, err)
	assert.Equal(t, 5, f.Ensemble.Partitions)
	assert.Equal(t, int64(3), f.Ensemble.Seed)
	assert.True(t, *extra)
}

func TestParseFlagsValidates(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := ParseFlags(fs, []string{"-slots=-2"})
	var ce *ensemble.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestDataOpenAndPositiveClass(t *testing.T) {
	d := Default().Data
	ds, err := d.Open(500, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 500, ds.Len())

	c, err := d.PositiveClass(ds)
	require.NoError(t, err)
	assert.Equal(t, "fraud", ds.ClassAttribute().Values[c])

	d.Positive = "legit"
	c, err = d.PositiveClass(ds)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	d.Positive = "unknown"
	_, err = d.PositiveClass(ds)
	assert.Error(t, err)
}
