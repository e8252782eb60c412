// Package config loads the YAML or TOML file shared by the command line
// tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"

	"hypersmurf/internal/data"
	"hypersmurf/internal/ensemble"
)

type Log struct {
	Level string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file" toml:"file"`
}

type Server struct {
	Addr   string `yaml:"addr" toml:"addr" validate:"required"`
	APIKey string `yaml:"api_key" toml:"api_key"`
}

type Data struct {
	Path        string  `yaml:"path" toml:"path"`
	ClassColumn string  `yaml:"class_column" toml:"class_column"`
	Positive    string  `yaml:"positive" toml:"positive"`
	TrainFrac   float64 `yaml:"train_frac" toml:"train_frac" validate:"gt=0,lte=1"`
	Seed        int64   `yaml:"seed" toml:"seed"`
}

type File struct {
	Ensemble ensemble.Options `yaml:"ensemble" toml:"ensemble" validate:"-"`
	Log      Log              `yaml:"log" toml:"log"`
	Server   Server           `yaml:"server" toml:"server"`
	Data     Data             `yaml:"data" toml:"data"`
}

func Default() File {
	return File{
		Ensemble: ensemble.DefaultOptions(),
		Server:   Server{Addr: ":8080"},
		Data:     Data{TrainFrac: 0.8, Seed: 1},
	}
}

// Load reads path over Default. The format follows the extension: .yaml,
// .yml or .toml.
func Load(path string) (File, error) {
	f := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	case ".toml":
		err = toml.Unmarshal(raw, &f)
	default:
		return f, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return f, fmt.Errorf("config %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (f File) Validate() error {
	return multierr.Combine(validate.Struct(f), f.Ensemble.Validate())
}

// Open reads the CSV at Path, or generates synthetic expenses with the given
// number of rows and fraud rate when Path is empty.
func (d Data) Open(rows int, fraudRate float64) (*data.Dataset, error) {
	if d.Path == "" {
		return data.GenerateExpenses(rows, fraudRate, d.Seed), nil
	}
	return data.ReadCSVFile(d.Path, d.ClassColumn)
}

// PositiveClass resolves Positive against the class labels of ds; empty
// means the minority class.
func (d Data) PositiveClass(ds *data.Dataset) (int, error) {
	if ds.NumericClass() {
		return 0, fmt.Errorf("class %q is numeric", ds.ClassAttribute().Name)
	}
	if d.Positive == "" {
		return ensemble.MinorityClass(ds)
	}
	if c := ds.ClassAttribute().IndexOf(d.Positive); c >= 0 {
		return c, nil
	}
	return 0, fmt.Errorf("positive label %q not in %v", d.Positive, ds.ClassAttribute().Values)
}
