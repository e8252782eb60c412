package config

import (
	"flag"
)

// ParseFlags registers the flags shared by every tool on fs and parses args.
// With -config the file is loaded first and the flags given on the command
// line override it.
func ParseFlags(fs *flag.FlagSet, args []string) (*File, error) {
	f := new(File)
	*f = Default()
	path := fs.String("config", "", "YAML (.yaml/.yml) or TOML (.toml) config file")
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path != "" {
		loaded, err := Load(*path)
		if err != nil {
			return nil, err
		}
		*f = loaded
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) register(fs *flag.FlagSet) {
	e := &f.Ensemble
	fs.IntVar(&e.Partitions, "partitions", e.Partitions, "Number of majority partitions (ensemble members)")
	fs.Int64Var(&e.Seed, "seed", e.Seed, "Ensemble random seed")
	fs.IntVar(&e.ExecutionSlots, "slots", e.ExecutionSlots, "Members trained concurrently (0 = one per CPU)")
	fs.Float64Var(&e.Percentage, "percentage", e.Percentage, "SMOTE percentage of synthetic minority instances")
	fs.IntVar(&e.NearestNeighbors, "neighbors", e.NearestNeighbors, "SMOTE nearest neighbors")
	fs.IntVar(&e.ClassValue, "class_value", e.ClassValue, "SMOTE class value, 1-based (0 = minority)")
	fs.Float64Var(&e.DistributionSpread, "spread", e.DistributionSpread, "Maximum class spread after subsampling (0 = unlimited)")
	fs.IntVar(&e.MaxCount, "max_count", e.MaxCount, "Maximum instances per class (0 = unlimited)")
	fs.BoolVar(&e.AdjustWeights, "adjust_weights", e.AdjustWeights, "Keep each class's total weight when subsampling")
	fs.StringVar(&e.Learner, "learner", e.Learner, "Base learner: rf|bagging|dt|gb")
	fs.IntVar(&e.NumTrees, "trees", e.NumTrees, "Trees per base learner (rf/bagging/gb)")
	fs.IntVar(&e.MaxDepth, "max_depth", e.MaxDepth, "Maximum tree depth (0 = unlimited)")
	fs.IntVar(&e.NumFeatures, "features", e.NumFeatures, "Features tried per split (0 = sqrt)")
	fs.IntVar(&e.RFExecutionSlots, "rf_slots", e.RFExecutionSlots, "Trees trained concurrently inside one member")

	fs.StringVar(&f.Log.Level, "log_level", f.Log.Level, "Log level: debug|info|warn|error")
	fs.StringVar(&f.Log.File, "log_file", f.Log.File, "Also write logs to this file")

	fs.StringVar(&f.Server.Addr, "addr", f.Server.Addr, "HTTP listen address")
	fs.StringVar(&f.Server.APIKey, "api_key", f.Server.APIKey, "Required X-API-Key header value (empty = open)")

	fs.StringVar(&f.Data.Path, "data", f.Data.Path, "Training CSV (empty = synthetic expenses)")
	fs.StringVar(&f.Data.ClassColumn, "class", f.Data.ClassColumn, "Class column name (empty = last column)")
	fs.StringVar(&f.Data.Positive, "positive", f.Data.Positive, "Positive class label for metrics (empty = minority)")
	fs.Float64Var(&f.Data.TrainFrac, "train_frac", f.Data.TrainFrac, "Training share of the stratified holdout split")
	fs.Int64Var(&f.Data.Seed, "split_seed", f.Data.Seed, "Seed for data splits and synthetic data")
}
