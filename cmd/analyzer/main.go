package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hypersmurf/internal/config"
	"hypersmurf/internal/ensemble"
	"hypersmurf/internal/metrics"
	"hypersmurf/internal/models"
	"hypersmurf/internal/report"
	"hypersmurf/pkg/utils"
)

// analyzer cross-validates the ensemble for several partition counts and
// plots ROC/PR AUC against the number of partitions, next to a single base
// learner.
func main() {
	fs := flag.NewFlagSet("analyzer", flag.ExitOnError)
	n := fs.Int("n", 10000, "Synthetic rows when -data is empty")
	fraudRate := fs.Float64("fraud_rate", 0.02, "Base fraud rate of the synthetic rows")
	counts := fs.String("counts", "1,2,5,10,20", "Comma separated partition counts")
	folds := fs.Int("folds", 5, "Cross-validation folds")
	outImg := fs.String("out_img", "data/partitions_curve.png", "Output PNG")
	outCsv := fs.String("out_csv", "data/partitions_curve.csv", "Output CSV")
	cfg, err := config.ParseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Log.Level != "" || cfg.Log.File != "" {
		utils.SetLogger(utils.NewLogger(cfg.Log.Level, cfg.Log.File))
	}
	logger := utils.Logger()
	defer logger.Sync()

	partitions, err := parseCounts(*counts)
	if err != nil {
		logger.Fatal("parse -counts", zap.Error(err))
	}
	ds, err := cfg.Data.Open(*n, *fraudRate)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	positive, err := cfg.Data.PositiveClass(ds)
	if err != nil {
		logger.Fatal("positive class", zap.Error(err))
	}

	base, err := models.NewBuilder(cfg.Ensemble.Learner, models.TreeParams{
		NumTrees:    cfg.Ensemble.NumTrees,
		MaxDepth:    cfg.Ensemble.MaxDepth,
		NumFeatures: cfg.Ensemble.NumFeatures,
		Slots:       cfg.Ensemble.RFExecutionSlots,
	})
	if err != nil {
		logger.Fatal("base learner", zap.Error(err))
	}
	y, ps, err := metrics.CrossValidate(base, ds, *folds, positive, cfg.Data.Seed)
	if err != nil {
		logger.Fatal("cross-validate base learner", zap.Error(err))
	}
	baseROC, basePR := metrics.ROCAUC(y, ps), metrics.PRAUC(y, ps)
	logger.Info("base learner", zap.Float64("roc_auc", baseROC), zap.Float64("pr_auc", basePR))

	c := &report.Curve{Title: "AUC by number of partitions", XLabel: "partitions", YLabel: "AUC"}
	var roc, pr, bROC, bPR []float64
	for _, p := range partitions {
		opts := cfg.Ensemble
		opts.Partitions = p
		y, ps, err := metrics.CrossValidate(func() models.Learner {
			return ensemble.New(opts, ensemble.WithLogger(logger))
		}, ds, *folds, positive, cfg.Data.Seed)
		if err != nil {
			logger.Warn("skip partition count", zap.Int("partitions", p), zap.Error(err))
			continue
		}
		c.X = append(c.X, p)
		roc = append(roc, metrics.ROCAUC(y, ps))
		pr = append(pr, metrics.PRAUC(y, ps))
		bROC = append(bROC, baseROC)
		bPR = append(bPR, basePR)
		logger.Info("ensemble",
			zap.Int("partitions", p),
			zap.Float64("roc_auc", roc[len(roc)-1]),
			zap.Float64("pr_auc", pr[len(pr)-1]))
	}
	c.Add("ensemble_roc_auc", roc)
	c.Add("ensemble_pr_auc", pr)
	c.Add("base_roc_auc", bROC)
	c.Add("base_pr_auc", bPR)

	if err := report.WriteCSV(*outCsv, c); err != nil {
		logger.Fatal("write csv", zap.Error(err))
	}
	if err := report.PlotPNG(*outImg, c); err != nil {
		logger.Fatal("write png", zap.Error(err))
	}
	logger.Info("curve written", zap.String("csv", *outCsv), zap.String("png", *outImg))
}

func parseCounts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, fmt.Errorf("partition count %d must be >= 1", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no partition counts in %q", s)
	}
	return out, nil
}
