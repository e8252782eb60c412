package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"hypersmurf/internal/config"
	"hypersmurf/internal/data"
	"hypersmurf/internal/ensemble"
	"hypersmurf/internal/metrics"
	"hypersmurf/internal/models"
	"hypersmurf/internal/report"
	"hypersmurf/pkg/utils"
)

func main() {
	fs := flag.NewFlagSet("trainer", flag.ExitOnError)
	n := fs.Int("n", 20000, "Synthetic rows when -data is empty")
	fraudRate := fs.Float64("fraud_rate", 0.02, "Base fraud rate of the synthetic rows")
	genOut := fs.String("gen_out", "", "Write the synthetic dataset to this CSV")
	threshold := fs.Float64("threshold", 0.5, "Decision threshold for accuracy/precision/recall/F1")
	thresholdAuto := fs.Bool("threshold_auto", true, "Pick the threshold on a validation tail of the training set")
	thresholdMetric := fs.String("threshold_metric", "f1", "Metric for the automatic threshold: f1|acc")
	baseline := fs.Bool("baseline", true, "Also train and score a single base learner")
	dump := fs.String("dump", "", "Write the member models to this file (- = stdout)")
	curve := fs.Bool("curve", false, "Build a learning curve (PNG and CSV)")
	curvePoints := fs.Int("curve_points", 6, "Points on the learning curve")
	curveMin := fs.Int("curve_min", 500, "Smallest training size on the curve")
	curveLog := fs.Bool("curve_log", true, "Space curve sizes geometrically")
	curveImg := fs.String("curve_out_img", "data/learning_curve.png", "Learning curve PNG")
	curveCsv := fs.String("curve_out_csv", "data/learning_curve.csv", "Learning curve CSV")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ds, err := cfg.Data.Open(*n, *fraudRate)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	if cfg.Data.Path == "" && *genOut != "" {
		if err := data.WriteCSVFile(*genOut, ds); err != nil {
			logger.Fatal("write synthetic dataset", zap.Error(err))
		}
	}
	positive, err := cfg.Data.PositiveClass(ds)
	if err != nil {
		logger.Fatal("positive class", zap.Error(err))
	}
	counts := ds.ClassCounts()
	logger.Info("dataset loaded",
		zap.String("dataset", ds.String()),
		zap.Ints("class_counts", counts),
		zap.String("positive", ds.ClassAttribute().Values[positive]))

	train, test := metrics.StratifiedSplit(ds, cfg.Data.TrainFrac, cfg.Data.Seed)
	ens := ensemble.New(cfg.Ensemble, ensemble.WithLogger(logger))
	if err := ens.Build(ctx, train); err != nil {
		logger.Fatal("build ensemble", zap.Error(err))
	}

	thr := *threshold
	if *thresholdAuto {
		thr = pickThreshold(logger, ens, train, positive, *thresholdMetric)
	}
	summary, err := evaluate(ens, test, positive, thr)
	if err != nil {
		logger.Fatal("score holdout", zap.Error(err))
	}
	logSummary(logger, ens.Name(), summary)

	if *baseline {
		build, err := models.NewBuilder(cfg.Ensemble.Learner, models.TreeParams{
			NumTrees:    cfg.Ensemble.NumTrees,
			MaxDepth:    cfg.Ensemble.MaxDepth,
			NumFeatures: cfg.Ensemble.NumFeatures,
			Slots:       cfg.Ensemble.RFExecutionSlots,
		})
		if err != nil {
			logger.Fatal("baseline learner", zap.Error(err))
		}
		single := build()
		if r, ok := single.(models.Randomizable); ok {
			r.SetSeed(cfg.Ensemble.Seed)
		}
		if err := single.Fit(train); err != nil {
			logger.Fatal("train baseline", zap.Error(err))
		}
		s, err := evaluate(single, test, positive, thr)
		if err != nil {
			logger.Fatal("score baseline", zap.Error(err))
		}
		logSummary(logger, single.Name(), s)
	}

	if *dump != "" {
		if *dump == "-" {
			fmt.Println(ens.String())
		} else if err := os.WriteFile(*dump, []byte(ens.String()), 0o644); err != nil {
			logger.Warn("write model dump", zap.Error(err))
		} else {
			logger.Info("model dump written", zap.String("path", *dump))
		}
	}

	if *curve {
		c := learningCurve(ctx, logger, cfg.Ensemble, train, test, positive, thr,
			report.CurveSizes(train.Len(), *curvePoints, *curveMin, *curveLog))
		if err := report.WriteCSV(*curveCsv, c); err != nil {
			logger.Warn("write learning curve csv", zap.Error(err))
		}
		if err := report.PlotPNG(*curveImg, c); err != nil {
			logger.Warn("write learning curve png", zap.Error(err))
		} else {
			logger.Info("learning curve written", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
		}
	}
}

func evaluate(l models.Learner, ds *data.Dataset, positive int, thr float64) (metrics.Summary, error) {
	y, ps, err := metrics.Scores(l, ds, positive)
	if err != nil {
		return metrics.Summary{}, err
	}
	return metrics.Evaluate(y, ps, thr), nil
}

// pickThreshold tunes the threshold on the last tenth of the shuffled
// training set, at least 100 instances.
func pickThreshold(logger *zap.Logger, l models.Learner, train *data.Dataset, positive int, metric string) float64 {
	size := train.Len() / 10
	if size < 100 {
		size = 100
	}
	if size > train.Len() {
		size = train.Len()
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = train.Len() - size + i
	}
	y, ps, err := metrics.Scores(l, train.Subset(idx), positive)
	if err != nil {
		logger.Warn("threshold search failed, using 0.5", zap.Error(err))
		return 0.5
	}
	var thr float64
	if metric == "acc" {
		thr, _ = metrics.BestThresholdAccuracy(y, ps)
	} else {
		thr, _ = metrics.BestThresholdF1(y, ps)
	}
	return thr
}

func logSummary(logger *zap.Logger, model string, s metrics.Summary) {
	logger.Info("holdout metrics",
		zap.String("model", model),
		zap.Float64("accuracy", s.Accuracy),
		zap.Float64("f1", s.F1),
		zap.Float64("precision", s.Precision),
		zap.Float64("recall", s.Recall),
		zap.Float64("roc_auc", s.ROCAUC),
		zap.Float64("pr_auc", s.PRAUC),
		zap.Float64("threshold", s.Threshold),
	)
}

// learningCurve rebuilds the ensemble on growing prefixes of train. Sizes
// the ensemble cannot be built on are skipped.
func learningCurve(ctx context.Context, logger *zap.Logger, opts ensemble.Options, train, test *data.Dataset, positive int, thr float64, sizes []int) *report.Curve {
	c := &report.Curve{Title: "Learning curve", XLabel: "size", YLabel: "metric"}
	var trainROC, testROC, trainPR, testPR, testF1 []float64
	for _, s := range sizes {
		idx := make([]int, s)
		for i := range idx {
			idx[i] = i
		}
		sub := train.Subset(idx)
		ens := ensemble.New(opts, ensemble.WithLogger(logger))
		if err := ens.Build(ctx, sub); err != nil {
			logger.Warn("skip curve point", zap.Int("size", s), zap.Error(err))
			continue
		}
		tr, err := evaluate(ens, sub, positive, thr)
		if err != nil {
			logger.Warn("skip curve point", zap.Int("size", s), zap.Error(err))
			continue
		}
		te, err := evaluate(ens, test, positive, thr)
		if err != nil {
			logger.Warn("skip curve point", zap.Int("size", s), zap.Error(err))
			continue
		}
		c.X = append(c.X, s)
		trainROC = append(trainROC, tr.ROCAUC)
		testROC = append(testROC, te.ROCAUC)
		trainPR = append(trainPR, tr.PRAUC)
		testPR = append(testPR, te.PRAUC)
		testF1 = append(testF1, te.F1)
	}
	c.Add("train_roc_auc", trainROC)
	c.Add("test_roc_auc", testROC)
	c.Add("train_pr_auc", trainPR)
	c.Add("test_pr_auc", testPR)
	c.Add("test_f1", testF1)
	return c
}
