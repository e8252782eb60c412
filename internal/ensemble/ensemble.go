// Package ensemble builds an imbalance-aware committee of base learners.
// The majority class is split into disjoint folds; every fold is joined
// with the whole minority class, oversampled with SMOTE, rebalanced with
// SpreadSubsample and used to train one member. Predictions are the
// normalized sum (nominal class) or mean (numeric class) of the members'.
package ensemble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hypersmurf/internal/data"
	"hypersmurf/internal/models"
)

type Ensemble struct {
	opts    Options
	builder models.Builder
	logger  *zap.Logger

	runID   string
	header  *data.Dataset
	members []*Member
}

type Option func(*Ensemble)

func WithLogger(l *zap.Logger) Option {
	return func(e *Ensemble) { e.logger = l }
}

// WithLearner replaces the learner chosen by Options.Learner.
func WithLearner(b models.Builder) Option {
	return func(e *Ensemble) { e.builder = b }
}

func New(opts Options, options ...Option) *Ensemble {
	e := &Ensemble{opts: opts, logger: zap.NewNop()}
	for _, o := range options {
		o(e)
	}
	return e
}

func (e *Ensemble) Name() string { return "HyperSMURF" }

func (e *Ensemble) Options() Options { return e.opts }

func (e *Ensemble) SetSeed(seed int64) { e.opts.Seed = seed }

// RunID identifies the last successful Build in logs.
func (e *Ensemble) RunID() string { return e.runID }

// Header is the schema the ensemble was built on, without instances.
func (e *Ensemble) Header() *data.Dataset { return e.header }

// Build trains the ensemble on ds. Options and data sufficiency are checked
// before anything is partitioned. A failed Build leaves the ensemble
// unbuilt.
func (e *Ensemble) Build(ctx context.Context, ds *data.Dataset) error {
	e.members, e.header, e.runID = nil, nil, ""
	if err := e.opts.Validate(); err != nil {
		return err
	}
	builder, err := e.learnerBuilder()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run", runID))
	start := time.Now()

	train := ds.WithoutMissingClass()
	if dropped := ds.Len() - train.Len(); dropped > 0 {
		logger.Info("dropped instances with missing class", zap.Int("dropped", dropped))
	}
	partitions, pipelines, err := e.prepare(train, builder)
	if err != nil {
		return err
	}
	logger.Info("partitions ready",
		zap.Int("partitions", len(partitions)),
		zap.Int("instances", train.Len()),
		zap.Int64("seed", e.opts.Seed))

	trainer := &Trainer{Slots: e.opts.ExecutionSlots, Logger: logger}
	members, err := trainer.Train(ctx, partitions, pipelines)
	if err != nil {
		logger.Error("ensemble training failed", zap.Error(err))
		return err
	}
	e.members, e.header, e.runID = members, ds.Empty(), runID
	logger.Info("ensemble built", zap.Int("members", len(members)), zap.Duration("took", time.Since(start)))
	return nil
}

// Fit builds the ensemble without a deadline.
func (e *Ensemble) Fit(ds *data.Dataset) error { return e.Build(context.Background(), ds) }

func (e *Ensemble) learnerBuilder() (models.Builder, error) {
	if e.builder != nil {
		return e.builder, nil
	}
	b, err := models.NewBuilder(e.opts.Learner, models.TreeParams{
		NumTrees:    e.opts.NumTrees,
		MaxDepth:    e.opts.MaxDepth,
		NumFeatures: e.opts.NumFeatures,
		Slots:       e.opts.RFExecutionSlots,
	})
	if err != nil {
		return nil, &ConfigError{Field: "learner", Reason: "unknown learner", Err: err}
	}
	return b, nil
}

// prepare splits train into partitions and builds one pipeline each. The
// minority and majority subsets do not outlive this call.
func (e *Ensemble) prepare(train *data.Dataset, builder models.Builder) ([]*data.Dataset, []*Pipeline, error) {
	minority, majority, err := e.split(train)
	if err != nil {
		return nil, nil, err
	}
	n := e.opts.Partitions
	stream := NewRandomStream(e.opts.Seed)
	factory := NewPipelineFactory(e.opts, builder)
	partitions := make([]*data.Dataset, n)
	pipelines := make([]*Pipeline, n)
	for i := 0; i < n; i++ {
		if partitions[i], err = Partition(majority, minority, n, i); err != nil {
			return nil, nil, err
		}
		if pipelines[i], err = factory.Build(stream, partitions[i]); err != nil {
			return nil, nil, fmt.Errorf("partition %d: %w", i, err)
		}
	}
	return partitions, pipelines, nil
}

// split separates minority and majority and checks that both can feed the
// requested partitions and SMOTE neighborhoods. A numeric class has no
// minority: everything is majority.
func (e *Ensemble) split(train *data.Dataset) (minority, majority *data.Dataset, err error) {
	if train.NumericClass() {
		majority = train
		minority = train.Empty()
	} else {
		if e.opts.ClassValue > train.NumClasses() {
			return nil, nil, &ConfigError{
				Field:  "class_value",
				Reason: fmt.Sprintf("%d exceeds the %d class values", e.opts.ClassValue, train.NumClasses()),
			}
		}
		label, err := MinorityClass(train)
		if err != nil {
			return nil, nil, err
		}
		minority, majority = SplitByClass(train, label)
		if majority.Len() == 0 {
			return nil, nil, &InsufficientDataError{Class: "majority", Need: 1, Reason: "only one class value has instances"}
		}
		if err := e.checkSMOTE(train, label); err != nil {
			return nil, nil, err
		}
	}
	if majority.Len() < e.opts.Partitions {
		return nil, nil, &InsufficientDataError{
			Class:  "majority",
			Have:   majority.Len(),
			Need:   e.opts.Partitions,
			Reason: "every partition needs at least one majority instance",
		}
	}
	return minority, majority, nil
}

func (e *Ensemble) checkSMOTE(train *data.Dataset, minority int) error {
	if e.opts.Percentage == 0 {
		return nil
	}
	target := minority
	if e.opts.ClassValue > 0 {
		target = e.opts.ClassValue - 1
	}
	if have := train.ClassCounts()[target]; have <= e.opts.NearestNeighbors {
		return &InsufficientDataError{
			Class:  train.ClassAttribute().Values[target],
			Have:   have,
			Need:   e.opts.NearestNeighbors + 1,
			Reason: "SMOTE needs more instances than nearest neighbors",
		}
	}
	return nil
}

func (e *Ensemble) learners() []models.Learner {
	out := make([]models.Learner, len(e.members))
	for i, m := range e.members {
		out[i] = m.Learner
	}
	return out
}

// Distribution aggregates the members' predictions for in. Instances are
// passed to the learners unfiltered.
func (e *Ensemble) Distribution(in data.Instance) ([]float64, error) {
	if len(e.members) == 0 {
		return nil, ErrNotBuilt
	}
	return Aggregate(e.learners(), in, e.header.NumericClass())
}

// Predict returns the most probable class index, or the averaged value for a
// numeric class. An all-zero distribution predicts data.Missing().
func (e *Ensemble) Predict(in data.Instance) (float64, error) {
	dist, err := e.Distribution(in)
	if err != nil {
		return 0, err
	}
	if e.header.NumericClass() {
		return dist[0], nil
	}
	best := -1
	for c, p := range dist {
		if p > 0 && (best < 0 || p > dist[best]) {
			best = c
		}
	}
	if best < 0 {
		return data.Missing(), nil
	}
	return float64(best), nil
}

// MemberScores returns each member's probability for class value class, or
// each member's prediction when the class is numeric. It is the input of a
// downstream stacking model.
func (e *Ensemble) MemberScores(in data.Instance, class int) ([]float64, error) {
	if len(e.members) == 0 {
		return nil, ErrNotBuilt
	}
	numeric := e.header.NumericClass()
	if !numeric && (class < 0 || class >= e.header.NumClasses()) {
		return nil, fmt.Errorf("class value %d out of range [0,%d)", class, e.header.NumClasses())
	}
	scores := make([]float64, len(e.members))
	for i, m := range e.members {
		if numeric {
			v, err := m.Learner.Predict(in)
			if err != nil {
				return nil, &PredictionError{Member: i, Err: err}
			}
			scores[i] = v
			continue
		}
		dist, err := m.Learner.Distribution(in)
		if err != nil {
			return nil, &PredictionError{Member: i, Err: err}
		}
		if class >= len(dist) {
			return nil, &PredictionError{Member: i, Err: fmt.Errorf("distribution has %d values", len(dist))}
		}
		scores[i] = dist[class]
	}
	return scores, nil
}

func (e *Ensemble) Members() []*Member { return e.members }

func (e *Ensemble) Seeds() []MemberSeeds {
	out := make([]MemberSeeds, len(e.members))
	for i, m := range e.members {
		out[i] = m.Seeds
	}
	return out
}

// String dumps every member's model.
func (e *Ensemble) String() string {
	if len(e.members) == 0 {
		return e.Name() + ": not built"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d members, seed %d, run %s\n", e.Name(), len(e.members), e.opts.Seed, e.runID)
	for _, m := range e.members {
		fmt.Fprintf(&sb, "\n=== Member %d (%d instances, seeds %d/%d/%d) ===\n",
			m.Index, m.TrainSize, m.Seeds.Oversampler, m.Seeds.Balancer, m.Seeds.Learner)
		if s, ok := m.Learner.(fmt.Stringer); ok {
			sb.WriteString(s.String())
		} else {
			sb.WriteString(m.Learner.Name())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
