package ensemble

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hypersmurf/internal/data"
	"hypersmurf/internal/filters"
	"hypersmurf/internal/models"
)

// Member is one trained (pipeline, learner) pair. It is not modified after
// training.
type Member struct {
	Index     int
	Seeds     MemberSeeds
	Filter    *filters.MultiFilter
	Learner   models.Learner
	TrainSize int
}

// Trainer fits pipelines on their partitions with at most Slots running at
// once. Slots 0 uses one slot per CPU.
type Trainer struct {
	Slots  int
	Logger *zap.Logger
}

// Train returns one member per partition, member i for partition i. The
// first failure is returned as a *TrainingError; once it happens no further
// pipeline is started and the results of running ones are dropped.
func (t *Trainer) Train(ctx context.Context, partitions []*data.Dataset, pipelines []*Pipeline) ([]*Member, error) {
	if t.Slots < 0 {
		return nil, &ConfigError{Field: "execution_slots", Reason: fmt.Sprintf("%d is negative", t.Slots)}
	}
	if len(partitions) != len(pipelines) {
		return nil, fmt.Errorf("%d partitions but %d pipelines", len(partitions), len(pipelines))
	}
	slots := t.Slots
	if slots == 0 {
		slots = runtime.NumCPU()
	}
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	members := make([]*Member, len(partitions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(slots)
	for i := range partitions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// a slot may free up only because another member failed
			if gctx.Err() != nil {
				return nil
			}
			start := time.Now()
			p := pipelines[i]
			train, err := p.Filter.Apply(partitions[i])
			if err != nil {
				return &TrainingError{Member: i, Err: err}
			}
			if err := p.Learner.Fit(train); err != nil {
				return &TrainingError{Member: i, Err: err}
			}
			members[i] = &Member{Index: i, Seeds: p.Seeds, Filter: p.Filter, Learner: p.Learner, TrainSize: train.Len()}
			logger.Debug("member trained",
				zap.Int("member", i),
				zap.Int64("seed", p.Seeds.Learner),
				zap.Int("instances", train.Len()),
				zap.Duration("took", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
