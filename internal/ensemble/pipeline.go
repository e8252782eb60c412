package ensemble

import (
	"hypersmurf/internal/data"
	"hypersmurf/internal/filters"
	"hypersmurf/internal/models"
)

// MemberSeeds are the seeds one member draws from the ensemble's
// RandomStream, in draw order.
type MemberSeeds struct {
	Oversampler int64 `json:"oversampler"`
	Balancer    int64 `json:"balancer"`
	Learner     int64 `json:"learner"`
}

// Pipeline is the training recipe of one member: the resampling filters,
// already bound to the member's partition, and an unfitted learner.
type Pipeline struct {
	Filter  *filters.MultiFilter
	Learner models.Learner
	Seeds   MemberSeeds
}

type PipelineFactory struct {
	opts    Options
	builder models.Builder
}

func NewPipelineFactory(opts Options, builder models.Builder) *PipelineFactory {
	return &PipelineFactory{opts: opts, builder: builder}
}

// Build draws the oversampler, balancer and learner seeds from stream, in
// that order, and binds the filters to partition. The learner seed is drawn
// even when the learner is not Randomizable.
func (f *PipelineFactory) Build(stream *RandomStream, partition *data.Dataset) (*Pipeline, error) {
	seeds := MemberSeeds{
		Oversampler: stream.Next(),
		Balancer:    stream.Next(),
		Learner:     stream.Next(),
	}

	smote := filters.NewSMOTE()
	smote.Percentage = f.opts.Percentage
	smote.NearestNeighbors = f.opts.NearestNeighbors
	smote.ClassValue = f.opts.ClassValue
	smote.SetSeed(seeds.Oversampler)

	spread := filters.NewSpreadSubsample()
	spread.DistributionSpread = f.opts.DistributionSpread
	spread.MaxCount = f.opts.MaxCount
	spread.AdjustWeights = f.opts.AdjustWeights
	spread.SetSeed(seeds.Balancer)

	mf := filters.NewMultiFilter(smote, spread)
	if err := mf.SetInputFormat(partition); err != nil {
		return nil, err
	}

	learner := f.builder()
	if r, ok := learner.(models.Randomizable); ok {
		r.SetSeed(seeds.Learner)
	}
	return &Pipeline{Filter: mf, Learner: learner, Seeds: seeds}, nil
}
