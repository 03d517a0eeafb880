package workflow

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/visionfuse/fusion/consensus"
	"github.com/visionfuse/fusion/detection"
	"github.com/visionfuse/fusion/utils"
)

// A ConsensusBlock runs detections consensus as one step of a workflow.
type ConsensusBlock struct {
	conf     consensus.Config
	parallel bool
	logger   golog.Logger
}

// NewConsensusBlock builds a consensus block from raw attributes.
func NewConsensusBlock(am utils.AttributeMap, logger golog.Logger) (*ConsensusBlock, error) {
	conf, err := utils.TransformAttributeMap[*ConsensusConfig](am)
	if err != nil {
		return nil, err
	}
	engineConf, err := conf.EngineConfig()
	if err != nil {
		return nil, err
	}
	logger.Debugw("configured consensus block",
		"required_votes", engineConf.RequiredVotes,
		"class_aware", engineConf.ClassAware,
		"iou_threshold", engineConf.IoUThreshold,
		"parallel", conf.Parallel,
	)
	return &ConsensusBlock{conf: engineConf, parallel: conf.Parallel, logger: logger}, nil
}

// Config returns the engine configuration the block runs with.
func (block *ConsensusBlock) Config() consensus.Config {
	return block.conf
}

// Run produces one consensus result per image of the batch. The images
// slice carries opaque metadata through to the results untouched and may
// be nil.
func (block *ConsensusBlock) Run(
	ctx context.Context,
	sources []detection.Batch,
	images []interface{},
) ([]consensus.Result, error) {
	ctx, span := trace.StartSpan(ctx, "workflow::consensus::Run")
	defer span.End()
	if !block.parallel {
		return consensus.Consensus(sources, images, block.conf)
	}
	return block.runParallel(ctx, sources, images)
}

// runParallel evaluates batch images concurrently. Images are independent
// of each other, so results land in their input-order slots and match the
// sequential path exactly.
func (block *ConsensusBlock) runParallel(
	ctx context.Context,
	sources []detection.Batch,
	images []interface{},
) ([]consensus.Result, error) {
	size, err := consensus.BatchSize(sources)
	if err != nil {
		return nil, err
	}
	if images != nil && len(images) != size {
		return nil, errors.Wrapf(consensus.ErrBatchMismatch, "got %d images for %d predictions", len(images), size)
	}
	results := make([]consensus.Result, size)
	fs := make([]utils.SimpleFunc, 0, size)
	for idx := 0; idx < size; idx++ {
		fs = append(fs, func(ctx context.Context) error {
			out, err := consensus.ImageConsensus(consensus.SourcesAt(sources, idx), block.conf)
			if err != nil {
				return errors.Wrapf(err, "image %d", idx)
			}
			var image interface{}
			if images != nil {
				image = images[idx]
			}
			results[idx] = consensus.NewResult(out, image)
			return nil
		})
	}
	if _, err := utils.RunInParallel(ctx, fs); err != nil {
		return nil, err
	}
	block.logger.Debugw("evaluated batch in parallel", "size", size)
	return results, nil
}
