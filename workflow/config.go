// Package workflow wraps the consensus engine as a workflow block: raw
// attribute maps become validated engine configuration, and batches of
// per-source predictions become consensus result records.
package workflow

import (
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/visionfuse/fusion/consensus"
)

// Attribute defaults for a consensus block.
const (
	DefaultClassAware   = true
	DefaultIoUThreshold = 0.3
	DefaultConfidence   = 0.0
)

// Default aggregation modes for a consensus block.
const (
	DefaultPresenceAggregation         = consensus.Max
	DefaultMergeConfidenceAggregation  = consensus.Average
	DefaultMergeCoordinatesAggregation = consensus.Average
)

// A ConsensusConfig holds the raw attributes of a consensus block.
type ConsensusConfig struct {
	RequiredVotes                         int         `json:"required_votes"`
	ClassAware                            *bool       `json:"class_aware,omitempty"`
	IoUThreshold                          *float64    `json:"iou_threshold,omitempty"`
	Confidence                            *float64    `json:"confidence,omitempty"`
	ClassesToConsider                     []string    `json:"classes_to_consider,omitempty"`
	RequiredObjects                       interface{} `json:"required_objects,omitempty"`
	PresenceConfidenceAggregation         string      `json:"presence_confidence_aggregation,omitempty"`
	DetectionsMergeConfidenceAggregation  string      `json:"detections_merge_confidence_aggregation,omitempty"`
	DetectionsMergeCoordinatesAggregation string      `json:"detections_merge_coordinates_aggregation,omitempty"`
	Parallel                              bool        `json:"parallel,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *ConsensusConfig) Validate(path string) ([]string, error) {
	if _, err := conf.EngineConfig(); err != nil {
		return nil, errors.Wrapf(err, "error validating %q", path)
	}
	return nil, nil
}

// EngineConfig expands the raw attributes into a complete engine
// configuration, filling unset attributes with their defaults.
func (conf *ConsensusConfig) EngineConfig() (consensus.Config, error) {
	out := consensus.Config{
		RequiredVotes:               conf.RequiredVotes,
		ClassAware:                  DefaultClassAware,
		IoUThreshold:                DefaultIoUThreshold,
		Confidence:                  DefaultConfidence,
		ClassesToConsider:           conf.ClassesToConsider,
		PresenceAggregation:         DefaultPresenceAggregation,
		MergeConfidenceAggregation:  DefaultMergeConfidenceAggregation,
		MergeCoordinatesAggregation: DefaultMergeCoordinatesAggregation,
	}
	if conf.ClassAware != nil {
		out.ClassAware = *conf.ClassAware
	}
	if conf.IoUThreshold != nil {
		out.IoUThreshold = *conf.IoUThreshold
	}
	if conf.Confidence != nil {
		out.Confidence = *conf.Confidence
	}
	var err error
	if out.PresenceAggregation, err = modeOrDefault(
		conf.PresenceConfidenceAggregation, DefaultPresenceAggregation,
	); err != nil {
		return consensus.Config{}, errors.Wrap(err, "presence_confidence_aggregation")
	}
	if out.MergeConfidenceAggregation, err = modeOrDefault(
		conf.DetectionsMergeConfidenceAggregation, DefaultMergeConfidenceAggregation,
	); err != nil {
		return consensus.Config{}, errors.Wrap(err, "detections_merge_confidence_aggregation")
	}
	if out.MergeCoordinatesAggregation, err = modeOrDefault(
		conf.DetectionsMergeCoordinatesAggregation, DefaultMergeCoordinatesAggregation,
	); err != nil {
		return consensus.Config{}, errors.Wrap(err, "detections_merge_coordinates_aggregation")
	}
	if out.RequiredObjects, err = parseRequiredObjects(conf.RequiredObjects); err != nil {
		return consensus.Config{}, errors.Wrap(err, "required_objects")
	}
	if err := out.Validate(); err != nil {
		return consensus.Config{}, err
	}
	return out, nil
}

func modeOrDefault(name string, def consensus.AggregationMode) (consensus.AggregationMode, error) {
	if name == "" {
		return def, nil
	}
	return consensus.ParseAggregationMode(name)
}

// parseRequiredObjects accepts the two shapes the required_objects
// attribute can take: a single count or a map of per-class counts.
func parseRequiredObjects(raw interface{}) (consensus.RequiredObjects, error) {
	if raw == nil {
		return consensus.RequiredObjects{}, nil
	}
	switch counts := raw.(type) {
	case map[string]interface{}:
		byClass := make(map[string]int, len(counts))
		for label, rawCount := range counts {
			count, err := cast.ToIntE(rawCount)
			if err != nil {
				return consensus.RequiredObjects{}, errors.Wrapf(err, "class %q", label)
			}
			byClass[label] = count
		}
		return consensus.RequireByClass(byClass), nil
	case map[string]int:
		return consensus.RequireByClass(counts), nil
	default:
		count, err := cast.ToIntE(raw)
		if err != nil {
			return consensus.RequiredObjects{}, err
		}
		return consensus.RequireTotal(count), nil
	}
}
