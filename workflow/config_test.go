package workflow

import (
	"testing"

	"go.viam.com/test"

	"github.com/visionfuse/fusion/consensus"
	"github.com/visionfuse/fusion/utils"
)

func TestConfigDefaults(t *testing.T) {
	conf, err := utils.TransformAttributeMap[*ConsensusConfig](utils.AttributeMap{
		"required_votes": 2.0,
	})
	test.That(t, err, test.ShouldBeNil)

	engineConf, err := conf.EngineConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engineConf, test.ShouldResemble, consensus.Config{
		RequiredVotes:               2,
		ClassAware:                  true,
		IoUThreshold:                0.3,
		Confidence:                  0.0,
		PresenceAggregation:         consensus.Max,
		MergeConfidenceAggregation:  consensus.Average,
		MergeCoordinatesAggregation: consensus.Average,
	})
}

func TestConfigOverrides(t *testing.T) {
	conf, err := utils.TransformAttributeMap[*ConsensusConfig](utils.AttributeMap{
		"required_votes":      3.0,
		"class_aware":         false,
		"iou_threshold":       0.5,
		"confidence":          0.25,
		"classes_to_consider": []interface{}{"cat", "dog"},
		"required_objects":    2.0,
		"presence_confidence_aggregation":          "average",
		"detections_merge_confidence_aggregation":  "max",
		"detections_merge_coordinates_aggregation": "min",
	})
	test.That(t, err, test.ShouldBeNil)

	engineConf, err := conf.EngineConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engineConf, test.ShouldResemble, consensus.Config{
		RequiredVotes:               3,
		ClassAware:                  false,
		IoUThreshold:                0.5,
		Confidence:                  0.25,
		ClassesToConsider:           []string{"cat", "dog"},
		RequiredObjects:             consensus.RequireTotal(2),
		PresenceAggregation:         consensus.Average,
		MergeConfidenceAggregation:  consensus.Max,
		MergeCoordinatesAggregation: consensus.Min,
	})
}

func TestConfigRequiredObjectsByClass(t *testing.T) {
	conf := &ConsensusConfig{
		RequiredVotes:   1,
		RequiredObjects: map[string]interface{}{"cat": 2.0, "dog": 1.0},
	}
	engineConf, err := conf.EngineConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engineConf.RequiredObjects, test.ShouldResemble,
		consensus.RequireByClass(map[string]int{"cat": 2, "dog": 1}))

	conf.RequiredObjects = map[string]int{"cat": 1}
	engineConf, err = conf.EngineConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engineConf.RequiredObjects, test.ShouldResemble,
		consensus.RequireByClass(map[string]int{"cat": 1}))
}

func TestConfigErrors(t *testing.T) {
	// missing votes
	conf := &ConsensusConfig{}
	_, err := conf.EngineConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "required votes")

	// unknown aggregation mode
	conf = &ConsensusConfig{RequiredVotes: 1, PresenceConfidenceAggregation: "median"}
	_, err = conf.EngineConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "presence_confidence_aggregation")

	// unusable required objects
	conf = &ConsensusConfig{RequiredVotes: 1, RequiredObjects: "two"}
	_, err = conf.EngineConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "required_objects")

	conf = &ConsensusConfig{RequiredVotes: 1, RequiredObjects: map[string]interface{}{"cat": "two"}}
	_, err = conf.EngineConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `class "cat"`)

	// out of range threshold
	bad := 1.5
	conf = &ConsensusConfig{RequiredVotes: 1, IoUThreshold: &bad}
	_, err = conf.EngineConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "iou threshold")
}

func TestConfigValidatePath(t *testing.T) {
	conf := &ConsensusConfig{RequiredVotes: 1}
	deps, err := conf.Validate("blocks.0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldBeNil)

	conf = &ConsensusConfig{}
	_, err = conf.Validate("blocks.0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "blocks.0")
}
