package workflow

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/visionfuse/fusion/consensus"
	"github.com/visionfuse/fusion/detection"
	"github.com/visionfuse/fusion/utils"
)

func det(id, label string, conf, xMin, yMin, xMax, yMax float64) detection.Detection {
	return detection.Detection{
		ID:         id,
		ParentID:   "img-1",
		Box:        detection.BoxFromCorners(xMin, yMin, xMax, yMax),
		Label:      label,
		Confidence: conf,
	}
}

func testSources() []detection.Batch {
	return []detection.Batch{
		{
			{det("a1", "cat", 0.8, 10, 10, 50, 50)},
			{det("a2", "dog", 0.7, 0, 0, 30, 30)},
			{},
		},
		{
			{det("b1", "cat", 0.9, 12, 12, 52, 52)},
			{det("b2", "dog", 0.6, 1, 1, 31, 31)},
			{},
		},
	}
}

func TestNewConsensusBlock(t *testing.T) {
	logger := golog.NewTestLogger(t)

	block, err := NewConsensusBlock(utils.AttributeMap{"required_votes": 2.0}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, block.Config().RequiredVotes, test.ShouldEqual, 2)
	test.That(t, block.Config().IoUThreshold, test.ShouldEqual, DefaultIoUThreshold)

	_, err = NewConsensusBlock(utils.AttributeMap{}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "required votes")

	_, err = NewConsensusBlock(utils.AttributeMap{
		"required_votes": 1.0,
		"iou_threshold":  "half",
	}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBlockRun(t *testing.T) {
	logger := golog.NewTestLogger(t)
	block, err := NewConsensusBlock(utils.AttributeMap{"required_votes": 2.0}, logger)
	test.That(t, err, test.ShouldBeNil)

	images := []interface{}{"meta-1", "meta-2", "meta-3"}
	results, err := block.Run(context.Background(), testSources(), images)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results, test.ShouldHaveLength, 3)
	test.That(t, results[0].ObjectPresent, test.ShouldBeTrue)
	test.That(t, results[0].Predictions[0].Label, test.ShouldEqual, "cat")
	test.That(t, results[1].ObjectPresent, test.ShouldBeTrue)
	test.That(t, results[1].Predictions[0].Label, test.ShouldEqual, "dog")
	test.That(t, results[2].ParentID, test.ShouldEqual, consensus.UndefinedParentID)
	test.That(t, results[2].Image, test.ShouldEqual, "meta-3")
}

func TestBlockRunParallelMatchesSequential(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sequential, err := NewConsensusBlock(utils.AttributeMap{"required_votes": 2.0}, logger)
	test.That(t, err, test.ShouldBeNil)
	parallel, err := NewConsensusBlock(utils.AttributeMap{
		"required_votes": 2.0,
		"parallel":       true,
	}, logger)
	test.That(t, err, test.ShouldBeNil)

	images := []interface{}{"meta-1", "meta-2", "meta-3"}
	want, err := sequential.Run(context.Background(), testSources(), images)
	test.That(t, err, test.ShouldBeNil)
	got, err := parallel.Run(context.Background(), testSources(), images)
	test.That(t, err, test.ShouldBeNil)

	// merged ids are freshly generated on every run, everything else must
	// line up slot for slot
	for i := range want {
		for j := range want[i].Predictions {
			want[i].Predictions[j].ID = ""
		}
	}
	for i := range got {
		for j := range got[i].Predictions {
			got[i].Predictions[j].ID = ""
		}
	}
	test.That(t, got, test.ShouldResemble, want)
}

func TestBlockRunErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)

	for _, attrs := range []utils.AttributeMap{
		{"required_votes": 1.0},
		{"required_votes": 1.0, "parallel": true},
	} {
		block, err := NewConsensusBlock(attrs, logger)
		test.That(t, err, test.ShouldBeNil)

		_, err = block.Run(context.Background(), nil, nil)
		test.That(t, errors.Is(err, consensus.ErrNoSources), test.ShouldBeTrue)

		uneven := []detection.Batch{
			{{}, {}},
			{{}},
		}
		_, err = block.Run(context.Background(), uneven, nil)
		test.That(t, errors.Is(err, consensus.ErrBatchMismatch), test.ShouldBeTrue)

		mismatched := det("b", "cat", 0.9, 10, 10, 50, 50)
		mismatched.ParentID = "img-2"
		_, err = block.Run(context.Background(), []detection.Batch{
			{{det("a", "cat", 0.8, 10, 10, 50, 50)}},
			{{mismatched}},
		}, nil)
		test.That(t, errors.Is(err, consensus.ErrParentMismatch), test.ShouldBeTrue)
	}
}
