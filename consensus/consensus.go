// Package consensus fuses object detections made independently by several
// sources against the same images: detections that enough sources agree on
// survive, agreeing detections merge into one, and configurable presence
// rules decide whether the image contains the objects looked for.
package consensus

import (
	"github.com/pkg/errors"

	"github.com/visionfuse/fusion/detection"
)

const (
	// UndefinedParentID marks an image for which no source produced any
	// detection.
	UndefinedParentID = "undefined"
	// PredictionType labels every consensus result record.
	PredictionType = "object-detection"
)

// An Outcome is the consensus verdict for a single image.
type Outcome struct {
	// ParentID is the image all surviving detections descend from, or
	// UndefinedParentID when every source came up empty.
	ParentID string
	// ObjectPresent reports whether the presence requirement was met.
	ObjectPresent bool
	// PresenceConfidence carries an aggregated confidence per label, or
	// under AnyObjectKey when not class aware. Empty when not present.
	PresenceConfidence map[string]float64
	// Detections are the merged detections that reached consensus.
	Detections detection.Detections
}

// A Result pairs an outcome with the image metadata it belongs to, in the
// record shape downstream workflow steps expect.
type Result struct {
	ParentID           string               `json:"parent_id"`
	Predictions        detection.Detections `json:"predictions"`
	Image              interface{}          `json:"image"`
	ObjectPresent      bool                 `json:"object_present"`
	PresenceConfidence map[string]float64   `json:"presence_confidence"`
	PredictionType     string               `json:"prediction_type"`
}

// NewResult pairs an outcome with its image metadata.
func NewResult(out Outcome, image interface{}) Result {
	return Result{
		ParentID:           out.ParentID,
		Predictions:        out.Detections,
		Image:              image,
		ObjectPresent:      out.ObjectPresent,
		PresenceConfidence: out.PresenceConfidence,
		PredictionType:     PredictionType,
	}
}

// BatchSize checks that every source produced detections for the same
// number of images and returns that number.
func BatchSize(sources []detection.Batch) (int, error) {
	if len(sources) == 0 {
		return 0, ErrNoSources
	}
	size := len(sources[0])
	for _, batch := range sources[1:] {
		if len(batch) != size {
			return 0, errors.Wrapf(ErrBatchMismatch, "got sizes %d and %d", size, len(batch))
		}
	}
	return size, nil
}

// SourcesAt gathers every source's detections for the image at the given
// batch index.
func SourcesAt(sources []detection.Batch, idx int) []detection.Detections {
	fromSources := make([]detection.Detections, 0, len(sources))
	for _, batch := range sources {
		fromSources = append(fromSources, batch[idx])
	}
	return fromSources
}

// Consensus runs consensus over every image of a batch and returns one
// result per image, in input order. The images slice carries opaque
// metadata through to the results untouched and may be nil.
func Consensus(sources []detection.Batch, images []interface{}, conf Config) ([]Result, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	size, err := BatchSize(sources)
	if err != nil {
		return nil, err
	}
	if images != nil && len(images) != size {
		return nil, errors.Wrapf(ErrBatchMismatch, "got %d images for %d predictions", len(images), size)
	}
	results := make([]Result, 0, size)
	for idx := 0; idx < size; idx++ {
		out, err := ImageConsensus(SourcesAt(sources, idx), conf)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", idx)
		}
		var image interface{}
		if images != nil {
			image = images[idx]
		}
		results = append(results, NewResult(out, image))
	}
	return results, nil
}

// ImageConsensus runs consensus for a single image given every source's
// detections for it.
func ImageConsensus(fromSources []detection.Detections, conf Config) (Outcome, error) {
	if allEmpty(fromSources) {
		return Outcome{
			ParentID:           UndefinedParentID,
			PresenceConfidence: map[string]float64{},
			Detections:         detection.Detections{},
		}, nil
	}
	parentID, err := commonParent(fromSources)
	if err != nil {
		return Outcome{}, err
	}
	if conf.ClassesToConsider != nil {
		keep := detection.NewLabelFilter(conf.ClassesToConsider)
		filtered := make([]detection.Detections, 0, len(fromSources))
		for _, dets := range fromSources {
			filtered = append(filtered, keep(dets))
		}
		fromSources = filtered
	}

	consumed := map[string]bool{}
	merged := detection.Detections{}
	for source, dets := range fromSources {
		for _, seed := range dets {
			if consumed[seed.ID] {
				continue
			}
			matches := maxOverlaps(seed, source, fromSources, consumed, conf)
			// the seed votes for itself
			if len(matches) < conf.RequiredVotes-1 {
				continue
			}
			group := groupFromMatches(seed, source, matches, len(fromSources))
			for _, member := range group {
				consumed[member.ID] = true
			}
			fused, err := mergeGroup(group, conf)
			if err != nil {
				return Outcome{}, err
			}
			if fused.Confidence < conf.Confidence {
				continue
			}
			merged = append(merged, fused)
		}
	}

	present, presenceConfidence, err := evaluatePresence(merged, conf)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		ParentID:           parentID,
		ObjectPresent:      present,
		PresenceConfidence: presenceConfidence,
		Detections:         merged,
	}, nil
}

func allEmpty(fromSources []detection.Detections) bool {
	for _, dets := range fromSources {
		if len(dets) > 0 {
			return false
		}
	}
	return true
}

// commonParent returns the single parent image id shared by every
// detection.
func commonParent(fromSources []detection.Detections) (string, error) {
	var parentID string
	var seen bool
	for _, dets := range fromSources {
		for _, d := range dets {
			if !seen {
				parentID, seen = d.ParentID, true
				continue
			}
			if d.ParentID != parentID {
				return "", errors.Wrapf(ErrParentMismatch, "got %q and %q", parentID, d.ParentID)
			}
		}
	}
	return parentID, nil
}
