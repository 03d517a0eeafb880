package consensus

import (
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/visionfuse/fusion/detection"
)

// mergeGroup fuses the detections of one consensus group into a single
// detection carrying a fresh id and the group's shared parent.
func mergeGroup(group detection.Detections, conf Config) (detection.Detection, error) {
	if len(group) == 0 {
		return detection.Detection{}, errors.New("cannot merge an empty group")
	}
	confidence, err := conf.MergeConfidenceAggregation.Apply(confidences(group))
	if err != nil {
		return detection.Detection{}, err
	}
	label, classID, err := selectClass(group, conf.MergeConfidenceAggregation)
	if err != nil {
		return detection.Detection{}, err
	}
	box, err := aggregateBoxes(group, conf.MergeCoordinatesAggregation)
	if err != nil {
		return detection.Detection{}, err
	}
	return detection.Detection{
		ID:         uuid.New().String(),
		ParentID:   group[0].ParentID,
		Box:        box,
		Label:      label,
		ClassID:    classID,
		Confidence: confidence,
	}, nil
}

func confidences(dets detection.Detections) []float64 {
	out := make([]float64, 0, len(dets))
	for _, d := range dets {
		out = append(out, d.Confidence)
	}
	return out
}

// selectClass picks the merged label and class id: the majority label under
// average aggregation, the label of the most or least confident member
// otherwise. Ties keep the earliest member.
func selectClass(group detection.Detections, mode AggregationMode) (string, int, error) {
	switch mode {
	case Average:
		counts := make(map[string]int, len(group))
		for _, d := range group {
			counts[d.Label]++
		}
		majority := group[0].Label
		for _, d := range group[1:] {
			if counts[d.Label] > counts[majority] {
				majority = d.Label
			}
		}
		classID := group[0].ClassID
		for _, d := range group {
			if d.Label == majority {
				classID = d.ClassID
				break
			}
		}
		return majority, classID, nil
	case Max:
		chosen := group[0]
		for _, d := range group[1:] {
			if d.Confidence > chosen.Confidence {
				chosen = d
			}
		}
		return chosen.Label, chosen.ClassID, nil
	case Min:
		chosen := group[0]
		for _, d := range group[1:] {
			if d.Confidence < chosen.Confidence {
				chosen = d
			}
		}
		return chosen.Label, chosen.ClassID, nil
	default:
		return "", 0, errors.Errorf("unknown aggregation mode %q", mode)
	}
}

// aggregateBoxes merges member bounding boxes: a coordinate-wise mean under
// average aggregation, the whole box of the largest or smallest member
// otherwise. Ties keep the earliest member.
func aggregateBoxes(group detection.Detections, mode AggregationMode) (r2.Rect, error) {
	switch mode {
	case Average:
		coords := make([]float64, 4)
		for _, d := range group {
			floats.Add(coords, []float64{d.Box.X.Lo, d.Box.Y.Lo, d.Box.X.Hi, d.Box.Y.Hi})
		}
		floats.Scale(1/float64(len(group)), coords)
		return detection.BoxFromCorners(coords[0], coords[1], coords[2], coords[3]), nil
	case Max:
		chosen := group[0]
		for _, d := range group[1:] {
			if detection.BoxArea(d.Box) > detection.BoxArea(chosen.Box) {
				chosen = d
			}
		}
		return chosen.Box, nil
	case Min:
		chosen := group[0]
		for _, d := range group[1:] {
			if detection.BoxArea(d.Box) < detection.BoxArea(chosen.Box) {
				chosen = d
			}
		}
		return chosen.Box, nil
	default:
		return r2.Rect{}, errors.Errorf("unknown aggregation mode %q", mode)
	}
}
