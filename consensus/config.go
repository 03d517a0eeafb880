package consensus

import "github.com/pkg/errors"

// A Config controls how detections from multiple sources reach consensus.
type Config struct {
	// RequiredVotes is how many sources must agree on an object for it to
	// survive, the source that proposed it included.
	RequiredVotes int
	// ClassAware restricts matching and presence counting to detections
	// sharing a label.
	ClassAware bool
	// IoUThreshold is the overlap two detections must strictly exceed to be
	// considered the same object.
	IoUThreshold float64
	// Confidence is the floor a merged detection's confidence must reach to
	// be kept.
	Confidence float64
	// ClassesToConsider, when non-nil, drops detections with other labels
	// before matching.
	ClassesToConsider []string
	// RequiredObjects is the object presence requirement, if any.
	RequiredObjects RequiredObjects
	// PresenceAggregation collapses merged confidences into the reported
	// presence confidence.
	PresenceAggregation AggregationMode
	// MergeConfidenceAggregation aggregates member confidences and selects
	// the merged label.
	MergeConfidenceAggregation AggregationMode
	// MergeCoordinatesAggregation aggregates member bounding boxes.
	MergeCoordinatesAggregation AggregationMode
}

// Validate checks that the configuration is complete and in range.
func (conf Config) Validate() error {
	if conf.RequiredVotes < 1 {
		return errors.New("required votes must be a positive number")
	}
	if conf.IoUThreshold < 0 || conf.IoUThreshold > 1 {
		return errors.New("iou threshold must be between 0 and 1")
	}
	if conf.Confidence < 0 || conf.Confidence > 1 {
		return errors.New("confidence must be between 0 and 1")
	}
	modes := []AggregationMode{
		conf.PresenceAggregation,
		conf.MergeConfidenceAggregation,
		conf.MergeCoordinatesAggregation,
	}
	for _, mode := range modes {
		if _, err := ParseAggregationMode(string(mode)); err != nil {
			return err
		}
	}
	return conf.RequiredObjects.Validate()
}

// RequiredObjects expresses how many merged detections an image needs for
// objects to count as present: none, a total, or a per-label minimum. The
// zero value requires nothing.
type RequiredObjects struct {
	total   int
	byClass map[string]int
}

// RequireTotal asks for at least total merged detections in an image.
func RequireTotal(total int) RequiredObjects {
	return RequiredObjects{total: total}
}

// RequireByClass asks for at least the given number of merged detections
// for each listed label.
func RequireByClass(counts map[string]int) RequiredObjects {
	byClass := make(map[string]int, len(counts))
	for label, count := range counts {
		byClass[label] = count
	}
	return RequiredObjects{byClass: byClass}
}

// Total returns the overall number of merged detections required; for a
// per-label requirement that is the sum of the per-label minimums.
func (req RequiredObjects) Total() int {
	if req.byClass == nil {
		return req.total
	}
	total := 0
	for _, count := range req.byClass {
		total += count
	}
	return total
}

// Validate checks that no requirement is negative.
func (req RequiredObjects) Validate() error {
	if req.total < 0 {
		return errors.New("required objects cannot be negative")
	}
	for label, count := range req.byClass {
		if count < 0 {
			return errors.Errorf("required objects for %q cannot be negative", label)
		}
	}
	return nil
}
