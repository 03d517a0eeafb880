package consensus

import "github.com/visionfuse/fusion/detection"

// AnyObjectKey is the presence confidence key reported when consensus is
// not class aware.
const AnyObjectKey = "any_object"

// evaluatePresence decides whether the merged detections satisfy the
// configured object presence requirement and, when they do, reports an
// aggregated confidence per label (or under AnyObjectKey when not class
// aware).
func evaluatePresence(merged detection.Detections, conf Config) (bool, map[string]float64, error) {
	notPresent := map[string]float64{}
	if len(merged) == 0 {
		return false, notPresent, nil
	}
	required := conf.RequiredObjects
	if !conf.ClassAware && required.byClass != nil {
		required = RequireTotal(required.Total())
	}
	if required.byClass == nil {
		if len(merged) < required.total {
			return false, notPresent, nil
		}
		if !conf.ClassAware {
			overall, err := conf.PresenceAggregation.Apply(confidences(merged))
			if err != nil {
				return false, nil, err
			}
			return true, map[string]float64{AnyObjectKey: overall}, nil
		}
		byLabel, err := labelConfidences(partitionByLabel(merged), conf.PresenceAggregation)
		if err != nil {
			return false, nil, err
		}
		return true, byLabel, nil
	}
	partitioned := partitionByLabel(merged)
	for label, minimum := range required.byClass {
		if len(partitioned[label]) < minimum {
			return false, notPresent, nil
		}
	}
	byLabel, err := labelConfidences(partitioned, conf.PresenceAggregation)
	if err != nil {
		return false, nil, err
	}
	return true, byLabel, nil
}

func partitionByLabel(dets detection.Detections) map[string]detection.Detections {
	byLabel := map[string]detection.Detections{}
	for _, d := range dets {
		byLabel[d.Label] = append(byLabel[d.Label], d)
	}
	return byLabel
}

func labelConfidences(
	byLabel map[string]detection.Detections,
	mode AggregationMode,
) (map[string]float64, error) {
	out := make(map[string]float64, len(byLabel))
	for label, dets := range byLabel {
		aggregated, err := mode.Apply(confidences(dets))
		if err != nil {
			return nil, err
		}
		out[label] = aggregated
	}
	return out, nil
}
