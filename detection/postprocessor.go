package detection

// Postprocessor defines a function that filters/modifies an incoming list of detections.
type Postprocessor func(Detections) Detections

// NewLabelFilter returns a function that filters out detections whose label
// is not in the given list.
func NewLabelFilter(labels []string) Postprocessor {
	allowed := make(map[string]bool, len(labels))
	for _, label := range labels {
		allowed[label] = true
	}
	return func(in Detections) Detections {
		out := make(Detections, 0, len(in))
		for _, d := range in {
			if allowed[d.Label] {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewScoreFilter returns a function that filters out detections below a certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in Detections) Detections {
		out := make(Detections, 0, len(in))
		for _, d := range in {
			if d.Confidence >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewAreaFilter returns a function that filters out detections below a certain box area.
func NewAreaFilter(area float64) Postprocessor {
	return func(in Detections) Detections {
		out := make(Detections, 0, len(in))
		for _, d := range in {
			if BoxArea(d.Box) >= area {
				out = append(out, d)
			}
		}
		return out
	}
}
