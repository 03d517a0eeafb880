package consensus

import "github.com/visionfuse/fusion/detection"

// maxOverlaps finds, for every source other than the seed's, the single not
// yet consumed candidate with the highest IoU against the seed. Candidates
// must strictly exceed the IoU threshold and, in class-aware mode, share
// the seed's label. On equal overlap the earlier candidate stays.
func maxOverlaps(
	seed detection.Detection,
	seedSource int,
	fromSources []detection.Detections,
	consumed map[string]bool,
	conf Config,
) map[int]detection.Detection {
	best := map[int]detection.Detection{}
	bestIoU := map[int]float64{}
	for source, dets := range fromSources {
		if source == seedSource {
			continue
		}
		for _, other := range dets {
			if consumed[other.ID] {
				continue
			}
			if conf.ClassAware && other.Label != seed.Label {
				continue
			}
			overlap := detection.IoU(seed.Box, other.Box)
			if overlap <= conf.IoUThreshold {
				continue
			}
			if prev, ok := bestIoU[source]; !ok || prev < overlap {
				best[source] = other
				bestIoU[source] = overlap
			}
		}
	}
	return best
}

// groupFromMatches assembles a consensus group in a stable order: the seed
// first, then the matched detections by ascending source index.
func groupFromMatches(
	seed detection.Detection,
	seedSource int,
	matches map[int]detection.Detection,
	numSources int,
) detection.Detections {
	group := detection.Detections{seed}
	for source := 0; source < numSources; source++ {
		if source == seedSource {
			continue
		}
		if matched, ok := matches[source]; ok {
			group = append(group, matched)
		}
	}
	return group
}
