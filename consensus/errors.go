package consensus

import "github.com/pkg/errors"

var (
	// ErrNoSources is returned when a consensus call gets zero detection
	// sources to work with.
	ErrNoSources = errors.New("no detection sources provided")

	// ErrBatchMismatch is returned when the sources did not produce
	// detections for the same number of images.
	ErrBatchMismatch = errors.New("detection sources have different batch sizes")

	// ErrParentMismatch is returned when detections that should describe one
	// image name different parent images.
	ErrParentMismatch = errors.New("detections reference different parent images")
)
