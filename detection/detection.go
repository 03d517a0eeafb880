// Package detection defines the value types exchanged by object detection
// sources and their consumers: single detections with float bounding boxes,
// per-image lists of them, and per-source batches of those lists.
package detection

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// A Detection is a single object found in one image by one detection source.
type Detection struct {
	// ID uniquely identifies the detection among all detections of a batch.
	ID string
	// ParentID names the image the detection was made against.
	ParentID string
	// Box is the axis-aligned bounding box in pixel coordinates.
	Box r2.Rect
	// Label is the class name of the detected object.
	Label string
	// ClassID is the numeric class identifier traveling with Label.
	ClassID int
	// Confidence is the source's score for the detection, in [0, 1].
	Confidence float64
}

// Detections are all the detections found in one image by one source.
type Detections []Detection

// A Batch holds one source's detections for a run of consecutive images.
type Batch []Detections

// NewDetection creates a detection with a fresh unique id.
func NewDetection(box r2.Rect, confidence float64, label string, classID int, parentID string) Detection {
	return Detection{
		ID:         uuid.New().String(),
		ParentID:   parentID,
		Box:        box,
		Label:      label,
		ClassID:    classID,
		Confidence: confidence,
	}
}

// String shows the detection in an easily readable format.
func (d Detection) String() string {
	center := d.Box.Center()
	size := d.Box.Size()
	return fmt.Sprintf("Label: %s, Confidence: %.4f, Box: %.1fx%.1f around (%.1f, %.1f)",
		d.Label, d.Confidence, size.X, size.Y, center.X, center.Y)
}

// detectionJSON is the wire shape of a detection, with a center-form
// bounding box.
type detectionJSON struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"class"`
	ClassID    int     `json:"class_id"`
	ID         string  `json:"detection_id"`
	ParentID   string  `json:"parent_id"`
}

// MarshalJSON encodes the detection with its box in center form.
func (d Detection) MarshalJSON() ([]byte, error) {
	center := d.Box.Center()
	size := d.Box.Size()
	return json.Marshal(detectionJSON{
		X:          center.X,
		Y:          center.Y,
		Width:      size.X,
		Height:     size.Y,
		Confidence: d.Confidence,
		Label:      d.Label,
		ClassID:    d.ClassID,
		ID:         d.ID,
		ParentID:   d.ParentID,
	})
}

// UnmarshalJSON decodes a detection whose box is in center form.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var wire detectionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*d = Detection{
		ID:         wire.ID,
		ParentID:   wire.ParentID,
		Box:        BoxFromCenterSize(wire.X, wire.Y, wire.Width, wire.Height),
		Label:      wire.Label,
		ClassID:    wire.ClassID,
		Confidence: wire.Confidence,
	}
	return nil
}
