// Package transforms holds stateless image transforms applied to frames
// before they are handed to the detection sources.
package transforms

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/visionfuse/fusion/utils"
)

// A Transform turns one image into another.
type Transform func(image.Image) (image.Image, error)

// Grayscale converts an image to grayscale.
func Grayscale(img image.Image) image.Image {
	return imaging.Grayscale(img)
}

// CropConfig are the attributes for a crop transform. The crop window is
// given by its center and size, all relative to the image dimensions.
type CropConfig struct {
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Validate ensures all parts of the config are valid.
func (conf *CropConfig) Validate() error {
	if conf.Width <= 0 {
		return errors.New("cannot crop image to 0 width (width must be positive)")
	}
	if conf.Height <= 0 {
		return errors.New("cannot crop image to 0 height (height must be positive)")
	}
	if conf.XCenter < 0 || conf.XCenter > 1 || conf.YCenter < 0 || conf.YCenter > 1 ||
		conf.Width > 1 || conf.Height > 1 {
		return errors.New("crop attributes are relative and must be between 0 and 1")
	}
	return nil
}

// NewCropTransform creates a new crop transform from raw attributes.
func NewCropTransform(am utils.AttributeMap) (Transform, error) {
	conf, err := utils.TransformAttributeMap[*CropConfig](am)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return func(img image.Image) (image.Image, error) {
		return RelativeCrop(img, *conf)
	}, nil
}

// RelativeCrop crops the image to the configured window. The window is
// clamped to the image bounds.
func RelativeCrop(img image.Image, conf CropConfig) (image.Image, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	cropped := imaging.Crop(img, absCropWindow(img, conf))
	if cropped.Bounds().Empty() {
		return nil, errors.New("crop transform cropped image to 0 pixels")
	}
	return cropped, nil
}

// absCropWindow converts the relative crop window to absolute pixels.
func absCropWindow(img image.Image, conf CropConfig) image.Rectangle {
	xMin := utils.Clamp(conf.XCenter-conf.Width/2, 0, 1)
	yMin := utils.Clamp(conf.YCenter-conf.Height/2, 0, 1)
	xMax := utils.Clamp(conf.XCenter+conf.Width/2, 0, 1)
	yMax := utils.Clamp(conf.YCenter+conf.Height/2, 0, 1)

	bounds := img.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())

	x1 := bounds.Min.X + int(math.Round(xMin*width))
	y1 := bounds.Min.Y + int(math.Round(yMin*height))
	x2 := bounds.Min.X + int(math.Round(xMax*width))
	y2 := bounds.Min.Y + int(math.Round(yMax*height))

	return image.Rect(x1, y1, x2, y2)
}
