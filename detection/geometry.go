package detection

import "github.com/golang/geo/r2"

// BoxFromCorners returns the rectangle spanning (xMin, yMin) to (xMax, yMax).
func BoxFromCorners(xMin, yMin, xMax, yMax float64) r2.Rect {
	return r2.RectFromPoints(r2.Point{X: xMin, Y: yMin}, r2.Point{X: xMax, Y: yMax})
}

// BoxFromCenterSize returns the rectangle of the given width and height
// centered on (x, y).
func BoxFromCenterSize(x, y, width, height float64) r2.Rect {
	return r2.RectFromCenterSize(r2.Point{X: x, Y: y}, r2.Point{X: width, Y: height})
}

// BoxArea returns the area of the rectangle, zero for empty rectangles.
func BoxArea(box r2.Rect) float64 {
	if box.IsEmpty() {
		return 0
	}
	return box.X.Length() * box.Y.Length()
}

// IoU returns the intersection over union of two rectangles: 1 when they
// coincide, 0 when they are disjoint or the union has no area.
func IoU(a, b r2.Rect) float64 {
	intersection := BoxArea(a.Intersection(b))
	union := BoxArea(a) + BoxArea(b) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
