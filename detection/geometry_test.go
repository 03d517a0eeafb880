package detection

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestBoxForms(t *testing.T) {
	corner := BoxFromCorners(10, 20, 50, 60)
	center := BoxFromCenterSize(30, 40, 40, 40)
	test.That(t, corner.ApproxEqual(center), test.ShouldBeTrue)
	test.That(t, corner.Center().X, test.ShouldEqual, 30.0)
	test.That(t, corner.Center().Y, test.ShouldEqual, 40.0)
	test.That(t, corner.Size().X, test.ShouldEqual, 40.0)
	test.That(t, corner.Size().Y, test.ShouldEqual, 40.0)

	// corners normalize regardless of argument order
	flipped := BoxFromCorners(50, 60, 10, 20)
	test.That(t, flipped.ApproxEqual(corner), test.ShouldBeTrue)
}

func TestBoxArea(t *testing.T) {
	test.That(t, BoxArea(BoxFromCorners(0, 0, 10, 20)), test.ShouldEqual, 200.0)
	test.That(t, BoxArea(BoxFromCorners(5, 5, 5, 25)), test.ShouldEqual, 0.0)
	test.That(t, BoxArea(r2.EmptyRect()), test.ShouldEqual, 0.0)
}

func TestIoU(t *testing.T) {
	a := BoxFromCorners(0, 0, 10, 10)

	// identical boxes overlap fully
	test.That(t, IoU(a, a), test.ShouldEqual, 1.0)

	// half-offset boxes share a third of their union
	b := BoxFromCorners(5, 0, 15, 10)
	test.That(t, IoU(a, b), test.ShouldAlmostEqual, 1.0/3.0)

	// disjoint and merely touching boxes do not overlap
	test.That(t, IoU(a, BoxFromCorners(20, 20, 30, 30)), test.ShouldEqual, 0.0)
	test.That(t, IoU(a, BoxFromCorners(10, 0, 20, 10)), test.ShouldEqual, 0.0)

	// zero-area boxes have a zero-area union
	degenerate := BoxFromCorners(5, 5, 5, 5)
	test.That(t, IoU(degenerate, degenerate), test.ShouldEqual, 0.0)

	// containment is the smaller area over the larger
	inner := BoxFromCorners(2, 2, 8, 8)
	test.That(t, IoU(a, inner), test.ShouldAlmostEqual, 36.0/100.0)
}
