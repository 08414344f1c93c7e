package detection

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// newMask creates an all-background binary mask.
func newMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// fillRect paints a filled foreground rectangle, corners inclusive.
func fillRect(mask *image.Gray, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

// fillCircle paints a filled foreground disk.
func fillCircle(mask *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

// fillWedge paints a filled annular sector around (cx, cy) covering
// angles [startDeg, endDeg] and radii [rInner, rOuter].
func fillWedge(mask *image.Gray, cx, cy int, rInner, rOuter, startDeg, endDeg float64) {
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			dist := math.Hypot(dx, dy)
			if dist < rInner || dist > rOuter {
				continue
			}
			deg := math.Atan2(dy, dx) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			if deg >= startDeg && deg <= endDeg {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

func TestFindContoursSingleRectangle(t *testing.T) {
	mask := newMask(100, 100)
	fillRect(mask, 20, 30, 59, 69)

	contours := FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}

	c := contours[0]
	box := c.BoundingBox()
	if box.X != 20 || box.Y != 30 || box.W != 40 || box.H != 40 {
		t.Errorf("unexpected bounding box %+v", box)
	}

	// The traced boundary polygon encloses (W-1)x(H-1).
	area := c.Area()
	if math.Abs(area-39*39) > 5 {
		t.Errorf("expected area near %d, got %.1f", 39*39, area)
	}
}

func TestFindContoursOrderedClosedBoundary(t *testing.T) {
	mask := newMask(60, 60)
	fillRect(mask, 10, 10, 40, 40)

	contours := FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}

	c := contours[0]
	if len(c) < 8 {
		t.Fatalf("contour too short: %d points", len(c))
	}
	// Consecutive points, including the closing step, must be
	// 8-neighbors of each other.
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		dx, dy := p.X-q.X, p.Y-q.Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
			t.Fatalf("points %d and %d are not adjacent: %+v -> %+v", i, (i+1)%len(c), p, q)
		}
	}
}

func TestFindContoursMultipleShapes(t *testing.T) {
	mask := newMask(200, 100)
	fillRect(mask, 10, 10, 40, 40)
	fillCircle(mask, 120, 50, 20)

	contours := FindContours(mask)
	if len(contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(contours))
	}
}

func TestFindContoursNestedHole(t *testing.T) {
	mask := newMask(100, 100)
	fillRect(mask, 10, 10, 70, 70)
	// Carve a hole; its boundary must be reported as a nested contour.
	for y := 30; y <= 50; y++ {
		for x := 30; x <= 50; x++ {
			mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	contours := FindContours(mask)
	if len(contours) != 2 {
		t.Fatalf("expected outer and hole contours, got %d", len(contours))
	}
}

func TestFindContoursEmptyMask(t *testing.T) {
	contours := FindContours(newMask(50, 50))
	if len(contours) != 0 {
		t.Errorf("expected no contours on empty mask, got %d", len(contours))
	}
}

func TestBoundsIoU(t *testing.T) {
	a := Bounds{X: 0, Y: 0, W: 10, H: 10}

	if got := a.IoU(a); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical boxes should have IoU 1, got %v", got)
	}
	if got := a.IoU(Bounds{X: 20, Y: 20, W: 10, H: 10}); got != 0 {
		t.Errorf("disjoint boxes should have IoU 0, got %v", got)
	}

	// Half-width overlap: intersection 50, union 150.
	b := Bounds{X: 5, Y: 0, W: 10, H: 10}
	if got := a.IoU(b); math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("expected IoU 1/3, got %v", got)
	}
}

func TestContourCentroidFallback(t *testing.T) {
	// Degenerate two-point contour: zeroth moment is 0, so the centroid
	// falls back to the bounding-box center.
	c := Contour{{X: 10, Y: 20}, {X: 14, Y: 20}}
	got := c.Centroid()
	if math.Abs(got.X-12.5) > 1e-9 || math.Abs(got.Y-20.5) > 1e-9 {
		t.Errorf("unexpected fallback centroid %+v", got)
	}
}
