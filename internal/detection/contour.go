package detection

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// PointF represents a 2D coordinate with sub-pixel precision, used for
// centroids and other derived positions.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds represents an axis-aligned bounding box in pixel coordinates.
//
// (X, Y) is the top-left corner; W and H are the box extents. A box
// covers pixels [X, X+W) x [Y, Y+H).
type Bounds struct {
	X int `json:"x"` // Left edge (inclusive)
	Y int `json:"y"` // Top edge (inclusive)
	W int `json:"w"` // Width in pixels
	H int `json:"h"` // Height in pixels
}

// Area returns the box area in square pixels.
func (b Bounds) Area() float64 {
	return float64(b.W) * float64(b.H)
}

// IoU returns the intersection-over-union of two bounding boxes: the
// ratio of their overlap area to the area of their union. The result is
// in [0, 1]; disjoint boxes score 0 and identical boxes score 1.
func (b Bounds) IoU(other Bounds) float64 {
	ix1 := max(b.X, other.X)
	iy1 := max(b.Y, other.Y)
	ix2 := min(b.X+b.W, other.X+other.W)
	iy2 := min(b.Y+b.H, other.Y+other.H)

	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	intersection := float64(ix2-ix1) * float64(iy2-iy1)
	union := b.Area() + other.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// Contour is an ordered closed sequence of boundary points describing a
// connected region in a binary mask. The last point connects back to the
// first.
type Contour []Point

// BoundingBox returns the smallest axis-aligned box containing every
// contour point.
func (c Contour) BoundingBox() Bounds {
	if len(c) == 0 {
		return Bounds{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := c[0].X, c[0].Y
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Bounds{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// Area returns the region area enclosed by the contour, computed with
// the shoelace formula. Degenerate contours (single points, thin lines)
// return 0 or near-0, which lets the minimum-area filter drop them.
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed boundary polyline.
func (c Contour) Perimeter() float64 {
	if len(c) < 2 {
		return 0
	}
	var sum float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		dx := float64(q.X - p.X)
		dy := float64(q.Y - p.Y)
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum
}

// Centroid returns the region centroid computed from the polygon moments.
// When the zeroth moment vanishes (degenerate contours) it falls back to
// the bounding-box center.
func (c Contour) Centroid() PointF {
	if len(c) >= 3 {
		var a, cx, cy float64
		for i, p := range c {
			q := c[(i+1)%len(c)]
			cross := float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
			a += cross
			cx += (float64(p.X) + float64(q.X)) * cross
			cy += (float64(p.Y) + float64(q.Y)) * cross
		}
		if a != 0 {
			a /= 2
			return PointF{X: cx / (6 * a), Y: cy / (6 * a)}
		}
	}
	b := c.BoundingBox()
	return PointF{X: float64(b.X) + float64(b.W)/2, Y: float64(b.Y) + float64(b.H)/2}
}

// mooreOffsets lists the 8-neighborhood in clockwise order starting at
// west, with Y increasing downward.
var mooreOffsets = [8]Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// FindContours extracts all region boundaries from a binary mask,
// including the inner boundaries of holes (nested contours).
//
// The mask convention follows the preprocessing stage: pixels above 127
// are foreground. Contours are returned in mask scan order; the detector
// re-sorts them into its stable left-to-right order.
//
// # Algorithm
//
//  1. Label 8-connected foreground components.
//  2. Trace each component's outer boundary with Moore neighbor tracing
//     (Jacob's stopping criterion), yielding an ordered closed contour.
//  3. Label 4-connected background components; those not reachable from
//     the mask border are holes, and their boundaries are traced the
//     same way and emitted as nested contours.
func FindContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	fg := make([][]bool, height)
	for y := 0; y < height; y++ {
		fg[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			fg[y][x] = mask.GrayAt(x+b.Min.X, y+b.Min.Y).Y > 127
		}
	}

	contours := make([]Contour, 0)

	// Outer boundaries of foreground components.
	seen := make([][]bool, height)
	for y := range seen {
		seen[y] = make([]bool, width)
	}
	inGrid := func(x, y int) bool { return x >= 0 && x < width && y >= 0 && y < height }
	isFG := func(x, y int) bool { return inGrid(x, y) && fg[y][x] }

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg[y][x] || seen[y][x] {
				continue
			}
			contour := traceBoundary(isFG, x, y, width*height)
			contours = append(contours, contour)
			markComponent(fg, seen, x, y, width, height)
		}
	}

	// Inner boundaries: background regions not connected to the border.
	outside := floodBackground(fg, width, height)
	holeSeen := make([][]bool, height)
	for y := range holeSeen {
		holeSeen[y] = make([]bool, width)
	}
	isHole := func(x, y int) bool {
		return inGrid(x, y) && !fg[y][x] && !outside[y][x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !isHole(x, y) || holeSeen[y][x] {
				continue
			}
			contour := traceBoundary(isHole, x, y, width*height)
			contours = append(contours, contour)
			markHole(fg, outside, holeSeen, x, y, width, height)
		}
	}

	// Translate into the mask's own coordinate space.
	if b.Min.X != 0 || b.Min.Y != 0 {
		for _, c := range contours {
			for i := range c {
				c[i].X += b.Min.X
				c[i].Y += b.Min.Y
			}
		}
	}
	return contours
}

// traceBoundary walks the boundary of the region containing (sx, sy)
// using Moore neighbor tracing. (sx, sy) must be the first region pixel
// in row-major scan order, which guarantees its west neighbor is outside
// the region. maxSteps bounds the walk against pathological input.
func traceBoundary(inRegion func(x, y int) bool, sx, sy, maxSteps int) Contour {
	contour := Contour{{X: sx, Y: sy}}
	cx, cy := sx, sy
	bx, by := sx-1, sy
	startBX, startBY := bx, by

	for steps := 0; steps < 4*maxSteps; steps++ {
		// Index of the backtrack direction relative to the current pixel.
		bi := 0
		for i, o := range mooreOffsets {
			if cx+o.X == bx && cy+o.Y == by {
				bi = i
				break
			}
		}

		// Scan clockwise from just past the backtrack neighbor.
		nx, ny := -1, -1
		pbx, pby := bx, by
		found := false
		for j := 1; j <= 8; j++ {
			o := mooreOffsets[(bi+j)%8]
			tx, ty := cx+o.X, cy+o.Y
			if inRegion(tx, ty) {
				nx, ny = tx, ty
				found = true
				break
			}
			pbx, pby = tx, ty
		}
		if !found {
			break // isolated single pixel
		}
		if nx == sx && ny == sy && pbx == startBX && pby == startBY {
			break
		}
		contour = append(contour, Point{X: nx, Y: ny})
		cx, cy = nx, ny
		bx, by = pbx, pby
	}
	return contour
}

// markComponent flood-fills the 8-connected foreground component at
// (sx, sy) into seen, so each component is traced once.
func markComponent(fg, seen [][]bool, sx, sy, width, height int) {
	stack := []Point{{X: sx, Y: sy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if seen[p.Y][p.X] || !fg[p.Y][p.X] {
			continue
		}
		seen[p.Y][p.X] = true
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// markHole flood-fills the 4-connected background component at (sx, sy)
// into holeSeen.
func markHole(fg, outside, holeSeen [][]bool, sx, sy, width, height int) {
	stack := []Point{{X: sx, Y: sy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if holeSeen[p.Y][p.X] || fg[p.Y][p.X] || outside[p.Y][p.X] {
			continue
		}
		holeSeen[p.Y][p.X] = true
		stack = append(stack,
			Point{X: p.X + 1, Y: p.Y}, Point{X: p.X - 1, Y: p.Y},
			Point{X: p.X, Y: p.Y + 1}, Point{X: p.X, Y: p.Y - 1})
	}
}

// floodBackground marks every background pixel reachable from the mask
// border with 4-connectivity. Unmarked background pixels are holes.
func floodBackground(fg [][]bool, width, height int) [][]bool {
	outside := make([][]bool, height)
	for y := range outside {
		outside[y] = make([]bool, width)
	}
	var stack []Point
	for x := 0; x < width; x++ {
		stack = append(stack, Point{X: x, Y: 0}, Point{X: x, Y: height - 1})
	}
	for y := 0; y < height; y++ {
		stack = append(stack, Point{X: 0, Y: y}, Point{X: width - 1, Y: y})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if outside[p.Y][p.X] || fg[p.Y][p.X] {
			continue
		}
		outside[p.Y][p.X] = true
		stack = append(stack,
			Point{X: p.X + 1, Y: p.Y}, Point{X: p.X - 1, Y: p.Y},
			Point{X: p.X, Y: p.Y + 1}, Point{X: p.X, Y: p.Y - 1})
	}
	return outside
}
