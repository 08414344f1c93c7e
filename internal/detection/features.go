package detection

import (
	"math"
	"sort"
)

// Features is the geometric feature vector computed for one contour.
//
// Every ratio-valued feature guards its denominator: when a hull area,
// box area, circle area, or mean distance is 0, the feature defaults to
// 0 instead of propagating a division error. Classification consumes
// only this record, never the contour itself, which keeps it a pure
// function of the feature vector.
type Features struct {
	// Area is the region area enclosed by the contour, in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the closed boundary length in pixels.
	Perimeter float64 `json:"perimeter"`

	// Bounds is the axis-aligned bounding box of the contour.
	Bounds Bounds `json:"bounding_box"`

	// Centroid is the region centroid from the polygon moments, falling
	// back to the bounding-box center for degenerate contours.
	Centroid PointF `json:"center"`

	// Solidity is area divided by convex-hull area; 1.0 for convex
	// shapes, lower for concave ones.
	Solidity float64 `json:"solidity"`

	// AspectRatio is bounding-box width over height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Extent is area divided by bounding-box area; measures how fully
	// the shape fills its box.
	Extent float64 `json:"extent"`

	// Circularity is area divided by the minimal enclosing circle area.
	Circularity float64 `json:"circularity"`

	// Vertices is the corner count from adaptive polygon approximation.
	Vertices int `json:"vertices"`

	// Eccentricity is the fitted-ellipse eccentricity, 0 for contours
	// with fewer than 5 points.
	Eccentricity float64 `json:"ellipse_eccentricity"`

	// ArcScore measures how pie-sector-like the point distribution is.
	// Only meaningful for areas above 1000 square pixels; 0 otherwise.
	ArcScore float64 `json:"arc_score"`
}

// ExtractFeatures computes the full feature vector for a contour.
//
// # Vertex Approximation
//
// The polygon approximation epsilon adapts to shape size so that small
// markers and large chart elements simplify comparably:
//   - area < 500:  epsilon = 0.02 x perimeter
//   - area < 2000: epsilon = 0.03 x perimeter
//   - otherwise:   epsilon = 0.04 x perimeter
//
// # Arc Score
//
// For large shapes the arc score combines two observations about the
// contour points relative to the centroid: a pie sector has points at
// roughly uniform distance along its arc (low distance spread) and a
// sweep of angles with one pronounced gap where the two straight edges
// meet the apex. The score is
//
//	0.7 x (1 - stddev(distances)/mean(distances)) + 0.3 x (maxAngleGap/360)
func ExtractFeatures(c Contour) Features {
	f := Features{
		Area:      c.Area(),
		Perimeter: c.Perimeter(),
		Bounds:    c.BoundingBox(),
		Centroid:  c.Centroid(),
	}

	hull := convexHull(c)
	if hullArea := polygonArea(hull); hullArea > 0 {
		f.Solidity = f.Area / hullArea
	}

	if f.Bounds.H > 0 {
		f.AspectRatio = float64(f.Bounds.W) / float64(f.Bounds.H)
	}
	if boxArea := f.Bounds.Area(); boxArea > 0 {
		f.Extent = f.Area / boxArea
	}

	if _, _, r := minEnclosingCircle(hull); r > 0 {
		f.Circularity = f.Area / (math.Pi * r * r)
	}

	epsilon := 0.04 * f.Perimeter
	switch {
	case f.Area < 500:
		epsilon = 0.02 * f.Perimeter
	case f.Area < 2000:
		epsilon = 0.03 * f.Perimeter
	}
	f.Vertices = len(approxPolygon(c, epsilon))

	if len(c) >= 5 {
		f.Eccentricity = ellipseEccentricity(c)
	}
	if f.Area > 1000 {
		f.ArcScore = arcScore(c, f.Centroid)
	}
	return f
}

// convexHull returns the convex hull of the contour points in
// counterclockwise order (Andrew's monotone chain).
func convexHull(points []Point) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	// Drop duplicates so collinear handling stays simple.
	uniq := pts[:1]
	for _, p := range pts[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// polygonArea computes the shoelace area of an ordered polygon.
func polygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return math.Abs(sum) / 2
}

// minEnclosingCircle returns the center and radius of the smallest
// circle containing all points (Welzl's algorithm over the hull).
func minEnclosingCircle(points []Point) (cx, cy, r float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	cx, cy, r = welzl(points, nil)
	return cx, cy, r
}

// welzl recursively computes the minimal enclosing circle with the given
// boundary points fixed on the circle. The recursion depth is bounded by
// the point count; callers pass hull points, which keeps it small.
func welzl(points []Point, boundary []Point) (cx, cy, r float64) {
	if len(points) == 0 || len(boundary) == 3 {
		return trivialCircle(boundary)
	}
	p := points[len(points)-1]
	cx, cy, r = welzl(points[:len(points)-1], boundary)
	if pointInCircle(p, cx, cy, r) {
		return cx, cy, r
	}
	withP := append(append([]Point(nil), boundary...), p)
	return welzl(points[:len(points)-1], withP)
}

func pointInCircle(p Point, cx, cy, r float64) bool {
	dx := float64(p.X) - cx
	dy := float64(p.Y) - cy
	return dx*dx+dy*dy <= r*r+1e-7
}

// trivialCircle returns the circle determined by up to three boundary
// points. Collinear triples fall back to the widest two-point circle.
func trivialCircle(boundary []Point) (cx, cy, r float64) {
	switch len(boundary) {
	case 0:
		return 0, 0, 0
	case 1:
		return float64(boundary[0].X), float64(boundary[0].Y), 0
	case 2:
		return twoPointCircle(boundary[0], boundary[1])
	}
	a, b, c := boundary[0], boundary[1], boundary[2]
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	cxx, cyy := float64(c.X), float64(c.Y)
	d := 2 * (ax*(by-cyy) + bx*(cyy-ay) + cxx*(ay-by))
	if math.Abs(d) < 1e-9 {
		// Collinear: the widest pair determines the circle.
		x1, y1, r1 := twoPointCircle(a, b)
		x2, y2, r2 := twoPointCircle(a, c)
		x3, y3, r3 := twoPointCircle(b, c)
		cx, cy, r = x1, y1, r1
		if r2 > r {
			cx, cy, r = x2, y2, r2
		}
		if r3 > r {
			cx, cy, r = x3, y3, r3
		}
		return cx, cy, r
	}
	ux := ((ax*ax+ay*ay)*(by-cyy) + (bx*bx+by*by)*(cyy-ay) + (cxx*cxx+cyy*cyy)*(ay-by)) / d
	uy := ((ax*ax+ay*ay)*(cxx-bx) + (bx*bx+by*by)*(ax-cxx) + (cxx*cxx+cyy*cyy)*(bx-ax)) / d
	dx := ux - ax
	dy := uy - ay
	return ux, uy, math.Sqrt(dx*dx + dy*dy)
}

func twoPointCircle(a, b Point) (cx, cy, r float64) {
	cx = (float64(a.X) + float64(b.X)) / 2
	cy = (float64(a.Y) + float64(b.Y)) / 2
	dx := float64(a.X) - cx
	dy := float64(a.Y) - cy
	return cx, cy, math.Sqrt(dx*dx + dy*dy)
}

// approxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm and returns the surviving vertices.
//
// The closed ring is split at its two mutually farthest points (found
// with a two-pass farthest-point heuristic) and each open chain is
// simplified independently.
func approxPolygon(c Contour, epsilon float64) []Point {
	if len(c) < 3 || epsilon <= 0 {
		return append([]Point(nil), c...)
	}

	// Farthest point from an arbitrary start, then farthest from that.
	far1 := farthestFrom(c, c[0])
	far2 := farthestFrom(c, c[far1])

	lo, hi := far1, far2
	if lo > hi {
		lo, hi = hi, lo
	}
	chainA := append([]Point(nil), c[lo:hi+1]...)
	chainB := append([]Point(nil), c[hi:]...)
	chainB = append(chainB, c[:lo+1]...)

	simpA := douglasPeucker(chainA, epsilon)
	simpB := douglasPeucker(chainB, epsilon)

	// Chain endpoints coincide; drop the shared vertices when merging.
	result := append([]Point(nil), simpA...)
	if len(simpB) > 2 {
		result = append(result, simpB[1:len(simpB)-1]...)
	}
	return result
}

func farthestFrom(c Contour, from Point) int {
	best, bestDist := 0, -1.0
	for i, p := range c {
		dx := float64(p.X - from.X)
		dy := float64(p.Y - from.Y)
		if d := dx*dx + dy*dy; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// douglasPeucker simplifies an open polyline, keeping both endpoints.
func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return points
	}
	maxDist, maxIdx := 0.0, 0
	a, b := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		if d := pointSegmentDistance(points[i], a, b); d > maxDist {
			maxDist, maxIdx = d, i
		}
	}
	if maxDist <= epsilon {
		return []Point{a, b}
	}
	left := douglasPeucker(points[:maxIdx+1], epsilon)
	right := douglasPeucker(points[maxIdx:], epsilon)
	merged := make([]Point, 0, len(left)+len(right)-1)
	merged = append(merged, left[:len(left)-1]...)
	return append(merged, right...)
}

func pointSegmentDistance(p, a, b Point) float64 {
	px, py := float64(p.X), float64(p.Y)
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// ellipseEccentricity estimates the eccentricity of the ellipse fitted
// to the contour points, from the eigenvalues of the point covariance.
func ellipseEccentricity(c Contour) float64 {
	n := float64(len(c))
	var mx, my float64
	for _, p := range c {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	mx /= n
	my /= n

	var mu20, mu02, mu11 float64
	for _, p := range c {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		mu20 += dx * dx
		mu02 += dy * dy
		mu11 += dx * dy
	}
	mu20 /= n
	mu02 /= n
	mu11 /= n

	common := math.Sqrt(math.Pow((mu20-mu02)/2, 2) + mu11*mu11)
	lambdaMax := (mu20+mu02)/2 + common
	lambdaMin := (mu20+mu02)/2 - common
	if lambdaMax <= 0 {
		return 0
	}
	ratio := lambdaMin / lambdaMax
	if ratio < 0 {
		ratio = 0
	}
	return math.Sqrt(1 - ratio)
}

// arcScore measures how sector-like the contour point distribution is
// around the centroid.
func arcScore(c Contour, centroid PointF) float64 {
	if len(c) == 0 {
		return 0
	}
	distances := make([]float64, 0, len(c))
	angles := make([]float64, 0, len(c))
	for _, p := range c {
		dx := float64(p.X) - centroid.X
		dy := float64(p.Y) - centroid.Y
		distances = append(distances, math.Hypot(dx, dy))
		deg := math.Atan2(dy, dx) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		angles = append(angles, deg)
	}

	mean, stddev := meanStddev(distances)
	var distanceScore float64
	if mean > 0 {
		distanceScore = 1 - stddev/mean
	}

	sort.Float64s(angles)
	var maxGap float64
	for i := 1; i < len(angles); i++ {
		if gap := angles[i] - angles[i-1]; gap > maxGap {
			maxGap = gap
		}
	}
	gapScore := maxGap / 360

	return 0.7*distanceScore + 0.3*gapScore
}

func meanStddev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
