package detection

import (
	"math"
	"sort"
)

// ChartType is the overall chart kind inferred from shape arrangement.
type ChartType string

// Supported chart types. ChartTypeNone means no arrangement matched.
const (
	ChartTypeBar  ChartType = "bar"
	ChartTypePie  ChartType = "pie"
	ChartTypeLine ChartType = "line"
	ChartTypeNone ChartType = ""
)

// Structure holds the spatial-arrangement metrics computed over all
// classified shapes. Every metric is in [0, 1].
type Structure struct {
	// VerticalAlignment measures how tightly centroids cluster on a
	// shared vertical axis (1.0 = identical x-coordinates).
	VerticalAlignment float64 `json:"vertical_alignment"`

	// HorizontalAlignment is the analogous measure on y-coordinates.
	HorizontalAlignment float64 `json:"horizontal_alignment"`

	// RadialArrangement measures how evenly centroids are distributed
	// around their common center, by angle and distance. Only
	// meaningful for more than 2 shapes; 0 otherwise.
	RadialArrangement float64 `json:"radial_arrangement"`

	// GridPattern is the minimum of the two alignment scores.
	GridPattern float64 `json:"grid_pattern"`
}

// AnalyzeStructure computes arrangement metrics from the shapes'
// centroids and infers the overall chart type.
//
// Inference rules, in order:
//   - pie:  any segment shape present, or a circle present with radial
//     arrangement above 0.7
//   - bar:  a rectangle present with vertical alignment above 0.7
//   - line: more than 2 point shapes
//   - none: otherwise
func AnalyzeStructure(shapes []Shape) (Structure, ChartType) {
	var s Structure
	if len(shapes) == 0 {
		return s, ChartTypeNone
	}

	xs := make([]float64, len(shapes))
	ys := make([]float64, len(shapes))
	for i, sh := range shapes {
		xs[i] = sh.Features.Centroid.X
		ys[i] = sh.Features.Centroid.Y
	}

	s.VerticalAlignment = alignmentScore(xs)
	s.HorizontalAlignment = alignmentScore(ys)
	if len(shapes) > 2 {
		s.RadialArrangement = radialScore(xs, ys)
	}
	s.GridPattern = math.Min(s.VerticalAlignment, s.HorizontalAlignment)

	return s, inferChartType(shapes, s)
}

// alignmentScore returns 1 - mean(|v - mean(v)| / range(v)), defined as
// 1.0 when all values coincide (range 0).
func alignmentScore(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	minV, maxV := values[0], values[0]
	var mean float64
	for _, v := range values {
		mean += v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	mean /= float64(len(values))

	rng := maxV - minV
	if rng == 0 {
		return 1.0
	}
	var devSum float64
	for _, v := range values {
		devSum += math.Abs(v-mean) / rng
	}
	return 1 - devSum/float64(len(values))
}

// radialScore measures how evenly the centroids surround their common
// center: 0.95 weight on angular uniformity, 0.05 on distance
// uniformity, clamped to [0, 1].
func radialScore(xs, ys []float64) float64 {
	n := len(xs)
	var cx, cy float64
	for i := range xs {
		cx += xs[i]
		cy += ys[i]
	}
	cx /= float64(n)
	cy /= float64(n)

	angles := make([]float64, n)
	distances := make([]float64, n)
	for i := range xs {
		dx := xs[i] - cx
		dy := ys[i] - cy
		deg := math.Atan2(dy, dx) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		angles[i] = deg
		distances[i] = math.Hypot(dx, dy)
	}
	sort.Float64s(angles)

	expectedGap := 360 / float64(n)
	var gapDevSum float64
	for i := 0; i < n; i++ {
		var gap float64
		if i < n-1 {
			gap = angles[i+1] - angles[i]
		} else {
			gap = angles[0] + 360 - angles[n-1]
		}
		gapDevSum += math.Abs(gap-expectedGap) / expectedGap
	}
	angleUniformity := 1 - gapDevSum/float64(n)

	mean, stddev := meanStddev(distances)
	var distanceUniformity float64
	if mean > 0 {
		distanceUniformity = 1 - stddev/mean
	}

	score := 0.95*angleUniformity + 0.05*distanceUniformity
	return clamp01(score)
}

func inferChartType(shapes []Shape, s Structure) ChartType {
	var hasSegment, hasCircle, hasRectangle bool
	var pointCount int
	for _, sh := range shapes {
		switch {
		case sh.Category == CategorySegment:
			hasSegment = true
		case sh.Category == CategoryCircle:
			hasCircle = true
		case sh.Category.RectangleKind():
			hasRectangle = true
		case sh.Category == CategoryPoint:
			pointCount++
		}
	}

	switch {
	case hasSegment || (hasCircle && s.RadialArrangement > 0.7):
		return ChartTypePie
	case hasRectangle && s.VerticalAlignment > 0.7:
		return ChartTypeBar
	case pointCount > 2:
		return ChartTypeLine
	}
	return ChartTypeNone
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
