// Package extract turns classified chart shapes into structured numeric
// data, one extractor per supported chart type.
package extract

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/llimage/chartdetect/internal/detection"
)

// ErrUnsupportedChartType is returned when extraction is requested for a
// chart type without an extractor. Callers report it; it is never a panic.
var ErrUnsupportedChartType = errors.New("unsupported chart type")

// Bar is one bar of a bar chart. Height is measured up from the bottom
// edge of the page image.
type Bar struct {
	X      int     `json:"x"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Area   float64 `json:"area"`
}

// BarSet is the extracted data of a bar chart, bars ordered by
// ascending x.
type BarSet struct {
	Bars  []Bar `json:"bars"`
	Count int   `json:"count"`
}

// Segment is one wedge of a pie chart. AngleDegrees is the direction of
// the wedge centroid from the chart center, in [0, 360).
type Segment struct {
	AngleDegrees float64          `json:"angle"`
	Area         float64          `json:"area"`
	Center       detection.PointF `json:"center"`
	Percentage   float64          `json:"percentage"`
}

// PieSet is the extracted data of a pie chart, segments ordered by
// ascending angle. Percentages sum to 100 (within float rounding).
type PieSet struct {
	Center   detection.PointF `json:"center"`
	Segments []Segment        `json:"segments"`
	Count    int              `json:"count"`
}

// LinePoint is one data marker of a line chart. Size is the marker area.
type LinePoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// LineSet is the extracted data of a line chart, points ordered by
// ascending x.
type LineSet struct {
	Points []LinePoint `json:"points"`
	Count  int         `json:"count"`
}

// ChartData is the type-tagged union of per-chart-type extraction
// results. Exactly one of Bars, Pie, Line is non-nil, matching Type.
type ChartData struct {
	Type detection.ChartType `json:"type"`
	Bars *BarSet             `json:"bars,omitempty"`
	Pie  *PieSet             `json:"pie,omitempty"`
	Line *LineSet            `json:"line,omitempty"`
}

// Extract produces type-specific structured data from classified shapes.
//
// imageHeight is the page raster height in pixels, needed for bar height
// measurement. Unsupported chart types return ErrUnsupportedChartType
// wrapped with the offending type name.
func Extract(chartType detection.ChartType, shapes []detection.Shape, imageHeight int) (*ChartData, error) {
	switch chartType {
	case detection.ChartTypeBar:
		return &ChartData{Type: chartType, Bars: extractBars(shapes, imageHeight)}, nil
	case detection.ChartTypePie:
		return &ChartData{Type: chartType, Pie: extractPie(shapes)}, nil
	case detection.ChartTypeLine:
		return &ChartData{Type: chartType, Line: extractLine(shapes)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedChartType, string(chartType))
}

// extractBars reads bar geometry from rectangle-kind shapes. Bar height
// is the distance from the top of the bar to the image's bottom edge.
func extractBars(shapes []detection.Shape, imageHeight int) *BarSet {
	type barWithCenter struct {
		bar     Bar
		centerX float64
	}
	candidates := make([]barWithCenter, 0, len(shapes))
	for _, s := range shapes {
		if !s.Category.RectangleKind() {
			continue
		}
		b := s.Features.Bounds
		candidates = append(candidates, barWithCenter{
			bar: Bar{
				X:      b.X,
				Width:  b.W,
				Height: imageHeight - b.Y,
				Area:   s.Features.Area,
			},
			centerX: s.Features.Centroid.X,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].centerX < candidates[j].centerX
	})

	bars := make([]Bar, len(candidates))
	for i, c := range candidates {
		bars[i] = c.bar
	}
	return &BarSet{Bars: bars, Count: len(bars)}
}

// extractPie reads wedge geometry from segment shapes. The chart center
// is the area-weighted mean of the wedge centroids; a plain average is
// the fallback when the weighted total vanishes.
func extractPie(shapes []detection.Shape) *PieSet {
	segments := make([]detection.Shape, 0, len(shapes))
	for _, s := range shapes {
		if s.Category == detection.CategorySegment {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return &PieSet{Segments: []Segment{}, Count: 0}
	}

	var totalArea, wx, wy float64
	for _, s := range segments {
		totalArea += s.Features.Area
		wx += s.Features.Centroid.X * s.Features.Area
		wy += s.Features.Centroid.Y * s.Features.Area
	}

	var center detection.PointF
	if totalArea > 0 {
		center = detection.PointF{X: wx / totalArea, Y: wy / totalArea}
	} else {
		for _, s := range segments {
			center.X += s.Features.Centroid.X
			center.Y += s.Features.Centroid.Y
		}
		center.X /= float64(len(segments))
		center.Y /= float64(len(segments))
	}

	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		c := s.Features.Centroid
		deg := math.Atan2(c.Y-center.Y, c.X-center.X) * 180 / math.Pi
		deg = math.Mod(deg+360, 360)

		var pct float64
		if totalArea > 0 {
			pct = s.Features.Area / totalArea * 100
		}
		out = append(out, Segment{
			AngleDegrees: deg,
			Area:         s.Features.Area,
			Center:       c,
			Percentage:   pct,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AngleDegrees < out[j].AngleDegrees
	})
	return &PieSet{Center: center, Segments: out, Count: len(out)}
}

// extractLine reads marker positions from point-like shapes. The filter
// is detection.PointLike, the same predicate the classifier's point rule
// uses, so extraction can never disagree with classification.
func extractLine(shapes []detection.Shape) *LineSet {
	points := make([]LinePoint, 0, len(shapes))
	for _, s := range shapes {
		if !detection.PointLike(s.Features) {
			continue
		}
		points = append(points, LinePoint{
			X:    s.Features.Centroid.X,
			Y:    s.Features.Centroid.Y,
			Size: s.Features.Area,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].X < points[j].X
	})
	return &LineSet{Points: points, Count: len(points)}
}
