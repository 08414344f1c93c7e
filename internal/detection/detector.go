package detection

import (
	"image"
	"sort"
)

// iouDuplicateThreshold is the bounding-box IoU above which two
// detections are considered the same physical mark.
const iouDuplicateThreshold = 0.5

// Shape is one accepted detection: the contour, its feature vector, and
// the classified category, kept together in detector-stable order.
type Shape struct {
	Contour  Contour  `json:"contour"`
	Category Category `json:"category"`
	Features Features `json:"features"`
}

// Detector extracts, filters, and classifies shapes from a binary mask.
//
// A Detector is immutable after construction and safe for concurrent use
// on different masks.
type Detector struct {
	minShapeArea float64
}

// NewDetector creates a detector that discards contours with area below
// minShapeArea square pixels.
func NewDetector(minShapeArea float64) *Detector {
	return &Detector{minShapeArea: minShapeArea}
}

// Detect finds all classifiable shapes in a binary mask.
//
// Candidates are ordered by the left-most x-coordinate of their bounding
// box, giving downstream consumers a stable, reproducible left-to-right
// ordering. Each candidate in turn is:
//
//  1. Discarded if its area is below the configured minimum.
//  2. Discarded as a duplicate if its bounding box overlaps an already
//     accepted box with IoU above 0.5 — the detector never emits two
//     detections for the same physical mark.
//  3. Classified from its feature vector; only non-unknown shapes are
//     accepted.
//
// The returned slice preserves that order. Detect never returns shapes
// with area below the minimum, and no pair of returned shapes has
// bounding-box IoU above 0.5.
func (d *Detector) Detect(mask *image.Gray) []Shape {
	contours := FindContours(mask)

	sort.SliceStable(contours, func(i, j int) bool {
		return contours[i].BoundingBox().X < contours[j].BoundingBox().X
	})

	shapes := make([]Shape, 0, len(contours))
	accepted := make([]Bounds, 0, len(contours))

	for _, contour := range contours {
		if contour.Area() < d.minShapeArea {
			continue
		}

		box := contour.BoundingBox()
		duplicate := false
		for _, prev := range accepted {
			if box.IoU(prev) > iouDuplicateThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		features := ExtractFeatures(contour)
		category := Classify(features)
		if category == CategoryUnknown {
			continue
		}

		shapes = append(shapes, Shape{
			Contour:  contour,
			Category: category,
			Features: features,
		})
		accepted = append(accepted, box)
	}
	return shapes
}

// Result is the outcome of one full detection pass over a page image.
type Result struct {
	// Success is true when shapes were found and the aggregate
	// confidence met the configured minimum.
	Success bool `json:"success"`

	// Shapes are the accepted detections in left-to-right order.
	Shapes []Shape `json:"shapes"`

	// ShapeCount is len(Shapes), kept explicit for report consumers.
	ShapeCount int `json:"shape_count"`

	// Confidence is the aggregate detection quality in [0, 1].
	Confidence float64 `json:"confidence"`

	// ChartType is the inferred chart type, or ChartTypeNone.
	ChartType ChartType `json:"chart_type"`

	// Structure holds the spatial-arrangement metrics behind ChartType.
	Structure Structure `json:"structure"`

	// Error carries a descriptive message when Success is false because
	// of malformed input rather than low confidence.
	Error string `json:"error,omitempty"`
}

// Failure builds a Result describing rejected or malformed input.
// The result has no shapes, zero confidence, and Success false.
func Failure(msg string) *Result {
	return &Result{
		Success:    false,
		Shapes:     []Shape{},
		ShapeCount: 0,
		Confidence: 0,
		ChartType:  ChartTypeNone,
		Error:      msg,
	}
}
