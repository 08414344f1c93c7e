package detection

// Score aggregates per-shape quality into one confidence value in [0, 1].
//
// Each shape contributes solidity x extent — a solid shape that fills
// its bounding box is a high-quality detection, while ragged or sparse
// contours drag the mean down. An empty shape list scores 0.
func Score(shapes []Shape) float64 {
	if len(shapes) == 0 {
		return 0
	}
	var sum float64
	for _, s := range shapes {
		sum += s.Features.Solidity * s.Features.Extent
	}
	return sum / float64(len(shapes))
}

// Succeeded reports the success verdict for a detection pass: at least
// one shape was found and the aggregate confidence met minConfidence.
func Succeeded(shapes []Shape, confidence, minConfidence float64) bool {
	return len(shapes) > 0 && confidence >= minConfidence
}
