// Package detection implements the core chart-detection geometry: contour
// extraction, per-shape feature vectors, rule-based classification, and
// spatial-arrangement analysis.
//
// The package consumes the binary masks produced by preprocessing and emits
// classified shapes plus an inferred chart type. It never touches pixels
// outside the mask and holds no state between invocations.
//
// # Pipeline Position
//
// A full detection pass runs, in order:
//
//  1. FindContours: boundary extraction from the binary mask, including
//     nested (hole) boundaries
//  2. Detector.Detect: left-to-right ordering, minimum-area filtering,
//     bounding-box IoU deduplication, feature extraction, classification
//  3. AnalyzeStructure: alignment and radial metrics over the surviving
//     centroids, chart type inference
//  4. Score / Succeeded: aggregate confidence and the success verdict
//
// # Determinism
//
// Every function in this package is a pure function of its inputs. Contours
// are sorted by the left edge of their bounding box before filtering, so
// repeated runs over the same mask produce byte-identical results. Classify
// depends only on the feature vector, never on detection history.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Error Handling
//
// The package has no error returns: degenerate contours produce zeroed
// ratio features (every denominator is guarded), classification always
// terminates in a defined category including "unknown", and an empty mask
// yields an empty shape list. Input validation happens at the pipeline
// boundary, not here.
//
// # Limitations
//
// The rule thresholds assume charts rendered with solid fills and hard
// edges. Anti-aliased strokes, gradients, and 3-D effects fall outside the
// decision list and classify as unknown.
package detection
