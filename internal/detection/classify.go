package detection

// Category is the discrete shape class assigned to a contour.
type Category string

// Shape categories, in decision-list priority order.
const (
	CategoryPoint     Category = "point"
	CategoryRectangle Category = "rectangle"
	CategorySquare    Category = "square"
	CategoryTriangle  Category = "triangle"
	CategoryCircle    Category = "circle"
	CategorySegment   Category = "segment"
	CategoryUnknown   Category = "unknown"
)

// RectangleKind reports whether the category is a rectangle or its
// square refinement. Structural analysis and bar extraction treat the
// two identically.
func (c Category) RectangleKind() bool {
	return c == CategoryRectangle || c == CategorySquare
}

// PointLike reports whether a feature vector matches a small data marker
// (a line chart point or scatter dot).
//
// This predicate is shared between the classifier's first rule and line
// data extraction, so the two can never drift apart. A marker must be
// small (area < 1000) and solid (solidity > 0.9), and additionally meet
// any one of several looser evidence combinations; markers are the most
// varied shapes in practice (circles, squares, diamonds at low
// resolution), so a single tight rule would miss too many.
func PointLike(f Features) bool {
	if f.Area >= 1000 || f.Solidity <= 0.9 {
		return false
	}
	switch {
	case f.Circularity > 0.45:
		return true
	case f.Vertices >= 5 && f.Vertices <= 8 && f.Extent > 0.6:
		return true
	case f.Area < 400 && f.Extent > 0.6 && f.Solidity > 0.95:
		return true
	case f.Solidity > 0.95 && f.Extent > 0.7:
		return true
	case f.Circularity > 0.4 && f.Extent > 0.65 && f.Solidity > 0.95:
		return true
	case f.Area < 500 && f.Vertices <= 6 && f.Solidity > 0.95:
		return true
	}
	return false
}

// Classify maps a feature vector to a shape category.
//
// The decision list is evaluated top to bottom and the first matching
// rule wins; no rule matching yields CategoryUnknown. Classification is
// a pure, deterministic function of the feature vector: identical
// vectors always produce identical categories.
//
// Rules, in order:
//  1. point: PointLike (shared predicate, see above)
//  2. rectangle/square: exactly 4 vertices filling the bounding box
//     (extent > 0.85) with a convex outline (solidity > 0.9); aspect
//     ratio within [0.95, 1.05] refines to square
//  3. triangle: exactly 3 vertices, solidity > 0.9
//  4. circle: large (area >= 1000), round (circularity > 0.8), convex
//  5. segment: large, sector-like (arc score > 0.3), mostly convex,
//     circularity in the sector band [0.2, 0.9]
func Classify(f Features) Category {
	switch {
	case PointLike(f):
		return CategoryPoint
	case f.Vertices == 4 && f.Extent > 0.85 && f.Solidity > 0.9:
		if f.AspectRatio >= 0.95 && f.AspectRatio <= 1.05 {
			return CategorySquare
		}
		return CategoryRectangle
	case f.Vertices == 3 && f.Solidity > 0.9:
		return CategoryTriangle
	case f.Circularity > 0.8 && f.Solidity > 0.9 && f.Area >= 1000:
		return CategoryCircle
	case f.Area > 1000 && f.ArcScore > 0.3 && f.Solidity > 0.8 &&
		f.Circularity >= 0.2 && f.Circularity <= 0.9:
		return CategorySegment
	}
	return CategoryUnknown
}
