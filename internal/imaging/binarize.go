package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// BinaryThreshold is the fixed grayscale cutoff separating foreground
// marks from the page background.
const BinaryThreshold = 127

// morphRadius is the radius of the structuring element used for all
// morphological passes (radius 1 = 3x3 window).
const morphRadius = 1.0

// Binarize converts a raster page image into a clean binary mask suitable
// for contour extraction.
//
// Parameters:
//   - img: Source image, grayscale or color. Must not be nil.
//
// Returns:
//   - *image.Gray: Binary mask where foreground pixels are white (255)
//     and background pixels are black (0).
//
// # Algorithm
//
//  1. Grayscale conversion: RGB -> luminance
//  2. Fixed binary threshold at cutoff 127
//  3. Morphological opening (3x3): removes speckle noise smaller than
//     the structuring element
//  4. Dilate then erode by one iteration each: separates touching shapes
//     without changing their size
//  5. Morphological closing (3x3): smooths ragged boundaries
//  6. Re-threshold: the morphology passes operate in RGBA space, so a
//     final cut restores a two-valued mask
//
// Binarize is a pure function of its input and never fails; malformed
// input (nil image, empty bounds) is the caller's responsibility to
// reject before invoking the pipeline.
//
// # Limitations
//
// The fixed cutoff assumes charts rendered with solid fills. Anti-aliased
// or gradient-filled marks land on either side of the threshold and may
// fragment.
func Binarize(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	mask := segment.Threshold(gray, BinaryThreshold)

	// Opening: erosion followed by dilation.
	opened := effect.Dilate(effect.Erode(mask, morphRadius), morphRadius)

	// One dilation and one erosion to split shapes that barely touch.
	separated := effect.Erode(effect.Dilate(opened, morphRadius), morphRadius)

	// Closing: dilation followed by erosion.
	closed := effect.Erode(effect.Dilate(separated, morphRadius), morphRadius)

	return segment.Threshold(closed, BinaryThreshold)
}

// IsForeground reports whether the mask pixel at (x, y) is part of a
// shape. Coordinates outside the mask bounds are background.
func IsForeground(mask *image.Gray, x, y int) bool {
	b := mask.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return false
	}
	return mask.GrayAt(x, y).Y > BinaryThreshold
}
