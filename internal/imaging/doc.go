// Package imaging provides image loading and preprocessing for chart detection.
//
// The package owns the two steps that happen before any geometry is computed:
// decoding rendered page rasters (with optional caching across pipeline
// stages) and reducing a raster to a clean binary mask via thresholding and
// morphology. All operations work with standard Go image.Image types and use
// a coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Preprocessing
//
// Binarize implements the fixed pipeline applied to every page image:
// grayscale conversion, binary threshold at 127, morphological opening to
// drop speckle, a dilate/erode pass to split touching shapes, and closing to
// smooth boundaries. The output mask is the sole input of contour extraction.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Binarize is a pure function and may
// be called concurrently on different images.
//
// # Error Handling
//
// Loading and decoding return wrapped errors for missing files and malformed
// image data. Preprocessing itself has no failure modes; callers reject nil
// or empty images before invoking it.
package imaging
