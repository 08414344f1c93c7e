package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"
)

// ImageCache provides thread-safe caching of decoded page rasters.
//
// A document run touches each rendered page image several times (detection,
// extraction, optional overlay rendering); the cache keeps the decoded
// image.Image keyed by file path so repeated stages share one decode.
//
// ImageCache is safe for concurrent use by multiple goroutines, matching
// the pipeline's model of one goroutine per page image.
//
// Cached images remain in memory until removed via Evict or Clear. Long
// document batches should Evict pages once their results are assembled.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves a page image from the cache, decoding it from disk on a
// miss. Supported formats are PNG, JPEG, and GIF.
//
// The cache key is the exact path string; relative and absolute paths to
// the same file produce separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Decode reads a single image from r. It is the uncached entry point for
// callers that receive page rasters over a stream rather than from disk.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear removes all cached images, freeing their memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Dimensions returns the pixel width and height of the image at path,
// loading it into the cache if necessary.
func (c *ImageCache) Dimensions(path string) (width, height int, err error) {
	img, err := c.Load(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
