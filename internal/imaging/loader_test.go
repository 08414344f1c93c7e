package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG encodes a small solid image to a temp file and returns
// its path.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode temp png: %v", err)
	}
	return path
}

func TestImageCacheLoad(t *testing.T) {
	path := writeTestPNG(t, 32, 24)
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("loaded %dx%d, want 32x24", b.Dx(), b.Dy())
	}

	// A second load must come from the cache, returning the identical
	// decoded image.
	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached Load() error: %v", err)
	}
	if again != img {
		t.Error("second load returned a different image instance")
	}
}

func TestImageCacheLoadMissingFile(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image at all"))); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
}

func TestImageCacheEvictAndClear(t *testing.T) {
	path := writeTestPNG(t, 8, 8)
	cache := NewImageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cache.Evict(path)
	cache.Evict("never-loaded") // unknown paths are a no-op

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("reload after Evict: %v", err)
	}
	cache.Clear()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("reload after Clear: %v", err)
	}
}

func TestDimensions(t *testing.T) {
	path := writeTestPNG(t, 64, 48)
	cache := NewImageCache()

	w, h, err := cache.Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions() error: %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("Dimensions = %dx%d, want 64x48", w, h)
	}
}
