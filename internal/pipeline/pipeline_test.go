package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llimage/chartdetect/internal/config"
	"github.com/llimage/chartdetect/internal/detection"
	"github.com/llimage/chartdetect/internal/extract"
	"github.com/llimage/chartdetect/internal/imaging"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return New(config.DefaultConfig(), nil)
}

func newPage(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

func paintRect(img *image.Gray, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func paintDisk(img *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

func paintWedge(img *image.Gray, cx, cy int, rInner, rOuter, startDeg, endDeg float64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			dist := math.Hypot(dx, dy)
			if dist < rInner || dist > rOuter {
				continue
			}
			deg := math.Atan2(dy, dx) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			if deg >= startDeg && deg <= endDeg {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

// barPage draws four bars of the given pixel heights standing on a
// baseline ten pixels above the bottom edge.
func barPage(heights []int) *image.Gray {
	img := newPage(300, 240)
	x := 30
	for _, h := range heights {
		paintRect(img, x, 229-(h-1), x+29, 229)
		x += 60
	}
	return img
}

func TestDetectBarChart(t *testing.T) {
	p := testPipeline(t)
	heights := []int{100, 150, 200, 125}
	img := barPage(heights)

	result := p.Detect(img)
	require.NotNil(t, result)
	require.Len(t, result.Shapes, 4)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.GreaterOrEqual(t, result.Confidence, 0.7)
	for _, s := range result.Shapes {
		assert.True(t, s.Category.RectangleKind(), "bar classified as %q", s.Category)
	}

	// Bars spread across the page do not align on a shared vertical
	// axis, so bar extraction is requested explicitly.
	data, err := extract.Extract(detection.ChartTypeBar, result.Shapes, img.Bounds().Dy())
	require.NoError(t, err)
	require.Len(t, data.Bars.Bars, 4)
	for i, h := range heights {
		assert.InDelta(t, h+10, data.Bars.Bars[i].Height, 3,
			"bar %d height", i)
	}
}

func TestDetectLineChart(t *testing.T) {
	p := testPipeline(t)
	img := newPage(300, 200)
	paintDisk(img, 40, 140, 12)
	paintDisk(img, 110, 90, 12)
	paintDisk(img, 180, 110, 12)
	paintDisk(img, 250, 50, 12)
	// A hairline axis must disappear during preprocessing, not become a
	// fifth shape.
	for x := 10; x < 290; x++ {
		img.SetGray(x, 180, color.Gray{Y: 255})
	}

	result, data := p.DetectAndExtract(img)
	require.Len(t, result.Shapes, 4)
	assert.Equal(t, detection.ChartTypeLine, result.ChartType)
	require.NotNil(t, data)
	require.NotNil(t, data.Line)
	require.Len(t, data.Line.Points, 4)

	for i := 1; i < len(data.Line.Points); i++ {
		assert.Greater(t, data.Line.Points[i].X, data.Line.Points[i-1].X,
			"points must come out left to right")
	}
}

func TestDetectPieChart(t *testing.T) {
	p := testPipeline(t)
	img := newPage(400, 400)
	paintWedge(img, 200, 200, 50, 150, 10, 80)
	paintWedge(img, 200, 200, 50, 150, 100, 170)
	paintWedge(img, 200, 200, 50, 150, 190, 260)
	paintWedge(img, 200, 200, 50, 150, 280, 350)

	result, data := p.DetectAndExtract(img)
	require.Len(t, result.Shapes, 4)
	assert.Equal(t, detection.ChartTypePie, result.ChartType)
	require.NotNil(t, data)
	require.NotNil(t, data.Pie)
	require.Len(t, data.Pie.Segments, 4)

	assert.InDelta(t, 200, data.Pie.Center.X, 10)
	assert.InDelta(t, 200, data.Pie.Center.Y, 10)

	var sum float64
	for _, seg := range data.Pie.Segments {
		sum += seg.Percentage
	}
	assert.InDelta(t, 100, sum, 1)
}

func TestDetectRectangleUnderSpeckleNoise(t *testing.T) {
	p := testPipeline(t)
	img := newPage(200, 200)
	paintRect(img, 60, 60, 139, 139)

	// Scatter isolated noise pixels; all are smaller than the
	// morphological opening window and must vanish.
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 150; i++ {
		img.SetGray(rng.Intn(200), rng.Intn(200), color.Gray{Y: 255})
	}

	result := p.Detect(img)
	require.Len(t, result.Shapes, 1)
	assert.True(t, result.Shapes[0].Category.RectangleKind())
	assert.True(t, result.Success)
}

func TestDetectNilImage(t *testing.T) {
	result := testPipeline(t).Detect(nil)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.Shapes)
}

func TestDetectEmptyImage(t *testing.T) {
	result := testPipeline(t).Detect(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestDetectBlankPage(t *testing.T) {
	result := testPipeline(t).Detect(newPage(100, 100))
	assert.False(t, result.Success)
	assert.Zero(t, result.ShapeCount)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, detection.ChartTypeNone, result.ChartType)
}

func TestDetectIsDeterministic(t *testing.T) {
	p := testPipeline(t)
	img := barPage([]int{80, 160, 120, 60})

	first := p.Detect(img)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, p.Detect(img), "run %d diverged", i)
	}
}

func TestDetectAndExtractFile(t *testing.T) {
	img := newPage(300, 200)
	paintDisk(img, 40, 140, 12)
	paintDisk(img, 110, 90, 12)
	paintDisk(img, 180, 110, 12)
	paintDisk(img, 250, 50, 12)

	path := filepath.Join(t.TempDir(), "line.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	result, data := testPipeline(t).DetectAndExtractFile(imaging.NewImageCache(), path)
	assert.Equal(t, detection.ChartTypeLine, result.ChartType)
	require.NotNil(t, data)
	require.NotNil(t, data.Line)
	assert.Equal(t, 4, data.Line.Count)
}

func TestDetectAndExtractFileMissing(t *testing.T) {
	result, data := testPipeline(t).DetectAndExtractFile(
		imaging.NewImageCache(), filepath.Join(t.TempDir(), "absent.png"))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, data)
}

func TestDetectFileMissing(t *testing.T) {
	p := testPipeline(t)
	result := p.DetectFile(imaging.NewImageCache(), filepath.Join(t.TempDir(), "absent.png"))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestDetectFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a png"), 0o644))

	result := testPipeline(t).DetectFile(imaging.NewImageCache(), path)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}
