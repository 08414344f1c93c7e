// Package render draws detection results back onto page images for
// debugging and report attachments.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/llimage/chartdetect/internal/detection"
)

// OverlayResult contains a contour overlay encoded as base64 PNG.
type OverlayResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// ImageBase64 is the overlay encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// Overlay draws each detected shape's contour over a copy of the source
// image and returns the result as base64 PNG.
//
// Shapes are colored with evenly spaced hues so adjacent detections stay
// visually distinct; the palette is deterministic, so repeated runs
// produce identical overlays. The source image is not modified.
func Overlay(src image.Image, shapes []detection.Shape) (*OverlayResult, error) {
	canvas := DrawShapes(src, shapes)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode overlay image: %w", err)
	}

	b := canvas.Bounds()
	return &OverlayResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// DrawShapes returns a copy of src with every shape's contour painted in
// a distinct color. Contour pixels are thickened to a 3x3 dot so thin
// boundaries stay visible at page resolution.
func DrawShapes(src image.Image, shapes []detection.Shape) *image.RGBA {
	b := src.Bounds()
	canvas := image.NewRGBA(b)
	draw.Draw(canvas, b, src, b.Min, draw.Src)

	for i, shape := range shapes {
		c := paletteColor(i, len(shapes))
		for _, p := range shape.Contour {
			setDot(canvas, p.X, p.Y, c)
		}
	}
	return canvas
}

// paletteColor returns the i-th of n evenly hue-spaced colors.
func paletteColor(i, n int) color.RGBA {
	if n < 1 {
		n = 1
	}
	hue := float64(i) * 360 / float64(n)
	r, g, bl := colorful.Hsv(hue, 0.85, 0.9).RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

func setDot(canvas *image.RGBA, x, y int, c color.RGBA) {
	b := canvas.Bounds()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			px, py := x+dx, y+dy
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				canvas.SetRGBA(px, py, c)
			}
		}
	}
}
