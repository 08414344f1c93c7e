// Package pipeline wires preprocessing, detection, and extraction into
// the single entry point callers invoke once per rendered page image.
package pipeline

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/llimage/chartdetect/internal/config"
	"github.com/llimage/chartdetect/internal/detection"
	"github.com/llimage/chartdetect/internal/extract"
	"github.com/llimage/chartdetect/internal/imaging"
)

// Pipeline runs the full chart detection sequence over one page image:
// binarize, detect and classify shapes, analyze structure, score
// confidence, and (optionally) extract chart data.
//
// A Pipeline holds only immutable configuration and is safe for
// concurrent use: a caller processing N page images may run N invocations
// in parallel with no coordination, re-assembling results in page order
// itself.
type Pipeline struct {
	cfg *config.Config
	det *detection.Detector
	log *slog.Logger
}

// New builds a pipeline from validated configuration. A nil logger
// disables pipeline logging.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		cfg: cfg,
		det: detection.NewDetector(cfg.MinShapeArea),
		log: logger,
	}
}

// Detect runs detection over one page image and never panics: malformed
// input is converted into a failure Result with a descriptive error
// string and zero shapes.
func (p *Pipeline) Detect(img image.Image) (result *detection.Result) {
	// The detection entry point must degrade to a failure result on any
	// malformed input rather than propagate a panic to the page loop.
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("detection panicked", "panic", r)
			result = detection.Failure(fmt.Sprintf("detection failed: %v", r))
		}
	}()

	if img == nil {
		return detection.Failure("input is not an image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return detection.Failure("input image is empty")
	}

	mask := imaging.Binarize(img)
	shapes := p.det.Detect(mask)
	structure, chartType := detection.AnalyzeStructure(shapes)
	confidence := detection.Score(shapes)

	p.log.Debug("detection pass complete",
		"shapes", len(shapes),
		"chart_type", string(chartType),
		"confidence", confidence,
	)

	return &detection.Result{
		Success:    detection.Succeeded(shapes, confidence, p.cfg.MinConfidence),
		Shapes:     shapes,
		ShapeCount: len(shapes),
		Confidence: confidence,
		ChartType:  chartType,
		Structure:  structure,
	}
}

// DetectAndExtract runs Detect and, when a chart type was resolved,
// extracts the corresponding structured data. Extraction problems are
// reported in the result's Error field, never raised.
func (p *Pipeline) DetectAndExtract(img image.Image) (*detection.Result, *extract.ChartData) {
	result := p.Detect(img)
	if result.ChartType == detection.ChartTypeNone || len(result.Shapes) == 0 {
		return result, nil
	}
	height := 0
	if img != nil {
		height = img.Bounds().Dy()
	}
	return result, p.extractData(result, height)
}

// DetectFile loads the image at path through the cache and runs Detect.
// Load and decode failures (missing file, non-image bytes) become a
// failure Result with a non-empty error string, not a returned error.
func (p *Pipeline) DetectFile(cache *imaging.ImageCache, path string) *detection.Result {
	img, err := cache.Load(path)
	if err != nil {
		p.log.Warn("could not load page image", "path", path, "error", err)
		return detection.Failure(err.Error())
	}
	return p.Detect(img)
}

// DetectAndExtractFile is the file-based counterpart of DetectAndExtract:
// it runs DetectFile and, when a chart type was resolved, extracts the
// structured data using the cached image's height.
func (p *Pipeline) DetectAndExtractFile(cache *imaging.ImageCache, path string) (*detection.Result, *extract.ChartData) {
	result := p.DetectFile(cache, path)
	if result.ChartType == detection.ChartTypeNone || len(result.Shapes) == 0 {
		return result, nil
	}
	// DetectFile already decoded the image, so this load is a cache hit.
	img, err := cache.Load(path)
	if err != nil {
		return result, nil
	}
	return result, p.extractData(result, img.Bounds().Dy())
}

// extractData runs chart data extraction for a resolved detection result.
// Extraction failures land in result.Error and yield nil data.
func (p *Pipeline) extractData(result *detection.Result, height int) *extract.ChartData {
	data, err := extract.Extract(result.ChartType, result.Shapes, height)
	if err != nil {
		p.log.Warn("data extraction failed", "chart_type", string(result.ChartType), "error", err)
		result.Error = err.Error()
		return nil
	}
	p.log.Info("chart extracted",
		"chart_type", string(result.ChartType),
		"shapes", result.ShapeCount,
		"confidence", result.Confidence,
	)
	return data
}
