package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultMinConfidence is the minimum aggregate confidence required
	// for a detection to be reported as successful.
	DefaultMinConfidence = 0.7

	// DefaultMinShapeArea is the minimum contour area, in square pixels,
	// for a candidate shape to survive filtering.
	DefaultMinShapeArea = 50.0

	// DefaultShapeSimilarityThreshold is carried for compatibility with
	// earlier revisions of the detector. It is advisory: the canonical
	// duplicate rule uses a fixed bounding-box IoU cutoff of 0.5.
	DefaultShapeSimilarityThreshold = 0.85

	// DefaultLogLevel controls the slog handler level.
	DefaultLogLevel = "info"
)

// Config holds all tunable parameters for the chart detection pipeline.
//
// The zero value is not usable; obtain instances via DefaultConfig or
// LoadFromFlags. Config values are read-only once a pipeline is built
// from them, which keeps per-image invocations safe to run concurrently.
type Config struct {
	// MinConfidence is the success cutoff for aggregate detection
	// confidence, in [0, 1].
	MinConfidence float64

	// MinShapeArea discards contours smaller than this many square pixels
	// before classification.
	MinShapeArea float64

	// ShapeSimilarityThreshold is an advisory knob retained from earlier
	// detector revisions. The duplicate filter ignores it and applies the
	// fixed 0.5 bounding-box IoU rule.
	ShapeSimilarityThreshold float64

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// RenderOverlays enables writing a contour overlay PNG next to each
	// processed image.
	RenderOverlays bool
}

// DefaultConfig returns a configuration with the canonical defaults.
func DefaultConfig() *Config {
	return &Config{
		MinConfidence:            DefaultMinConfidence,
		MinShapeArea:             DefaultMinShapeArea,
		ShapeSimilarityThreshold: DefaultShapeSimilarityThreshold,
		LogLevel:                 DefaultLogLevel,
		RenderOverlays:           false,
	}
}

// LoadFromFlags parses command line flags, merges environment variables
// (prefix CHARTDETECT_), and returns a validated configuration together
// with the remaining positional arguments (the image paths).
//
// Flags take precedence over environment variables, which take precedence
// over the built-in defaults.
func LoadFromFlags(args []string) (*Config, []string, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("CHARTDETECT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("min-confidence", cfg.MinConfidence)
	v.SetDefault("min-shape-area", cfg.MinShapeArea)
	v.SetDefault("shape-similarity", cfg.ShapeSimilarityThreshold)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("overlays", cfg.RenderOverlays)

	fs := pflag.NewFlagSet("chartdetect", pflag.ContinueOnError)
	fs.Float64("min-confidence", cfg.MinConfidence, "Minimum aggregate confidence for a successful detection (0-1)")
	fs.Float64("min-shape-area", cfg.MinShapeArea, "Minimum shape area in square pixels")
	fs.Float64("shape-similarity", cfg.ShapeSimilarityThreshold, "Advisory shape similarity threshold (unused by the IoU duplicate rule)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Bool("overlays", cfg.RenderOverlays, "Write contour overlay PNGs next to processed images")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg.MinConfidence = v.GetFloat64("min-confidence")
	cfg.MinShapeArea = v.GetFloat64("min-shape-area")
	cfg.ShapeSimilarityThreshold = v.GetFloat64("shape-similarity")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.RenderOverlays = v.GetBool("overlays")

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all configuration values are within their
// documented ranges.
func (c *Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min-confidence must be within [0, 1], got %v", c.MinConfidence)
	}
	if c.MinShapeArea < 0 {
		return fmt.Errorf("min-shape-area must be non-negative, got %v", c.MinShapeArea)
	}
	if c.ShapeSimilarityThreshold < 0 || c.ShapeSimilarityThreshold > 1 {
		return fmt.Errorf("shape-similarity must be within [0, 1], got %v", c.ShapeSimilarityThreshold)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// FileExists reports whether path names an existing regular file.
// Shared helper for the CLI's input validation.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
