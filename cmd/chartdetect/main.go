package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/llimage/chartdetect/internal/config"
	"github.com/llimage/chartdetect/internal/detection"
	"github.com/llimage/chartdetect/internal/extract"
	"github.com/llimage/chartdetect/internal/imaging"
	"github.com/llimage/chartdetect/internal/pipeline"
	"github.com/llimage/chartdetect/internal/render"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// pageReport is the per-image JSON record written to stdout.
type pageReport struct {
	Path    string                `json:"path"`
	Result  *detection.Result     `json:"result"`
	Data    *extract.ChartData    `json:"data,omitempty"`
	Overlay *render.OverlayResult `json:"overlay,omitempty"`
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("chartdetect %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	cfg, paths, err := config.LoadFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chartdetect: %v\n", err)
		os.Exit(2)
	}
	if len(paths) == 0 {
		printUsage()
		os.Exit(2)
	}
	for _, path := range paths {
		if !config.FileExists(path) {
			fmt.Fprintf(os.Stderr, "chartdetect: no such file: %s\n", path)
			os.Exit(2)
		}
	}

	// stdout carries the JSON report; everything else goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	p := pipeline.New(cfg, logger)
	cache := imaging.NewImageCache()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	exitCode := 0
	for _, path := range paths {
		report := processPage(p, cache, cfg, logger, path)
		if !report.Result.Success {
			exitCode = 1
		}
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "chartdetect: failed to write report: %v\n", err)
			os.Exit(1)
		}
		cache.Evict(path)
	}
	os.Exit(exitCode)
}

func processPage(p *pipeline.Pipeline, cache *imaging.ImageCache, cfg *config.Config, logger *slog.Logger, path string) pageReport {
	result, data := p.DetectAndExtractFile(cache, path)
	report := pageReport{Path: path, Result: result, Data: data}

	if cfg.RenderOverlays && len(result.Shapes) > 0 {
		img, err := cache.Load(path)
		if err == nil {
			report.Overlay, err = render.Overlay(img, result.Shapes)
		}
		if err != nil {
			logger.Warn("could not render overlay", "path", path, "error", err)
		}
	}
	return report
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printUsage() {
	fmt.Println("chartdetect - detect charts in rendered page images and extract their data")
	fmt.Println()
	fmt.Println("Usage: chartdetect [options] <image>...")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --min-confidence   Minimum aggregate confidence for success (default 0.7)")
	fmt.Println("  --min-shape-area   Minimum shape area in square pixels (default 50)")
	fmt.Println("  --loglevel         Log level: debug, info, warn, error (default info)")
	fmt.Println("  --overlays         Embed a base64 PNG contour overlay in each report")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables use the CHARTDETECT_ prefix, e.g.")
	fmt.Println("  CHARTDETECT_LOGLEVEL=debug")
	fmt.Println()
	fmt.Println("One JSON report per input image is written to stdout; logs go to stderr.")
}
