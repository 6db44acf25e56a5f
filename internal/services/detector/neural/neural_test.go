package neural

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/detector"
)

func TestModelFilesSelection(t *testing.T) {
	cfg := config.DetectorConfig{
		ShortRangeModelPath:  "short.caffemodel",
		ShortRangeConfigPath: "short.prototxt",
		FullRangeModelPath:   "yunet.onnx",
	}

	spec, err := ModelFiles(cfg)
	if err != nil || spec.Model != "short.caffemodel" || spec.Config != "short.prototxt" || spec.Format != FormatSSD {
		t.Fatalf("unexpected short-range spec %+v %v", spec, err)
	}

	cfg.ModelSelection = FullRange
	spec, err = ModelFiles(cfg)
	if err != nil || spec.Model != "yunet.onnx" || spec.Config != "" || spec.Format != FormatYuNet {
		t.Fatalf("unexpected full-range spec %+v %v", spec, err)
	}

	cfg.ModelSelection = 7
	if _, err := ModelFiles(cfg); err == nil {
		t.Fatal("expected error for unknown model selection")
	}
}

func TestSSDLayoutReadsConfidenceColumn(t *testing.T) {
	values := []float32{
		0, 1, 0.20, 0.1, 0.1, 0.3, 0.3,
		0, 1, 0.91, 0.4, 0.4, 0.6, 0.6,
		0, 1, 0.05, 0.0, 0.0, 0.1, 0.1,
	}
	if got := layouts[FormatSSD].best(values); got != 0.91 {
		t.Fatalf("expected 0.91, got %v", got)
	}
}

func TestYuNetLayoutReadsTrailingScore(t *testing.T) {
	// Box coordinates larger than 1 must never be mistaken for a score.
	values := []float32{
		120, 80, 64, 64, 130, 100, 160, 100, 145, 115, 135, 130, 155, 130, 0.62,
		10, 12, 20, 20, 14, 18, 22, 18, 18, 22, 15, 26, 21, 26, 0.87,
	}
	if got := layouts[FormatYuNet].best(values); got != 0.87 {
		t.Fatalf("expected 0.87, got %v", got)
	}
}

func TestLayoutIgnoresIncompleteRows(t *testing.T) {
	if got := layouts[FormatSSD].best(nil); got != 0 {
		t.Fatalf("expected 0 for empty output, got %v", got)
	}
	if got := layouts[FormatSSD].best([]float32{0, 1, 0.99}); got != 0 {
		t.Fatalf("expected truncated row to be ignored, got %v", got)
	}
}

func TestNewFailsWithoutModel(t *testing.T) {
	dir := t.TempDir()
	opts := detector.Options{Config: config.DetectorConfig{
		ShortRangeModelPath:  filepath.Join(dir, "missing.caffemodel"),
		ShortRangeConfigPath: filepath.Join(dir, "missing.prototxt"),
		InputSize:            300,
		MinConfidence:        0.5,
	}}

	if _, err := New(context.Background(), opts); !errors.Is(err, detector.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	if !detector.DefaultRegistry.IsRegistered(config.StrategyNeural) {
		t.Fatal("expected neural strategy to be registered")
	}
}
