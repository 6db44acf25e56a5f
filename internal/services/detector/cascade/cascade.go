package cascade

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/detector"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func init() {
	detector.DefaultRegistry.MustRegister(config.StrategyCascade, New)
}

// Detector runs an OpenCV Haar cascade over a grayscale copy of the image.
type Detector struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	minSize      image.Point
	logger       *zap.Logger
}

func New(ctx context.Context, opts detector.Options) (detector.FaceDetector, error) {
	cfg := opts.Config
	if err := detector.EnsureModel(ctx, opts, cfg.CascadePath); err != nil {
		return nil, err
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade classifier from %s", cfg.CascadePath)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Detector{
		classifier:   classifier,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
		minSize:      image.Pt(cfg.MinFaceSize, cfg.MinFaceSize),
		logger:       logger,
	}, nil
}

func (d *Detector) Name() string { return config.StrategyCascade }

func (d *Detector) Detect(ctx context.Context, img image.Image) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return false, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return false, fmt.Errorf("converted image is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray); err != nil {
		return false, fmt.Errorf("failed to convert image to grayscale: %w", err)
	}

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(gray, d.scaleFactor, d.minNeighbors, 0, d.minSize, image.Point{})
	d.mu.Unlock()

	d.logger.Debug("Cascade detection finished", zap.Int("faces", len(rects)))
	return len(rects) > 0, nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
