package landmark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	face "github.com/Kagami/go-face"
	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/decoder"
	"github.com/phambaophuc/face-detection/internal/services/detector"
	"go.uber.org/zap"
)

// ModelFiles are the dlib files the recognizer loads from its model directory.
var ModelFiles = []string{
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
	"mmod_human_face_detector.dat",
}

func init() {
	detector.DefaultRegistry.MustRegister(config.StrategyLandmark, New)
}

// Detector uses dlib's HOG face detector with landmark fitting.
type Detector struct {
	mu         sync.Mutex
	recognizer *face.Recognizer
	logger     *zap.Logger
}

func New(ctx context.Context, opts detector.Options) (detector.FaceDetector, error) {
	dir := opts.Config.LandmarkModelDir
	for _, name := range ModelFiles {
		if err := detector.EnsureModel(ctx, opts, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}

	recognizer, err := face.NewRecognizer(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load landmark models from %s: %w", dir, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Detector{recognizer: recognizer, logger: logger}, nil
}

func (d *Detector) Name() string { return config.StrategyLandmark }

func (d *Detector) Detect(ctx context.Context, img image.Image) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var buf bytes.Buffer
	if err := decoder.EncodeJPEG(&buf, img, 95); err != nil {
		return false, fmt.Errorf("failed to encode image: %w", err)
	}

	d.mu.Lock()
	faces, err := d.recognizer.Recognize(buf.Bytes())
	d.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("landmark detection failed: %w", err)
	}

	d.logger.Debug("Landmark detection finished", zap.Int("faces", len(faces)))
	return len(faces) > 0, nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recognizer.Close()
	return nil
}
