package neural

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

const (
	ShortRange = 0
	FullRange  = 1
)

// Format names the output convention of a network.
type Format string

const (
	// FormatSSD rows are [batch, class, confidence, x1, y1, x2, y2].
	FormatSSD Format = "ssd"
	// FormatYuNet rows are [x, y, w, h, 5 landmark pairs, score].
	FormatYuNet Format = "yunet"
)

// outputLayout locates the score in a flat, row-major detection tensor.
type outputLayout struct {
	width int
	score int
}

var layouts = map[Format]outputLayout{
	FormatSSD:   {width: 7, score: 2},
	FormatYuNet: {width: 15, score: 14},
}

// best returns the highest score among the complete rows of values.
func (l outputLayout) best(values []float32) float32 {
	best := float32(0)
	for row := 0; row+l.width <= len(values); row += l.width {
		if score := values[row+l.score]; score > best {
			best = score
		}
	}
	return best
}

// res10 was trained on BGR frames with this per-channel mean.
var ssdMean = gocv.NewScalar(104, 177, 123, 0)

func init() {
	detector.DefaultRegistry.MustRegister(config.StrategyNeural, New)
}

// ModelSpec is one selectable network and the convention its output follows.
type ModelSpec struct {
	Model  string
	Config string
	Format Format
}

// ModelFiles resolves the configured model selection. Short range is the res10
// SSD Caffe model; full range is YuNet, which also finds small and distant faces.
func ModelFiles(cfg config.DetectorConfig) (ModelSpec, error) {
	switch cfg.ModelSelection {
	case ShortRange:
		return ModelSpec{Model: cfg.ShortRangeModelPath, Config: cfg.ShortRangeConfigPath, Format: FormatSSD}, nil
	case FullRange:
		return ModelSpec{Model: cfg.FullRangeModelPath, Config: cfg.FullRangeConfigPath, Format: FormatYuNet}, nil
	default:
		return ModelSpec{}, fmt.Errorf("unknown model selection %d", cfg.ModelSelection)
	}
}

// network scores a BGR image; the result is the best face confidence found.
type network interface {
	bestScore(mat gocv.Mat) (float32, error)
	Close() error
}

type ssdNetwork struct {
	net       gocv.Net
	inputSize image.Point
}

func (n *ssdNetwork) bestScore(mat gocv.Mat) (float32, error) {
	// mat is already BGR, the order res10 expects, so channels are not swapped.
	blob := gocv.BlobFromImage(mat, 1.0, n.inputSize, ssdMean, false, false)
	defer blob.Close()

	n.net.SetInput(blob, "")
	output := n.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return 0, nil
	}
	values, err := output.DataPtrFloat32()
	if err != nil {
		return 0, fmt.Errorf("failed to read network output: %w", err)
	}
	return layouts[FormatSSD].best(values), nil
}

func (n *ssdNetwork) Close() error {
	return n.net.Close()
}

type yunetNetwork struct {
	fd gocv.FaceDetectorYN
}

func (n *yunetNetwork) bestScore(mat gocv.Mat) (float32, error) {
	n.fd.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	n.fd.Detect(mat, &faces)

	if faces.Empty() {
		return 0, nil
	}
	values, err := faces.DataPtrFloat32()
	if err != nil {
		return 0, fmt.Errorf("failed to read detector output: %w", err)
	}
	return layouts[FormatYuNet].best(values), nil
}

func (n *yunetNetwork) Close() error {
	n.fd.Close()
	return nil
}

// Detector runs a face detection network through OpenCV's DNN module.
type Detector struct {
	mu            sync.Mutex
	net           network
	minConfidence float32
	logger        *zap.Logger
}

func New(ctx context.Context, opts detector.Options) (detector.FaceDetector, error) {
	cfg := opts.Config
	spec, err := ModelFiles(cfg)
	if err != nil {
		return nil, err
	}

	if err := detector.EnsureModel(ctx, opts, spec.Model); err != nil {
		return nil, err
	}
	if spec.Config != "" {
		if err := detector.EnsureModel(ctx, opts, spec.Config); err != nil {
			return nil, err
		}
	}

	var net network
	switch spec.Format {
	case FormatYuNet:
		fd := gocv.NewFaceDetectorYN(spec.Model, spec.Config, image.Pt(cfg.InputSize, cfg.InputSize))
		fd.SetScoreThreshold(float32(cfg.MinConfidence))
		net = &yunetNetwork{fd: fd}
	default:
		dnn := gocv.ReadNet(spec.Model, spec.Config)
		if dnn.Empty() {
			return nil, fmt.Errorf("failed to load network from %s", spec.Model)
		}
		errBackend := dnn.SetPreferableBackend(gocv.NetBackendDefault)
		errTarget := dnn.SetPreferableTarget(gocv.NetTargetCPU)
		if errBackend != nil || errTarget != nil {
			dnn.Close()
			return nil, fmt.Errorf("failed to set preferable backend or target")
		}
		net = &ssdNetwork{net: dnn, inputSize: image.Pt(cfg.InputSize, cfg.InputSize)}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Detection network loaded",
		zap.String("model", spec.Model),
		zap.String("format", string(spec.Format)),
		zap.Int("model_selection", cfg.ModelSelection))

	return &Detector{
		net:           net,
		minConfidence: float32(cfg.MinConfidence),
		logger:        logger,
	}, nil
}

func (d *Detector) Name() string { return config.StrategyNeural }

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

	d.mu.Lock()
	best, err := d.net.bestScore(mat)
	d.mu.Unlock()
	if err != nil {
		return false, err
	}

	if best >= d.minConfidence {
		d.logger.Debug("Face detected", zap.Float32("confidence", best))
		return true, nil
	}

	d.logger.Debug("No face above threshold", zap.Float32("best_confidence", best))
	return false, nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
