package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/phambaophuc/face-detection/internal/config"
	"go.uber.org/zap"
)

var ErrModelNotFound = errors.New("model file not found")

// FaceDetector answers whether an image contains at least one human face.
// Implementations must be safe for concurrent use.
type FaceDetector interface {
	Name() string
	Detect(ctx context.Context, img image.Image) (bool, error)
	Close() error
}

// ModelSource makes sure a model file is present on local disk.
type ModelSource interface {
	Ensure(ctx context.Context, localPath string) error
}

// Options carries everything a strategy factory may need.
type Options struct {
	Config config.DetectorConfig
	Models ModelSource
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// EnsureModel resolves a model path through the configured source, falling
// back to a plain existence check when no source is set.
func EnsureModel(ctx context.Context, opts Options, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrModelNotFound)
	}
	if opts.Models != nil {
		return opts.Models.Ensure(ctx, path)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return fmt.Errorf("failed to stat model %s: %w", path, err)
	}
	return nil
}

// New builds the strategy named in opts.Config.Strategy from the default registry.
func New(ctx context.Context, opts Options) (FaceDetector, error) {
	return DefaultRegistry.Create(ctx, opts.Config.Strategy, opts)
}
