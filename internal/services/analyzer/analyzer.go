package analyzer

import (
	"context"
	"image"

	"github.com/phambaophuc/face-detection/internal/logging"
	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/phambaophuc/face-detection/internal/services/cache"
	"github.com/phambaophuc/face-detection/internal/services/decoder"
	"go.uber.org/zap"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type Detector interface {
	Name() string
	Detect(ctx context.Context, img image.Image) (bool, error)
}

type VerdictCache interface {
	Get(ctx context.Context, key string) (bool, bool, error)
	Set(ctx context.Context, key string, verdict bool) error
}

// Analyzer runs fetch, decode and detect for one image URL.
type Analyzer struct {
	fetcher  Fetcher
	detector Detector
	cache    VerdictCache
	limits   decoder.Limits
	logger   *zap.Logger
}

// New builds an Analyzer. verdicts may be nil to disable caching.
func New(fetcher Fetcher, detector Detector, verdicts VerdictCache, limits decoder.Limits, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		fetcher:  fetcher,
		detector: detector,
		cache:    verdicts,
		limits:   limits,
		logger:   logger,
	}
}

func (a *Analyzer) Strategy() string {
	return a.detector.Name()
}

// Analyze returns whether the image at imageURL contains a face. Errors are
// always one of *FetchError, *DecodeError or *DetectionError.
func (a *Analyzer) Analyze(ctx context.Context, imageURL, requestID string) (*models.DetectionResult, error) {
	log := logging.WithOperation(a.logger, "analyze_image", requestID)

	data, err := a.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		log.Warn("Image fetch failed", zap.String("image_url", imageURL), zap.Error(err))
		return nil, &FetchError{Err: err}
	}

	var key string
	if a.cache != nil {
		key = cache.Key(a.detector.Name(), data)
		verdict, found, err := a.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Verdict cache lookup failed", zap.Error(logging.NewOperationError("cache_get", requestID, err)))
		} else if found {
			log.Debug("Verdict cache hit", zap.Bool("face_detected", verdict))
			return &models.DetectionResult{FaceDetected: verdict}, nil
		}
	}

	img, format, err := decoder.Decode(data, a.limits.MaxPixels)
	if err != nil {
		log.Warn("Image decode failed", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, &DecodeError{Err: err}
	}
	img = decoder.Downscale(img, a.limits.MaxDimension)

	found, err := a.detector.Detect(ctx, img)
	if err != nil {
		log.Error("Face detection failed", zap.String("strategy", a.detector.Name()), zap.Error(err))
		return nil, &DetectionError{Err: err}
	}

	log.Info("Image analyzed",
		zap.String("strategy", a.detector.Name()),
		zap.String("format", format),
		zap.Bool("face_detected", found))

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, found); err != nil {
			log.Warn("Verdict cache store failed", zap.Error(logging.NewOperationError("cache_set", requestID, err)))
		}
	}

	return &models.DetectionResult{FaceDetected: found}, nil
}
