package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/decoder"
	"github.com/phambaophuc/face-detection/internal/services/detector"
	"go.uber.org/zap"
)

// Rekognition rejects inline images larger than 5MB; 4096px JPEGs stay well below.
const maxDimension = 4096

type Client interface {
	DetectFaces(
		ctx context.Context,
		params *rekognition.DetectFacesInput,
		optFns ...func(*rekognition.Options),
	) (*rekognition.DetectFacesOutput, error)
}

func init() {
	detector.DefaultRegistry.MustRegister(config.StrategyRekognition, New)
}

// Detector delegates to AWS Rekognition DetectFaces.
type Detector struct {
	client        Client
	minConfidence float32
	logger        *zap.Logger
}

func New(ctx context.Context, opts detector.Options) (detector.FaceDetector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewWithClient(rekognition.NewFromConfig(awsCfg), opts), nil
}

func NewWithClient(client Client, opts detector.Options) *Detector {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		client:        client,
		minConfidence: float32(opts.Config.MinConfidence * 100),
		logger:        logger,
	}
}

func (d *Detector) Name() string { return config.StrategyRekognition }

func (d *Detector) Detect(ctx context.Context, img image.Image) (bool, error) {
	var buf bytes.Buffer
	if err := decoder.EncodeJPEG(&buf, decoder.Downscale(img, maxDimension), 90); err != nil {
		return false, fmt.Errorf("failed to encode image: %w", err)
	}

	out, err := d.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: buf.Bytes()},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return false, fmt.Errorf("rekognition DetectFaces failed: %w", err)
	}

	for _, detail := range out.FaceDetails {
		if detail.Confidence != nil && *detail.Confidence >= d.minConfidence {
			d.logger.Debug("Face detected", zap.Float32("confidence", *detail.Confidence))
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) Close() error { return nil }
