package landmark

import (
	"context"
	"errors"
	"testing"

	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/detector"
)

type missingSource struct {
	asked []string
}

func (m *missingSource) Ensure(ctx context.Context, localPath string) error {
	m.asked = append(m.asked, localPath)
	return detector.ErrModelNotFound
}

func TestNewStopsAtFirstMissingModel(t *testing.T) {
	source := &missingSource{}
	opts := detector.Options{
		Config: config.DetectorConfig{LandmarkModelDir: "models"},
		Models: source,
	}

	if _, err := New(context.Background(), opts); !errors.Is(err, detector.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
	if len(source.asked) != 1 || source.asked[0] != "models/"+ModelFiles[0] {
		t.Fatalf("unexpected lookups %v", source.asked)
	}
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	if !detector.DefaultRegistry.IsRegistered(config.StrategyLandmark) {
		t.Fatal("expected landmark strategy to be registered")
	}
}
