package storage

import (
	"github.com/phambaophuc/face-detection/internal/config"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// ObjectClient is the subset of the Supabase Storage client the model store uses.
type ObjectClient interface {
	DownloadFile(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
	ListFiles(bucketId string, queryPath string, options storage_go.FileSearchOptions) ([]storage_go.FileObject, error)
}

// ModelStore keeps detector model files on local disk, pulling missing ones
// from a Supabase Storage bucket when one is configured.
type ModelStore struct {
	sbClient ObjectClient
	bucket   string
	prefix   string
	logger   *zap.Logger
}

func NewModelStore(cfg *config.Config, logger *zap.Logger) *ModelStore {
	var client ObjectClient
	if cfg.Detector.ModelBucket != "" && cfg.Supabase.URL != "" {
		client = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}
	return NewModelStoreWithClient(client, cfg.Detector.ModelBucket, cfg.Detector.ModelPrefix, logger)
}

func NewModelStoreWithClient(client ObjectClient, bucket, prefix string, logger *zap.Logger) *ModelStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelStore{
		sbClient: client,
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger,
	}
}

// Remote reports whether missing models can be fetched from a bucket.
func (s *ModelStore) Remote() bool {
	return s.sbClient != nil && s.bucket != ""
}
