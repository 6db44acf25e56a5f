package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/phambaophuc/face-detection/internal/services/detector"
	"go.uber.org/zap"
)

// Ensure makes localPath exist, downloading <prefix>/<basename> from the
// bucket when the file is absent.
func (s *ModelStore) Ensure(ctx context.Context, localPath string) error {
	if localPath == "" {
		return fmt.Errorf("%w: empty path", detector.ErrModelNotFound)
	}
	if _, err := os.Stat(localPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat model %s: %w", localPath, err)
	}

	if !s.Remote() {
		return fmt.Errorf("%w: %s", detector.ErrModelNotFound, localPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := s.objectKey(localPath)
	s.logger.Info("Downloading model from storage",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.String("path", localPath))

	data, err := s.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %s (download %s/%s: %v)", detector.ErrModelNotFound, localPath, s.bucket, key, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s (object %s/%s is empty)", detector.ErrModelNotFound, localPath, s.bucket, key)
	}

	return writeAtomic(localPath, data)
}

func (s *ModelStore) Download(ctx context.Context, key string) ([]byte, error) {
	return s.sbClient.DownloadFile(s.bucket, key)
}

func (s *ModelStore) objectKey(localPath string) string {
	name := filepath.Base(localPath)
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func writeAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}

	return os.Rename(tmp.Name(), dst)
}
