package storage

import (
	"context"

	storage_go "github.com/supabase-community/storage-go"
)

// HealthCheck lists the model bucket; a store without a bucket reports "disabled".
func (s *ModelStore) HealthCheck(ctx context.Context) string {
	if !s.Remote() {
		return "disabled"
	}

	_, err := s.sbClient.ListFiles(s.bucket, s.prefix, storage_go.FileSearchOptions{Limit: 1})
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
