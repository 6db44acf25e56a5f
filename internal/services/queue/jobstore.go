package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/face-detection/internal/logging"
	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/redis/go-redis/v9"
)

const jobKeyPrefix = "face_job:"

var ErrJobNotFound = errors.New("job not found")

// JobStore keeps async detection jobs in Redis until their TTL runs out.
type JobStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewJobStore(client *redis.Client, ttl time.Duration) *JobStore {
	return &JobStore{redisClient: client, ttl: ttl}
}

func (s *JobStore) Save(ctx context.Context, job *models.DetectionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	err = s.redisClient.Set(ctx, jobKeyPrefix+job.ID, data, s.ttl).Err()
	return logging.NewOperationError("job_save", job.ID, err)
}

func (s *JobStore) Get(ctx context.Context, id string) (*models.DetectionJob, error) {
	data, err := s.redisClient.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, logging.NewOperationError("job_get", id, err)
	}

	var job models.DetectionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("corrupt job %s: %w", id, err)
	}
	return &job, nil
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	err := s.redisClient.Del(ctx, jobKeyPrefix+id).Err()
	return logging.NewOperationError("job_delete", id, err)
}
