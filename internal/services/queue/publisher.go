package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Submit records a pending job and publishes it for the workers.
func (q *QueueService) Submit(ctx context.Context, imageURL string) (*models.DetectionJob, error) {
	job := &models.DetectionJob{
		ID:        uuid.New().String(),
		ImageURL:  imageURL,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := q.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := q.PublishJob(ctx, job); err != nil {
		if delErr := q.jobs.Delete(ctx, job.ID); delErr != nil {
			q.logger.Warn("Failed to discard unpublished job", zap.String("job_id", job.ID), zap.Error(delErr))
		}
		return nil, err
	}
	return job, nil
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.DetectionJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}
