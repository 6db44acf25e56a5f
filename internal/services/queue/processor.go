package queue

import (
	"context"
	"time"

	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/phambaophuc/face-detection/internal/services/analyzer"
	"go.uber.org/zap"
)

// saveTimeout bounds job writes made after the worker context may be gone.
const saveTimeout = 5 * time.Second

// processJob runs the detection pipeline and persists the job's final state.
// It reports false when the run failed because ctx was cancelled; the job is
// then put back to pending and the message should be redelivered.
func (q *QueueService) processJob(ctx context.Context, job *models.DetectionJob) bool {
	job.Status = models.StatusProcessing
	if err := q.jobs.Save(ctx, job); err != nil {
		q.logger.Warn("Failed to mark job as processing", zap.String("job_id", job.ID), zap.Error(err))
	}

	result, err := q.analyzer.Analyze(ctx, job.ImageURL, job.ID)

	if err != nil && ctx.Err() != nil {
		job.Status = models.StatusPending
		q.saveDetached(ctx, job)
		q.logger.Warn("Job interrupted, returning it to the queue", zap.String("job_id", job.ID))
		return false
	}

	now := time.Now().UTC()
	job.CompletedAt = &now

	if err != nil {
		job.Status = models.StatusFailed
		job.StatusCode, job.Detail = analyzer.StatusFor(err)
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID),
			zap.Bool("face_detected", result.FaceDetected))
	}

	q.saveDetached(ctx, job)
	return true
}

func (q *QueueService) saveDetached(ctx context.Context, job *models.DetectionJob) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := q.jobs.Save(saveCtx, job); err != nil {
		q.logger.Error("Failed to store job result",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
