package models

import "time"

type DetectionJob struct {
	ID          string           `json:"job_id"`
	ImageURL    string           `json:"image_url"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Result      *DetectionResult `json:"result,omitempty"`
	StatusCode  int              `json:"status_code,omitempty"`
	Detail      string           `json:"detail,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
