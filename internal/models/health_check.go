package models

import "time"

const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// HealthCheck reports the detector in use and the state of each backing service.
type HealthCheck struct {
	Status    string            `json:"status"`
	Detector  string            `json:"detector"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
