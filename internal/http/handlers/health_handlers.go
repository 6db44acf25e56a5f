package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/models"
)

// HealthCheckFunc reports "healthy", "disabled" or an "unhealthy: ..." description.
type HealthCheckFunc func(ctx context.Context) string

type HealthHandler struct {
	detector string
	checks   map[string]HealthCheckFunc
}

func NewHealthHandler(detector string) *HealthHandler {
	return &HealthHandler{detector: detector, checks: make(map[string]HealthCheckFunc)}
}

// Register adds a named dependency check. Not safe to call once serving.
func (h *HealthHandler) Register(name string, check HealthCheckFunc) {
	h.checks[name] = check
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make(map[string]string, len(names))
	for _, name := range names {
		services[name] = h.checks[name](ctx)
	}

	overall := calculateOverallHealth(services)
	statusCode := http.StatusOK
	if overall == models.HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.HealthCheck{
		Status:    overall,
		Detector:  h.detector,
		Timestamp: time.Now(),
		Services:  services,
	})
}

func calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if strings.HasPrefix(status, models.HealthUnhealthy) {
			return models.HealthUnhealthy
		}
	}
	return models.HealthHealthy
}
