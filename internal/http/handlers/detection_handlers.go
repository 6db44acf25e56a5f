package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/http/middleware"
	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/phambaophuc/face-detection/internal/services/analyzer"
	"github.com/phambaophuc/face-detection/internal/services/queue"
	"go.uber.org/zap"
)

type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageURL, requestID string) (*models.DetectionResult, error)
}

// JobQueue accepts detection work for background processing.
type JobQueue interface {
	Submit(ctx context.Context, imageURL string) (*models.DetectionJob, error)
	Job(ctx context.Context, id string) (*models.DetectionJob, error)
}

type detectQuery struct {
	ImageURL string `form:"image_url" binding:"required"`
}

type DetectionHandler struct {
	analyzer ImageAnalyzer
	jobs     JobQueue
	logger   *zap.Logger
}

// NewDetectionHandler wires the synchronous pipeline; jobs may be nil when
// no queue is available.
func NewDetectionHandler(analyzer ImageAnalyzer, jobs JobQueue, logger *zap.Logger) *DetectionHandler {
	return &DetectionHandler{
		analyzer: analyzer,
		jobs:     jobs,
		logger:   logger,
	}
}

// === MAIN API ENDPOINTS ===

func (h *DetectionHandler) DetectFaces(c *gin.Context) {
	var query detectQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.respondError(c, http.StatusUnprocessableEntity, "image_url query parameter is required")
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), query.ImageURL, middleware.GetRequestID(c))
	if err != nil {
		status, detail := analyzer.StatusFor(err)
		h.respondError(c, status, detail)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DetectionHandler) SubmitJob(c *gin.Context) {
	var req models.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusUnprocessableEntity, "image_url is required")
		return
	}

	if h.jobs == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Async detection is unavailable")
		return
	}

	job, err := h.jobs.Submit(c.Request.Context(), req.ImageURL)
	if err != nil {
		h.logger.Error("Failed to enqueue job",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Failed to enqueue job: "+err.Error())
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (h *DetectionHandler) GetJob(c *gin.Context) {
	if h.jobs == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Async detection is unavailable")
		return
	}

	job, err := h.jobs.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			h.respondError(c, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("Failed to load job", zap.String("job_id", c.Param("id")), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *DetectionHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.ErrorResponse{Detail: message})
}
