package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsFunc func(ctx context.Context) (map[string]interface{}, error)

// StatsHandler reports the active strategy and counters from the cache and queue.
type StatsHandler struct {
	detector   string
	strategies []string
	sources    map[string]StatsFunc
	logger     *zap.Logger
}

func NewStatsHandler(detector string, strategies []string, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		detector:   detector,
		strategies: strategies,
		sources:    make(map[string]StatsFunc),
		logger:     logger,
	}
}

func (h *StatsHandler) Register(name string, source StatsFunc) {
	h.sources[name] = source
}

// GetStats returns API statistics
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats := gin.H{
		"detector":   h.detector,
		"strategies": h.strategies,
	}
	for name, source := range h.sources {
		values, err := source(ctx)
		if err != nil {
			h.logger.Error("Failed to get stats", zap.String("source", name), zap.Error(err))
			stats[name] = gin.H{"error": err.Error()}
			continue
		}
		stats[name] = values
	}

	c.JSON(http.StatusOK, stats)
}
