package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/functions"
	"github.com/phambaophuc/face-detection/internal/http/middleware"
	"github.com/phambaophuc/face-detection/internal/models"
	"go.uber.org/zap"
)

const maxEventBytes = 1 << 20

// FunctionHandler is the signature shared by the serverless functions.
type FunctionHandler func(ctx context.Context, event json.RawMessage) (functions.Response, error)

// Invoke exposes a serverless function over HTTP: the request body is the
// event and the envelope's statusCode and body become the HTTP response.
func Invoke(name string, fn FunctionHandler, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Failed to read request body"})
			return
		}

		ctx := functions.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
		resp, err := fn(ctx, json.RawMessage(event))
		if err != nil {
			logger.Error("Function invocation failed", zap.String("function", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Internal server error"})
			return
		}

		c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
	}
}
