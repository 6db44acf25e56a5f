package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/models"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics and reports them as a plain 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("method", ctx.Request.Method),
			zap.String("request_id", GetRequestID(ctx)),
		)

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Detail: "Internal server error",
		})
	})
}
