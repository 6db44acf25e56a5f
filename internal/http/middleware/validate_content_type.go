package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/models"
)

// RequireJSON rejects request bodies that are not declared as application/json.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err != nil || mediaType != "application/json" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.ErrorResponse{
				Detail: "Content-Type must be application/json",
			})
			return
		}
		ctx.Next()
	}
}
