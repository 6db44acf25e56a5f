package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/face-detection/internal/http/handlers"
	"github.com/phambaophuc/face-detection/internal/http/middleware"
	"go.uber.org/zap"
)

// FunctionSet are the serverless functions also exposed over HTTP.
type FunctionSet struct {
	Hello           handlers.FunctionHandler
	UpdateRecord    handlers.FunctionHandler
	ScheduledSelect handlers.FunctionHandler
}

type AuthSettings struct {
	Secret   string
	Audience string
}

type Router struct {
	detectionHandler *handlers.DetectionHandler
	healthHandler    *handlers.HealthHandler
	statsHandler     *handlers.StatsHandler
	functions        FunctionSet
	auth             AuthSettings
	logger           *zap.Logger
}

func NewRouter(
	detectionHandler *handlers.DetectionHandler,
	healthHandler *handlers.HealthHandler,
	statsHandler *handlers.StatsHandler,
	functions FunctionSet,
	auth AuthSettings,
	logger *zap.Logger,
) *Router {
	return &Router{
		detectionHandler: detectionHandler,
		healthHandler:    healthHandler,
		statsHandler:     statsHandler,
		functions:        functions,
		auth:             auth,
		logger:           logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	router.GET("/detect-faces", r.detectionHandler.DetectFaces)
	jobs := router.Group("/detect-faces/jobs")
	{
		jobs.POST("", middleware.RequireJSON(), r.detectionHandler.SubmitJob)
		jobs.GET("/:id", r.detectionHandler.GetJob)
	}

	functions := router.Group("/functions", middleware.JWTAuth(r.auth.Secret, r.auth.Audience))
	{
		r.mountFunction(functions, "hello", r.functions.Hello)
		r.mountFunction(functions, "update-record", r.functions.UpdateRecord)
		r.mountFunction(functions, "scheduled-select", r.functions.ScheduledSelect)
	}

	router.GET("/health", r.healthHandler.HealthCheck)
	router.GET("/stats", r.statsHandler.GetStats)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Face detection is running",
		})
	})

	return router
}

func (r *Router) mountFunction(group *gin.RouterGroup, name string, fn handlers.FunctionHandler) {
	if fn == nil {
		return
	}
	group.Any("/"+name, handlers.Invoke(name, fn, r.logger))
}
