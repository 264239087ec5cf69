package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medreport/internal/handler"
	"medreport/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger zerolog.Logger,
	allowedOrigins []string,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/report-types", reportH.ReportTypes)
	v1.POST("/extract", reportH.Extract)

	reports := v1.Group("/reports")
	reports.POST("/structure", reportH.Structure)
	reports.POST("/export", reportH.Export)

	return r
}
