package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	generativeEnabled bool
	catalogSize       int
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(generativeEnabled bool, catalogSize int) *HealthHandler {
	return &HealthHandler{generativeEnabled: generativeEnabled, catalogSize: catalogSize}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready without a generative provider,
// since every stage has a deterministic path.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.catalogSize == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "diagnostic code catalog is empty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"generative":  h.generativeEnabled,
		"catalogSize": h.catalogSize,
	})
}
