package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebanho/internal/infrastructure/storage/postgres"
)

// HealthHandler serves the probe endpoints.
type HealthHandler struct {
	pool *postgres.Pool
}

func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	})
}

// Info handles GET /health/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":      "rebanho",
		"version":  "0.1.0",
		"database": h.pool.Stats(),
	})
}
