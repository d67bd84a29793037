package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusNotConfigured = "not configured"

// HealthCheck handles GET /health with DB and Redis status.
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus, redisStatus := "ok", statusNotConfigured
	if h.Health != nil {
		dbStatus = h.Health.DatabaseStatus()
		redisStatus = h.Health.RedisStatus()
	}

	status := "ok"
	if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != statusNotConfigured) {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"message": "kcalbot backend is running",
		"checks": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
