package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck pings the database
func (api *API) HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "connected"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := api.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		api.Log.Warn("health check: database unreachable", zap.Error(err))
		status, code, database = "degraded", http.StatusServiceUnavailable, "disconnected"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
