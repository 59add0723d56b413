package handlers

import (
	"net/http"

	"oseplatform/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency probe; 503 when any dependency is down.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
