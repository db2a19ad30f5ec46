package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/shared/telemetry"
)

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error logs and sends a standardized error response.
func Error(c *gin.Context, status int, code, detail string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, gin.H{"code": code, "detail": detail})
}
