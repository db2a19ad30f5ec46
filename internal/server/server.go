package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/services/health"
	"crm-skills-sync/internal/shared/server/middleware"
	"crm-skills-sync/internal/webhook"
)

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(healthSvc *health.Service, webhookHandler *webhook.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	registerRoutes(engine, healthSvc, webhookHandler)
	return engine
}

// Addr returns a normalized listen address for the given port. The port
// default is applied by config.Load, not here.
func Addr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
