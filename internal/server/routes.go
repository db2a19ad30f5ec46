package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/services/health"
	"crm-skills-sync/internal/shared/metrics"
	"crm-skills-sync/internal/webhook"
)

const serviceVersion = "0.1.0"

func registerRoutes(r *gin.Engine, healthSvc *health.Service, webhookHandler *webhook.Handler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "CRM Integrations Service",
			"version": serviceVersion,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, healthSvc.Status(c.Request.Context()))
	})

	r.GET("/metrics", metrics.Handler())

	r.POST("/webhooks/espocrm", webhookHandler.HandleEspoCRM)
	r.POST("/process-contact/:id", webhookHandler.HandleProcessContact)
}
