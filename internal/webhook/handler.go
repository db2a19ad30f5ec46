package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/shared/server/middleware"
	"crm-skills-sync/internal/shared/server/respond"
	"crm-skills-sync/internal/shared/telemetry"
	"crm-skills-sync/internal/skillsync"
)

// Event is one record-change notification in an EspoCRM webhook payload.
type Event struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Processor runs the skills pipeline for one contact.
type Processor interface {
	ProcessContactSkills(ctx context.Context, contactID string) skillsync.Result
}

// Handler serves the CRM webhook and the manual trigger. Each accepted
// event starts a background pipeline run; the HTTP response never waits on
// one.
type Handler struct {
	Processor Processor
}

// HandleEspoCRM accepts a webhook payload (a JSON array of events) and
// queues a pipeline run per event.
func (h *Handler) HandleEspoCRM(c *gin.Context) {
	var events []Event
	if err := c.ShouldBindJSON(&events); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_payload", "webhook payload must be an array of events")
		return
	}

	requestID := middleware.RequestIDFromContext(c)
	for _, event := range events {
		if event.ID == "" {
			continue
		}
		go h.processAsync(event.ID, requestID)
	}

	respond.OK(c, gin.H{
		"status":           "success",
		"events_processed": len(events),
	})
}

// HandleProcessContact queues a pipeline run for a single contact id.
func (h *Handler) HandleProcessContact(c *gin.Context) {
	contactID := c.Param("id")
	if contactID == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_contact", "contact id is required")
		return
	}
	c.Set("contactId", contactID)

	go h.processAsync(contactID, middleware.RequestIDFromContext(c))

	respond.OK(c, gin.H{
		"status":     "success",
		"contact_id": contactID,
		"message":    "Contact queued for skills processing",
	})
}

// processAsync runs the pipeline detached from the request. The pipeline
// reports failures through its result, so nothing here can take the
// process down.
func (h *Handler) processAsync(contactID, requestID string) {
	result := h.Processor.ProcessContactSkills(context.Background(), contactID)
	fields := map[string]any{
		"request_id": requestID,
		"contact_id": contactID,
		"new_skills": len(result.NewSkills),
		"total":      len(result.UpdatedSkills),
	}
	if result.Success {
		telemetry.Info("webhook.skills_synced", fields)
		return
	}
	fields["error"] = result.Error
	telemetry.Error("webhook.skills_sync_failed", fields)
}
