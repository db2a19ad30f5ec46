package espocrm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"crm-skills-sync/internal/shared/telemetry"
)

// Contact is an immutable snapshot of a CRM contact record. Optional fields
// are empty strings when the record does not carry them.
type Contact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Skills       string `json:"skills"`
}

// Attachment references a file attached to a CRM record.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Client exposes the typed EspoCRM operations the sync pipeline needs.
// Read operations degrade to empty/absent results on transport failure;
// the write operation degrades to a boolean. None of the four operations
// lets a transport error escape.
type Client struct {
	api *API
}

// NewClient constructs a client for the CRM instance at baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		api: NewAPI(strings.TrimRight(baseURL, "/")+"/api/v1", apiKey),
	}
}

// GetContact fetches a contact record. Missing optional fields stay empty.
func (c *Client) GetContact(ctx context.Context, contactID string) (Contact, error) {
	data, err := c.api.Request(ctx, http.MethodGet, "Contact/"+contactID, nil)
	if err != nil {
		telemetry.Error("espocrm.get_contact", map[string]any{"contact_id": contactID, "error": err.Error()})
		return Contact{}, fmt.Errorf("failed to get contact: %w", err)
	}

	return Contact{
		ID:           stringField(data, "id"),
		Name:         stringField(data, "name"),
		FirstName:    stringField(data, "firstName"),
		LastName:     stringField(data, "lastName"),
		EmailAddress: stringField(data, "emailAddress"),
		Skills:       stringField(data, "skills"),
	}, nil
}

// GetAttachments lists attachment references for a contact. Transport
// failures are reported as an empty list, not an error.
func (c *Client) GetAttachments(ctx context.Context, contactID string) []Attachment {
	data, err := c.api.Request(ctx, http.MethodGet, "Contact/"+contactID+"/attachments", nil)
	if err != nil {
		telemetry.Error("espocrm.get_attachments", map[string]any{"contact_id": contactID, "error": err.Error()})
		return nil
	}

	rawList, _ := data["list"].([]any)
	attachments := make([]Attachment, 0, len(rawList))
	for _, raw := range rawList {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		attachments = append(attachments, Attachment{
			ID:   stringField(entry, "id"),
			Name: stringField(entry, "name"),
			Type: stringField(entry, "type"),
		})
	}
	return attachments
}

// DownloadAttachment fetches raw attachment bytes, or nil when the download
// fails.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID string) []byte {
	content, err := c.api.DownloadFile(ctx, "Attachment/"+attachmentID+"/download")
	if err != nil {
		telemetry.Error("espocrm.download_attachment", map[string]any{"attachment_id": attachmentID, "error": err.Error()})
		return nil
	}
	return content
}

// UpdateSkills patches the contact's skills field with the comma-joined
// list. The result is reported only as a boolean.
func (c *Client) UpdateSkills(ctx context.Context, contactID string, skills []string) bool {
	params := map[string]any{"skills": strings.Join(skills, ", ")}
	if _, err := c.api.Request(ctx, http.MethodPatch, "Contact/"+contactID, params); err != nil {
		telemetry.Error("espocrm.update_skills", map[string]any{"contact_id": contactID, "error": err.Error()})
		return false
	}
	telemetry.Info("espocrm.update_skills", map[string]any{"contact_id": contactID, "skills": len(skills)})
	return true
}

// HealthCheck reports whether the CRM API answers at all.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.api.Request(ctx, http.MethodGet, "", nil)
	return err == nil
}

func stringField(data map[string]any, key string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}
