package skillsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"crm-skills-sync/internal/espocrm"
	"crm-skills-sync/internal/llm"
	"crm-skills-sync/internal/shared/metrics"
	"crm-skills-sync/internal/shared/telemetry"
)

const defaultMaxAttachments = 3

var resumeKeywords = []string{"resume", "cv", "curriculum"}

var resumeExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// Outcome messages reported on Result.Error.
const (
	errNoResume         = "No resume attachments found"
	errExtractionFailed = "Failed to extract skills from any attachment"
	errUpdateFailed     = "Failed to update contact"
)

// CRMGateway is the slice of the CRM client the pipeline uses. Read
// operations degrade to empty/absent values, the write to a boolean.
type CRMGateway interface {
	GetContact(ctx context.Context, contactID string) (espocrm.Contact, error)
	GetAttachments(ctx context.Context, contactID string) []espocrm.Attachment
	DownloadAttachment(ctx context.Context, attachmentID string) []byte
	UpdateSkills(ctx context.Context, contactID string, skills []string) bool
}

// TextExtractor turns attachment bytes into plain text.
type TextExtractor interface {
	ExtractText(content []byte, filename string) (string, error)
}

// Service runs the contact-skills synchronization pipeline: fetch contact,
// filter resume attachments, extract text, infer skills, merge with the
// existing list, and write back when something new turned up.
type Service struct {
	CRM            CRMGateway
	Extractor      TextExtractor
	LLM            llm.Client
	MaxAttachments int
}

// ProcessContactSkills runs the pipeline for one contact. It always returns
// a Result; unexpected panics anywhere in the run become a terminal error
// outcome.
func (s *Service) ProcessContactSkills(ctx context.Context, contactID string) (result Result) {
	start := time.Now()
	metrics.IncSyncStarted()
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("skillsync.panic", map[string]any{"contact_id": contactID, "error": fmt.Sprintf("%v", rec)})
			result = errorResult(contactID, fmt.Sprintf("%v", rec))
		}
		metrics.ObserveSyncDurationMs(metrics.SinceMillis(start))
		if result.Success {
			metrics.IncSyncCompleted()
		} else {
			metrics.IncSyncFailed()
		}
	}()

	contact, err := s.CRM.GetContact(ctx, contactID)
	if err != nil {
		telemetry.Error("skillsync.contact", map[string]any{"contact_id": contactID, "error": err.Error()})
		return errorResult(contactID, err.Error())
	}
	existing := ParseSkills(contact.Skills)

	attachments := filterResumeAttachments(s.CRM.GetAttachments(ctx, contactID))
	if len(attachments) == 0 {
		return Result{
			ContactID:       contactID,
			ExtractedSkills: llm.ExtractedSkills{Skills: []string{}, Source: llm.SourceNoResume},
			ExistingSkills:  existing,
			NewSkills:       []string{},
			UpdatedSkills:   existing,
			Success:         false,
			Error:           errNoResume,
		}
	}

	limit := s.MaxAttachments
	if limit <= 0 {
		limit = defaultMaxAttachments
	}
	if len(attachments) > limit {
		attachments = attachments[:limit]
	}

	pool := []string{}
	confidenceSum := 0.0
	processed := 0
	for _, att := range attachments {
		content := s.CRM.DownloadAttachment(ctx, att.ID)
		if len(content) == 0 {
			continue
		}
		text, err := s.Extractor.ExtractText(content, att.Name)
		if err != nil {
			telemetry.Warn("skillsync.attachment_skipped", map[string]any{"attachment_id": att.ID, "error": err.Error()})
			continue
		}
		extracted, err := s.LLM.ExtractSkills(ctx, text)
		if err != nil {
			telemetry.Warn("skillsync.attachment_skipped", map[string]any{"attachment_id": att.ID, "error": err.Error()})
			continue
		}
		pool = append(pool, extracted.Skills...)
		confidenceSum += extracted.Confidence
		processed++
	}

	if len(pool) == 0 {
		return Result{
			ContactID:       contactID,
			ExtractedSkills: llm.ExtractedSkills{Skills: []string{}, Source: llm.SourceExtractionFailed},
			ExistingSkills:  existing,
			NewSkills:       []string{},
			UpdatedSkills:   existing,
			Success:         false,
			Error:           errExtractionFailed,
		}
	}

	unique := dedupeFirstSeen(pool)
	extracted := llm.ExtractedSkills{
		Skills:     unique,
		Confidence: confidenceSum / float64(processed),
		Source:     llm.SourceDocumentAnalysis,
	}

	existingLower := make(map[string]struct{}, len(existing))
	for _, skill := range existing {
		existingLower[strings.ToLower(skill)] = struct{}{}
	}
	newSkills := []string{}
	for _, skill := range unique {
		if _, ok := existingLower[strings.ToLower(skill)]; !ok {
			newSkills = append(newSkills, skill)
		}
	}
	updated := append(append([]string{}, existing...), newSkills...)

	success := true
	errMsg := ""
	if len(newSkills) > 0 {
		success = s.CRM.UpdateSkills(ctx, contactID, updated)
		if !success {
			errMsg = errUpdateFailed
		}
	}

	telemetry.Info("skillsync.complete", map[string]any{
		"contact_id": contactID,
		"new_skills": len(newSkills),
		"confidence": extracted.Confidence,
		"success":    success,
	})

	return Result{
		ContactID:       contactID,
		ExtractedSkills: extracted,
		ExistingSkills:  existing,
		NewSkills:       newSkills,
		UpdatedSkills:   updated,
		Success:         success,
		Error:           errMsg,
	}
}

// filterResumeAttachments keeps attachments whose extension is resume-like
// and whose name mentions a resume keyword. A cheap precision heuristic,
// not a guarantee.
func filterResumeAttachments(attachments []espocrm.Attachment) []espocrm.Attachment {
	out := []espocrm.Attachment{}
	for _, att := range attachments {
		name := strings.ToLower(att.Name)
		if _, ok := resumeExtensions[filepath.Ext(name)]; !ok {
			continue
		}
		for _, keyword := range resumeKeywords {
			if strings.Contains(name, keyword) {
				out = append(out, att)
				break
			}
		}
	}
	return out
}

func errorResult(contactID, message string) Result {
	return Result{
		ContactID:       contactID,
		ExtractedSkills: llm.ExtractedSkills{Skills: []string{}, Source: llm.SourceError},
		ExistingSkills:  []string{},
		NewSkills:       []string{},
		UpdatedSkills:   []string{},
		Success:         false,
		Error:           message,
	}
}
