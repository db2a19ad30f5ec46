package skillsync

import (
	"strings"

	"crm-skills-sync/internal/llm"
)

// Result is the outcome of one synchronization run for a contact. It is the
// only thing the pipeline ever hands back; failures are reported through
// Success and Error, never through a returned error.
//
// UpdatedSkills is always ExistingSkills followed by NewSkills in discovery
// order.
type Result struct {
	ContactID       string              `json:"contact_id"`
	ExtractedSkills llm.ExtractedSkills `json:"extracted_skills"`
	ExistingSkills  []string            `json:"existing_skills"`
	NewSkills       []string            `json:"new_skills"`
	UpdatedSkills   []string            `json:"updated_skills"`
	Success         bool                `json:"success"`
	Error           string              `json:"error,omitempty"`
}

// ParseSkills splits a comma-separated skills field into trimmed, non-empty
// tokens.
func ParseSkills(skillsText string) []string {
	out := []string{}
	for _, token := range strings.Split(skillsText, ",") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// dedupeFirstSeen removes duplicates preserving first-seen order, so the
// diff downstream stays deterministic for a given set of inference
// responses.
func dedupeFirstSeen(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := []string{}
	for _, skill := range skills {
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
