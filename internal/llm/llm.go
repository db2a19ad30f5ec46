package llm

import "context"

// Skill set provenance tags.
const (
	SourceNoResume         = "no_resume"
	SourceExtractionFailed = "extraction_failed"
	SourceDocumentAnalysis = "document_analysis"
	SourceError            = "error"
)

// ExtractedSkills is a skill list with a confidence score and a provenance
// tag naming where it came from.
type ExtractedSkills struct {
	Skills     []string `json:"skills"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
}

// Client abstracts skill-inference providers.
type Client interface {
	ExtractSkills(ctx context.Context, resumeText string) (ExtractedSkills, error)
}
