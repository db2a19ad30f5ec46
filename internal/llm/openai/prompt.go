package openai

import "fmt"

const systemPrompt = "You are an expert resume analyzer. Extract technical and professional skills from resumes accurately. Return only valid JSON with no additional text."

// maxResumeChars bounds the resume text sent to the model.
const maxResumeChars = 8000

const promptTemplate = `
Analyze the following resume text and extract all technical and professional skills.
Focus on:
- Programming languages (Python, Java, JavaScript, etc.)
- Frameworks and libraries (React, Django, TensorFlow, etc.)
- Tools and technologies (Docker, AWS, Git, etc.)
- Professional skills (Project Management, Leadership, etc.)
- Certifications and qualifications
- Domain expertise (Machine Learning, DevOps, etc.)

Return ONLY a JSON object with this exact structure:
{
    "skills": ["skill1", "skill2", "skill3"],
    "confidence": 0.85
}

Where:
- skills: array of extracted skills (strings only)
- confidence: float between 0.0 and 1.0 representing extraction confidence

Resume text:
%s
`

// BuildPrompt renders the extraction prompt, truncating the resume text to
// the model's character budget.
func BuildPrompt(resumeText string) string {
	if len(resumeText) > maxResumeChars {
		resumeText = resumeText[:maxResumeChars]
	}
	return fmt.Sprintf(promptTemplate, resumeText)
}
