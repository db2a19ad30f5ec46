package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crm-skills-sync/internal/llm"
	"crm-skills-sync/internal/shared/telemetry"
)

// sourceTag identifies the inference backend on every extracted skill set.
// It is a fixed literal, never derived from the response.
const sourceTag = "gemini-1.5-flash"

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("empty response from LLM")

// InvalidJSONError is returned when the model's content is not valid JSON.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid JSON response from LLM: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// ErrSkillsNotList is returned when the parsed skills field is not a list
// of strings.
var ErrSkillsNotList = errors.New("skills must be a list")

// Client implements llm.Client against an OpenAI-compatible chat
// completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient constructs a skill-inference client.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractSkills asks the model for a skills list and confidence score for
// the given resume text. A single attempt; no retry.
func (c *Client) ExtractSkills(ctx context.Context, resumeText string) (llm.ExtractedSkills, error) {
	content, err := c.complete(ctx, BuildPrompt(resumeText))
	if err != nil {
		return llm.ExtractedSkills{}, fmt.Errorf("skills extraction failed: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return llm.ExtractedSkills{}, ErrEmptyResponse
	}

	var parsed struct {
		Skills     json.RawMessage `json:"skills"`
		Confidence *float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		telemetry.Error("llm.parse", map[string]any{"error": err.Error()})
		return llm.ExtractedSkills{}, &InvalidJSONError{Err: err}
	}

	skills := []string{}
	if parsed.Skills != nil {
		if err := json.Unmarshal(parsed.Skills, &skills); err != nil {
			return llm.ExtractedSkills{}, ErrSkillsNotList
		}
	}

	normalized := make([]string, 0, len(skills))
	for _, skill := range skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}

	confidence := 0.7
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}

	return llm.ExtractedSkills{
		Skills:     normalized,
		Confidence: confidence,
		Source:     sourceTag,
	}, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("completion response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response missing choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
