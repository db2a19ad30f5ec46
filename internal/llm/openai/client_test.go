package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client, err := NewClient("test-key", srv.URL, "test-model")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestExtractSkillsSuccess(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		fmt.Fprint(w, completionResponse(`{"skills":[" Python ","Go",""],"confidence":0.9}`))
	})
	defer srv.Close()

	got, err := client.ExtractSkills(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("extract skills: %v", err)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Python" || got.Skills[1] != "Go" {
		t.Fatalf("expected trimmed non-empty skills, got %v", got.Skills)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("unexpected confidence %v", got.Confidence)
	}
	if got.Source != sourceTag {
		t.Fatalf("unexpected source %q", got.Source)
	}
}

func TestExtractSkillsDefaultConfidence(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse(`{"skills":["Docker"]}`))
	})
	defer srv.Close()

	got, err := client.ExtractSkills(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("extract skills: %v", err)
	}
	if got.Confidence != 0.7 {
		t.Fatalf("expected default confidence 0.7, got %v", got.Confidence)
	}
}

func TestExtractSkillsEmptyContent(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse("  "))
	})
	defer srv.Close()

	_, err := client.ExtractSkills(context.Background(), "resume text")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestExtractSkillsInvalidJSON(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse("Sure! Here are the skills: Python, Go"))
	})
	defer srv.Close()

	_, err := client.ExtractSkills(context.Background(), "resume text")
	var jsonErr *InvalidJSONError
	if !errors.As(err, &jsonErr) {
		t.Fatalf("expected InvalidJSONError, got %T: %v", err, err)
	}
}

func TestExtractSkillsNonListSkills(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse(`{"skills":"Python, Go","confidence":0.8}`))
	})
	defer srv.Close()

	_, err := client.ExtractSkills(context.Background(), "resume text")
	if !errors.Is(err, ErrSkillsNotList) {
		t.Fatalf("expected ErrSkillsNotList, got %v", err)
	}
}

func TestExtractSkillsAPIError(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`)
	})
	defer srv.Close()

	_, err := client.ExtractSkills(context.Background(), "resume text")
	if err == nil || !strings.Contains(err.Error(), "skills extraction failed") {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected provider message in error, got %v", err)
	}
}

func TestExtractSkillsTruncatesPrompt(t *testing.T) {
	var gotPrompt string
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 2 {
			gotPrompt = req.Messages[1].Content
		}
		fmt.Fprint(w, completionResponse(`{"skills":["Go"],"confidence":0.5}`))
	})
	defer srv.Close()

	long := strings.Repeat("x", 20000)
	if _, err := client.ExtractSkills(context.Background(), long); err != nil {
		t.Fatalf("extract skills: %v", err)
	}
	if strings.Count(gotPrompt, "x") != maxResumeChars {
		t.Fatalf("expected resume text truncated to %d chars, got %d", maxResumeChars, strings.Count(gotPrompt, "x"))
	}
}
