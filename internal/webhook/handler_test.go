package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/skillsync"
)

type stubProcessor struct {
	mu        sync.Mutex
	processed []string
	done      chan string
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{done: make(chan string, 16)}
}

func (s *stubProcessor) ProcessContactSkills(ctx context.Context, contactID string) skillsync.Result {
	s.mu.Lock()
	s.processed = append(s.processed, contactID)
	s.mu.Unlock()
	s.done <- contactID
	return skillsync.Result{ContactID: contactID, Success: true}
}

func (s *stubProcessor) waitFor(t *testing.T, n int) []string {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for background run %d of %d", i+1, n)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.processed...)
}

func newTestRouter(processor Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{Processor: processor}
	r.POST("/webhooks/espocrm", h.HandleEspoCRM)
	r.POST("/process-contact/:id", h.HandleProcessContact)
	return r
}

func TestWebhookProcessesEvents(t *testing.T) {
	processor := newStubProcessor()
	router := newTestRouter(processor)

	body := `[{"id":"c1","name":"John Doe"},{"id":"c2"}]`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/espocrm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status          string `json:"status"`
		EventsProcessed int    `json:"events_processed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" || resp.EventsProcessed != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	processed := processor.waitFor(t, 2)
	if len(processed) != 2 {
		t.Fatalf("expected 2 background runs, got %v", processed)
	}
}

func TestWebhookSkipsEventsWithoutID(t *testing.T) {
	processor := newStubProcessor()
	router := newTestRouter(processor)

	body := `[{"name":"No ID Here"},{"id":"c1"}]`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/espocrm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		EventsProcessed int `json:"events_processed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EventsProcessed != 2 {
		t.Fatalf("expected 2 events processed, got %d", resp.EventsProcessed)
	}

	processed := processor.waitFor(t, 1)
	if len(processed) != 1 || processed[0] != "c1" {
		t.Fatalf("expected only c1 to run, got %v", processed)
	}
}

func TestWebhookRejectsNonArrayPayload(t *testing.T) {
	router := newTestRouter(newStubProcessor())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/espocrm", strings.NewReader(`{"id":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "must be an array") {
		t.Fatalf("expected array hint in body, got %s", w.Body.String())
	}
}

func TestWebhookEmptyPayload(t *testing.T) {
	router := newTestRouter(newStubProcessor())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/espocrm", strings.NewReader(`[]`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		EventsProcessed int `json:"events_processed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EventsProcessed != 0 {
		t.Fatalf("expected 0 events processed, got %d", resp.EventsProcessed)
	}
}

func TestManualTrigger(t *testing.T) {
	processor := newStubProcessor()
	router := newTestRouter(processor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process-contact/contact123", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"contact_id":"contact123"`) {
		t.Fatalf("expected contact id in response, got %s", w.Body.String())
	}

	processed := processor.waitFor(t, 1)
	if processed[0] != "contact123" {
		t.Fatalf("unexpected processed contact: %v", processed)
	}
}
