package espocrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiKeyHeader = "X-Api-Key"

// APIError is a failed EspoCRM request: a non-200 status or a malformed
// (empty) 200 response.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("wrong request, %s", e.Reason)
	}
	return fmt.Sprintf("wrong request, status code is %d, reason is %s", e.StatusCode, e.Reason)
}

// API is the generic EspoCRM request primitive. Every request carries the
// API-key header; read requests bracket-encode params into the query string,
// write requests send them as a JSON body.
type API struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPI constructs an API bound to the given versioned base URL.
func NewAPI(baseURL, apiKey string) *API {
	return &API{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Request performs a JSON API call and returns the decoded response object.
func (a *API) Request(ctx context.Context, method, action string, params map[string]any) (map[string]any, error) {
	body, err := a.roundTrip(ctx, method, action, params)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &APIError{Reason: "content response is empty"}
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &APIError{Reason: "response is not a JSON object"}
	}
	return decoded, nil
}

// DownloadFile performs a GET and returns the raw response body.
func (a *API) DownloadFile(ctx context.Context, action string) ([]byte, error) {
	return a.roundTrip(ctx, http.MethodGet, action, nil)
}

func (a *API) roundTrip(ctx context.Context, method, action string, params map[string]any) ([]byte, error) {
	target := a.normalizeURL(action)

	var reqBody io.Reader
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode request params: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	default:
		if len(params) > 0 {
			target = target + "?" + BuildQuery(params)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, a.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Reason: parseReason(resp.Header)}
	}

	return io.ReadAll(resp.Body)
}

func (a *API) normalizeURL(action string) string {
	if action == "" {
		return a.baseURL
	}
	return a.baseURL + "/" + action
}

func parseReason(headers http.Header) string {
	if reason := headers.Get("X-Status-Reason"); reason != "" {
		return reason
	}
	return "Unknown Error"
}
