// Package backend is the HTTP client for the remote label-printing backend:
// the authentication service, the product catalog, and the print endpoint.
// Transport details stay here; the rest of the app only sees the four
// operations and domain models.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nadeeshan/labelpress/internal/models"
)

const defaultTimeout = 15 * time.Second

// Error carries a failure message from the backend. The message is surfaced
// to the operator verbatim, so Error() returns it without decoration.
type Error struct {
	Op      string // which operation failed: "login", "search", "print", "locations"
	Status  int    // HTTP status, 0 for transport failures
	Message string
}

func (e *Error) Error() string { return e.Message }

// LoginResult is the payload of a successful login call. A response without
// a token is a rejected login even when the HTTP status is 2xx; callers must
// check Token themselves.
type LoginResult struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Endpoints holds the backend URLs, one per remote operation.
type Endpoints struct {
	Login     string
	Search    string
	Locations string
	Print     string
}

// HTTPClient talks JSON over HTTP to the backend. One shared http.Client,
// one timeout for every call.
type HTTPClient struct {
	endpoints Endpoints
	client    *http.Client
	log       *slog.Logger
}

// New constructs a client for the given endpoints. A zero timeout falls back
// to the default.
func New(endpoints Endpoints, timeout time.Duration, log *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &HTTPClient{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// FetchLocations retrieves the available site records. The endpoint has
// shipped two response shapes over time, a bare array and a
// {success, data} wrapper, and both must keep working.
func (c *HTTPClient) FetchLocations(ctx context.Context) ([]models.RawLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Locations, nil)
	if err != nil {
		return nil, fmt.Errorf("build locations request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, &Error{Op: "locations", Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, &Error{Op: "locations", Status: status,
			Message: fmt.Sprintf("locations request failed with status %d", status)}
	}

	return decodeList[models.RawLocation](body)
}

// Login authenticates the operator. When a location is chosen it is sent
// under both keys the backend has accepted historically. A non-2xx response
// surfaces the backend's own message verbatim.
func (c *HTTPClient) Login(ctx context.Context, name, password, location string) (*LoginResult, error) {
	payload := map[string]string{
		"name":     name,
		"password": password,
	}
	if location != "" {
		payload["location"] = location
		payload["loca_code"] = location
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Login, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, &Error{Op: "login", Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, &Error{Op: "login", Status: status, Message: errorMessage(body, "Login failed")}
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Op: "login", Status: status, Message: "Login failed"}
	}
	return &result, nil
}

// SearchProducts runs a catalog search. The token, when present, goes out as
// a bearer credential. Both the bare-array and {data} response shapes are
// accepted; anything else is treated as an empty result.
func (c *HTTPClient) SearchProducts(ctx context.Context, term, token string) ([]models.RawProductRecord, error) {
	u := fmt.Sprintf("%s?search=%s", c.endpoints.Search, url.QueryEscape(term))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, &Error{Op: "search", Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, &Error{Op: "search", Status: status,
			Message: fmt.Sprintf("search request failed with status %d", status)}
	}

	return decodeList[models.RawProductRecord](body)
}

// PrintLabels submits the full ordered queue to the print endpoint. The
// caller owns the atomicity contract: it clears the queue only when this
// returns nil.
func (c *HTTPClient) PrintLabels(ctx context.Context, items []models.QueueLineItem) error {
	buf, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return fmt.Errorf("encode print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Print, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return &Error{Op: "print", Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return &Error{Op: "print", Status: status,
			Message: errorMessage(body, fmt.Sprintf("print request failed with status %d", status))}
	}
	return nil
}

// do executes the request and drains the body. Transport errors come back
// as plain errors; HTTP-level failures are the caller's to interpret.
func (c *HTTPClient) do(req *http.Request) ([]byte, int, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("backend call",
		"method", req.Method,
		"url", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, resp.StatusCode, nil
}

// decodeList accepts both response shapes the backend emits for list
// endpoints: a bare JSON array, or an object wrapping the array under
// "data". Unknown shapes decode to an empty list rather than failing.
func decodeList[T any](body []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Success bool `json:"success"`
		Data    []T  `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Data != nil {
		return wrapper.Data, nil
	}

	return nil, nil
}

// errorMessage extracts the backend's "message" field, falling back to a
// generic message when the body is not the expected error shape.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}
