// Package api is the HTTP client for the remote Raihasa backend. It
// attaches the current bearer token to outgoing requests and surfaces
// backend error envelopes uniformly; retry and redirect policy belongs to
// the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fallbackMessage is shown when the backend rejects a request without a
// usable message, and for plain network failures.
const fallbackMessage = "Terjadi kesalahan, silakan coba lagi"

// TokenSource supplies the current bearer token; "" means anonymous
type TokenSource interface {
	Get() string
}

// staticToken adapts a fixed token string to TokenSource
type staticToken string

func (t staticToken) Get() string { return string(t) }

// APIError carries a backend rejection: the HTTP status and the backend's
// message. Callers decide retry or redirect policy; this client never
// retries and has no token-refresh path.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
}

// envelope is the backend's uniform response wrapper: success payloads sit
// under data, rejections carry message.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client is the backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a new API client
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// WithTokens returns a copy of the client that reads the bearer token from
// ts before each request.
func (c *Client) WithTokens(ts TokenSource) *Client {
	scoped := *c
	scoped.tokens = ts
	return &scoped
}

// WithToken returns a copy of the client bound to an explicit token,
// overriding any token store.
func (c *Client) WithToken(tok string) *Client {
	return c.WithTokens(staticToken(tok))
}

// do sends one request. The body is JSON-encoded when non-nil; the success
// payload is unwrapped from the data envelope into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Anonymous requests simply omit the header
	if c.tokens != nil {
		if tok := c.tokens.Get(); tok != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tok))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: rejectionMessage(raw),
		}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rejectionMessage extracts the backend's message field, falling back to a
// generic message when none is provided.
func rejectionMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallbackMessage
}

// Message returns the human-readable message for any error coming out of
// this client: the backend's own message for rejections, the generic
// fallback for everything else (network failures have no distinct path).
func Message(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Message
	}
	return fallbackMessage
}
