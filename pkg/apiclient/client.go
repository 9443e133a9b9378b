// Package apiclient is the HTTP client for the dittobank admin API. The
// status and accounts commands use it to inspect a running server without
// touching the datagram path.
package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one admin listener. The admin API is read-only and
// unauthenticated, so the client carries no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the admin listener at baseURL, for example
// "http://127.0.0.1:9100". The timeout is short because the listener is
// expected to be local.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// envelope mirrors the admin API response wrapper. Data stays raw until
// the caller-supplied result type is known.
type envelope struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// get performs a GET request, unwraps the response envelope and decodes
// the data payload into result.
func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 || env.Status == "error" {
		msg := env.Error
		if msg == "" {
			msg = string(respBody)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
