// Package backend is the HTTP client for the remote SmartCashbook REST API.
// The session subsystem consumes two endpoints: login and token refresh.
package backend

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

	"github.com/google/uuid"

	"github.com/anurag9179/smartcashbook.client/internal/config"
)

// ErrConnectivity wraps transport-level failures (refused connection,
// timeout, DNS). Callers show a generic "cannot reach the server" message.
var ErrConnectivity = errors.New("cannot reach the server")

// APIError is a non-2xx response from the backend. Message carries the
// server's human-readable message when the error body had one, otherwise a
// status-specific generic.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the SmartCashbook backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a backend client from config.
func New(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// NewWithHTTPClient is used by tests to point at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, identifier, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return "", err
	}
	return c.tokenCall(ctx, "/api/auth/login", body, "")
}

// Refresh exchanges the current token for a freshly signed one.
func (c *Client) Refresh(ctx context.Context, current string) (string, error) {
	return c.tokenCall(ctx, "/api/auth/refresh", []byte("{}"), current)
}

func (c *Client) tokenCall(ctx context.Context, path string, body []byte, bearer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: serverMessage(resp.StatusCode, payload)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(payload, &tr); err != nil || tr.Token == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "the server returned an unexpected response"}
	}
	return tr.Token, nil
}

func serverMessage(status int, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return er.Message
	}
	switch status {
	case http.StatusUnauthorized:
		return "invalid credentials"
	case http.StatusBadRequest:
		return "malformed request"
	default:
		return "the server could not process the request"
	}
}
