// Package api is the HTTP client for the ERP backend's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diewo77/erp-reports/auth"
)

var (
	// ErrUnavailable matches every failure to obtain a report: transport
	// errors, non-2xx responses and undecodable bodies.
	ErrUnavailable = errors.New("report service unavailable")
	// ErrUnauthorized matches a 401 from the backend.
	ErrUnauthorized = errors.New("unauthorized")
)

const maxBody = 16 << 20

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.Path, e.Status)
}

// Is lets callers match with errors.Is against the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// Client talks to {BaseURL}/api/v1.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

// New builds a client with the given request timeout.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + "/api/v1/" + strings.TrimLeft(path, "/")
}

// Get fetches path with the given filters and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, params Params, out any) error {
	target := c.url(path)
	if q := params.Encode(); q != "" {
		target += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, path, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if tok, ok := auth.TokenFromContext(req.Context()); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("api request failed", "method", req.Method, "path", path, "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w: %w", req.Method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.Logger.Debug("api request", "method", req.Method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %w", req.Method, path, ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w: %w", req.Method, path, ErrUnavailable, err)
	}
	return nil
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.Post(ctx, "auth/login", map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, fmt.Errorf("auth/login: %w: empty token", ErrUnavailable)
	}
	return res, nil
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, "health", nil, nil)
}
