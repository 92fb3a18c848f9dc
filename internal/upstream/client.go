// Package upstream holds the HTTP plumbing shared by the clients of PIBBLE's
// backend services (movies, shows, user-data).
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrBaseURLMissing = errors.New("service base URL is not configured")
	ErrRequestFailed  = errors.New("HTTP request failed")
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("request not authorized")
	ErrRateLimited    = errors.New("service rate limited")
	ErrStatus         = errors.New("unexpected response status")
	ErrDecode         = errors.New("failed to decode response")
)

// maxErrorBody caps how much of a failed response body is kept for logging.
const maxErrorBody = 512

// Config describes one upstream service.
type Config struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

// Client performs authenticated JSON GET requests against one service.
type Client struct {
	httpClient *http.Client
	name       string
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates a client for the service described by cfg.
// A zero Timeout leaves the http.Client default (no timeout).
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		name:    cfg.Name,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:  logger.With().Str("component", cfg.Name).Logger(),
	}
}

// Name returns the service name.
func (c *Client) Name() string {
	return c.name
}

// IsConfigured returns true if the base URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON fetches baseURL+path and decodes the body into result.
// token, when non-empty, is sent as a bearer credential.
func (c *Client) GetJSON(ctx context.Context, path, token string, result any) error {
	body, err := c.Get(ctx, path, token)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, c.name, err)
	}
	return nil
}

// Get fetches baseURL+path and returns the raw body of a 2xx response.
func (c *Client) Get(ctx context.Context, path, token string) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", ErrBaseURLMissing, c.name)
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("url", endpoint).
			Str("body", string(snippet)).
			Msg("upstream returned error status")

		return nil, statusError(c.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %w", ErrRequestFailed, c.name, err)
	}
	return body, nil
}

func statusError(name string, status int) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: status %d", ErrUnauthorized, name, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, name)
	default:
		return fmt.Errorf("%w: %s: status %d", ErrStatus, name, status)
	}
}

// Ping checks that GET baseURL+path answers with a 2xx status.
func (c *Client) Ping(ctx context.Context, path string) error {
	_, err := c.Get(ctx, path, "")
	return err
}
