// Package remote provides a client for shift and appointment records hosted by
// an external scheduling service.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/dayline/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "dayline/1.0"
)

var (
	// ErrUnauthorized indicates the token is missing, expired or invalid.
	ErrUnauthorized = errors.New("remote: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the service rate limit was hit.
	ErrRateLimited = errors.New("remote: rate limited")
	// ErrNotFound indicates the user is unknown to the service.
	ErrNotFound = errors.New("remote: not found")
)

// Client reads shifts and appointments over HTTP.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for the given base URL.
// Returns nil if the URL is empty or unparseable.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		timeout: timeout,
		http:    &http.Client{},
	}
}

type shiftDTO struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
}

type appointmentDTO struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	Location string    `json:"location"`
}

// ListShifts returns the user's shifts starting in [start, end).
func (c *Client) ListShifts(ctx context.Context, userID string, start, end time.Time) ([]model.Shift, error) {
	body, err := c.get(ctx, windowPath(userID, "shifts", start, end))
	if err != nil {
		return nil, err
	}

	var raw []shiftDTO
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("remote: parsing shifts: %w", err)
	}
	out := make([]model.Shift, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.Shift{ID: r.ID, UserID: userID, Title: r.Title, Start: r.Start})
	}
	return out, nil
}

// ListAppointments returns the user's appointments starting in [start, end).
func (c *Client) ListAppointments(ctx context.Context, userID string, start, end time.Time) ([]model.Appointment, error) {
	body, err := c.get(ctx, windowPath(userID, "appointments", start, end))
	if err != nil {
		return nil, err
	}

	var raw []appointmentDTO
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("remote: parsing appointments: %w", err)
	}
	out := make([]model.Appointment, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.Appointment{ID: r.ID, UserID: userID, Title: r.Title, Start: r.Start, Location: r.Location})
	}
	return out, nil
}

func windowPath(userID, collection string, start, end time.Time) string {
	q := url.Values{}
	q.Set("from", start.UTC().Format(time.RFC3339))
	q.Set("to", end.UTC().Format(time.RFC3339))
	return fmt.Sprintf("/users/%s/%s?%s", url.PathEscape(userID), collection, q.Encode())
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound:
		return nil, ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}
	return body, nil
}
