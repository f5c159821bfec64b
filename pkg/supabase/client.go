// Package supabase is a minimal PostgREST client for a Supabase project's
// REST endpoint, authenticated with the service role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error is a non-2xx PostgREST response
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Body       string `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// IsConflict reports whether err is a unique constraint violation
func IsConflict(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.StatusCode == http.StatusConflict || e.Code == "23505"
}

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		URL:        strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Eq, Gte, Lte and Lt format PostgREST filter operands
func Eq(v string) string  { return "eq." + v }
func Gte(v string) string { return "gte." + v }
func Lte(v string) string { return "lte." + v }
func Lt(v string) string  { return "lt." + v }

// Timestamp formats t for a PostgREST filter
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Select returns the rows of table matching query
func (c *Client) Select(ctx context.Context, table string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, table, query, nil, "")
}

// Insert inserts data (an object or an array of objects) and returns the created rows
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, table, nil, data, "return=representation")
}

// Upsert inserts or merges data on the onConflict columns
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	query := url.Values{"on_conflict": {onConflict}}
	return c.do(ctx, http.MethodPost, table, query, data, "return=representation,resolution=merge-duplicates")
}

// Update patches the rows matching query and returns them
func (c *Client) Update(ctx context.Context, table string, query url.Values, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, table, query, data, "return=representation")
}

// Delete removes the rows matching query and returns them
func (c *Client) Delete(ctx context.Context, table string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, table, query, nil, "return=representation")
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, data interface{}, prefer string) ([]byte, error) {
	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
		_ = json.Unmarshal(respBody, apiErr)
		return nil, apiErr
	}

	return respBody, nil
}
