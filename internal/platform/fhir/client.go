// Package fhir provides a thin REST client for the external clinical data
// store, plus accessor helpers for resources decoded as generic JSON maps.
// The client covers the three operations the bots need: read a resource by
// reference, search a resource type, and create a resource.
package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// HTTPError represents a non-2xx response from the data store.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fhir: status %d", e.StatusCode)
	}
	return fmt.Sprintf("fhir: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a FHIR R4 REST endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a Client for the given base URL. The token, when
// non-empty, is sent as a bearer credential on every request.
func NewClient(baseURL, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client (used in tests).
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// ReadReference fetches a resource by relative reference, e.g. "Patient/123".
func (c *Client) ReadReference(ctx context.Context, ref string) (map[string]interface{}, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if ref == "" {
		return nil, fmt.Errorf("fhir: empty reference")
	}

	var resource map[string]interface{}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/"+ref, nil, &resource); err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return resource, nil
}

// Search queries a resource type and returns the resources contained in the
// result bundle. An empty bundle yields an empty slice, not an error.
func (c *Client) Search(ctx context.Context, resourceType string, params url.Values) ([]map[string]interface{}, error) {
	u := c.baseURL + "/" + resourceType
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bundle struct {
		Entry []struct {
			Resource map[string]interface{} `json:"resource"`
		} `json:"entry"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &bundle); err != nil {
		return nil, fmt.Errorf("search %s: %w", resourceType, err)
	}

	results := make([]map[string]interface{}, 0, len(bundle.Entry))
	for _, e := range bundle.Entry {
		if e.Resource != nil {
			results = append(results, e.Resource)
		}
	}
	return results, nil
}

// Create posts a new resource and returns the server's copy, which carries
// the server-assigned id.
func (c *Client) Create(ctx context.Context, resource map[string]interface{}) (map[string]interface{}, error) {
	resourceType, _ := resource["resourceType"].(string)
	if resourceType == "" {
		return nil, fmt.Errorf("fhir: resource is missing resourceType")
	}

	var created map[string]interface{}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/"+resourceType, resource, &created); err != nil {
		return nil, fmt.Errorf("create %s: %w", resourceType, err)
	}
	return created, nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/fhir+json")
	if in != nil {
		req.Header.Set("Content-Type", "application/fhir+json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	c.logger.Debug().
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("fhir request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
