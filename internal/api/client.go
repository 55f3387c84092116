// Package api provides an HTTP client for the OpenML REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultServer is the base URL of the public OpenML API.
	DefaultServer = "https://www.openml.org/api/v1"

	// DefaultTimeout is the HTTP timeout for metadata requests. Artifact
	// downloads share it; flow sources and binaries are small files.
	DefaultTimeout = 60 * time.Second
)

// ErrNotFound indicates the server knows no object with the requested id.
var ErrNotFound = errors.New("object not found")

// Client is an HTTP client for the OpenML API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the OpenML client.
type Option func(*Client)

// WithServer sets the API base URL.
func WithServer(server string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(server, "/")
	}
}

// WithAPIKey sets the OpenML API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new OpenML API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultServer,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Server returns the configured base URL.
func (c *Client) Server() string {
	return c.baseURL
}

// IsAvailable checks if the OpenML server is reachable and responding.
func (c *Client) IsAvailable(ctx context.Context) bool {
	// Flow 1 is the oldest public flow; any well-formed response will do.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL("flow", 1), nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// GetObjectXML fetches the XML description of an object, e.g. kind "flow"
// with id 100 requests {server}/flow/100.
func (c *Client) GetObjectXML(ctx context.Context, kind string, id int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(kind, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusNotFound ||
			resp.StatusCode == http.StatusPreconditionFailed {
			// OpenML reports unknown ids as 412 with an oml:error body.
			return nil, fmt.Errorf("get %s %d: %w: %s", kind, id, ErrNotFound, condense(body))
		}
		return nil, fmt.Errorf("get %s %d: status %d: %s", kind, id, resp.StatusCode, condense(body))
	}

	return io.ReadAll(resp.Body)
}

// Download fetches an arbitrary URL, typically a flow's source or binary
// artifact, and streams the body to w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	return nil
}

// objectURL builds {base}/{kind}/{id}, with the api_key query parameter
// when a key is configured.
func (c *Client) objectURL(kind string, id int64) string {
	u := c.baseURL + "/" + kind + "/" + strconv.FormatInt(id, 10)
	if c.apiKey != "" {
		u += "?api_key=" + url.QueryEscape(c.apiKey)
	}
	return u
}

// condense flattens an error body into a single log-friendly line.
func condense(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
