// Package client is the typed request client for the conference platform's
// REST API. It attaches the session's bearer token, encodes JSON bodies and
// normalises error responses.
package client

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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/confhub/backoffice/internal/logger"
)

// Config holds common client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Cache enables HTTP caching of GET responses. CacheDir selects a disk
	// cache; empty keeps the cache in memory.
	Cache    bool
	CacheDir string
	// Debug logs every request, not only failures.
	Debug bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:3001/api",
		Timeout: 30 * time.Second,
	}
}

// Client sends requests to the remote API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Cache {
		transport = NewCachingTransport(cfg.CacheDir, transport)
	}
	transport = newTracingTransport(transport)
	requestLogger := log.Logger
	if !cfg.Debug {
		// successful calls are only logged when debugging
		requestLogger = requestLogger.Level(zerolog.InfoLevel)
	}
	transport = logger.NewHTTPRequests(requestLogger, transport)
	transport = newRequestIDTransport(transport)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// NewWithHTTPClient creates a client that sends through httpClient unchanged.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: u, httpClient: httpClient}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("API base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", raw)
	}
	return u, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one API call.
type Request struct {
	// Method defaults to GET.
	Method string
	Path   string
	Query  url.Values
	// Body is JSON encoded unless it is an io.Reader, which is sent as is.
	Body any
	// ContentType is only used for io.Reader bodies, e.g. multipart forms.
	ContentType string
	// Token is sent as a bearer token when set.
	Token string
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Do sends req and decodes the JSON response into T. An empty success body
// yields the zero T.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T

	data, err := c.send(ctx, req)
	if err != nil {
		return out, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response from %s: %w", req.Path, err)
	}

	return out, nil
}

func (c *Client) send(ctx context.Context, req Request) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
		contentType = req.ContentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		(&oauth2.Token{AccessToken: req.Token}).SetAuthHeader(httpReq)
	}

	return httpReq, nil
}

// newAPIError builds the error for a failed response, preferring the API's
// {"error": "..."} message.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &APIError{StatusCode: status, Message: payload.Error}
	}
	return &APIError{StatusCode: status, Message: fmt.Sprintf("API Error: %d", status)}
}
