package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mb/pkg/logging"
)

// RequestIDHeader carries a per-request ID that the server echoes in its logs.
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 30 * time.Second

// ImpostersBody is the decoded body of an imposters response. Each imposter
// is kept as raw JSON.
type ImpostersBody struct {
	Imposters []json.RawMessage `json:"imposters"`
}

// Response is an undecoded admin API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response has status 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// GetOptions controls GetConfig.
type GetOptions struct {
	RemoveProxies bool
}

// Client talks to the admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the admin API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PutConfig replaces every imposter on the server with document. document is
// marshaled as JSON unless it already is raw JSON.
func (c *Client) PutConfig(ctx context.Context, document any) (*ImpostersBody, error) {
	body, err := encode(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, "/imposters", body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var result ImpostersBody
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// GetConfig fetches the replayable imposters. The body is returned as is;
// a non-200 status is not an error.
func (c *Client) GetConfig(ctx context.Context, opts GetOptions) (*Response, error) {
	params := url.Values{}
	params.Set("replayable", "true")
	if opts.RemoveProxies {
		params.Set("removeProxies", "true")
	}
	return c.do(ctx, http.MethodGet, "/imposters?"+params.Encode(), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Close = true
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	c.log.Debug("admin request", "method", method, "url", fullURL, "requestId", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newConnectionError(c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("admin response", "status", resp.StatusCode, "bytes", len(data), "requestId", reqID)
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func encode(document any) ([]byte, error) {
	switch v := document.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
