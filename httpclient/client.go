package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Request describes an outbound request.
type Request struct {
	Method string
	// Path is appended to BaseURL unless it is already absolute.
	Path    string
	Headers map[string]string
	// Body is sent as-is for []byte and io.Reader, JSON-encoded otherwise.
	Body any
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsError reports whether the status is outside 2xx.
func (r *Response) IsError() bool {
	return r.StatusCode < 200 || r.StatusCode >= 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client sends requests against one base URL.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// Do sends req and reads the whole response. A non-2xx status returns both
// the Response and a status *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}
	if statusErr := ClassifyStatusCode(resp.StatusCode, body); statusErr != nil {
		return result, statusErr
	}
	return result, nil
}

// classifyTransport separates caller cancellation from client timeouts and
// other network failures.
func classifyTransport(ctx context.Context, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Error{Code: ErrCodeCanceled, Message: err.Error(), Err: ctxErr}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(ErrCodeTimeout, err)
	}
	return newError(ErrCodeConnection, err)
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = c.config.BaseURL + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, newError(ErrCodeRequest, fmt.Errorf("encode body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, newError(ErrCodeRequest, fmt.Errorf("create request: %w", err))
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != http.NoBody && contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return http.NoBody, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
