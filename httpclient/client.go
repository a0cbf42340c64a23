package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client shares one transport between timed API calls and downloads, which
// only the caller's context bounds.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	config         Config
}

func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		httpClient:     &http.Client{Transport: transport, Timeout: cfg.Timeout},
		downloadClient: &http.Client{Transport: transport},
		config:         cfg,
	}, nil
}

// Do executes an HTTP request and returns the complete response. Non-2xx
// responses are returned together with a classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// Download streams the body of a GET to url into w, failing with
// ErrCodeTooLarge once more than limit bytes arrive (limit <= 0 disables the
// check). Only the context bounds the transfer.
func (c *Client) Download(ctx context.Context, url string, w io.Writer, limit int64) (int64, error) {
	httpReq, err := c.buildRequest(ctx, Request{Method: http.MethodGet, Path: url})
	if err != nil {
		return 0, err
	}
	resp, err := c.downloadClient.Do(httpReq)
	if err != nil {
		return 0, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, ClassifyStatusCode(resp.StatusCode, body)
	}

	src := io.Reader(resp.Body)
	if limit > 0 {
		src = io.LimitReader(resp.Body, limit+1)
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return n, transportError(ctx, err)
	}
	if limit > 0 && n > limit {
		return n, &Error{Code: ErrCodeTooLarge, Message: fmt.Sprintf("download exceeds %d bytes", limit)}
	}
	return n, nil
}

func transportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return newTimeoutError(err)
	}
	return newConnectionError(err)
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, newValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, newValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.config.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
