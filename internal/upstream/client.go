// Package upstream implements the HTTP clients for the fitness API: resource
// calls with a bearer token, and the OAuth2 refresh-token exchange.
package upstream

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	dErrors "fitrelay/pkg/domain-errors"
)

// Response carries an upstream reply back to the relay without interpreting
// it: the body stays raw so non-2xx payloads pass through verbatim.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client calls resource endpoints on the upstream API.
type Client struct {
	baseURL    string
	locale     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient builds a resource client. timeout bounds each call end to end.
func NewClient(baseURL, locale string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		locale:     locale,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one resource call with the given bearer token. endpoint is the
// upstream path plus query string. body is sent as JSON and only on non-GET
// requests.
//
// Errors: transport-level failures come back as upstream_unreachable; non-2xx
// statuses are not errors and are returned in the Response untouched.
func (c *Client) Do(ctx context.Context, accessToken, method, endpoint string, body []byte) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 && method != http.MethodGet {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "build upstream request")
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept-Language", c.locale)
	req.Header.Set("Accept-Locale", c.locale)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnreachable, "call upstream")
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnreachable, "read upstream response")
	}

	if !statusOK(resp.StatusCode) {
		c.logger.Debug("upstream returned non-2xx",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   payload,
	}, nil
}

func statusOK(status int) bool {
	return status >= 200 && status < 300
}
