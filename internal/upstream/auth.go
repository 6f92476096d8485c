package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "fitrelay/pkg/domain-errors"
)

const tokenEndpoint = "/oauth2/token"

// Grant is the upstream token endpoint's reply to a refresh exchange. The
// upstream may rotate the refresh token, so callers must persist both values.
type Grant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthClient exchanges refresh tokens at the upstream authorization server.
type AuthClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

// AuthOption configures the AuthClient.
type AuthOption func(*AuthClient)

// WithAuthHTTPClient replaces the default HTTP client, mainly for tests.
func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(a *AuthClient) {
		a.httpClient = c
	}
}

// WithAuthLogger sets the logger for the client.
func WithAuthLogger(logger *slog.Logger) AuthOption {
	return func(a *AuthClient) {
		a.logger = logger
	}
}

// NewAuthClient builds a token-exchange client authenticating with the given
// client credentials.
func NewAuthClient(baseURL, clientID, clientSecret string, timeout time.Duration, opts ...AuthOption) *AuthClient {
	a := &AuthClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Exchange swaps a refresh token for a new access/refresh pair.
//
// The request is a form-encoded POST with grant_type=refresh_token and HTTP
// Basic authentication of the client id and secret, per RFC 6749 §6.
//
// Errors: any non-2xx status or transport failure comes back as
// refresh_failed; the caller must leave its stored credential untouched.
func (a *AuthClient) Exchange(ctx context.Context, refreshToken string) (*Grant, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRefreshFailed, "build token request")
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRefreshFailed, "call token endpoint")
	}
	defer resp.Body.Close() //nolint:errcheck

	if !statusOK(resp.StatusCode) {
		// Read a bounded slice of the error body for the log only; the raw
		// upstream error never reaches the end user.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		a.logger.Warn("token exchange rejected",
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return nil, dErrors.New(dErrors.CodeRefreshFailed, "token exchange rejected by upstream")
	}

	var grant Grant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRefreshFailed, "decode token response")
	}
	if grant.AccessToken == "" || grant.ExpiresIn <= 0 {
		return nil, dErrors.New(dErrors.CodeRefreshFailed, "token response missing access_token or expires_in")
	}
	return &grant, nil
}
