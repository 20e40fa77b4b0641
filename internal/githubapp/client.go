package githubapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is GitHub's REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
)

// defaultClient bounds the single network round trip. Reusing one
// client across calls is a connection-pooling optimization only; every
// invocation still performs a fresh exchange.
var defaultClient = &http.Client{Timeout: 10 * time.Second}

// Token is an installation access token. GitHub documents the lifetime
// as about an hour; ExpiresAt is whatever the API reported.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token has expired. Uses a 5 minute skew
// so a token is not handed to a long git operation moments before it
// lapses. A token without a known expiry counts as expired.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().After(t.ExpiresAt.Add(-5 * time.Minute))
}

// Client exchanges a signed App JWT for an installation token.
type Client struct {
	// HTTPClient is optional; a client with a 10 second timeout is used
	// when nil.
	HTTPClient *http.Client

	// BaseURL overrides the GitHub API endpoint, mainly for tests.
	BaseURL string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultClient
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// InstallationToken performs the token exchange: a single POST to the
// installation access-tokens endpoint, bearer-authenticated with the
// App JWT. No retries; each call returns an independently valid token,
// so retry policy belongs to the caller.
func (c *Client) InstallationToken(ctx context.Context, appJWT, installationID string) (*Token, error) {
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", c.baseURL(), installationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &UnreachableError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnreachableError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &MalformedResponseError{Body: string(body), Cause: err}
	}
	if token.Token == "" {
		return nil, &MalformedResponseError{Body: string(body), Cause: errors.New("missing token field")}
	}
	return &token, nil
}
