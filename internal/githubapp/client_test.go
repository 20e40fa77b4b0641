package githubapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_InstallationToken(t *testing.T) {
	t.Run("successful exchange", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if r.URL.Path != "/app/installations/987/access_tokens" {
				t.Errorf("path = %s, want /app/installations/987/access_tokens", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
				t.Errorf("Authorization = %q, want %q", got, "Bearer test-jwt")
			}
			if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
				t.Errorf("Accept = %q, want %q", got, "application/vnd.github+json")
			}
			if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
				t.Errorf("X-GitHub-Api-Version = %q, want %q", got, "2022-11-28")
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"token":"ghs_abc123","expires_at":"2026-08-29T12:00:00Z"}`))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL}
		token, err := client.InstallationToken(context.Background(), "test-jwt", "987")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.Token != "ghs_abc123" {
			t.Errorf("Token = %q, want %q", token.Token, "ghs_abc123")
		}
		want := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		if !token.ExpiresAt.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, want)
		}
	})

	t.Run("rejected with 401", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"'Expiration time' claim ('exp') is too far in the future"}`))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL}
		_, err := client.InstallationToken(context.Background(), "stale-jwt", "987")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error type = %T, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
		}
		if !strings.Contains(apiErr.Body, "too far in the future") {
			t.Errorf("Body should carry the response body, got %q", apiErr.Body)
		}
	})

	t.Run("non-json success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL}
		_, err := client.InstallationToken(context.Background(), "test-jwt", "987")

		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("error type = %T, want *MalformedResponseError", err)
		}
		if malformed.Body != "<html>maintenance</html>" {
			t.Errorf("Body = %q, want the raw response body", malformed.Body)
		}
	})

	t.Run("json body without token field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_at":"2026-08-29T12:00:00Z"}`))
		}))
		defer server.Close()

		client := &Client{BaseURL: server.URL}
		_, err := client.InstallationToken(context.Background(), "test-jwt", "987")

		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("error type = %T, want *MalformedResponseError", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // Nothing is listening anymore.

		client := &Client{BaseURL: server.URL}
		_, err := client.InstallationToken(context.Background(), "test-jwt", "987")

		var unreachable *UnreachableError
		if !errors.As(err, &unreachable) {
			t.Fatalf("error type = %T, want *UnreachableError", err)
		}
	})
}

func TestClient_Defaults(t *testing.T) {
	client := &Client{}
	if client.baseURL() != DefaultBaseURL {
		t.Errorf("baseURL() = %q, want %q", client.baseURL(), DefaultBaseURL)
	}
	if client.httpClient() != defaultClient {
		t.Error("expected the shared default client when HTTPClient is nil")
	}

	custom := &http.Client{Timeout: 3 * time.Second}
	client = &Client{HTTPClient: custom, BaseURL: "http://example.test/"}
	if client.httpClient() != custom {
		t.Error("expected the injected client")
	}
	if client.baseURL() != "http://example.test" {
		t.Errorf("baseURL() = %q, want trailing slash trimmed", client.baseURL())
	}
}

func TestToken_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"fresh token", time.Now().Add(time.Hour), false},
		{"expired token", time.Now().Add(-time.Minute), true},
		{"inside the 5 minute skew", time.Now().Add(2 * time.Minute), true},
		{"no expiry known", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{Token: "ghs_x", ExpiresAt: tt.expiresAt}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %t, want %t", got, tt.want)
			}
		})
	}
}
