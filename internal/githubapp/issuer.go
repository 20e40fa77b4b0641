// Package githubapp issues short-lived GitHub App installation access
// tokens used to authorize git clone/fetch/push in automated builds and
// sandboxes.
//
// Issuance is a two-step exchange: sign a time-bounded JWT with the
// App's private key, then trade it at the GitHub API for an
// installation-scoped token valid for about an hour. Private keys
// provisioned through CI secret stores frequently arrive with escaped
// newlines or stripped PEM armor; pemkey repairs those before signing.
//
// The package holds no state. Every call performs a fresh exchange and
// is safe to run concurrently with others.
package githubapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/majorcontext/ghapp/internal/pemkey"
)

// Issuer generates installation tokens for a GitHub App. The zero value
// is usable and talks to api.github.com.
type Issuer struct {
	// HTTPClient is optional; a client with a 10 second timeout is used
	// when nil.
	HTTPClient *http.Client

	// BaseURL overrides the GitHub API endpoint, mainly for tests.
	BaseURL string

	// Logger receives diagnostic events. slog.Default() when nil.
	Logger *slog.Logger

	// LogKeyMaterial additionally logs a short prefix of the normalized
	// key when signing fails. Off by default: even prefixes of secret
	// material do not belong in production logs. The structural fields
	// (length, armor, detected format) are logged regardless.
	LogKeyMaterial bool
}

func (i *Issuer) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}

// IssueToken generates a fresh installation token: normalize the key,
// sign the App JWT, exchange it. Failures are one of *InvalidKeyError,
// *APIError, *MalformedResponseError, or *UnreachableError.
func (i *Issuer) IssueToken(ctx context.Context, appID, privateKey, installationID string) (*Token, error) {
	if appID == "" {
		return nil, fmt.Errorf("app id is required")
	}
	if installationID == "" {
		return nil, fmt.Errorf("installation id is required")
	}

	log := i.logger()

	key, report := pemkey.Normalize(privateKey)
	if report.UnescapedNewlines || report.RebuiltArmor {
		log.Warn("github.key_normalized",
			"unescaped_newlines", report.UnescapedNewlines,
			"rebuilt_armor", report.RebuiltArmor,
			"format", string(report.Format),
			"key_length", report.Length)
	}

	appJWT, err := signAppJWT(appID, key, time.Now())
	if err != nil {
		var invalid *InvalidKeyError
		if errors.As(err, &invalid) {
			attrs := []any{
				"error", invalid.Cause.Error(),
				"key_has_armor", invalid.HasArmor,
				"key_format", string(invalid.Format),
				"key_length", invalid.KeyLength,
			}
			if i.LogKeyMaterial {
				attrs = append(attrs, "key_prefix", keyPrefix(key))
			}
			log.Error("github.jwt_invalid_key", attrs...)
		}
		return nil, err
	}

	client := &Client{HTTPClient: i.HTTPClient, BaseURL: i.BaseURL}
	token, err := client.InstallationToken(ctx, appJWT, installationID)
	if err != nil {
		return nil, err
	}

	log.Debug("github.token_issued",
		"installation_id", installationID,
		"expires_at", token.ExpiresAt)
	return token, nil
}

// GenerateInstallationToken is IssueToken returning just the token
// value, the shape git and other bearer-credential consumers want.
func (i *Issuer) GenerateInstallationToken(ctx context.Context, appID, privateKey, installationID string) (string, error) {
	token, err := i.IssueToken(ctx, appID, privateKey, installationID)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// GenerateInstallationToken generates a token with default settings.
func GenerateInstallationToken(ctx context.Context, appID, privateKey, installationID string) (string, error) {
	var issuer Issuer
	return issuer.GenerateInstallationToken(ctx, appID, privateKey, installationID)
}

// keyPrefix truncates key for debug logging.
func keyPrefix(key string) string {
	const n = 24
	if len(key) <= n {
		return key
	}
	return key[:n] + "..."
}
