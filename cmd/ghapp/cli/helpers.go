package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/majorcontext/ghapp/internal/config"
	"github.com/majorcontext/ghapp/internal/githubapp"
	"github.com/majorcontext/ghapp/internal/secrets"
)

// issuerInputs is everything one token exchange needs, after merging
// flags, environment, and config file.
type issuerInputs struct {
	AppID          string
	InstallationID string
	PrivateKey     string
	Issuer         *githubapp.Issuer
}

// gatherInputs merges flag values over the loaded config and resolves
// the private key. Flag values win; config.Load already applied GHAPP_*
// environment overrides.
func gatherInputs(ctx context.Context, flagAppID, flagInstallationID, flagKey string, pasteKey bool) (*issuerInputs, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	appID := firstNonEmpty(flagAppID, cfg.AppID)
	installationID := firstNonEmpty(flagInstallationID, cfg.InstallationID)
	keyRef := firstNonEmpty(flagKey, cfg.PrivateKey)

	if appID == "" {
		return nil, fmt.Errorf("app id is required (--app-id, GHAPP_APP_ID, or config)")
	}
	if installationID == "" {
		return nil, fmt.Errorf("installation id is required (--installation-id, GHAPP_INSTALLATION_ID, or config)")
	}

	var key string
	if pasteKey {
		key, err = promptSecret("Paste App private key")
	} else {
		if keyRef == "" {
			return nil, fmt.Errorf("private key is required (--key, GHAPP_PRIVATE_KEY, config, or --paste-key)")
		}
		key, err = resolveKey(ctx, keyRef)
	}
	if err != nil {
		return nil, err
	}

	return &issuerInputs{
		AppID:          appID,
		InstallationID: installationID,
		PrivateKey:     key,
		Issuer: &githubapp.Issuer{
			HTTPClient:     &http.Client{Timeout: cfg.Timeout()},
			BaseURL:        cfg.APIURL,
			LogKeyMaterial: cfg.Debug.LogKeyMaterial,
		},
	}, nil
}

// resolveKey turns a key argument into key material: a secret reference
// is resolved through its backend, an existing file path is read, and
// anything else is treated as a literal PEM string.
func resolveKey(ctx context.Context, ref string) (string, error) {
	if secrets.IsReference(ref) {
		value, err := secrets.Resolve(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("resolving private key: %w", err)
		}
		return value, nil
	}

	if !strings.Contains(ref, "-----BEGIN") {
		if data, err := os.ReadFile(ref); err == nil {
			return string(data), nil
		}
	}
	return ref, nil
}

// promptSecret reads a multi-line secret without echoing when stdin is
// a terminal, falling back to a plain read when piped. Interactive
// input ends at the PEM footer or an empty line.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintln(os.Stderr, prompt+" (input hidden):")
		var lines []string
		for {
			line, err := term.ReadPassword(fd)
			if err != nil {
				return "", fmt.Errorf("reading key: %w", err)
			}
			s := strings.TrimRight(string(line), "\r")
			if strings.TrimSpace(s) == "" {
				break
			}
			lines = append(lines, s)
			if strings.Contains(s, "-----END") {
				break
			}
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(strings.Join(lines, "\n")), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
