package secrets

import (
	"context"
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringResolver resolves secrets from the OS keychain: Keychain on
// macOS, libsecret/kwallet on Linux, Credential Manager on Windows.
// Reference form: keyring://service/account.
type KeyringResolver struct{}

// Scheme returns "keyring".
func (r *KeyringResolver) Scheme() string {
	return "keyring"
}

// Resolve fetches the secret stored under service/account.
func (r *KeyringResolver) Resolve(ctx context.Context, reference string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	service, account, err := parseKeyringReference(reference)
	if err != nil {
		return "", err
	}

	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", &NotFoundError{Reference: reference, Backend: "keyring"}
		}
		return "", &BackendError{
			Backend:   "keyring",
			Reference: reference,
			Reason:    err.Error(),
			Fix:       "On headless Linux a Secret Service daemon (gnome-keyring, kwallet) must be running.",
		}
	}
	return value, nil
}

// parseKeyringReference splits keyring://service/account.
func parseKeyringReference(reference string) (service, account string, err error) {
	rest := strings.TrimPrefix(reference, "keyring://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &InvalidReferenceError{
			Reference: reference,
			Reason:    "expected keyring://service/account",
		}
	}
	return parts[0], parts[1], nil
}

func init() {
	Register(&KeyringResolver{})
}
