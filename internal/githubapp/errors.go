package githubapp

import (
	"fmt"

	"github.com/majorcontext/ghapp/internal/pemkey"
)

// InvalidKeyError indicates the App private key could not be parsed or
// used for signing. It carries structural context about the key so
// secret-injection problems can be diagnosed without logging the key
// itself.
type InvalidKeyError struct {
	KeyLength int
	HasArmor  bool
	Format    pemkey.Format
	Cause     error
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid App private key (length=%d armor=%t format=%s): %v",
		e.KeyLength, e.HasArmor, e.Format, e.Cause)
}

func (e *InvalidKeyError) Unwrap() error {
	return e.Cause
}

// APIError indicates GitHub rejected the token request with a non-2xx
// status. The response body is preserved for diagnosis (expired JWT,
// unknown installation, suspended App).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api returned %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError indicates GitHub returned a success status but
// the body could not be decoded or lacked the token field.
type MalformedResponseError struct {
	Body  string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected token response from github: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// UnreachableError indicates the token request never produced an HTTP
// response: DNS failure, connection refused, or timeout.
type UnreachableError struct {
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("github api unreachable: %v", e.Cause)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}
