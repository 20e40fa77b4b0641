package secrets

import (
	"context"
	"os"
	"strings"
)

// EnvResolver resolves secrets from process environment variables.
// Reference form: env://VAR_NAME.
type EnvResolver struct{}

// Scheme returns "env".
func (r *EnvResolver) Scheme() string {
	return "env"
}

// Resolve returns the value of the named environment variable.
func (r *EnvResolver) Resolve(ctx context.Context, reference string) (string, error) {
	name := strings.TrimPrefix(reference, "env://")
	if name == "" || strings.Contains(name, "/") {
		return "", &InvalidReferenceError{Reference: reference, Reason: "expected env://VAR_NAME"}
	}

	value, ok := os.LookupEnv(name)
	if !ok {
		return "", &NotFoundError{Reference: reference, Backend: "environment"}
	}
	return value, nil
}

func init() {
	Register(&EnvResolver{})
}
