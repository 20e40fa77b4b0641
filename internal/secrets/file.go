package secrets

import (
	"context"
	"os"
	"strings"
)

// FileResolver resolves secrets from local files, typically a
// downloaded App private key. Reference form: file:///path/to/key.pem.
type FileResolver struct{}

// Scheme returns "file".
func (r *FileResolver) Scheme() string {
	return "file"
}

// Resolve reads the referenced file. The value is returned as-is,
// trailing newline included; key repair is not this layer's job.
func (r *FileResolver) Resolve(ctx context.Context, reference string) (string, error) {
	path := strings.TrimPrefix(reference, "file://")
	if path == "" {
		return "", &InvalidReferenceError{Reference: reference, Reason: "empty path"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Reference: reference, Backend: "file"}
		}
		return "", &BackendError{
			Backend:   "file",
			Reference: reference,
			Reason:    err.Error(),
		}
	}
	return string(data), nil
}

func init() {
	Register(&FileResolver{})
}
