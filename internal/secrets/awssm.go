package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// AWSSecretsManagerResolver resolves secrets from AWS Secrets Manager.
//
// Reference forms:
//
//	awssm://region/secret-id
//	awssm:///secret-id            (default credential chain region)
//	awssm://region/secret-id#key  (extract one field of a JSON secret)
//
// Secret ids may contain slashes; everything after the region segment
// is the id.
type AWSSecretsManagerResolver struct {
	// client overrides the SDK client, for tests.
	client smClient
}

// smClient is the slice of the Secrets Manager API this resolver uses.
type smClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Scheme returns "awssm".
func (r *AWSSecretsManagerResolver) Scheme() string {
	return "awssm"
}

// Resolve fetches the secret value, optionally extracting a JSON field.
func (r *AWSSecretsManagerResolver) Resolve(ctx context.Context, reference string) (string, error) {
	region, secretID, jsonKey, err := parseAWSSMReference(reference)
	if err != nil {
		return "", err
	}

	client := r.client
	if client == nil {
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return "", &BackendError{
				Backend:   "AWS Secrets Manager",
				Reference: reference,
				Reason:    fmt.Sprintf("loading AWS config: %v", err),
				Fix:       "Configure credentials via environment, shared config, or an instance profile.",
			}
		}
		client = secretsmanager.NewFromConfig(cfg)
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", &NotFoundError{Reference: reference, Backend: "AWS Secrets Manager"}
		}
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    err.Error(),
		}
	}

	var value string
	switch {
	case out.SecretString != nil:
		value = *out.SecretString
	case out.SecretBinary != nil:
		value = string(out.SecretBinary)
	default:
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    "secret has neither string nor binary value",
		}
	}

	if jsonKey == "" {
		return value, nil
	}
	return extractJSONField(value, jsonKey, reference)
}

// extractJSONField pulls one string field out of a JSON object secret.
func extractJSONField(value, key, reference string) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    fmt.Sprintf("secret is not a JSON object but reference asks for field %q", key),
		}
	}
	field, ok := fields[key]
	if !ok {
		return "", &NotFoundError{Reference: reference, Backend: "AWS Secrets Manager"}
	}
	s, ok := field.(string)
	if !ok {
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    fmt.Sprintf("field %q is not a string", key),
		}
	}
	return s, nil
}

// parseAWSSMReference splits awssm://[region]/secret-id[#json-key].
func parseAWSSMReference(reference string) (region, secretID, jsonKey string, err error) {
	u, parseErr := url.Parse(reference)
	if parseErr != nil || u.Scheme != "awssm" {
		return "", "", "", &InvalidReferenceError{Reference: reference, Reason: "expected awssm://[region]/secret-id"}
	}

	region = u.Host
	secretID = strings.TrimPrefix(u.Path, "/")
	if secretID == "" {
		return "", "", "", &InvalidReferenceError{Reference: reference, Reason: "missing secret id"}
	}
	return region, secretID, u.Fragment, nil
}

func init() {
	Register(&AWSSecretsManagerResolver{})
}
