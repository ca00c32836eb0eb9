package authgrpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

// CredentialExtractor extracts a credential from the call context. Returning
// ("", nil) means no credential was presented; an error means the metadata
// carried something that cannot be read as a credential.
type CredentialExtractor func(ctx context.Context) (string, error)

// Extractor errors
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata
	// entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format is
	// invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <credential>")

	// ErrUnsupportedScheme indicates an unsupported authorization scheme was
	// used.
	ErrUnsupportedScheme = errors.New("unsupported authorization scheme, expected: Bearer")
)

// MetadataCredentialExtractor extracts the credential from the
// "authorization" metadata key. It supports the "Bearer <credential>" format.
//
// gRPC normalizes incoming metadata keys to lowercase, so this extractor
// only checks the lowercase "authorization" key.
func MetadataCredentialExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil
	}

	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}

	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}
