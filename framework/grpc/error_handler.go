package authgrpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gatehouse/go-auth-middleware/core"
)

// ErrorHandler converts a failed authentication into the error returned to
// the gRPC client. The input is always a *core.Rejection or wraps one.
type ErrorHandler func(err error) error

// Code returns the gRPC status code for a failure kind. Credential problems
// map to Unauthenticated, unparseable metadata to InvalidArgument, trust
// failures to PermissionDenied and validator faults to Internal.
func Code(kind core.FailureKind) codes.Code {
	switch kind {
	case core.FailureMissingCredential:
		return codes.Unauthenticated
	case core.FailureMalformedCredential:
		return codes.InvalidArgument
	case core.FailureInvalidSignature, core.FailureExpired, core.FailureNotYetValid:
		return codes.Unauthenticated
	case core.FailureUntrustedIssuer:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}

// DefaultErrorHandler maps authentication failures to gRPC status errors.
// The message names the failure kind and nothing else; validation internals
// never reach the client.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	kind := core.KindOf(err)

	switch kind {
	case core.FailureMissingCredential:
		return status.Error(codes.Unauthenticated, "a credential is required")
	case core.FailureMalformedCredential:
		return status.Error(codes.InvalidArgument, "the credential is malformed")
	case core.FailureInvalidSignature:
		return status.Error(codes.Unauthenticated, "the credential is invalid")
	case core.FailureExpired:
		return status.Error(codes.Unauthenticated, "the credential is expired")
	case core.FailureNotYetValid:
		return status.Error(codes.Unauthenticated, "the credential is not valid yet")
	case core.FailureUntrustedIssuer:
		return status.Error(codes.PermissionDenied, "the credential comes from an untrusted party")
	default:
		return status.Error(codes.Internal, "something went wrong while checking the credential")
	}
}
