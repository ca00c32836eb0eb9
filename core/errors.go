package core

import "errors"

// Sentinel errors for principal retrieval.
var (
	// ErrNoPrincipal is returned when no principal can be retrieved from context.
	ErrNoPrincipal = errors.New("no principal in context")

	// ErrNoCustomClaims is returned when the principal carries no custom
	// claims of the requested type.
	ErrNoCustomClaims = errors.New("no custom claims of the requested type in context")
)

// FailureKind classifies why authentication was rejected. The set is closed:
// validators must map every failure onto one of these values, and anything
// they cannot classify is normalized to FailureValidatorError by the Guard.
// Adapters use the kind to choose a transport-level status.
type FailureKind string

const (
	// FailureMissingCredential means no credential was found in the request.
	FailureMissingCredential FailureKind = "missing_credential"

	// FailureMalformedCredential means a credential was present but its
	// structure could not be parsed.
	FailureMalformedCredential FailureKind = "malformed_credential"

	// FailureInvalidSignature means the credential's signature did not verify
	// against the configured key material, or it was signed with an algorithm
	// outside the configured set.
	FailureInvalidSignature FailureKind = "invalid_signature"

	// FailureExpired means the credential's expiry is in the past.
	FailureExpired FailureKind = "expired"

	// FailureNotYetValid means the credential is not valid yet (nbf or iat in
	// the future).
	FailureNotYetValid FailureKind = "not_yet_valid"

	// FailureUntrustedIssuer means the credential's claims fail the configured
	// trust constraints (issuer, audience, or custom claim checks).
	FailureUntrustedIssuer FailureKind = "untrusted_issuer"

	// FailureValidatorError means the validator itself failed, e.g. key
	// material could not be fetched. This is a server-side fault, not a
	// problem with the presented credential.
	FailureValidatorError FailureKind = "validator_error"
)

// Rejection is the error type carried by every failed authentication. It
// pairs a FailureKind with a human-readable message and the underlying cause,
// so adapters can pick a response status while logs keep the detail.
type Rejection struct {
	// Kind is the classification adapters map to a status code.
	Kind FailureKind

	// Message is a human-readable description safe to return to clients.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Rejection) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *Rejection) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a Rejection of the same kind, so callers can
// write errors.Is(err, &Rejection{Kind: FailureExpired}).
func (e *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Kind == e.Kind
}

// Reject creates a new Rejection with the given kind, message and cause.
func Reject(kind FailureKind, message string, cause error) *Rejection {
	return &Rejection{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// KindOf extracts the FailureKind from an error. Errors that are not
// Rejections classify as FailureValidatorError; nil classifies as "".
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}

	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Kind
	}

	return FailureValidatorError
}
