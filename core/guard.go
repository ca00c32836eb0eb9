package core

import (
	"context"
	"errors"
	"time"
)

// Validator turns a raw credential into a verified Principal. Implementations
// must classify every failure as a *Rejection carrying one of the closed
// FailureKind values; any other error is normalized by the Guard into
// FailureValidatorError. A successful call returns a non-nil Principal.
//
// The context is the suspension point for implementations that need I/O,
// e.g. a remote key fetch or a token introspection call.
type Validator interface {
	Validate(ctx context.Context, credential string) (*Principal, error)
}

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Guard is the framework-agnostic authentication engine. It holds no mutable
// state across requests; the only shared data is its configuration, which is
// read-only after New returns, so a single Guard serves concurrent requests.
type Guard struct {
	validator           Validator
	extractor           CredentialExtractor
	credentialsOptional bool
	logger              Logger
}

// Authenticate runs one authentication pass over the request metadata:
// extract, validate, store. It is evaluated exactly once per call with no
// internal retries; identical inputs always classify identically.
//
//   - If no credential is found and credentials are optional, the untouched
//     ctx is returned with nothing stored.
//   - If no credential is found otherwise, a Rejection with
//     FailureMissingCredential is returned.
//   - If validation fails, the validator's Rejection is returned and nothing
//     is stored.
//   - On success the returned context carries the Principal, retrievable via
//     PrincipalFrom.
//
// The returned error is always a *Rejection when non-nil.
func (g *Guard) Authenticate(ctx context.Context, meta RequestMetadata) (context.Context, error) {
	credential := g.extractor(meta)
	if credential == "" {
		if g.credentialsOptional {
			if g.logger != nil {
				g.logger.Debug("no credential provided, but credentials are optional")
			}
			return ctx, nil
		}

		if g.logger != nil {
			g.logger.Warn("no credential provided and credentials are required")
		}

		return ctx, Reject(FailureMissingCredential, "credential is missing", nil)
	}

	start := time.Now()
	principal, err := g.validator.Validate(ctx, credential)
	duration := time.Since(start)

	if err != nil {
		rejection := normalizeRejection(err)

		if g.logger != nil {
			if rejection.Kind == FailureValidatorError {
				g.logger.Error("validator failed", "error", rejection, "duration", duration)
			} else {
				g.logger.Warn("credential rejected", "kind", rejection.Kind, "error", rejection, "duration", duration)
			}
		}

		return ctx, rejection
	}

	if principal == nil {
		// A validator returning (nil, nil) breaks its contract.
		if g.logger != nil {
			g.logger.Error("validator returned neither principal nor error")
		}
		return ctx, Reject(FailureValidatorError, "validator returned no principal", nil)
	}

	if g.logger != nil {
		g.logger.Debug("credential validated", "subject", principal.Subject, "duration", duration)
	}

	return WithPrincipal(ctx, principal), nil
}

// normalizeRejection keeps Rejections as-is and wraps anything else, so the
// closed FailureKind set holds regardless of what a validator returns.
func normalizeRejection(err error) *Rejection {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection
	}
	return Reject(FailureValidatorError, "validator failed", err)
}
