package authmiddleware

import (
	"net/http"

	"github.com/gatehouse/go-auth-middleware/core"
)

// ErrorHandler is a handler which is called when authentication fails. The
// error is always a *core.Rejection, so core.KindOf can be used to branch on
// the failure kind. If you implement your own ErrorHandler you MUST map the
// kinds onto status codes deliberately; a poorly implemented handler could
// leak why validation failed or mask misconfiguration as client error.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// StatusCode returns the HTTP status code for a failure kind:
//
//   - a missing, expired, not yet valid or badly signed credential is 401
//   - a credential that is not parseable as a credential at all is 400
//   - a verified credential from an untrusted party is 403
//   - a failure of the validator itself is 500
func StatusCode(kind core.FailureKind) int {
	switch kind {
	case core.FailureMissingCredential:
		return http.StatusUnauthorized
	case core.FailureMalformedCredential:
		return http.StatusBadRequest
	case core.FailureInvalidSignature, core.FailureExpired, core.FailureNotYetValid:
		return http.StatusUnauthorized
	case core.FailureUntrustedIssuer:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Challenge returns the WWW-Authenticate value accompanying a 401 for the
// failure kind, or "" when the response carries no challenge.
func Challenge(kind core.FailureKind) string {
	switch kind {
	case core.FailureMissingCredential:
		return `Bearer`
	case core.FailureInvalidSignature, core.FailureExpired, core.FailureNotYetValid:
		return `Bearer error="invalid_token"`
	default:
		return ""
	}
}

// ErrorMessage returns the response body message for a failure kind. The
// message names the failure kind and nothing else; validation internals
// never reach the client.
func ErrorMessage(kind core.FailureKind) string {
	switch kind {
	case core.FailureMissingCredential:
		return "A credential is required."
	case core.FailureMalformedCredential:
		return "The credential is malformed."
	case core.FailureInvalidSignature:
		return "The credential is invalid."
	case core.FailureExpired:
		return "The credential is expired."
	case core.FailureNotYetValid:
		return "The credential is not valid yet."
	case core.FailureUntrustedIssuer:
		return "The credential comes from an untrusted party."
	default:
		return "Something went wrong while checking the credential."
	}
}

// DefaultErrorHandler is the default error handler implementation for the
// Middleware. If an error handler is not provided via the WithErrorHandler
// option this will be used.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)

	w.Header().Set("Content-Type", "application/json")
	if challenge := Challenge(kind); challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.WriteHeader(StatusCode(kind))
	_, _ = w.Write([]byte(`{"message":"` + ErrorMessage(kind) + `"}`))
}
