package authmiddleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/go-auth-middleware/core"
)

func TestDefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name                string
		err                 error
		wantStatus          int
		wantMessage         string
		wantWWWAuthenticate string
	}{
		{
			name:                "missing credential",
			err:                 core.Reject(core.FailureMissingCredential, "credential is missing", nil),
			wantStatus:          http.StatusUnauthorized,
			wantMessage:         "A credential is required.",
			wantWWWAuthenticate: `Bearer`,
		},
		{
			name:        "malformed credential",
			err:         core.Reject(core.FailureMalformedCredential, "could not parse credential", nil),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "The credential is malformed.",
		},
		{
			name:                "invalid signature",
			err:                 core.Reject(core.FailureInvalidSignature, "signature did not verify", nil),
			wantStatus:          http.StatusUnauthorized,
			wantMessage:         "The credential is invalid.",
			wantWWWAuthenticate: `Bearer error="invalid_token"`,
		},
		{
			name:                "expired credential",
			err:                 core.Reject(core.FailureExpired, "credential is expired", nil),
			wantStatus:          http.StatusUnauthorized,
			wantMessage:         "The credential is expired.",
			wantWWWAuthenticate: `Bearer error="invalid_token"`,
		},
		{
			name:                "credential not valid yet",
			err:                 core.Reject(core.FailureNotYetValid, "credential is not valid yet", nil),
			wantStatus:          http.StatusUnauthorized,
			wantMessage:         "The credential is not valid yet.",
			wantWWWAuthenticate: `Bearer error="invalid_token"`,
		},
		{
			name:        "untrusted issuer",
			err:         core.Reject(core.FailureUntrustedIssuer, "unexpected issuer", nil),
			wantStatus:  http.StatusForbidden,
			wantMessage: "The credential comes from an untrusted party.",
		},
		{
			name:        "validator error",
			err:         core.Reject(core.FailureValidatorError, "key server unreachable", nil),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Something went wrong while checking the credential.",
		},
		{
			name:        "plain error classifies as a validator error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Something went wrong while checking the credential.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			DefaultErrorHandler(recorder, request, testCase.err)

			assert.Equal(t, testCase.wantStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.Equal(t, testCase.wantWWWAuthenticate, recorder.Header().Get("WWW-Authenticate"))

			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, testCase.wantMessage, body.Message)
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusCode(core.FailureMissingCredential))
	assert.Equal(t, http.StatusBadRequest, StatusCode(core.FailureMalformedCredential))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(core.FailureInvalidSignature))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(core.FailureExpired))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(core.FailureNotYetValid))
	assert.Equal(t, http.StatusForbidden, StatusCode(core.FailureUntrustedIssuer))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(core.FailureValidatorError))

	// Unknown kinds are treated as server faults rather than leaking detail.
	assert.Equal(t, http.StatusInternalServerError, StatusCode(core.FailureKind("surprise")))
}

func TestChallenge(t *testing.T) {
	assert.Equal(t, `Bearer`, Challenge(core.FailureMissingCredential))
	assert.Equal(t, `Bearer error="invalid_token"`, Challenge(core.FailureInvalidSignature))
	assert.Equal(t, `Bearer error="invalid_token"`, Challenge(core.FailureExpired))
	assert.Equal(t, `Bearer error="invalid_token"`, Challenge(core.FailureNotYetValid))
	assert.Equal(t, "", Challenge(core.FailureMalformedCredential))
	assert.Equal(t, "", Challenge(core.FailureUntrustedIssuer))
	assert.Equal(t, "", Challenge(core.FailureValidatorError))
}
