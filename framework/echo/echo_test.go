package authecho

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/go-auth-middleware/core"
)

// validatorFunc adapts a function to core.Validator for tests.
type validatorFunc func(ctx context.Context, credential string) (*core.Principal, error)

func (f validatorFunc) Validate(ctx context.Context, credential string) (*core.Principal, error) {
	return f(ctx, credential)
}

func rejectWith(kind core.FailureKind, message string) validatorFunc {
	return func(ctx context.Context, credential string) (*core.Principal, error) {
		return nil, core.Reject(kind, message, nil)
	}
}

func Test_EchoCheckAuth(t *testing.T) {
	principal := &core.Principal{
		Subject: "user-42",
		Issuer:  "auth.example",
	}

	acceptAll := validatorFunc(func(ctx context.Context, credential string) (*core.Principal, error) {
		return principal, nil
	})

	testCases := []struct {
		name           string
		validator      core.Validator
		options        []Option
		path           string
		token          string
		wantSubject    string
		wantStatusCode int
		wantBody       string
		wantChallenge  string
	}{
		{
			name:           "it can successfully validate a credential",
			validator:      acceptAll,
			token:          "Bearer abc123",
			wantSubject:    "user-42",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name:           "it rejects a request without a credential",
			validator:      acceptAll,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"A credential is required."}`,
			wantChallenge:  `Bearer`,
		},
		{
			name:           "it rejects a badly signed credential",
			validator:      rejectWith(core.FailureInvalidSignature, "signature did not verify"),
			token:          "Bearer abc123",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"The credential is invalid."}`,
			wantChallenge:  `Bearer error="invalid_token"`,
		},
		{
			name:           "it rejects a credential from an untrusted party",
			validator:      rejectWith(core.FailureUntrustedIssuer, "unexpected issuer"),
			token:          "Bearer abc123",
			wantStatusCode: http.StatusForbidden,
			wantBody:       `{"message":"The credential comes from an untrusted party."}`,
		},
		{
			name: "it responds with a server error when the validator faults",
			validator: validatorFunc(func(ctx context.Context, credential string) (*core.Principal, error) {
				return nil, errors.New("key server unreachable")
			}),
			token:          "Bearer abc123",
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"message":"Something went wrong while checking the credential."}`,
		},
		{
			name:      "it lets a request without a credential through when credentials are optional",
			validator: acceptAll,
			options: []Option{
				WithCredentialsOptional(true),
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name:      "it skips requests matched by the skipper",
			validator: rejectWith(core.FailureInvalidSignature, "signature did not verify"),
			options: []Option{
				WithSkipper(func(c echo.Context) bool {
					return c.Request().URL.Path == "/health"
				}),
			},
			path:           "/health",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name:      "it calls the custom error handler when validation fails",
			validator: rejectWith(core.FailureExpired, "credential is expired"),
			options: []Option{
				WithErrorHandler(func(c echo.Context, err error) error {
					return c.JSON(http.StatusTeapot, map[string]string{"message": err.Error()})
				}),
			},
			token:          "Bearer abc123",
			wantStatusCode: http.StatusTeapot,
			wantBody:       `{"message":"credential is expired"}`,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			options := append([]Option{WithValidator(testCase.validator)}, testCase.options...)
			middleware, err := New(options...)
			require.NoError(t, err)

			var gotSubject string
			handler := func(c echo.Context) error {
				if p, ok := GetPrincipal(c, ""); ok {
					gotSubject = p.Subject
				}
				return c.JSON(http.StatusOK, map[string]string{"message": "Authenticated."})
			}

			e := echo.New()
			e.Use(middleware)
			e.GET("/", handler)
			e.GET("/health", handler)
			testServer := httptest.NewServer(e)
			defer testServer.Close()

			request, err := http.NewRequest(http.MethodGet, testServer.URL+testCase.path, nil)
			require.NoError(t, err)

			if testCase.token != "" {
				request.Header.Add("Authorization", testCase.token)
			}

			response, err := testServer.Client().Do(request)
			require.NoError(t, err)

			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)
			defer response.Body.Close()

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			assert.JSONEq(t, testCase.wantBody, string(body))
			assert.Equal(t, testCase.wantChallenge, response.Header.Get("WWW-Authenticate"))

			if testCase.wantStatusCode == http.StatusOK {
				assert.Equal(t, testCase.wantSubject, gotSubject)
			}
		})
	}
}

func Test_EchoCheckAuth_CookieExtraction(t *testing.T) {
	principal := &core.Principal{Subject: "user-42"}

	middleware, err := New(
		WithValidator(validatorFunc(func(ctx context.Context, credential string) (*core.Principal, error) {
			if credential != "cookie-credential" {
				return nil, core.Reject(core.FailureInvalidSignature, "signature did not verify", nil)
			}
			return principal, nil
		})),
		WithExtractor(core.CookieExtractor("session")),
	)
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware)
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	testServer := httptest.NewServer(e)
	defer testServer.Close()

	request, err := http.NewRequest(http.MethodGet, testServer.URL, nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: "session", Value: "cookie-credential"})

	response, err := testServer.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func Test_EchoCheckAuth_PropagatesContext(t *testing.T) {
	middleware, err := New(WithValidator(validatorFunc(func(ctx context.Context, credential string) (*core.Principal, error) {
		return &core.Principal{Subject: "user-42"}, nil
	})))
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware)
	e.GET("/", func(c echo.Context) error {
		principal, err := core.PrincipalFrom(c.Request().Context())
		require.NoError(t, err)
		assert.Equal(t, "user-42", principal.Subject)
		return c.NoContent(http.StatusOK)
	})

	testServer := httptest.NewServer(e)
	defer testServer.Close()

	request, err := http.NewRequest(http.MethodGet, testServer.URL, nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer abc123")

	response, err := testServer.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func Test_EchoNew_Validation(t *testing.T) {
	acceptAll := validatorFunc(func(ctx context.Context, credential string) (*core.Principal, error) {
		return nil, nil
	})

	testCases := []struct {
		name    string
		options []Option
		wantErr string
	}{
		{
			name:    "it errors without a validator",
			options: nil,
			wantErr: "validator",
		},
		{
			name:    "it errors on a nil validator",
			options: []Option{WithValidator(nil)},
			wantErr: "validator cannot be nil",
		},
		{
			name:    "it errors on a nil skipper",
			options: []Option{WithValidator(acceptAll), WithSkipper(nil)},
			wantErr: "skipper cannot be nil",
		},
		{
			name:    "it errors on an empty principal key",
			options: []Option{WithValidator(acceptAll), WithPrincipalKey("")},
			wantErr: "principal key cannot be empty",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			middleware, err := New(testCase.options...)
			assert.Nil(t, middleware)
			assert.ErrorContains(t, err, testCase.wantErr)
		})
	}
}
