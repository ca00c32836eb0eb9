package oidc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDiscoveryMetadata(t *testing.T) {
	testCases := []struct {
		name          string
		handler       func(issuer string) http.HandlerFunc
		expectedError string
	}{
		{
			name: "successfully fetches the metadata document",
			handler: func(issuer string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/.well-known/openid-configuration", r.URL.Path)
					w.Write([]byte(`{"issuer":"` + issuer + `","jwks_uri":"` + issuer + `/.well-known/jwks.json"}`))
				}
			},
		},
		{
			name: "accepts an issuer advertised with a trailing slash",
			handler: func(issuer string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"issuer":"` + issuer + `/","jwks_uri":"` + issuer + `/.well-known/jwks.json"}`))
				}
			},
		},
		{
			name: "fails when the document advertises a different issuer",
			handler: func(issuer string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"issuer":"https://evil.example.com","jwks_uri":"` + issuer + `/.well-known/jwks.json"}`))
				}
			},
			expectedError: "discovery metadata advertises issuer",
		},
		{
			name: "fails when the document has no jwks_uri",
			handler: func(issuer string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"issuer":"` + issuer + `"}`))
				}
			},
			expectedError: "does not advertise a jwks_uri",
		},
		{
			name: "fails when the endpoint returns an error status",
			handler: func(string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				}
			},
			expectedError: "returned status 404",
		},
		{
			name: "fails when the document is not json",
			handler: func(string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("<html>not json</html>"))
				}
			},
			expectedError: "could not decode discovery metadata",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			var server *httptest.Server
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				testCase.handler(server.URL)(w, r)
			}))
			defer server.Close()

			issuerURL, err := url.Parse(server.URL)
			require.NoError(t, err)

			metadata, err := GetDiscoveryMetadata(context.Background(), server.Client(), *issuerURL)

			if testCase.expectedError != "" {
				assert.ErrorContains(t, err, testCase.expectedError)
				assert.Nil(t, metadata)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, server.URL+"/.well-known/jwks.json", metadata.JWKSURI)
		})
	}

	t.Run("uses the default client when none is given", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"jwks_uri":"` + "http://" + r.Host + `/keys"}`))
		}))
		defer server.Close()

		issuerURL, err := url.Parse(server.URL)
		require.NoError(t, err)

		metadata, err := GetDiscoveryMetadata(context.Background(), nil, *issuerURL)
		require.NoError(t, err)
		assert.NotEmpty(t, metadata.JWKSURI)
	})
}
