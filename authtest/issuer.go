// Package authtest provides helpers for testing code that sits behind the
// middleware: an in-process credential issuer backed by httptest, and a
// static validator for tests that do not care about real credentials.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
)

// Issuer is an in-process credential issuer. It serves OIDC discovery and a
// JWKS document over httptest and mints RS256 credentials signed by its
// current key, so provider, validator and middleware can be tested end to
// end without a real identity provider.
type Issuer struct {
	server *httptest.Server

	mu    sync.RWMutex
	key   *rsa.PrivateKey
	keyID string
}

// NewIssuer starts an issuer on a random local port. The server is shut
// down when the test finishes.
func NewIssuer(t *testing.T) *Issuer {
	t.Helper()

	issuer := &Issuer{}
	issuer.rotate(t)

	issuer.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"issuer":%q,"jwks_uri":%q}`, issuer.server.URL, issuer.server.URL+"/.well-known/jwks.json")
		case "/.well-known/jwks.json":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(issuer.keySet())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(issuer.server.Close)

	return issuer
}

// URL returns the issuer URL, which is also the base of the discovery and
// JWKS endpoints.
func (i *Issuer) URL(t *testing.T) *url.URL {
	t.Helper()

	issuerURL, err := url.Parse(i.server.URL)
	if err != nil {
		t.Fatalf("parse issuer URL: %v", err)
	}

	return issuerURL
}

// KeyID returns the key ID credentials are currently signed with.
func (i *Issuer) KeyID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.keyID
}

// Issue mints a signed credential. The claim set defaults to this issuer,
// issued now and expiring in an hour; overrides replace defaults key by key,
// so tests can pin a subject, audience or expiry:
//
//	credential := issuer.Issue(t, map[string]any{
//	    "sub": "user-42",
//	    "aud": "my-api",
//	})
func (i *Issuer) Issue(t *testing.T, overrides map[string]any) string {
	t.Helper()

	now := time.Now()
	claims := map[string]any{
		"iss": i.server.URL,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for name, value := range overrides {
		claims[name] = value
	}

	i.mu.RLock()
	key, keyID := i.key, i.keyID
	i.mu.RUnlock()

	options := (&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", keyID)
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, options)
	if err != nil {
		t.Fatalf("set up signer: %v", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}

	signature, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("sign credential: %v", err)
	}

	credential, err := signature.CompactSerialize()
	if err != nil {
		t.Fatalf("serialize credential: %v", err)
	}

	return credential
}

// Rotate replaces the signing key and key ID. Credentials issued before the
// rotation no longer verify against the served key set.
func (i *Issuer) Rotate(t *testing.T) {
	t.Helper()
	i.rotate(t)
}

func (i *Issuer) rotate(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}

	i.mu.Lock()
	i.key = key
	i.keyID = uuid.NewString()
	i.mu.Unlock()
}

func (i *Issuer) keySet() jose.JSONWebKeySet {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       i.key.Public(),
			KeyID:     i.keyID,
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}},
	}
}
