package jwks

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keySetJSON(kid string) string {
	return fmt.Sprintf(
		`{"keys":[{"kty":"oct","kid":%q,"k":%q}]}`,
		kid,
		base64.RawURLEncoding.EncodeToString([]byte("jwks-test-secret-256-bits-long!!")),
	)
}

// testIssuer serves a metadata document and a rotatable key set, counting
// key set fetches.
type testIssuer struct {
	server       *httptest.Server
	keys         atomic.Value // string
	fetches      atomic.Int32
	cacheControl string
	failDiscover atomic.Bool
}

func newTestIssuer(t *testing.T, kid string, cacheControl string) *testIssuer {
	t.Helper()

	issuer := &testIssuer{cacheControl: cacheControl}
	issuer.keys.Store(keySetJSON(kid))

	issuer.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			if issuer.failDiscover.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"issuer":%q,"jwks_uri":%q}`, issuer.server.URL, issuer.server.URL+"/.well-known/jwks.json")
		case "/.well-known/jwks.json":
			issuer.fetches.Add(1)
			if issuer.cacheControl != "" {
				w.Header().Set("Cache-Control", issuer.cacheControl)
			}
			fmt.Fprint(w, issuer.keys.Load().(string))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(issuer.server.Close)

	return issuer
}

func (i *testIssuer) url(t *testing.T) *url.URL {
	t.Helper()

	issuerURL, err := url.Parse(i.server.URL)
	require.NoError(t, err)

	return issuerURL
}

func hasKeyID(material any, kid string) bool {
	keys, ok := material.(jwk.Set)
	if !ok {
		return false
	}
	_, found := keys.LookupKeyID(kid)
	return found
}

func TestProvider_Key(t *testing.T) {
	t.Run("fetches the key set through discovery", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		provider, err := NewProvider(issuer.url(t))
		require.NoError(t, err)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "key-1"))

		_, err = provider.Key(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 2, issuer.fetches.Load())
	})

	t.Run("fetches the key set from a custom endpoint", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")
		issuer.failDiscover.Store(true)

		jwksURI, err := url.Parse(issuer.server.URL + "/.well-known/jwks.json")
		require.NoError(t, err)

		provider, err := NewProvider(issuer.url(t), WithCustomJWKSURI(jwksURI))
		require.NoError(t, err)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "key-1"))
	})

	t.Run("fails when discovery fails", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")
		issuer.failDiscover.Store(true)

		provider, err := NewProvider(issuer.url(t))
		require.NoError(t, err)

		_, err = provider.Key(context.Background())
		assert.Error(t, err)
	})

	t.Run("requires an issuer URL", func(t *testing.T) {
		_, err := NewProvider(nil)
		assert.EqualError(t, err, "issuer URL is required")
	})

	t.Run("rejects nil option values", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		_, err := NewProvider(issuer.url(t), WithCustomJWKSURI(nil))
		assert.EqualError(t, err, "jwksURI cannot be nil")

		_, err = NewProvider(issuer.url(t), WithCustomClient(nil))
		assert.EqualError(t, err, "client cannot be nil")

		_, err = NewCachingProvider(issuer.url(t), time.Minute, WithCache(nil))
		assert.EqualError(t, err, "cache cannot be nil")
	})
}

func TestCachingProvider_Key(t *testing.T) {
	t.Run("caches the key set between calls", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		provider, err := NewCachingProvider(issuer.url(t), time.Minute)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			material, err := provider.Key(context.Background())
			require.NoError(t, err)
			assert.True(t, hasKeyID(material, "key-1"))
		}

		assert.EqualValues(t, 1, issuer.fetches.Load())
	})

	t.Run("collapses concurrent lookups into one fetch", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		provider, err := NewCachingProvider(issuer.url(t), time.Minute)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				material, err := provider.Key(context.Background())
				assert.NoError(t, err)
				assert.True(t, hasKeyID(material, "key-1"))
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, issuer.fetches.Load())
	})

	t.Run("picks up rotated keys once the cached copy ages out", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		provider, err := NewCachingProvider(issuer.url(t), 300*time.Millisecond)
		require.NoError(t, err)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "key-1"))

		issuer.keys.Store(keySetJSON("key-2"))

		require.Eventually(t, func() bool {
			material, err := provider.Key(context.Background())
			return err == nil && hasKeyID(material, "key-2")
		}, 3*time.Second, 50*time.Millisecond)

		assert.GreaterOrEqual(t, issuer.fetches.Load(), int32(2))
	})

	t.Run("honours a longer max-age from the endpoint", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "max-age=3600")

		provider, err := NewCachingProvider(issuer.url(t), 100*time.Millisecond)
		require.NoError(t, err)

		_, err = provider.Key(context.Background())
		require.NoError(t, err)

		time.Sleep(250 * time.Millisecond)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "key-1"))
		assert.EqualValues(t, 1, issuer.fetches.Load())
	})

	t.Run("retries discovery after a failure", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")
		issuer.failDiscover.Store(true)

		provider, err := NewCachingProvider(issuer.url(t), time.Minute)
		require.NoError(t, err)

		_, err = provider.Key(context.Background())
		require.Error(t, err)

		issuer.failDiscover.Store(false)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "key-1"))
	})

	t.Run("uses the configured cache", func(t *testing.T) {
		issuer := newTestIssuer(t, "key-1", "")

		fixed, err := jwk.Parse([]byte(keySetJSON("cached-key")))
		require.NoError(t, err)

		cache := &staticCache{keys: fixed}

		provider, err := NewCachingProvider(issuer.url(t), time.Minute, WithCache(cache))
		require.NoError(t, err)

		material, err := provider.Key(context.Background())
		require.NoError(t, err)
		assert.True(t, hasKeyID(material, "cached-key"))

		assert.EqualValues(t, 0, issuer.fetches.Load())
		assert.Equal(t, issuer.server.URL+"/.well-known/jwks.json", cache.lastURI)
	})
}

type staticCache struct {
	keys    jwk.Set
	lastURI string
}

func (c *staticCache) Get(_ context.Context, jwksURI string) (jwk.Set, error) {
	c.lastURI = jwksURI
	return c.keys, nil
}

func TestParseMaxAge(t *testing.T) {
	testCases := []struct {
		name         string
		cacheControl string
		expected     time.Duration
	}{
		{name: "plain max-age", cacheControl: "max-age=3600", expected: time.Hour},
		{name: "max-age among other directives", cacheControl: "public, max-age=600, must-revalidate", expected: 10 * time.Minute},
		{name: "no max-age", cacheControl: "no-store"},
		{name: "empty header", cacheControl: ""},
		{name: "invalid value", cacheControl: "max-age=soon"},
		{name: "negative value", cacheControl: "max-age=-5"},
		{name: "unreasonably long", cacheControl: "max-age=31536000"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, parseMaxAge(testCase.cacheControl))
		})
	}
}
