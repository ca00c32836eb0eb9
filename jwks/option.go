package jwks

import (
	"errors"
	"net/http"
	"net/url"
)

// ProviderOption is how options for the providers are set up.
type ProviderOption func(*Provider) error

// WithCustomJWKSURI sets up a fixed key set endpoint, skipping discovery
// through the issuer's metadata document.
func WithCustomJWKSURI(jwksURI *url.URL) ProviderOption {
	return func(p *Provider) error {
		if jwksURI == nil {
			return errors.New("jwksURI cannot be nil")
		}
		p.CustomJWKSURI = jwksURI
		return nil
	}
}

// WithCustomClient sets up the HTTP client used to reach the issuer. If not
// specified, a default client with a 30 second timeout is used.
func WithCustomClient(client *http.Client) ProviderOption {
	return func(p *Provider) error {
		if client == nil {
			return errors.New("client cannot be nil")
		}
		p.Client = client
		return nil
	}
}

// WithCache sets up a custom Cache implementation, such as the Redis-backed
// RedisCache, for sharing fetched key sets across instances. It takes effect
// with NewCachingProvider; the plain Provider never caches.
func WithCache(cache Cache) ProviderOption {
	return func(p *Provider) error {
		if cache == nil {
			return errors.New("cache cannot be nil")
		}
		p.cache = cache
		return nil
	}
}
