package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"

	"github.com/gatehouse/go-auth-middleware/internal/oidc"
)

// Cache stores fetched key sets keyed by their endpoint URL.
type Cache interface {
	// Get returns the key set for the endpoint, fetching it when it is not
	// cached.
	Get(ctx context.Context, jwksURI string) (jwk.Set, error)
}

// Provider fetches the key set of the given issuer and exposes Key, which
// adheres to the KeyProvider signature the validator requires. Every call
// hits the network; most users want the CachingProvider instead.
type Provider struct {
	IssuerURL     *url.URL // Required.
	CustomJWKSURI *url.URL // Optional.
	Client        *http.Client

	cache Cache // Used by NewCachingProvider.
}

// NewProvider builds and returns a new *Provider.
func NewProvider(issuerURL *url.URL, opts ...ProviderOption) (*Provider, error) {
	if issuerURL == nil {
		return nil, fmt.Errorf("issuer URL is required")
	}

	p := &Provider{
		IssuerURL: issuerURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Key resolves the issuer's key set. While it returns an interface to adhere
// to the validator's KeyProvider, as long as the error is nil the type will
// be jwk.Set.
func (p *Provider) Key(ctx context.Context) (any, error) {
	jwksURI := ""
	if p.CustomJWKSURI != nil {
		jwksURI = p.CustomJWKSURI.String()
	} else {
		metadata, err := oidc.GetDiscoveryMetadata(ctx, p.Client, *p.IssuerURL)
		if err != nil {
			return nil, err
		}
		jwksURI = metadata.JWKSURI
	}

	keys, err := jwk.Fetch(ctx, jwksURI, jwk.WithHTTPClient(p.Client))
	if err != nil {
		return nil, fmt.Errorf("could not fetch the key set: %w", err)
	}

	return keys, nil
}

// CachingProvider fetches the key set of the given issuer and caches it,
// refreshing it in the background shortly before the cached copy expires so
// hot paths rarely wait on the network. Rotated keys appear on the next
// refresh; validations in between see the previous key set.
type CachingProvider struct {
	*Provider
	cache Cache

	discoverMu sync.Mutex
	jwksURI    string
}

// NewCachingProvider builds and returns a new *CachingProvider. A cacheTTL
// of zero or less falls back to the 15 minute default.
func NewCachingProvider(issuerURL *url.URL, cacheTTL time.Duration, opts ...ProviderOption) (*CachingProvider, error) {
	p, err := NewProvider(issuerURL, opts...)
	if err != nil {
		return nil, err
	}

	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	c := &CachingProvider{Provider: p}

	if p.cache != nil {
		c.cache = p.cache
	} else {
		c.cache = &memoryCache{
			client:  p.Client,
			ttl:     cacheTTL,
			entries: map[string]*cacheEntry{},
		}
	}

	return c, nil
}

// Key resolves the issuer's key set through the cache. While it returns an
// interface to adhere to the validator's KeyProvider, as long as the error
// is nil the type will be jwk.Set.
func (c *CachingProvider) Key(ctx context.Context) (any, error) {
	jwksURI, err := c.endpoint(ctx)
	if err != nil {
		return nil, err
	}

	return c.cache.Get(ctx, jwksURI)
}

// endpoint returns the key set endpoint, discovering it on first use. A
// failed discovery is retried on the next call.
func (c *CachingProvider) endpoint(ctx context.Context) (string, error) {
	c.discoverMu.Lock()
	defer c.discoverMu.Unlock()

	if c.jwksURI != "" {
		return c.jwksURI, nil
	}

	if c.CustomJWKSURI != nil {
		c.jwksURI = c.CustomJWKSURI.String()
		return c.jwksURI, nil
	}

	metadata, err := oidc.GetDiscoveryMetadata(ctx, c.Client, *c.IssuerURL)
	if err != nil {
		return "", fmt.Errorf("could not discover the key set endpoint: %w", err)
	}

	c.jwksURI = metadata.JWKSURI

	return c.jwksURI, nil
}

// memoryCache is the default in-process Cache. Concurrent misses for the
// same endpoint collapse into a single fetch, and entries past 80% of their
// lifetime are refreshed in the background while the cached copy keeps
// serving.
type memoryCache struct {
	client *http.Client
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	keys       jwk.Set
	expiresAt  time.Time
	refreshAt  time.Time
	refreshing atomic.Bool
}

func (c *memoryCache) Get(ctx context.Context, jwksURI string) (jwk.Set, error) {
	now := time.Now()

	c.mu.RLock()
	entry, exists := c.entries[jwksURI]
	var keys jwk.Set
	var fresh, refreshDue bool
	if exists {
		keys = entry.keys
		fresh = now.Before(entry.expiresAt)
		refreshDue = now.After(entry.refreshAt)
	}
	c.mu.RUnlock()

	if exists && fresh {
		if refreshDue && entry.refreshing.CompareAndSwap(false, true) {
			go c.refresh(jwksURI, entry)
		}
		return keys, nil
	}

	result, err, _ := c.group.Do(jwksURI, func() (any, error) {
		// Another caller may have fetched while this one waited on the group.
		c.mu.RLock()
		entry, exists := c.entries[jwksURI]
		valid := exists && time.Now().Before(entry.expiresAt)
		var cached jwk.Set
		if valid {
			cached = entry.keys
		}
		c.mu.RUnlock()

		if valid {
			return cached, nil
		}

		keys, headerTTL, err := c.fetch(ctx, jwksURI)
		if err != nil {
			return nil, err
		}

		c.store(jwksURI, keys, headerTTL)

		return keys, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not fetch the key set: %w", err)
	}

	return result.(jwk.Set), nil
}

func (c *memoryCache) store(jwksURI string, keys jwk.Set, headerTTL time.Duration) {
	ttl := c.ttl
	if headerTTL > ttl {
		ttl = headerTTL
	}

	now := time.Now()

	c.mu.Lock()
	entry, exists := c.entries[jwksURI]
	if !exists {
		entry = &cacheEntry{}
		c.entries[jwksURI] = entry
	}
	entry.keys = keys
	entry.expiresAt = now.Add(ttl)
	entry.refreshAt = now.Add(ttl * 4 / 5)
	c.mu.Unlock()
}

func (c *memoryCache) refresh(jwksURI string, entry *cacheEntry) {
	defer entry.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	keys, headerTTL, err := c.fetch(ctx, jwksURI)
	if err != nil {
		// The cached copy keeps serving until it expires.
		return
	}

	c.store(jwksURI, keys, headerTTL)
}

// fetch gets the key set from the endpoint and reports the TTL advertised
// through Cache-Control, or zero when there is none.
func (c *memoryCache) fetch(ctx context.Context, jwksURI string) (jwk.Set, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("could not build request: %w", err)
	}

	response, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("request returned status %d", response.StatusCode)
	}

	keys, err := jwk.ParseReader(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("could not parse the key set: %w", err)
	}

	return keys, parseMaxAge(response.Header.Get("Cache-Control")), nil
}

// maxResponseSize caps the size of a key set read off the wire.
const maxResponseSize = 1 << 20

// parseMaxAge extracts the max-age directive from a Cache-Control header.
// Values outside [1s, 7d] are treated as absent.
func parseMaxAge(cacheControl string) time.Duration {
	const (
		prefix = "max-age="
		minTTL = time.Second
		maxTTL = 7 * 24 * time.Hour
	)

	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, prefix) {
			continue
		}

		seconds, err := strconv.ParseInt(strings.TrimPrefix(directive, prefix), 10, 64)
		if err != nil || seconds <= 0 {
			continue
		}

		ttl := time.Duration(seconds) * time.Second
		if ttl < minTTL || ttl > maxTTL {
			return 0
		}

		return ttl
	}

	return 0
}
