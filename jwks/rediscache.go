package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, for sharing fetched key sets across
// application instances. A Redis outage degrades it to fetching from the
// issuer directly rather than failing validations.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	httpClient *http.Client
}

// NewRedisCache builds and returns a new *RedisCache on top of an existing
// Redis client. The caller keeps ownership of the client. A ttl of zero or
// less falls back to the 15 minute default; a nil httpClient falls back to a
// default client with a 30 second timeout.
func NewRedisCache(client *redis.Client, ttl time.Duration, httpClient *http.Client) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &RedisCache{
		client:     client,
		ttl:        ttl,
		httpClient: httpClient,
	}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, jwksURI string) (jwk.Set, error) {
	cached, err := c.client.Get(ctx, jwksURI).Result()
	if err == nil {
		keys, parseErr := jwk.Parse([]byte(cached))
		if parseErr == nil {
			return keys, nil
		}
		// An unreadable entry is replaced by a fresh fetch.
	}

	keys, err := jwk.Fetch(ctx, jwksURI, jwk.WithHTTPClient(c.httpClient))
	if err != nil {
		return nil, fmt.Errorf("could not fetch the key set: %w", err)
	}

	payload, err := json.Marshal(keys)
	if err != nil {
		return keys, nil
	}

	// The cache write happens off the validation path.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.client.Set(writeCtx, jwksURI, payload, c.ttl)
	}()

	return keys, nil
}
