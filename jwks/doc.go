// Package jwks resolves the verification keys of an issuer by fetching its
// published JWK set.
//
// The key set endpoint is discovered through the issuer's metadata document
// (.well-known/openid-configuration) unless a fixed endpoint is given with
// WithCustomJWKSURI.
//
// # Providers
//
// Provider fetches the key set on every call and suits tests and one-off
// lookups. CachingProvider keeps the key set in a cache and refreshes it in
// the background shortly before it expires, so validations rarely wait on
// the network:
//
//	issuerURL, _ := url.Parse("https://issuer.example.com/")
//	provider, err := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
//	if err != nil {
//	    log.Fatalf("failed to set up the jwks provider: %v", err)
//	}
//
//	v, err := validator.New(
//	    validator.WithKeyProvider(provider),
//	    validator.WithAlgorithms(validator.RS256),
//	    validator.WithIssuer(issuerURL.String()),
//	)
//
// The cache honors the endpoint's Cache-Control max-age when it is longer
// than the configured TTL.
//
// # Shared caching
//
// Replace the in-process cache with a shared one when running many
// instances, so the issuer sees one fetch instead of one per instance:
//
//	cache, err := jwks.NewRedisCache(redisClient, 15*time.Minute, nil)
//	if err != nil {
//	    log.Fatalf("failed to set up the redis cache: %v", err)
//	}
//
//	provider, err := jwks.NewCachingProvider(issuerURL, 15*time.Minute, jwks.WithCache(cache))
package jwks
