// Package validator verifies compact signed tokens (JWS) and turns them
// into principals for the core guard.
//
// # Basic Usage
//
//	v, err := validator.New(
//	    validator.WithKey([]byte("your-256-bit-secret")),
//	    validator.WithAlgorithms(validator.HS256),
//	    validator.WithIssuer("https://issuer.example.com/"),
//	    validator.WithAudiences([]string{"my-api"}),
//	)
//	if err != nil {
//	    log.Fatalf("failed to set up the validator: %v", err)
//	}
//
// The validator implements core.Validator, so it plugs straight into
// core.New via core.WithValidator.
//
// # Key Material
//
// Keys are supplied through one of three options:
//
//   - WithKey for fixed material: a shared secret, a public key, a
//     jose.JSONWebKey or a whole key set.
//   - WithKeyProvider for material that rotates, such as a StaticKey
//     rotated by an operator or a FileKeyProvider watching a JWK set
//     file on disk. The jwks package provides a provider that fetches
//     and caches remote JWK sets.
//   - WithKeyFunc for anything else.
//
// When the material is a key set, the key is selected by the credential's
// "kid" header. A credential without a key ID is accepted only against a
// set holding exactly one key.
//
// # Failure Classification
//
// Every validation failure is a *core.Rejection carrying one of the closed
// core.FailureKind values, so adapters can map outcomes to transport
// status codes without string matching:
//
//   - a credential that does not parse as a compact JWS is malformed
//   - a bad signature, an algorithm outside the configured set, or an
//     unknown key ID is an invalid signature
//   - expired credentials and credentials used before their "nbf" or
//     "iat" are expired / not yet valid, honoring WithAllowedClockSkew
//   - an unexpected "iss" or "aud" claim means the credential comes from
//     an untrusted party
//   - failures of the validator itself (key resolution) are internal
//     validator errors
//
// # Custom Claims
//
// Use WithCustomClaims to deserialize and validate claims beyond the
// registered set:
//
//	type ScopeClaims struct {
//	    Scope string `json:"scope"`
//	}
//
//	func (c *ScopeClaims) Validate(ctx context.Context) error {
//	    if !strings.Contains(c.Scope, "read:messages") {
//	        return errors.New("scope read:messages is required")
//	    }
//	    return nil
//	}
//
// The custom claims object is reachable from the request principal via
// core.CustomClaimsFrom.
package validator
