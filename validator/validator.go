package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Signature algorithms
const (
	EdDSA = SignatureAlgorithm("EdDSA")
	HS256 = SignatureAlgorithm("HS256") // HMAC using SHA-256
	HS384 = SignatureAlgorithm("HS384") // HMAC using SHA-384
	HS512 = SignatureAlgorithm("HS512") // HMAC using SHA-512
	RS256 = SignatureAlgorithm("RS256") // RSASSA-PKCS-v1.5 using SHA-256
	RS384 = SignatureAlgorithm("RS384") // RSASSA-PKCS-v1.5 using SHA-384
	RS512 = SignatureAlgorithm("RS512") // RSASSA-PKCS-v1.5 using SHA-512
	ES256 = SignatureAlgorithm("ES256") // ECDSA using P-256 and SHA-256
	ES384 = SignatureAlgorithm("ES384") // ECDSA using P-384 and SHA-384
	ES512 = SignatureAlgorithm("ES512") // ECDSA using P-521 and SHA-512
	PS256 = SignatureAlgorithm("PS256") // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 = SignatureAlgorithm("PS384") // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 = SignatureAlgorithm("PS512") // RSASSA-PSS using SHA512 and MGF1-SHA512
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	EdDSA: true,
	HS256: true,
	HS384: true,
	HS512: true,
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
}

// maxCredentialSize caps the size of a credential before parsing. Valid
// signed tokens rarely exceed a few KB.
const maxCredentialSize = 1 << 20

// Validator is a signed-token implementation of core.Validator. Its
// configuration is immutable after New returns and is shared read-only
// across concurrently validated credentials; key rotation happens behind
// the key function (see StaticKey), never by mutating the Validator.
type Validator struct {
	keyFunc           func(context.Context) (any, error) // Required.
	algorithms        []jose.SignatureAlgorithm          // Required.
	allowedAlgorithms map[string]bool                    // Derived from algorithms.
	expectedIssuer    string                             // Optional.
	expectedAudiences []string                           // Optional.
	allowedClockSkew  time.Duration                      // Optional, default 0.
	customClaims      func() CustomClaims                // Optional.
}

// New sets up a new Validator with the provided options.
//
// Key material (WithKey, WithKeyProvider or WithKeyFunc) and at least one
// signature algorithm (WithAlgorithms) are required; construction fails
// without them so a misconfigured validator can never silently accept
// credentials.
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithKey([]byte("your-256-bit-secret")),
//	    validator.WithAlgorithms(validator.HS256),
//	    validator.WithIssuer("https://issuer.example.com/"),
//	    validator.WithAudiences([]string{"my-api"}),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if err := v.validate(); err != nil {
		return nil, err
	}

	return v, nil
}

// validate ensures all required fields are set.
func (v *Validator) validate() error {
	if v.keyFunc == nil {
		return errors.New("key material is required (use WithKey, WithKeyProvider or WithKeyFunc)")
	}
	if len(v.algorithms) == 0 {
		return errors.New("at least one signature algorithm is required (use WithAlgorithms)")
	}
	return nil
}

// Validate parses and verifies a compact signed token and returns the
// principal described by its claims. Every failure is classified as a
// *core.Rejection with one of the closed core.FailureKind values.
func (v *Validator) Validate(ctx context.Context, credential string) (*core.Principal, error) {
	if len(credential) > maxCredentialSize {
		return nil, core.Reject(
			core.FailureMalformedCredential,
			"credential is malformed",
			fmt.Errorf("credential exceeds maximum size of %d bytes", maxCredentialSize),
		)
	}

	token, err := jwt.ParseSigned(credential, v.algorithms)
	if err != nil {
		if errors.Is(err, jose.ErrUnexpectedSignatureAlgorithm) {
			return nil, core.Reject(core.FailureInvalidSignature, "credential signed with a disallowed algorithm", err)
		}
		return nil, core.Reject(core.FailureMalformedCredential, "credential could not be parsed", err)
	}

	// The algorithm field inside the credential is never trusted on its own:
	// even though parsing already filtered on the configured set, cross-check
	// the header against it before touching key material.
	if len(token.Headers) != 1 || !v.allowedAlgorithms[token.Headers[0].Algorithm] {
		return nil, core.Reject(core.FailureInvalidSignature, "credential signed with a disallowed algorithm", nil)
	}

	claims, rawClaims, customClaims, err := v.deserializeClaims(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := v.checkClaims(claims); err != nil {
		return nil, err
	}

	if customClaims != nil {
		if err := customClaims.Validate(ctx); err != nil {
			return nil, core.Reject(core.FailureUntrustedIssuer, "credential custom claims rejected", err)
		}
	}

	return newPrincipal(claims, rawClaims, customClaims), nil
}

// checkClaims validates the registered claims against the configured
// constraints, honoring the allowed clock skew for time-based claims.
func (v *Validator) checkClaims(claims jwt.Claims) error {
	now := time.Now()

	if claims.Expiry != nil && now.Add(-v.allowedClockSkew).After(claims.Expiry.Time()) {
		return core.Reject(core.FailureExpired, "credential is expired", nil)
	}

	if claims.NotBefore != nil && now.Add(v.allowedClockSkew).Before(claims.NotBefore.Time()) {
		return core.Reject(core.FailureNotYetValid, "credential is not valid yet", nil)
	}

	if claims.IssuedAt != nil && now.Add(v.allowedClockSkew).Before(claims.IssuedAt.Time()) {
		return core.Reject(core.FailureNotYetValid, "credential issued in the future", nil)
	}

	if v.expectedIssuer != "" && claims.Issuer != v.expectedIssuer {
		return core.Reject(core.FailureUntrustedIssuer, "credential issued by an untrusted issuer", nil)
	}

	if len(v.expectedAudiences) > 0 {
		found := false
		for _, audience := range v.expectedAudiences {
			if claims.Audience.Contains(audience) {
				found = true
				break
			}
		}
		if !found {
			return core.Reject(core.FailureUntrustedIssuer, "credential not intended for this audience", nil)
		}
	}

	return nil
}

func (v *Validator) customClaimsExist() bool {
	return v.customClaims != nil && v.customClaims() != nil
}

// deserializeClaims resolves the verification key, verifies the signature
// and decodes the claim set.
func (v *Validator) deserializeClaims(ctx context.Context, token *jwt.JSONWebToken) (jwt.Claims, map[string]any, CustomClaims, error) {
	material, err := v.keyFunc(ctx)
	if err != nil {
		return jwt.Claims{}, nil, nil, core.Reject(core.FailureValidatorError, "could not resolve verification key", err)
	}

	key, err := keyForToken(material, token)
	if err != nil {
		return jwt.Claims{}, nil, nil, err
	}

	claims := jwt.Claims{}
	rawClaims := map[string]any{}
	dests := []any{&claims, &rawClaims}

	var customClaims CustomClaims
	if v.customClaimsExist() {
		customClaims = v.customClaims()
		dests = append(dests, customClaims)
	}

	if err := token.Claims(key, dests...); err != nil {
		if errors.Is(err, jose.ErrCryptoFailure) {
			return jwt.Claims{}, nil, nil, core.Reject(core.FailureInvalidSignature, "credential signature is invalid", err)
		}
		return jwt.Claims{}, nil, nil, core.Reject(core.FailureMalformedCredential, "credential claims could not be decoded", err)
	}

	return claims, rawClaims, customClaims, nil
}

// keyForToken narrows key material down to the single key the token should
// verify against. Plain keys pass through; key sets are resolved by the
// credential's key ID.
func keyForToken(material any, token *jwt.JSONWebToken) (any, error) {
	kid := ""
	if len(token.Headers) > 0 {
		kid = token.Headers[0].KeyID
	}

	switch keys := material.(type) {
	case jwk.Set:
		return keyFromJWKSet(keys, kid)
	case *jose.JSONWebKeySet:
		if kid != "" {
			if matches := keys.Key(kid); len(matches) > 0 {
				return matches[0], nil
			}
			return nil, core.Reject(core.FailureInvalidSignature, "no key matches the credential's key ID", nil)
		}
		if len(keys.Keys) == 1 {
			return keys.Keys[0], nil
		}
		return nil, core.Reject(core.FailureInvalidSignature, "credential does not identify a key in the key set", nil)
	case string:
		return []byte(keys), nil
	default:
		return material, nil
	}
}

func keyFromJWKSet(keys jwk.Set, kid string) (any, error) {
	var match jwk.Key

	if kid != "" {
		found, ok := keys.LookupKeyID(kid)
		if !ok {
			return nil, core.Reject(core.FailureInvalidSignature, "no key matches the credential's key ID", nil)
		}
		match = found
	} else {
		if keys.Len() != 1 {
			return nil, core.Reject(core.FailureInvalidSignature, "credential does not identify a key in the key set", nil)
		}
		only, ok := keys.Key(0)
		if !ok {
			return nil, core.Reject(core.FailureValidatorError, "key set has no keys", nil)
		}
		match = only
	}

	var raw any
	if err := match.Raw(&raw); err != nil {
		return nil, core.Reject(core.FailureValidatorError, "could not extract raw key material", err)
	}

	return raw, nil
}
