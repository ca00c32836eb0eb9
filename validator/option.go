package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// Option is how options for the Validator are set up.
type Option func(*Validator) error

// WithKey sets up static key material used to verify credential signatures.
// Accepted values are a shared secret ([]byte or string), a public key such
// as *rsa.PublicKey or *ecdsa.PublicKey, a jose.JSONWebKey, or a key set
// (*jose.JSONWebKeySet or a jwk.Set) resolved by the credential's key ID.
//
// Use WithKeyProvider instead when the key material rotates.
func WithKey(key any) Option {
	return func(v *Validator) error {
		if key == nil {
			return errors.New("key cannot be nil")
		}
		v.keyFunc = func(context.Context) (any, error) {
			return key, nil
		}
		return nil
	}
}

// WithKeyFunc sets up a function that resolves key material per validation.
// The function is called on every credential, so it should be cheap; cache
// remote key sets (see the jwks package) rather than fetching them here.
func WithKeyFunc(keyFunc func(ctx context.Context) (any, error)) Option {
	return func(v *Validator) error {
		if keyFunc == nil {
			return errors.New("keyFunc cannot be nil")
		}
		v.keyFunc = keyFunc
		return nil
	}
}

// WithKeyProvider sets up a KeyProvider as the source of verification keys.
func WithKeyProvider(provider KeyProvider) Option {
	return func(v *Validator) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		v.keyFunc = provider.Key
		return nil
	}
}

// WithAlgorithms sets up the set of signature algorithms credentials may be
// signed with. Credentials signed with any other algorithm, including
// "none", are rejected with an invalid signature failure.
func WithAlgorithms(algorithms ...SignatureAlgorithm) Option {
	return func(v *Validator) error {
		if len(algorithms) == 0 {
			return errors.New("at least one signature algorithm is required")
		}

		v.algorithms = make([]jose.SignatureAlgorithm, 0, len(algorithms))
		v.allowedAlgorithms = make(map[string]bool, len(algorithms))

		for _, algorithm := range algorithms {
			if !allowedSigningAlgorithms[algorithm] {
				return fmt.Errorf("unsupported signature algorithm %q", algorithm)
			}
			if v.allowedAlgorithms[string(algorithm)] {
				continue
			}
			v.algorithms = append(v.algorithms, jose.SignatureAlgorithm(algorithm))
			v.allowedAlgorithms[string(algorithm)] = true
		}

		return nil
	}
}

// WithIssuer sets up the issuer credentials must carry in their "iss" claim.
// Credentials from any other issuer are rejected as untrusted. When not set,
// the issuer claim is not checked.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		v.expectedIssuer = issuer
		return nil
	}
}

// WithAudience sets up a single audience credentials must be intended for.
func WithAudience(audience string) Option {
	return func(v *Validator) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		v.expectedAudiences = []string{audience}
		return nil
	}
}

// WithAudiences sets up the audiences credentials may be intended for. A
// credential is accepted when its "aud" claim contains at least one of them.
// When not set, the audience claim is not checked.
func WithAudiences(audiences []string) Option {
	return func(v *Validator) error {
		if len(audiences) == 0 {
			return errors.New("at least one audience is required")
		}
		for _, audience := range audiences {
			if audience == "" {
				return errors.New("audience cannot be empty")
			}
		}
		v.expectedAudiences = audiences
		return nil
	}
}

// WithAllowedClockSkew is an option which sets up the allowed clock skew for
// the credential's time-based claims (exp, nbf, iat). It defaults to zero,
// meaning those claims are compared against the current time exactly.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("allowed clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// WithCustomClaims sets up a function that returns the object which custom
// claims are deserialized into. The object's Validate method runs after the
// registered claim checks; when it returns an error the credential is
// rejected as untrusted.
func WithCustomClaims(f func() CustomClaims) Option {
	return func(v *Validator) error {
		if f == nil {
			return errors.New("customClaims func cannot be nil")
		}
		v.customClaims = f
		return nil
	}
}
