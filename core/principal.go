package core

import "time"

// Principal is the verified identity produced by a successful validation.
// It is only ever constructed by a Validator implementation; the Guard
// never builds one itself.
type Principal struct {
	// Subject identifies the authenticated entity (the "sub" claim).
	Subject string

	// Issuer is the party that issued the credential, if present.
	Issuer string

	// Audience lists the intended recipients of the credential, if present.
	Audience []string

	// ID is the credential's unique identifier (the "jti" claim), if present.
	ID string

	// ExpiresAt, NotBefore and IssuedAt are the credential's temporal claims.
	// A zero time means the claim was absent.
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time

	// Claims holds the full decoded claim set, including any claims not
	// covered by the fields above.
	Claims map[string]any

	// Custom holds caller-typed claims when the validator was configured to
	// decode them. Use CustomClaimsFrom to retrieve it with type safety.
	Custom any
}

// ClaimString returns the named claim as a string. The second return value
// reports whether the claim exists and is a string.
func (p *Principal) ClaimString(name string) (string, bool) {
	value, ok := p.Claims[name]
	if !ok {
		return "", false
	}

	s, ok := value.(string)
	return s, ok
}

// HasAudience reports whether the principal's audience list contains aud.
func (p *Principal) HasAudience(aud string) bool {
	for _, a := range p.Audience {
		if a == aud {
			return true
		}
	}
	return false
}
