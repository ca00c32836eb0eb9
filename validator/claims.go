package validator

import (
	"context"

	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/gatehouse/go-auth-middleware/core"
)

// CustomClaims defines any custom data / claims wanted. The Validator will
// call the Validate function which is where custom validation logic can be
// defined.
type CustomClaims interface {
	Validate(ctx context.Context) error
}

// newPrincipal maps a verified claim set onto the framework-agnostic
// principal handed to request handlers.
func newPrincipal(claims jwt.Claims, rawClaims map[string]any, customClaims CustomClaims) *core.Principal {
	principal := &core.Principal{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: []string(claims.Audience),
		ID:       claims.ID,
		Claims:   rawClaims,
	}

	if claims.Expiry != nil {
		principal.ExpiresAt = claims.Expiry.Time()
	}
	if claims.NotBefore != nil {
		principal.NotBefore = claims.NotBefore.Time()
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time()
	}
	if customClaims != nil {
		principal.Custom = customClaims
	}

	return principal
}
