package core

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
// Using an unexported type ensures that only this package can create context
// keys, eliminating the risk of collisions with other packages.
type contextKey int

const (
	principalKey contextKey = iota
)

// WithPrincipal returns a copy of ctx carrying the principal. Storing a
// second principal shadows the first (last write wins); the Guard only ever
// stores one per request.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFrom retrieves the principal stored in the context. It returns
// ErrNoPrincipal when no principal was stored, which is the case for every
// request that did not pass authentication.
func PrincipalFrom(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(principalKey).(*Principal)
	if !ok {
		return nil, ErrNoPrincipal
	}
	return principal, nil
}

// MustPrincipal retrieves the principal from the context or panics. Use only
// where the Guard is known to have run, e.g. in handlers behind the
// middleware.
func MustPrincipal(ctx context.Context) *Principal {
	principal, err := PrincipalFrom(ctx)
	if err != nil {
		panic(err)
	}
	return principal
}

// HasPrincipal checks whether a principal exists in the context without
// retrieving it.
func HasPrincipal(ctx context.Context) bool {
	_, ok := ctx.Value(principalKey).(*Principal)
	return ok
}

// CustomClaimsFrom retrieves the principal's caller-typed custom claims with
// type safety using generics.
//
// Example usage:
//
//	claims, err := core.CustomClaimsFrom[*MyClaims](ctx)
//	if err != nil {
//	    return err
//	}
//	// Use claims...
func CustomClaimsFrom[T any](ctx context.Context) (T, error) {
	var zero T

	principal, err := PrincipalFrom(ctx)
	if err != nil {
		return zero, err
	}

	claims, ok := principal.Custom.(T)
	if !ok {
		return zero, ErrNoCustomClaims
	}

	return claims, nil
}
