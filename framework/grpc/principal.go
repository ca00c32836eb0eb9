package authgrpc

import (
	"context"

	"github.com/gatehouse/go-auth-middleware/core"
)

// GetPrincipal retrieves the authenticated principal from the call context.
//
// Example:
//
//	principal, err := authgrpc.GetPrincipal(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "no principal")
//	}
//	fmt.Println(principal.Subject)
func GetPrincipal(ctx context.Context) (*core.Principal, error) {
	return core.PrincipalFrom(ctx)
}

// MustGetPrincipal retrieves the principal from the call context or panics.
// Use only in handlers behind the interceptor.
func MustGetPrincipal(ctx context.Context) *core.Principal {
	return core.MustPrincipal(ctx)
}

// HasPrincipal checks whether a principal exists in the call context.
// Handlers behind an interceptor with optional credentials can use this to
// tell authenticated calls from anonymous ones.
func HasPrincipal(ctx context.Context) bool {
	return core.HasPrincipal(ctx)
}

// GetCustomClaims retrieves the custom claims of the authenticated principal
// with type safety using generics.
//
// Example:
//
//	claims, err := authgrpc.GetCustomClaims[*MyClaims](ctx)
//	if err != nil {
//	    return nil, status.Error(codes.PermissionDenied, "no claims")
//	}
func GetCustomClaims[T any](ctx context.Context) (T, error) {
	return core.CustomClaimsFrom[T](ctx)
}
