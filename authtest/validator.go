package authtest

import (
	"context"

	"github.com/gatehouse/go-auth-middleware/core"
)

// StaticValidator is a core.Validator that always answers the same way.
// Tests that only care about what happens after validation can use it
// instead of minting real credentials.
type StaticValidator struct {
	// Principal is returned on success. Leaving it nil together with a nil
	// Err makes the guard classify the authentication as a validator
	// fault, as real validators never return (nil, nil).
	Principal *core.Principal

	// Err, when set, is returned instead of the principal. Use core.Reject
	// to simulate a classified rejection.
	Err error
}

// Validate implements core.Validator.
func (v StaticValidator) Validate(_ context.Context, _ string) (*core.Principal, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	return v.Principal, nil
}
