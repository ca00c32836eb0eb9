package core

import "context"

// FirstMatch composes validators into one: each is tried in order and the
// first success wins. When every validator rejects the credential, the last
// rejection is returned. Use this to accept credentials from more than one
// trust mechanism, e.g. a signed-token validator chained with a token
// introspection validator.
func FirstMatch(validators ...Validator) Validator {
	return firstMatch(validators)
}

type firstMatch []Validator

func (v firstMatch) Validate(ctx context.Context, credential string) (*Principal, error) {
	if len(v) == 0 {
		return nil, Reject(FailureValidatorError, "no validators configured", nil)
	}

	var last *Rejection
	for _, validator := range v {
		principal, err := validator.Validate(ctx, credential)
		if err == nil {
			return principal, nil
		}
		last = normalizeRejection(err)
	}

	return nil, last
}
