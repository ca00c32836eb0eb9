package introspection

import (
	"errors"
	"net/http"
)

// Option is how options for the Validator are set up.
type Option func(*Validator) error

// WithClientCredentials sets up HTTP basic authentication towards the
// introspection endpoint. RFC 7662 requires callers to be authorized, so
// most endpoints will refuse unauthenticated introspection.
func WithClientCredentials(clientID, clientSecret string) Option {
	return func(v *Validator) error {
		if clientID == "" {
			return errors.New("client ID cannot be empty")
		}
		v.clientID = clientID
		v.clientSecret = clientSecret
		return nil
	}
}

// WithHTTPClient sets up the HTTP client used to call the introspection
// endpoint. It defaults to a client with a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) error {
		if client == nil {
			return errors.New("client cannot be nil")
		}
		v.client = client
		return nil
	}
}

// WithTokenTypeHint sets up the token_type_hint form parameter sent with
// every introspection request, such as "access_token".
func WithTokenTypeHint(hint string) Option {
	return func(v *Validator) error {
		if hint == "" {
			return errors.New("token type hint cannot be empty")
		}
		v.tokenTypeHint = hint
		return nil
	}
}

// WithIssuer sets up the issuer active credentials must carry in their "iss"
// member. Credentials from any other issuer are rejected as untrusted. When
// not set, the issuer is not checked.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		v.expectedIssuer = issuer
		return nil
	}
}

// WithAudiences sets up the audiences active credentials may be intended
// for. A credential is accepted when its "aud" member contains at least one
// of them. When not set, the audience is not checked.
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
