package authecho

import (
	"errors"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Option configures the Echo middleware.
type Option func(*config) error

// WithValidator sets the validator used to check credentials (REQUIRED).
func WithValidator(v core.Validator) Option {
	return func(cfg *config) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		cfg.validator = v
		return nil
	}
}

// WithExtractor sets the function to extract the credential from the request.
//
// Default: core.BearerTokenExtractor
func WithExtractor(e core.CredentialExtractor) Option {
	return func(cfg *config) error {
		if e == nil {
			return errors.New("extractor cannot be nil")
		}
		cfg.extractor = e
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional. A request
// carrying a credential is still fully validated.
//
// Default: false (credentials required)
func WithCredentialsOptional(optional bool) Option {
	return func(cfg *config) error {
		cfg.credentialsOptional = optional
		return nil
	}
}

// WithErrorHandler sets a custom error handler.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(cfg *config) error {
		if h == nil {
			return errors.New("error handler cannot be nil")
		}
		cfg.errorHandler = h
		return nil
	}
}

// WithPrincipalKey sets the echo context key the principal is stored under.
//
// Default: DefaultPrincipalKey
func WithPrincipalKey(key string) Option {
	return func(cfg *config) error {
		if key == "" {
			return errors.New("principal key cannot be empty")
		}
		cfg.principalKey = key
		return nil
	}
}

// WithSkipper sets a function to skip authentication for certain requests,
// e.g. health checks.
func WithSkipper(skipper Skipper) Option {
	return func(cfg *config) error {
		if skipper == nil {
			return errors.New("skipper cannot be nil")
		}
		cfg.skipper = skipper
		return nil
	}
}

// WithLogger sets an optional logger, used by the underlying guard.
func WithLogger(logger core.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
