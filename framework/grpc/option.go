package authgrpc

import (
	"errors"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Option configures the Interceptor.
type Option func(*Interceptor) error

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the
// stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ErrValidatorNil is returned by New when no validator was configured.
var ErrValidatorNil = errors.New("validator cannot be nil (use WithValidator)")

// WithValidator sets the validator used to check credentials (REQUIRED).
//
// Example:
//
//	interceptor, err := authgrpc.New(
//	    authgrpc.WithValidator(v),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
func WithValidator(v core.Validator) Option {
	return func(i *Interceptor) error {
		if v == nil {
			return ErrValidatorNil
		}
		i.validator = v
		return nil
	}
}

// WithCredentialsOptional allows calls without a credential to proceed.
// When set to true, calls without a credential reach the handler with no
// principal in the context; calls carrying one are still fully validated.
//
// Default: false (credentials required)
func WithCredentialsOptional(optional bool) Option {
	return func(i *Interceptor) error {
		i.credentialsOptional = optional
		return nil
	}
}

// WithExtractor sets a custom credential extractor.
//
// Default: MetadataCredentialExtractor
func WithExtractor(extractor CredentialExtractor) Option {
	return func(i *Interceptor) error {
		if extractor == nil {
			return errors.New("extractor cannot be nil")
		}
		i.extractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler.
//
// Default: DefaultErrorHandler
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *Interceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from authentication.
// Methods are matched against the full method name, e.g.
// "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
func WithLogger(logger Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}
