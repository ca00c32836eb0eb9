package authmiddleware

import (
	"errors"
	"net/http"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Option configures the Middleware.
// Returns error for validation failures.
type Option func(*Middleware) error

// WithValidator sets the validator used to check credentials (REQUIRED).
// Anything implementing core.Validator works: *validator.Validator for
// signed tokens, *introspection.Validator for opaque tokens, or a
// core.FirstMatch combination of several.
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithKeyProvider(provider),
//	    validator.WithAlgorithms(validator.RS256),
//	    validator.WithIssuer("https://issuer.example.com/"),
//	    validator.WithAudience("my-api"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := authmiddleware.New(
//	    authmiddleware.WithValidator(v),
//	)
func WithValidator(v core.Validator) Option {
	return func(m *Middleware) error {
		if v == nil {
			return ErrValidatorNil
		}
		m.validator = v
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional.
// If set to true, a request without a credential passes through
// unauthenticated; a request carrying one is still fully validated.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests should have their
// credential validated.
//
// Default: true (OPTIONS requests are validated)
func WithValidateOnOptions(value bool) Option {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when credential validation fails.
// See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithExtractor sets the function to extract the credential from the request.
//
// Default: core.BearerTokenExtractor
func WithExtractor(e core.CredentialExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrExtractorNil
		}
		m.extractor = e
		return nil
	}
}

// WithExclusionURLs configures URL patterns to exclude from credential
// validation. URLs can be full URLs or just paths.
func WithExclusionURLs(exclusions []string) Option {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionURLsEmpty
		}
		m.exclusionHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithExclusionHandler sets a custom predicate deciding whether a request
// skips credential validation entirely. Use WithExclusionURLs for the
// common case of a fixed list.
func WithExclusionHandler(h ExclusionHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrExclusionHandlerNil
		}
		m.exclusionHandler = h
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
// The logger is used throughout the validation flow.
//
// The logger interface is compatible with log/slog.Logger; adapters for
// logrus, zap and zerolog are provided in this package.
//
// Example:
//
//	middleware, err := authmiddleware.New(
//	    authmiddleware.WithValidator(v),
//	    authmiddleware.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for the middleware.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used to wrap credential validation in a span.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrValidatorNil        = errors.New("validator cannot be nil (use WithValidator)")
	ErrErrorHandlerNil     = errors.New("errorHandler cannot be nil")
	ErrExtractorNil        = errors.New("extractor cannot be nil")
	ErrExclusionURLsEmpty  = errors.New("exclusion URLs list cannot be empty")
	ErrExclusionHandlerNil = errors.New("exclusionHandler cannot be nil")
	ErrLoggerNil           = errors.New("logger cannot be nil")
	ErrMetricsNil          = errors.New("metrics cannot be nil")
	ErrTracerNil           = errors.New("tracer cannot be nil")
)
