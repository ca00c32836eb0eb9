package authmiddleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Middleware authenticates incoming HTTP requests before they reach the
// wrapped handler.
type Middleware struct {
	guard             *core.Guard
	errorHandler      ErrorHandler
	extractor         core.CredentialExtractor
	validateOnOptions bool
	exclusionHandler  ExclusionHandler
	logger            Logger
	metrics           Metrics
	tracer            Tracer

	// Held until the guard is built.
	validator           core.Validator
	credentialsOptional bool
}

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the
// stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ExclusionHandler reports whether a request should skip authentication
// entirely.
type ExclusionHandler func(r *http.Request) bool

// New constructs a new Middleware instance with the supplied options.
//
// Example:
//
//	middleware, err := authmiddleware.New(
//	    authmiddleware.WithValidator(v),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
//
//	http.ListenAndServe(":3000", middleware.CheckAuth(handler))
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		// Everything is authenticated by default, including OPTIONS.
		validateOnOptions:   true,
		credentialsOptional: false,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	m.applyDefaults()

	if err := m.createGuard(); err != nil {
		return nil, fmt.Errorf("failed to create guard: %w", err)
	}

	return m, nil
}

// validate ensures all required fields are set.
func (m *Middleware) validate() error {
	if m.validator == nil {
		return ErrValidatorNil
	}
	return nil
}

// applyDefaults sets default values for optional fields not set by options.
func (m *Middleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.extractor == nil {
		m.extractor = core.BearerTokenExtractor
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = &NoopTracer{}
	}
}

func (m *Middleware) createGuard() error {
	guardOpts := []core.Option{
		core.WithValidator(m.validator),
		core.WithExtractor(m.extractor),
		core.WithCredentialsOptional(m.credentialsOptional),
	}

	if m.logger != nil {
		guardOpts = append(guardOpts, core.WithLogger(m.logger))
	}

	guard, err := core.New(guardOpts...)
	if err != nil {
		return err
	}

	m.guard = guard
	return nil
}

// GetPrincipal retrieves the authenticated principal from the context.
//
// Example:
//
//	principal, err := authmiddleware.GetPrincipal(r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get principal", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(principal.Subject)
func GetPrincipal(ctx context.Context) (*core.Principal, error) {
	return core.PrincipalFrom(ctx)
}

// MustGetPrincipal retrieves the authenticated principal from the context or
// panics. Use only after the middleware has run.
func MustGetPrincipal(ctx context.Context) *core.Principal {
	return core.MustPrincipal(ctx)
}

// HasPrincipal checks if an authenticated principal exists in the context.
// Handlers behind a middleware with optional credentials can use this to
// tell authenticated requests from anonymous ones.
func HasPrincipal(ctx context.Context) bool {
	return core.HasPrincipal(ctx)
}

// GetCustomClaims retrieves the custom claims of the authenticated principal
// with type safety using generics.
//
// Example:
//
//	claims, err := authmiddleware.GetCustomClaims[*MyClaims](r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(claims.Scope)
func GetCustomClaims[T any](ctx context.Context) (T, error) {
	return core.CustomClaimsFrom[T](ctx)
}

// CheckAuth is the main Middleware function which performs the
// authentication. It is passed a http.Handler which will be called if the
// request passes.
func (m *Middleware) CheckAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If there's an exclusion handler and the URL matches, skip
		// authentication entirely.
		if m.exclusionHandler != nil && m.exclusionHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping authentication for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		// If we don't validate on OPTIONS and this is OPTIONS then continue
		// onto next without authenticating.
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping authentication for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.StartSpan(r.Context(), "authmiddleware.check_auth")
		defer span.Finish()

		start := time.Now()
		ctx, err := m.guard.Authenticate(ctx, core.HTTPRequestMetadata(r))
		elapsed := time.Since(start)

		if err != nil {
			kind := core.KindOf(err)

			span.SetTag("auth.outcome", "rejected")
			span.SetTag("auth.failure_kind", string(kind))
			m.metrics.IncCounter("auth_requests_total", map[string]string{
				"outcome": "rejected",
				"kind":    string(kind),
			})
			m.metrics.ObserveHistogram("auth_validation_seconds", elapsed.Seconds(), map[string]string{
				"outcome": "rejected",
			})

			m.errorHandler(w, r, err)
			return
		}

		outcome := "anonymous"
		if core.HasPrincipal(ctx) {
			outcome = "accepted"
		}

		span.SetTag("auth.outcome", outcome)
		m.metrics.IncCounter("auth_requests_total", map[string]string{
			"outcome": outcome,
			"kind":    "",
		})
		m.metrics.ObserveHistogram("auth_validation_seconds", elapsed.Seconds(), map[string]string{
			"outcome": outcome,
		})

		if ctx != r.Context() {
			r = r.Clone(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
