// Package authecho adapts the authentication guard to Echo. The middleware
// shares the failure-kind mapping of the net/http middleware, so a given
// credential is rejected with the same status on both transports.
package authecho

import (
	"github.com/labstack/echo/v4"

	authmiddleware "github.com/gatehouse/go-auth-middleware"
	"github.com/gatehouse/go-auth-middleware/core"
)

// DefaultPrincipalKey is the echo context key the authenticated principal is
// stored under.
const DefaultPrincipalKey = "principal"

// Skipper defines a function to skip the middleware for certain requests,
// following the echo middleware convention.
type Skipper func(c echo.Context) bool

// ErrorHandler is called when authentication fails. The returned error is
// handed to echo the way any handler error would be, so returning nil after
// writing a response is the usual pattern.
type ErrorHandler func(c echo.Context, err error) error

type config struct {
	validator           core.Validator
	extractor           core.CredentialExtractor
	credentialsOptional bool
	errorHandler        ErrorHandler
	principalKey        string
	skipper             Skipper
	logger              core.Logger
}

// New creates an Echo middleware that authenticates requests with the
// configured validator. WithValidator is required.
//
// Example:
//
//	middleware, err := authecho.New(
//	    authecho.WithValidator(v),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	e := echo.New()
//	e.Use(middleware)
func New(opts ...Option) (echo.MiddlewareFunc, error) {
	cfg := &config{
		errorHandler: DefaultErrorHandler,
		principalKey: DefaultPrincipalKey,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	guardOpts := []core.Option{
		core.WithValidator(cfg.validator),
		core.WithCredentialsOptional(cfg.credentialsOptional),
	}
	if cfg.extractor != nil {
		guardOpts = append(guardOpts, core.WithExtractor(cfg.extractor))
	}
	if cfg.logger != nil {
		guardOpts = append(guardOpts, core.WithLogger(cfg.logger))
	}

	guard, err := core.New(guardOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.skipper != nil && cfg.skipper(c) {
				return next(c)
			}

			request := c.Request()
			ctx, err := guard.Authenticate(request.Context(), core.HTTPRequestMetadata(request))
			if err != nil {
				return cfg.errorHandler(c, err)
			}

			if principal, perr := core.PrincipalFrom(ctx); perr == nil {
				c.Set(cfg.principalKey, principal)
				c.SetRequest(request.WithContext(ctx))
			}

			return next(c)
		}
	}, nil
}

// DefaultErrorHandler renders the same status, challenge and body the
// net/http middleware would.
func DefaultErrorHandler(c echo.Context, err error) error {
	kind := core.KindOf(err)

	if challenge := authmiddleware.Challenge(kind); challenge != "" {
		c.Response().Header().Set("WWW-Authenticate", challenge)
	}
	return c.JSON(authmiddleware.StatusCode(kind), map[string]string{
		"message": authmiddleware.ErrorMessage(kind),
	})
}

// GetPrincipal retrieves the authenticated principal from the echo context.
// An empty principalKey falls back to DefaultPrincipalKey.
func GetPrincipal(c echo.Context, principalKey string) (*core.Principal, bool) {
	if principalKey == "" {
		principalKey = DefaultPrincipalKey
	}

	principal, ok := c.Get(principalKey).(*core.Principal)
	return principal, ok
}
