// Package authgin adapts the authentication guard to Gin. The middleware
// shares the failure-kind mapping of the net/http middleware, so a given
// credential is rejected with the same status on both transports.
package authgin

import (
	"errors"

	"github.com/gin-gonic/gin"

	authmiddleware "github.com/gatehouse/go-auth-middleware"
	"github.com/gatehouse/go-auth-middleware/core"
)

// DefaultPrincipalKey is the gin context key the authenticated principal is
// stored under.
const DefaultPrincipalKey = "principal"

var (
	// ErrMissingPrincipal indicates no principal was stored in the gin
	// context.
	ErrMissingPrincipal = errors.New("no principal found in context")

	// ErrInvalidPrincipal indicates the value stored under the principal key
	// has an unexpected type.
	ErrInvalidPrincipal = errors.New("invalid principal type")
)

// ErrorHandler is called when authentication fails. Implementations should
// terminate the request; if they do not abort, the middleware aborts for
// them so unauthenticated requests never reach the handlers behind it.
type ErrorHandler func(c *gin.Context, err error)

type config struct {
	validator           core.Validator
	extractor           core.CredentialExtractor
	credentialsOptional bool
	errorHandler        ErrorHandler
	principalKey        string
	logger              core.Logger
}

// New creates a Gin middleware that authenticates requests with the
// configured validator. WithValidator is required.
//
// Example:
//
//	handler, err := authgin.New(
//	    authgin.WithValidator(v),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router := gin.Default()
//	router.Use(handler)
func New(opts ...Option) (gin.HandlerFunc, error) {
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

	return func(c *gin.Context) {
		ctx, err := guard.Authenticate(c.Request.Context(), core.HTTPRequestMetadata(c.Request))
		if err != nil {
			cfg.errorHandler(c, err)
			if !c.IsAborted() {
				c.Abort()
			}
			return
		}

		if principal, perr := core.PrincipalFrom(ctx); perr == nil {
			c.Set(cfg.principalKey, principal)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}, nil
}

// DefaultErrorHandler renders the same status, challenge and body the
// net/http middleware would.
func DefaultErrorHandler(c *gin.Context, err error) {
	kind := core.KindOf(err)

	if challenge := authmiddleware.Challenge(kind); challenge != "" {
		c.Header("WWW-Authenticate", challenge)
	}
	c.AbortWithStatusJSON(authmiddleware.StatusCode(kind), gin.H{
		"message": authmiddleware.ErrorMessage(kind),
	})
}

// GetPrincipal retrieves the authenticated principal from the gin context.
// An empty principalKey falls back to DefaultPrincipalKey.
func GetPrincipal(c *gin.Context, principalKey string) (*core.Principal, error) {
	if principalKey == "" {
		principalKey = DefaultPrincipalKey
	}

	value, exists := c.Get(principalKey)
	if !exists {
		return nil, ErrMissingPrincipal
	}

	principal, ok := value.(*core.Principal)
	if !ok {
		return nil, ErrInvalidPrincipal
	}

	return principal, nil
}
