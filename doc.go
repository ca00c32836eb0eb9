/*
Package authmiddleware provides HTTP middleware for bearer-credential
authentication.

This package is the net/http transport adapter over the core authentication
guard. It extracts a credential from each request, hands it to the configured
validator, and on success stores the resulting principal in the request
context. Failures are mapped onto HTTP responses by an ErrorHandler.

# Quick Start

	import (
	    "github.com/gatehouse/go-auth-middleware"
	    "github.com/gatehouse/go-auth-middleware/jwks"
	    "github.com/gatehouse/go-auth-middleware/validator"
	)

	func main() {
	    issuerURL, _ := url.Parse("https://issuer.example.com/")
	    provider, err := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	    if err != nil {
	        log.Fatal(err)
	    }

	    v, err := validator.New(
	        validator.WithKeyProvider(provider),
	        validator.WithAlgorithms(validator.RS256),
	        validator.WithIssuer(issuerURL.String()),
	        validator.WithAudience("my-api"),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := authmiddleware.New(
	        authmiddleware.WithValidator(v),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/", middleware.CheckAuth(apiHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing the Principal

Handlers behind the middleware read the authenticated principal from the
request context:

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    principal, err := authmiddleware.GetPrincipal(r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }

	    fmt.Fprintf(w, "Hello, %s!", principal.Subject)
	}

Custom claims registered on the validator are retrieved with the generic
helper:

	claims, err := authmiddleware.GetCustomClaims[*MyClaims](r.Context())

# Configuration Options

All configuration is done through functional options:

Required:
  - WithValidator: anything implementing core.Validator

Optional:
  - WithCredentialsOptional: allow requests without a credential
  - WithValidateOnOptions: validate credentials on OPTIONS requests
  - WithErrorHandler: custom error response handler
  - WithExtractor: custom credential extraction logic
  - WithExclusionURLs, WithExclusionHandler: requests to skip entirely
  - WithLogger: structured logging (compatible with log/slog)
  - WithMetrics: counter and latency emission (Prometheus provided)
  - WithTracer: span per validation (OpenTelemetry provided)

# Optional Credentials

With WithCredentialsOptional(true) a request without a credential passes
through unauthenticated and GetPrincipal returns core.ErrNoPrincipal. A
request that does carry a credential is still fully validated; optional
never means a bad credential is ignored:

	middleware, err := authmiddleware.New(
	    authmiddleware.WithValidator(v),
	    authmiddleware.WithCredentialsOptional(true),
	)

# Custom Error Handling

The error passed to an ErrorHandler is always a *core.Rejection. Branch on
the failure kind rather than on message text:

	func myErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	    if core.KindOf(err) == core.FailureExpired {
	        // tell the client to refresh its token
	    }
	    authmiddleware.DefaultErrorHandler(w, r, err)
	}

The StatusCode, Challenge and ErrorMessage functions expose the default
mapping so custom handlers and the framework adapters stay consistent.

# Framework Adapters

The framework/echo, framework/gin and framework/grpc packages adapt the same
core guard to those transports. They share this package's failure-kind
mapping, so an expired credential is rejected identically everywhere.
*/
package authmiddleware
