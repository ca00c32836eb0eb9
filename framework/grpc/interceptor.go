// Package authgrpc provides gRPC server interceptors that authenticate
// incoming calls before they reach the service implementation.
//
// The interceptor extracts a bearer credential from the "authorization"
// metadata key, validates it with the configured validator and stores the
// resulting principal in the call context. Failures are converted to gRPC
// status errors carrying the code that matches the failure kind, mirroring
// the HTTP middleware's status mapping.
package authgrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/gatehouse/go-auth-middleware/core"
)

// Interceptor authenticates unary and streaming gRPC calls.
type Interceptor struct {
	validator           core.Validator
	extractor           CredentialExtractor
	errorHandler        ErrorHandler
	excludedMethods     map[string]bool
	credentialsOptional bool
	logger              Logger
}

// New creates a gRPC interceptor with the provided options.
// WithValidator is required.
func New(opts ...Option) (*Interceptor, error) {
	interceptor := &Interceptor{
		extractor:       MetadataCredentialExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.validator == nil {
		return nil, ErrValidatorNil
	}

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// authenticates each call. On success the handler receives a context
// carrying the principal, retrievable via GetPrincipal.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping authentication for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		validatedCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// authenticates each stream. On success the stream context carries the
// principal, retrievable via GetPrincipal.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping authentication for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		validatedCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          validatedCtx,
		})
	}
}

// authenticate extracts and validates the credential carried by the call.
func (i *Interceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	credential, err := i.extractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("failed to extract credential from metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(core.Reject(core.FailureMalformedCredential, err.Error(), err))
	}

	if credential == "" {
		if i.credentialsOptional {
			if i.logger != nil {
				i.logger.Debug("no credential provided, but credentials are optional",
					"method", method)
			}
			return ctx, nil
		}
		return ctx, i.errorHandler(core.Reject(core.FailureMissingCredential, "credential is missing", nil))
	}

	principal, err := i.validator.Validate(ctx, credential)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("credential rejected",
				"kind", core.KindOf(err),
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	if principal == nil {
		return ctx, i.errorHandler(core.Reject(core.FailureValidatorError, "validator returned no principal", nil))
	}

	if i.logger != nil {
		i.logger.Debug("credential validated",
			"subject", principal.Subject,
			"method", method)
	}

	return core.WithPrincipal(ctx, principal), nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the principal.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
