/*
Package core provides framework-agnostic request authentication that can be
used across different transport layers (HTTP, gRPC, etc.).

The Guard type encapsulates the authentication flow without dependencies on
any specific transport protocol, so the same logic backs every adapter.

# Architecture

The core package is the engine the transport adapters drive:

	┌──────────────────────────────────────────────┐
	│         Transport Adapters                   │
	│  (net/http, gRPC, Gin, Echo - per transport) │
	└────────────────┬─────────────────────────────┘
	                 │ RequestMetadata
	                 ▼
	┌──────────────────────────────────────────────┐
	│          Guard (THIS PACKAGE)                │
	│  • Credential extraction                     │
	│  • Validation and failure classification     │
	│  • Principal storage in the context          │
	└────────────────┬─────────────────────────────┘
	                 │ credential
	                 ▼
	┌──────────────────────────────────────────────┐
	│          Validator                           │
	│  (signed tokens, introspection, ...)         │
	└──────────────────────────────────────────────┘

Adapters hand the Guard a RequestMetadata view of their request. The Guard
extracts the credential, asks its Validator to verify it, and returns a
context carrying the resulting Principal. Failures come back as *Rejection
values whose FailureKind the adapter maps onto transport status codes.

# Basic Flow

	guard, err := core.New(
	    core.WithValidator(v),
	)
	if err != nil {
	    // ...
	}

	ctx, err := guard.Authenticate(r.Context(), core.HTTPRequestMetadata(r))
	if err != nil {
	    // map core.KindOf(err) onto the transport
	    return
	}
	principal, _ := core.PrincipalFrom(ctx)

Most users never touch this package directly and use the root middleware or
a framework adapter instead.
*/
package core
