package core

import "errors"

// Option is a function that configures the Guard.
// Options return errors to enable validation during construction.
type Option func(*Guard) error

// New creates a new Guard with the provided options.
//
// The Guard must be configured with at least a Validator using WithValidator.
// All other options are optional and use sensible defaults if not provided.
//
// Example:
//
//	guard, err := core.New(
//	    core.WithValidator(validator),
//	    core.WithCredentialsOptional(true),
//	    core.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Guard, error) {
	g := &Guard{
		extractor:           BearerTokenExtractor,
		credentialsOptional: false, // credentials are required unless opted out
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if err := g.validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// validate ensures all required fields are set.
func (g *Guard) validate() error {
	if g.validator == nil {
		return errors.New("validator is required (use WithValidator option)")
	}
	return nil
}

// WithValidator sets the validator for the Guard. This is a required option.
func WithValidator(validator Validator) Option {
	return func(g *Guard) error {
		if validator == nil {
			return errors.New("validator cannot be nil")
		}
		g.validator = validator
		return nil
	}
}

// WithExtractor sets the credential extractor for the Guard.
//
// Default: BearerTokenExtractor. Use ChainExtractor to consult multiple
// sources in a defined order.
func WithExtractor(extractor CredentialExtractor) Option {
	return func(g *Guard) error {
		if extractor == nil {
			return errors.New("extractor cannot be nil")
		}
		g.extractor = extractor
		return nil
	}
}

// WithCredentialsOptional configures whether credentials are optional.
//
// When set to true, requests without a credential proceed without a
// principal. Requests that do carry a credential are still validated and
// rejected on failure.
//
// When set to false (default), requests without a credential are rejected
// with FailureMissingCredential.
func WithCredentialsOptional(optional bool) Option {
	return func(g *Guard) error {
		g.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger for the Guard.
//
// When configured, the Guard logs credential extraction, validation outcomes
// and timing information. The interface is compatible with log/slog.
func WithLogger(logger Logger) Option {
	return func(g *Guard) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		g.logger = logger
		return nil
	}
}
