package core

import "strings"

// CredentialExtractor pulls a raw credential out of request metadata. An
// empty string means no credential was presented; extraction never fails.
// A header that is present but carries a different scheme extracts nothing,
// which the Guard reports as FailureMissingCredential.
type CredentialExtractor func(meta RequestMetadata) string

// BearerTokenExtractor extracts the token from the Authorization header
// using the Bearer scheme. This is the default extractor.
func BearerTokenExtractor(meta RequestMetadata) string {
	return schemeValue(meta.Header("Authorization"), "Bearer")
}

// HeaderExtractor builds a CredentialExtractor that reads the named header.
// When scheme is non-empty the header value must be "<scheme> <credential>"
// (scheme matched case-insensitively) and the credential portion is
// returned; when scheme is empty the whole trimmed header value is returned.
func HeaderExtractor(header, scheme string) CredentialExtractor {
	return func(meta RequestMetadata) string {
		value := meta.Header(header)
		if scheme == "" {
			return strings.TrimSpace(value)
		}
		return schemeValue(value, scheme)
	}
}

// CookieExtractor builds a CredentialExtractor that reads the credential
// from the named cookie.
func CookieExtractor(name string) CredentialExtractor {
	return func(meta RequestMetadata) string {
		value, ok := meta.Cookie(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(value)
	}
}

// QueryExtractor builds a CredentialExtractor that reads the credential from
// the named query parameter.
func QueryExtractor(param string) CredentialExtractor {
	return func(meta RequestMetadata) string {
		return strings.TrimSpace(meta.Query(param))
	}
}

// ChainExtractor builds a CredentialExtractor that tries the given
// extractors in order and returns the first non-empty credential. Sources
// are consulted in exactly the order given.
func ChainExtractor(extractors ...CredentialExtractor) CredentialExtractor {
	return func(meta RequestMetadata) string {
		for _, extract := range extractors {
			if credential := extract(meta); credential != "" {
				return credential
			}
		}
		return ""
	}
}

// schemeValue returns the credential portion of "<scheme> <credential>",
// or "" when the value does not match the scheme.
func schemeValue(value, scheme string) string {
	if value == "" {
		return ""
	}

	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return ""
	}

	return parts[1]
}
