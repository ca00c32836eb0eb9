// Package introspection implements core.Validator on top of an OAuth 2.0
// token introspection endpoint (RFC 7662). It suits opaque credentials that
// cannot be verified locally: every validation is a POST to the endpoint,
// which reports whether the credential is active and, when it is, the claims
// associated with it.
package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gatehouse/go-auth-middleware/core"
)

// maxResponseSize caps how much of an introspection response is read.
const maxResponseSize = 1 << 20

// Validator asks a remote introspection endpoint about each credential. Its
// configuration is immutable after New returns and it is safe for concurrent
// use.
type Validator struct {
	endpoint          string
	client            *http.Client
	clientID          string
	clientSecret      string
	tokenTypeHint     string
	expectedIssuer    string
	expectedAudiences []string
}

// New sets up a Validator for the given introspection endpoint URL.
//
// Most endpoints require the caller to authenticate; pass
// WithClientCredentials for HTTP basic authentication.
func New(endpoint string, opts ...Option) (*Validator, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("malformed introspection endpoint %q: %w", endpoint, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("introspection endpoint %q must be an absolute URL", endpoint)
	}

	v := &Validator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// response is the RFC 7662 introspection response. Only the registered
// members the principal needs are typed; everything else stays in the raw
// claim map.
type response struct {
	Active    bool     `json:"active"`
	Subject   string   `json:"sub"`
	Issuer    string   `json:"iss"`
	Audience  audience `json:"aud"`
	ID        string   `json:"jti"`
	Expiry    int64    `json:"exp"`
	NotBefore int64    `json:"nbf"`
	IssuedAt  int64    `json:"iat"`
}

// audience accepts the "aud" member as either a single string or an array,
// as RFC 7662 inherits both forms from RFC 7519.
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = audience(many)

	return nil
}

// Validate submits the credential to the introspection endpoint and maps the
// verdict onto the closed set of failure kinds: transport and endpoint
// problems are validator errors, an inactive credential is invalid (or
// expired, when the endpoint discloses a past expiry), and an active
// credential from the wrong issuer or for the wrong audience is untrusted.
func (v *Validator) Validate(ctx context.Context, credential string) (*core.Principal, error) {
	body, err := v.introspect(ctx, credential)
	if err != nil {
		return nil, err
	}

	var result response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, core.Reject(core.FailureValidatorError, "introspection response could not be decoded", err)
	}

	if !result.Active {
		if result.Expiry > 0 && time.Now().After(time.Unix(result.Expiry, 0)) {
			return nil, core.Reject(core.FailureExpired, "credential is expired", nil)
		}
		return nil, core.Reject(core.FailureInvalidSignature, "credential was reported inactive", nil)
	}

	if v.expectedIssuer != "" && result.Issuer != v.expectedIssuer {
		return nil, core.Reject(core.FailureUntrustedIssuer, "credential issued by an untrusted issuer", nil)
	}

	if len(v.expectedAudiences) > 0 && !intersects(result.Audience, v.expectedAudiences) {
		return nil, core.Reject(core.FailureUntrustedIssuer, "credential not intended for this audience", nil)
	}

	rawClaims := map[string]any{}
	if err := json.Unmarshal(body, &rawClaims); err != nil {
		return nil, core.Reject(core.FailureValidatorError, "introspection response could not be decoded", err)
	}

	return newPrincipal(result, rawClaims), nil
}

// introspect performs the RFC 7662 POST and returns the raw response body.
func (v *Validator) introspect(ctx context.Context, credential string) ([]byte, error) {
	form := url.Values{}
	form.Set("token", credential)
	if v.tokenTypeHint != "" {
		form.Set("token_type_hint", v.tokenTypeHint)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, core.Reject(core.FailureValidatorError, "could not build introspection request", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")
	if v.clientID != "" {
		request.SetBasicAuth(v.clientID, v.clientSecret)
	}

	resp, err := v.client.Do(request)
	if err != nil {
		return nil, core.Reject(core.FailureValidatorError, "introspection request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.Reject(
			core.FailureValidatorError,
			"introspection endpoint answered with an unexpected status",
			fmt.Errorf("introspection endpoint returned status %d", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, core.Reject(core.FailureValidatorError, "introspection response could not be read", err)
	}
	if len(body) > maxResponseSize {
		return nil, core.Reject(
			core.FailureValidatorError,
			"introspection response could not be read",
			errors.New("introspection response exceeds maximum size"),
		)
	}

	return body, nil
}

func intersects(got []string, want []string) bool {
	for _, audience := range want {
		for _, candidate := range got {
			if candidate == audience {
				return true
			}
		}
	}
	return false
}

// newPrincipal maps an active introspection response onto the principal
// handed to request handlers.
func newPrincipal(result response, rawClaims map[string]any) *core.Principal {
	principal := &core.Principal{
		Subject:  result.Subject,
		Issuer:   result.Issuer,
		Audience: []string(result.Audience),
		ID:       result.ID,
		Claims:   rawClaims,
	}

	if result.Expiry > 0 {
		principal.ExpiresAt = time.Unix(result.Expiry, 0)
	}
	if result.NotBefore > 0 {
		principal.NotBefore = time.Unix(result.NotBefore, 0)
	}
	if result.IssuedAt > 0 {
		principal.IssuedAt = time.Unix(result.IssuedAt, 0)
	}

	return principal
}
