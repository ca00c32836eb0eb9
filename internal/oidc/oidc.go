// Package oidc fetches the provider metadata document published below an
// issuer URL, for discovering the issuer's key set endpoint.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// maxMetadataSize caps the size of a metadata document read off the wire.
const maxMetadataSize = 1 << 20

// DiscoveryMetadata holds the provider metadata fields the jwks package
// needs.
type DiscoveryMetadata struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// GetDiscoveryMetadata gets the metadata document published at
// .well-known/openid-configuration below the issuer URL. The document's
// advertised issuer must match the issuer it was fetched from.
func GetDiscoveryMetadata(ctx context.Context, client *http.Client, issuerURL url.URL) (*DiscoveryMetadata, error) {
	expectedIssuer := issuerURL.String()

	issuerURL.Path = path.Join(issuerURL.Path, ".well-known/openid-configuration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuerURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get discovery metadata: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get discovery metadata from %s: %w", issuerURL.String(), err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery metadata request to %s returned status %d", issuerURL.String(), response.StatusCode)
	}

	var metadata DiscoveryMetadata
	if err := json.NewDecoder(io.LimitReader(response.Body, maxMetadataSize)).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("could not decode discovery metadata: %w", err)
	}

	if metadata.JWKSURI == "" {
		return nil, fmt.Errorf("discovery metadata from %s does not advertise a jwks_uri", issuerURL.String())
	}

	if metadata.Issuer != "" && !sameIssuer(metadata.Issuer, expectedIssuer) {
		return nil, fmt.Errorf("discovery metadata advertises issuer %q, expected %q", metadata.Issuer, expectedIssuer)
	}

	return &metadata, nil
}

// sameIssuer compares issuer identifiers, tolerating a trailing slash.
func sameIssuer(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
