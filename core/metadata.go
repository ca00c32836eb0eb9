package core

import "net/http"

// RequestMetadata is an abstract view over an incoming request's metadata.
// Extractors operate on this view instead of a framework request type, which
// keeps credential extraction identical across transports. Adapters are
// responsible for building the view from their native request.
type RequestMetadata interface {
	// Header returns the first value of the named header, looked up
	// case-insensitively. It returns "" when the header is absent.
	Header(name string) string

	// Cookie returns the value of the named cookie. The second return value
	// reports whether the cookie exists. Transports without a cookie concept
	// return ("", false).
	Cookie(name string) (string, bool)

	// Query returns the value of the named query parameter, or "" when absent
	// or when the transport has no query component.
	Query(name string) string
}

// HTTPRequestMetadata wraps an *http.Request as a RequestMetadata. HTTP-based
// adapters can use this instead of writing their own view.
func HTTPRequestMetadata(r *http.Request) RequestMetadata {
	return httpMetadata{r: r}
}

type httpMetadata struct {
	r *http.Request
}

func (m httpMetadata) Header(name string) string {
	return m.r.Header.Get(name)
}

func (m httpMetadata) Cookie(name string) (string, bool) {
	cookie, err := m.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (m httpMetadata) Query(name string) string {
	return m.r.URL.Query().Get(name)
}
