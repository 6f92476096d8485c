package cache

import (
	"net/http"
	"strings"
)

// deniedHeaders lists exact header names never persisted with a cached
// response. Credentials and cookies must not be replayable from the cache;
// CORS headers are recomputed per response by the transport layer.
var deniedHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Set-Cookie":          {},
	"Cookie":              {},
	"Www-Authenticate":    {},
}

const corsHeaderPrefix = "Access-Control-"

// SanitizeHeaders returns a copy of h with credential, cookie, and CORS
// headers removed. The input is not modified.
func SanitizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		if _, denied := deniedHeaders[canonical]; denied {
			continue
		}
		if strings.HasPrefix(canonical, corsHeaderPrefix) {
			continue
		}
		out[canonical] = append([]string(nil), values...)
	}
	return out
}
