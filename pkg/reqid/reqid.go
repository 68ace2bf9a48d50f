// Package reqid tags every HTTP request with a correlation ID.
//
// The ID rides the request context and the X-Request-ID header. Handlers
// and services log through logger.WithCtx(ctx), which attaches the ID as
// request_id, so one product mutation can be traced from the multipart
// parse through to the event fan-out. The CORS layer exposes the header to
// browser clients for the same reason.
//
// Wired first in the logging half of the middleware stack in
// internal/server:
//
//	r.Use(reqid.Middleware())
//
// Reading it downstream:
//
//	id := reqid.FromCtx(r.Context())
package reqid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// ctxKey is the unexported key used to store the request ID in context.
type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

// New generates a cryptographically random 16-byte (32 hex char) request ID.
func New() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithValue stores id in ctx and returns the new context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx extracts the request ID from ctx.
// Returns an empty string if none is present.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware assigns each request its ID and echoes it in the response.
// An upstream X-Request-ID is reused when it is well formed, so a gateway
// or proxy keeps its correlation ID end to end; malformed or oversized
// values are replaced instead of propagated into the logs.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if !wellFormed(id) {
				id = New()
			}

			// Echo in the response so clients can correlate.
			w.Header().Set(Header, id)

			ctx := WithValue(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// wellFormed bounds reused upstream ids: 8 to 64 characters, letters,
// digits, dot, dash or underscore. Anything else gets a fresh ID.
func wellFormed(id string) bool {
	if len(id) < 8 || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '_':
		default:
			return false
		}
	}
	return true
}
