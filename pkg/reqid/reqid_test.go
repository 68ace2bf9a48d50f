package reqid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/stockroom/pkg/reqid"
)

func TestNewIsRandomHex(t *testing.T) {
	a, b := reqid.New(), reqid.New()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := reqid.WithValue(context.Background(), "abc12345")
	assert.Equal(t, "abc12345", reqid.FromCtx(ctx))
	assert.Empty(t, reqid.FromCtx(context.Background()))
}

func serveWithMiddleware(t *testing.T, upstream string) (ctxID string, header string) {
	t.Helper()

	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = reqid.FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if upstream != "" {
		req.Header.Set(reqid.Header, upstream)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return ctxID, rec.Header().Get(reqid.Header)
}

func TestMiddlewareGeneratesID(t *testing.T) {
	ctxID, header := serveWithMiddleware(t, "")
	assert.Len(t, ctxID, 32)
	assert.Equal(t, ctxID, header, "response echoes the assigned ID")
}

func TestMiddlewareReusesUpstreamID(t *testing.T) {
	ctxID, header := serveWithMiddleware(t, "gateway-7f3a.42")
	assert.Equal(t, "gateway-7f3a.42", ctxID)
	assert.Equal(t, "gateway-7f3a.42", header)
}

func TestMiddlewareRejectsMalformedUpstreamID(t *testing.T) {
	for name, bad := range map[string]string{
		"too short":   "abc",
		"unprintable": "abcd\nefgh",
		"spaces":      "not a request id",
		"oversized":   string(make([]byte, 80)),
	} {
		ctxID, _ := serveWithMiddleware(t, bad)
		assert.NotEqual(t, bad, ctxID, name)
		assert.Len(t, ctxID, 32, name)
	}
}
