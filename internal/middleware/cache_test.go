package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-online/internal/config"
)

func cacheCtx(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/productos")
	return c
}

func TestCacheKeyVariesWithQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, cacheCtx("/api/productos?pagina=1"))
	b := cacheKeyFrom(cfg, cacheCtx("/api/productos?pagina=2"))
	c := cacheKeyFrom(cfg, cacheCtx("/api/productos?pagina=1"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
	assert.Contains(t, a, "cache:")
}

func TestCacheKeyRouteStrategyIgnoresQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}

	a := cacheKeyFrom(cfg, cacheCtx("/api/productos?pagina=1"))
	b := cacheKeyFrom(cfg, cacheCtx("/api/productos?pagina=2"))
	assert.Equal(t, a, b)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"success":true}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)

	// header length pointing past the buffer
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
	assert.False(t, ok)
}

// A body larger than the configured limit must never be stored; a partial
// body in the cache would be served verbatim on every HIT.
func TestStorableSkipsOversizedBody(t *testing.T) {
	assert.True(t, storable(http.StatusOK, 100, 1024))
	assert.True(t, storable(http.StatusOK, 1024, 1024))
	assert.False(t, storable(http.StatusOK, 1025, 1024))
	assert.True(t, storable(http.StatusOK, 1<<20, 0)) // no limit configured
	assert.False(t, storable(http.StatusNotFound, 100, 1024))
}

// captureWriter counts the full response size even once its buffer stops
// growing, so the oversize check sees the real byte count.
func TestCaptureWriterCountsPastLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	_, err := cw.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = cw.Write([]byte("overflow"))
	require.NoError(t, err)

	assert.Equal(t, int64(18), cw.size)
	assert.False(t, storable(cw.status, cw.size, cw.limit))
	assert.Equal(t, "0123456789overflow", rec.Body.String()) // client still gets everything
}

// Disabled cache and nil Redis client both collapse to a pass-through.
func TestCacheDisabledPassThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/productos", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
