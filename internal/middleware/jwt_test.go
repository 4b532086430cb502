package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-online/internal/utils"
)

type stubResolver struct {
	exists bool
	err    error
}

func (s stubResolver) Exists(context.Context, uint64) (bool, error) { return s.exists, s.err }

func runJWT(t *testing.T, auth string, resolver UserResolver) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/pedidos", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth("secreto", resolver)(func(c echo.Context) error {
		uid, ok := CurrentUserID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"uid": uid, "nombre": c.Get("nombre")})
	})
	return rec, h(c)
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, err := runJWT(t, "", stubResolver{exists: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No autorizado")
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec, err := runJWT(t, "Bearer basura", stubResolver{exists: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token inválido o expirado")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secreto", 5, "Ana", "ana@example.com", -1)
	require.NoError(t, err)

	rec, err := runJWT(t, "Bearer "+tok.Token, stubResolver{exists: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuthDeletedUser(t *testing.T) {
	tok, err := utils.NewAccessToken("secreto", 5, "Ana", "ana@example.com", 15)
	require.NoError(t, err)

	rec, err := runJWT(t, "Bearer "+tok.Token, stubResolver{exists: false})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Usuario no encontrado")
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secreto", 5, "Ana", "ana@example.com", 15)
	require.NoError(t, err)

	rec, err := runJWT(t, "Bearer "+tok.Token, stubResolver{exists: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"uid":5`)
	assert.Contains(t, rec.Body.String(), "Ana")
}
