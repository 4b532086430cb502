package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-online/internal/config"
	"tienda-online/internal/utils"
)

// postJSON runs a handler against a synthetic request.  The repositories
// are nil; only code paths that reject before touching the database are
// exercised here.
func postJSON(t *testing.T, h func(echo.Context) error, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func testAuthHandler() *AuthHandler {
	return NewAuthHandler(config.Config{
		JWTSecret:        "secreto",
		JWTRefreshSecret: "refresco",
		AccessTTLMin:     15,
		RefreshTTLMin:    60 * 24,
		BcryptCost:       4,
	}, nil, nil)
}

func TestLoginMissingFields(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Login, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), "Email y password son requeridos")
}

func TestRegisterMissingFields(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Register, `{"nombre":"Ana","email":"","password":"secreta"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Se requiere nombre, email y contraseña")
}

func TestRegisterShortPassword(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Register, `{"nombre":"Ana","email":"ana@example.com","password":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "La contraseña debe tener al menos 6 caracteres")
}

func TestRefreshMissingToken(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Refresh, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No hay token de actualización")
}

// A refresh token that fails signature verification is rejected before any
// database lookup.
func TestRefreshBadSignature(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Refresh, `{"tokenRefresh":"eyJ.no-valido.xyz"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token refresh inválido o expirado")
}

// memTokenStore keeps refresh-token rows in memory, mirroring the
// repository's revoked/active semantics.
type memTokenStore struct {
	active  map[string]uint64 // hash -> owner
	revoked map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{active: map[string]uint64{}, revoked: map[string]bool{}}
}

func (m *memTokenStore) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.active[hash] = userID
	return nil
}

func (m *memTokenStore) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	if m.revoked[hash] {
		return 0, sql.ErrNoRows
	}
	uid, ok := m.active[hash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (m *memTokenStore) RevokeByHash(_ context.Context, hash string) (bool, error) {
	if m.revoked[hash] {
		return false, nil
	}
	if _, ok := m.active[hash]; !ok {
		return false, nil
	}
	m.revoked[hash] = true
	return true, nil
}

func (m *memTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	for hash, uid := range m.active {
		if uid == userID {
			m.revoked[hash] = true
		}
	}
	return nil
}

func refreshBody(raw string) string {
	return fmt.Sprintf(`{"tokenRefresh":%q}`, raw)
}

// A validly-signed refresh token whose hash is not stored must be rejected:
// the signature alone never authorizes a rotation.
func TestRefreshValidSignatureUnknownToken(t *testing.T) {
	h := testAuthHandler()
	h.Tokens = newMemTokenStore()

	ref, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, 7, 60)
	require.NoError(t, err)

	rec := postJSON(t, h.Refresh, refreshBody(ref.Raw))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token refresh inválido")
}

// A rotated-out token still carries a valid signature but its row is
// revoked; presenting it again must fail.
func TestRefreshRevokedTokenRejected(t *testing.T) {
	h := testAuthHandler()
	store := newMemTokenStore()
	h.Tokens = store

	ref, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, 7, 60)
	require.NoError(t, err)
	hash := utils.HashRefreshRaw(ref.Raw)
	require.NoError(t, store.StoreRefresh(context.Background(), 7, hash, ref.Exp))

	revoked, err := store.RevokeByHash(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, revoked)

	rec := postJSON(t, h.Refresh, refreshBody(ref.Raw))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token refresh inválido")
}

// A stored token whose row belongs to a different user than the token's
// embedded id is rejected.
func TestRefreshOwnerMismatchRejected(t *testing.T) {
	h := testAuthHandler()
	store := newMemTokenStore()
	h.Tokens = store

	ref, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, 7, 60)
	require.NoError(t, err)
	require.NoError(t, store.StoreRefresh(context.Background(), 8, utils.HashRefreshRaw(ref.Raw), ref.Exp))

	rec := postJSON(t, h.Refresh, refreshBody(ref.Raw))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token refresh inválido")
}

// losingRevokeStore simulates the loser of a concurrent rotation: the row
// validates as active, but another rotation flips it first.
type losingRevokeStore struct{ *memTokenStore }

func (l losingRevokeStore) RevokeByHash(context.Context, string) (bool, error) {
	return false, nil
}

// When two refreshes race on one token, the one whose revoke did not land
// must not mint a new pair.
func TestRefreshConcurrentRotationLoserRejected(t *testing.T) {
	h := testAuthHandler()
	store := newMemTokenStore()
	h.Tokens = losingRevokeStore{store}

	ref, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, 7, 60)
	require.NoError(t, err)
	require.NoError(t, store.StoreRefresh(context.Background(), 7, utils.HashRefreshRaw(ref.Raw), ref.Exp))

	rec := postJSON(t, h.Refresh, refreshBody(ref.Raw))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token refresh inválido")
}
