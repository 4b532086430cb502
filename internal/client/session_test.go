package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/autenticacion/iniciar-sesion", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "ana@example.com" || req.Password != "secreta" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(echo.Map{"success": false, "error": "Email o contraseña inválidos"})
			return
		}
		_ = json.NewEncoder(w).Encode(echo.Map{
			"success": true,
			"data": echo.Map{
				"usuario":      echo.Map{"id": 7, "nombre": "Ana", "email": "ana@example.com", "rol": "usuario"},
				"tokenAcceso":  "acceso-1",
				"tokenRefresh": "refresh-1",
			},
		})
	})
	mux.HandleFunc("/api/autenticacion/registrarse", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(echo.Map{
			"success": true,
			"data": echo.Map{
				"usuario":     echo.Map{"id": 8, "nombre": "Luis", "email": "luis@example.com", "rol": "usuario"},
				"tokenAcceso": "acceso-nuevo",
			},
		})
	})
	mux.HandleFunc("/api/autenticacion/cerrar-sesion", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(echo.Map{"success": true, "message": "Sesión cerrada correctamente"})
	})
	return httptest.NewServer(mux)
}

func TestSessionLoginStoresPair(t *testing.T) {
	srv := sessionServer(t)
	defer srv.Close()

	s := NewSession(srv.URL, "")
	u, err := s.Login(context.Background(), "ana@example.com", "secreta")
	require.NoError(t, err)

	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "Ana", u.Nombre)
	assert.Equal(t, Pair{Acceso: "acceso-1", Refresh: "refresh-1"}, s.Tokens.Get())
}

func TestSessionLoginBadCredentials(t *testing.T) {
	srv := sessionServer(t)
	defer srv.Close()

	s := NewSession(srv.URL, "")
	_, err := s.Login(context.Background(), "ana@example.com", "incorrecta")
	require.Error(t, err)
	assert.EqualError(t, err, "Email o contraseña inválidos")
	assert.Equal(t, Pair{}, s.Tokens.Get())
}

// Registration only yields an access token; the refresh slot stays empty
// until the first login.
func TestSessionRegisterAccessOnly(t *testing.T) {
	srv := sessionServer(t)
	defer srv.Close()

	s := NewSession(srv.URL, "")
	u, err := s.Register(context.Background(), "Luis", "luis@example.com", "secreta")
	require.NoError(t, err)

	assert.Equal(t, "Luis", u.Nombre)
	pair := s.Tokens.Get()
	assert.Equal(t, "acceso-nuevo", pair.Acceso)
	assert.Empty(t, pair.Refresh)
}

func TestSessionLogoutClearsTokens(t *testing.T) {
	srv := sessionServer(t)
	defer srv.Close()

	s := NewSession(srv.URL, "")
	_, err := s.Login(context.Background(), "ana@example.com", "secreta")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, Pair{}, s.Tokens.Get())
}

func TestTokenStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	s := NewTokenStore(path)
	s.Set(Pair{Acceso: "a", Refresh: "r"})

	restored := NewTokenStore(path)
	assert.Equal(t, Pair{Acceso: "a", Refresh: "r"}, restored.Get())

	restored.Clear()
	assert.Equal(t, Pair{}, NewTokenStore(path).Get())
}
