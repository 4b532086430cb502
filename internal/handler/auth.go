package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tienda-online/internal/config"
	"tienda-online/internal/repository"
	"tienda-online/internal/utils"
)

// TokenStore persists refresh-token state.  *repository.TokenRepo
// satisfies it; tests plug in an in-memory fake.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for the session lifecycle endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerReq struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	TokenRefresh string `json:"tokenRefresh"`
}

type usuarioPart struct {
	ID     uint64 `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
}

// Login verifies credentials, rotates in a fresh token pair and stamps the
// last-login time.  POST /api/autenticacion/iniciar-sesion.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email y password son requeridos")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "Email o contraseña inválidos")
		}
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el inicio de sesión")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Email o contraseña inválidos")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Nombre, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el inicio de sesión")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, u.ID, h.Cfg.RefreshTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el inicio de sesión")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el inicio de sesión")
	}
	// Best effort; a failed timestamp must not fail the login
	_ = h.Users.TouchLastLogin(ctx, u.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"usuario":      usuarioPart{ID: u.ID, Nombre: u.Nombre, Email: u.Email, Rol: u.Rol},
			"tokenAcceso":  access.Token,
			"tokenRefresh": refresh.Raw,
		},
	})
}

// Register creates a user and returns an access token only; a refresh
// token is not minted until the first login.
// POST /api/autenticacion/registrarse.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Nombre == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Se requiere nombre, email y contraseña")
	}
	if len(req.Password) < 6 {
		return fail(c, http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Nombre, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusBadRequest, "Ya existe un usuario con éste Email")
		}
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el registro")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Nombre, req.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante el registro")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data": echo.Map{
			"usuario":     usuarioPart{ID: uid, Nombre: req.Nombre, Email: req.Email, Rol: "usuario"},
			"tokenAcceso": access.Token,
		},
	})
}

// Refresh exchanges a live refresh token for a new pair.  The presented
// token must pass signature/expiry verification and its hash must still be
// an active row; rotation revokes that row so a replay of the old token
// fails.  POST /api/autenticacion/actualizar-token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.TokenRefresh) == "" {
		return fail(c, http.StatusBadRequest, "No hay token de actualización")
	}
	raw := strings.TrimSpace(req.TokenRefresh)

	claimedID, err := utils.ParseRefreshToken(h.Cfg.JWTRefreshSecret, raw)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Token refresh inválido o expirado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(raw)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil || userID != claimedID {
		return fail(c, http.StatusUnauthorized, "Token refresh inválido")
	}
	// Revoke-before-mint is the rotation's linearization point: when two
	// refreshes race on the same token, only the one that flips the row wins.
	revoked, err := h.Tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante la actualización de token")
	}
	if !revoked {
		return fail(c, http.StatusUnauthorized, "Token refresh inválido")
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "Token refresh inválido")
		}
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante la actualización de token")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Nombre, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante la actualización de token")
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, u.ID, h.Cfg.RefreshTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante la actualización de token")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, "Error interno del servidor durante la actualización de token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"tokenAcceso":  access.Token,
			"tokenRefresh": newRef.Raw,
		},
	})
}

// Logout acknowledges session termination.  When the caller supplies a
// refresh token it is revoked; with only a bearer token every session of
// that user is revoked.  The response is a success envelope either way, so
// clients that treat logout as a pure local effect keep working.
// POST /api/autenticacion/cerrar-sesion.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // body is optional
	raw := strings.TrimSpace(req.TokenRefresh)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		_, _ = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	} else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			_ = h.Tokens.RevokeAllForUser(ctx, claims.UserID)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Sesión cerrada correctamente",
	})
}

// fail writes the error envelope shared by every endpoint.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}
