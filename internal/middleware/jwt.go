package middleware // middleware provides reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tienda-online/internal/utils"
)

// UserResolver checks that a token subject still maps to a live account.
// *repository.UserRepo satisfies it; tests can plug in a stub.
type UserResolver interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the decoded identity into the request context under
// "user_id", "nombre" and "email".  A missing token yields 401; a token
// that fails signature or expiry checks yields 403; a valid token whose
// subject no longer resolves to a user yields 401.  Pass a nil resolver to
// skip the existence lookup.
func JWTAuth(secret string, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido o expirado"})
			}

			if users != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				ok, err := users.Exists(ctx, claims.UserID)
				cancel()
				if err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error interno del servidor"})
				}
				if !ok {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Usuario no encontrado"})
				}
			}

			c.Set("user_id", claims.UserID)
			c.Set("nombre", claims.Nombre)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}

// CurrentUserID pulls the authenticated user id stored by JWTAuth.  The
// second return is false when the route was not wrapped by the middleware.
func CurrentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("user_id").(uint64)
	return id, ok
}
