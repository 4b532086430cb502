package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"tienda-online/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session lifecycle endpoints under
// /api/autenticacion.  None of them require an existing session; the rate
// limiter shields the credential endpoints from brute forcing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/autenticacion")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/iniciar-sesion", a.Login)
	g.POST("/registrarse", a.Register)
	g.POST("/actualizar-token", a.Refresh)
	g.POST("/cerrar-sesion", a.Logout)
}

// RegisterCatalog registers the product endpoints.  Browsing is public and
// sits behind the response cache; mutations require a valid access token
// and are further restricted to the product owner inside the handlers.
func RegisterCatalog(e *echo.Echo, p *handler.ProductHandler, cache, auth echo.MiddlewareFunc) {
	g := e.Group("/api/productos")
	if cache != nil {
		g.GET("", p.List, cache)
		g.GET("/categorias/lista", p.Categories, cache)
		g.GET("/:id", p.Get, cache)
	} else {
		g.GET("", p.List)
		g.GET("/categorias/lista", p.Categories)
		g.GET("/:id", p.Get)
	}
	g.POST("", p.Create, auth)
	g.PUT("/:id", p.Update, auth)
	g.DELETE("/:id", p.Delete, auth)
}

// RegisterUser registers the authenticated profile and address endpoints
// under /api/usuario.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/api/usuario")
	g.Use(auth)
	g.GET("/perfil", u.GetProfile)
	g.PUT("/perfil", u.UpdateProfile)
	g.POST("/direcciones", u.AddAddress)
	g.PUT("/direcciones/:id", u.UpdateAddress)
	g.DELETE("/direcciones/:id", u.DeleteAddress)
}

// RegisterOrders registers the checkout and order history endpoints under
// /api/pedidos.  All of them require authentication.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/api/pedidos")
	g.Use(auth)
	g.POST("", o.Create)
	g.GET("", o.List)
	g.GET("/:id", o.Get)
}
