package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tienda-online/internal/middleware"
	"tienda-online/internal/model"
	"tienda-online/internal/repository"
)

// UserHandler serves the authenticated profile and address book.
type UserHandler struct {
	Users     *repository.UserRepo
	Addresses *repository.AddressRepo
}

func NewUserHandler(u *repository.UserRepo, a *repository.AddressRepo) *UserHandler {
	return &UserHandler{Users: u, Addresses: a}
}

// ----- DTOs -----

type perfilJSON struct {
	ID            uint64        `json:"id"`
	Nombre        string        `json:"nombre"`
	Email         string        `json:"email"`
	Rol           string        `json:"rol"`
	Telefono      string        `json:"telefono"`
	Direcciones   []addressJSON `json:"direcciones"`
	UltimoLogin   time.Time     `json:"ultimoLogin"`
	FechaCreacion time.Time     `json:"fechaCreacion"`
}

type addressJSON struct {
	ID          string `json:"id"`
	Direccion   string `json:"direccion"`
	Ciudad      string `json:"ciudad"`
	Region      string `json:"region"`
	EsPrincipal bool   `json:"esPrincipal"`
}

type updateProfileReq struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type addressReq struct {
	Direccion   string `json:"direccion"`
	Ciudad      string `json:"ciudad"`
	Region      string `json:"region"`
	EsPrincipal bool   `json:"esPrincipal"`
}

func toAddressJSON(a model.Address) addressJSON {
	return addressJSON{
		ID:          a.ID,
		Direccion:   a.Direccion,
		Ciudad:      a.Ciudad,
		Region:      a.Region,
		EsPrincipal: a.EsPrincipal,
	}
}

func (h *UserHandler) profileJSON(ctx context.Context, u model.User) (perfilJSON, error) {
	addrs, err := h.Addresses.ListByUser(ctx, u.ID)
	if err != nil {
		return perfilJSON{}, err
	}
	out := perfilJSON{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Email:         u.Email,
		Rol:           u.Rol,
		Telefono:      u.Telefono,
		Direcciones:   make([]addressJSON, 0, len(addrs)),
		UltimoLogin:   u.UltimoLogin,
		FechaCreacion: u.CreatedAt,
	}
	for _, a := range addrs {
		out.Direcciones = append(out.Direcciones, toAddressJSON(a))
	}
	return out, nil
}

// GetProfile handles GET /api/usuario/perfil.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "Usuario no encontrado")
		}
		return fail(c, http.StatusInternalServerError, "Error obteniendo perfil de usuario")
	}
	perfil, err := h.profileJSON(ctx, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error obteniendo perfil de usuario")
	}
	return c.JSON(http.StatusOK, echo.Map{"usuarioDatos": perfil, "success": true})
}

// UpdateProfile handles PUT /api/usuario/perfil.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Email = strings.TrimSpace(req.Email)
	if req.Nombre == "" || req.Email == "" {
		return fail(c, http.StatusBadRequest, "El nombre y email son requeridos")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, userID, req.Nombre, req.Email, req.Telefono)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return fail(c, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, repository.ErrEmailExists):
			return fail(c, http.StatusBadRequest, "Ya existe un usuario con éste Email")
		default:
			return fail(c, http.StatusInternalServerError, "Error actualizando perfil de usuario")
		}
	}
	perfil, err := h.profileJSON(ctx, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error actualizando perfil de usuario")
	}
	return c.JSON(http.StatusOK, echo.Map{"usuario": perfil, "success": true})
}

// AddAddress handles POST /api/usuario/direcciones.
func (h *UserHandler) AddAddress(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	if req.Direccion == "" || req.Ciudad == "" || req.Region == "" {
		return fail(c, http.StatusBadRequest, "Todos los campos de dirección son requeridos")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Addresses.Create(ctx, userID, req.Direccion, req.Ciudad, req.Region, req.EsPrincipal)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error agregando dirección")
	}
	return c.JSON(http.StatusCreated, echo.Map{"direccion": toAddressJSON(a), "success": true})
}

// UpdateAddress handles PUT /api/usuario/direcciones/:id.
func (h *UserHandler) UpdateAddress(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	id := c.Param("id")
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	if req.Direccion == "" || req.Ciudad == "" || req.Region == "" {
		return fail(c, http.StatusBadRequest, "Todos los campos de dirección son requeridos")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Addresses.Update(ctx, userID, id, req.Direccion, req.Ciudad, req.Region, req.EsPrincipal)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return fail(c, http.StatusNotFound, "Dirección no encontrada")
		}
		return fail(c, http.StatusInternalServerError, "Error actualizando dirección")
	}
	return c.JSON(http.StatusOK, echo.Map{"direccion": toAddressJSON(a), "success": true})
}

// DeleteAddress handles DELETE /api/usuario/direcciones/:id.
func (h *UserHandler) DeleteAddress(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Addresses.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return fail(c, http.StatusNotFound, "Dirección no encontrada")
		}
		return fail(c, http.StatusInternalServerError, "Error eliminando dirección")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
