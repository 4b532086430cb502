package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tienda-online/internal/middleware"
	"tienda-online/internal/model"
	"tienda-online/internal/repository"
)

// ProductHandler exposes the public catalog plus owner-scoped mutations.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

// productJSON is the wire form of a product with the Spanish field names
// the frontend consumes.
type productJSON struct {
	ID                  uint64       `json:"id"`
	NombreProducto      string       `json:"nombreProducto"`
	DescripcionProducto string       `json:"descripcionProducto"`
	Precio              float64      `json:"precio"`
	Imagen              string       `json:"imagen"`
	Imagenes            []string     `json:"imagenes"`
	Categoria           string       `json:"categoria"`
	Calificacion        float64      `json:"calificacion"`
	TieneStock          bool         `json:"tieneStock"`
	Especificaciones    []model.Spec `json:"especificaciones"`
	CreadoPor           uint64       `json:"creadoPor"`
	FechaCreacion       time.Time    `json:"fechaCreacion"`
}

type productReq struct {
	NombreProducto      string       `json:"nombreProducto"`
	DescripcionProducto string       `json:"descripcionProducto"`
	Precio              float64      `json:"precio"`
	Imagen              string       `json:"imagen"`
	Imagenes            []string     `json:"imagenes"`
	Categoria           string       `json:"categoria"`
	Calificacion        float64      `json:"calificacion"`
	TieneStock          *bool        `json:"tieneStock"` // pointer so an omitted flag defaults to available
	Especificaciones    []model.Spec `json:"especificaciones"`
}

func toProductJSON(p model.Product) productJSON {
	return productJSON{
		ID:                  p.ID,
		NombreProducto:      p.Nombre,
		DescripcionProducto: p.Descripcion,
		Precio:              p.Precio,
		Imagen:              p.Imagen,
		Imagenes:            p.Imagenes,
		Categoria:           p.Categoria,
		Calificacion:        p.Calificacion,
		TieneStock:          p.TieneStock,
		Especificaciones:    p.Specs,
		CreadoPor:           p.CreadoPor,
		FechaCreacion:       p.CreatedAt,
	}
}

// List handles GET /api/productos with filter, search, price range and
// pagination query parameters.
func (h *ProductHandler) List(c echo.Context) error {
	q := repository.ProductSearchQuery{
		Busqueda:   c.QueryParam("busqueda"),
		Categoria:  c.QueryParam("categoria"),
		OrdenarPor: c.QueryParam("ordernarPor"),
	}
	if v := c.QueryParam("pagina"); v != "" {
		q.Pagina, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("limite"); v != "" {
		q.Limite, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("minprecio"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinPrecio = &f
		}
	}
	if v := c.QueryParam("maxprecio"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MaxPrecio = &f
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.Products.Search(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error obteniendo productos")
	}

	limite := q.Limite
	if limite < 1 {
		limite = 15
	}
	pagina := q.Pagina
	if pagina < 1 {
		pagina = 1
	}
	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"productosEncontrados": out,
			"total":                total,
			"pagina":               pagina,
			"totalPaginas":         int(math.Ceil(float64(total) / float64(limite))),
		},
	})
}

// Get handles GET /api/productos/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusNotFound, "Producto no encontrado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return fail(c, http.StatusNotFound, "Producto no encontrado")
		}
		return fail(c, http.StatusInternalServerError, "Error obteniendo producto")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"productoEncontrado": toProductJSON(p)},
	})
}

// Categories handles GET /api/productos/categorias/lista.
func (h *ProductHandler) Categories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	categorias, err := h.Products.Categories(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error obteniendo categorías")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"categorias": categorias},
	})
}

// Create handles POST /api/productos.  The authenticated caller becomes
// the product owner.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	p, errMsg := productFromReq(req)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, errMsg)
	}
	p.CreadoPor = userID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Create(ctx, &p); err != nil {
		return fail(c, http.StatusInternalServerError, "Error creando producto")
	}
	stored, err := h.Products.GetByID(ctx, p.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error creando producto")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"producto": toProductJSON(stored)},
	})
}

// Update handles PUT /api/productos/:id, owner only.
func (h *ProductHandler) Update(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusNotFound, "Producto no encontrado")
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	p, errMsg := productFromReq(req)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, errMsg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Update(ctx, id, userID, &p); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return fail(c, http.StatusNotFound, "Producto no encontrado")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "No tienes autorización para actualizar este producto")
		default:
			return fail(c, http.StatusInternalServerError, "Error actualizando producto")
		}
	}
	stored, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error actualizando producto")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"producto": toProductJSON(stored)},
	})
}

// Delete handles DELETE /api/productos/:id, owner only.
func (h *ProductHandler) Delete(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusNotFound, "Producto no encontrado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return fail(c, http.StatusNotFound, "Producto no encontrado")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "No tienes autorización para eliminar este producto")
		default:
			return fail(c, http.StatusInternalServerError, "Error eliminando producto")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Producto eliminado correctamente",
	})
}

// productFromReq validates a create/update body and maps it onto the model.
// Returns a non-empty message describing the first violation.
func productFromReq(req productReq) (model.Product, string) {
	nombre := strings.TrimSpace(req.NombreProducto)
	if nombre == "" {
		return model.Product{}, "El nombre del producto es requerido"
	}
	if strings.TrimSpace(req.DescripcionProducto) == "" {
		return model.Product{}, "La descripción del producto es requerida"
	}
	if req.Precio < 0 {
		return model.Product{}, "El precio debe ser mayor o igual a 0"
	}
	if strings.TrimSpace(req.Imagen) == "" {
		return model.Product{}, "La imagen del producto es requerida"
	}
	if strings.TrimSpace(req.Categoria) == "" {
		return model.Product{}, "La categoría del producto es requerida"
	}
	if req.Calificacion < 0 || req.Calificacion > 5 {
		return model.Product{}, "La calificación debe estar entre 0 y 5"
	}
	tieneStock := true
	if req.TieneStock != nil {
		tieneStock = *req.TieneStock
	}
	return model.Product{
		Nombre:       nombre,
		Descripcion:  req.DescripcionProducto,
		Precio:       req.Precio,
		Imagen:       req.Imagen,
		Imagenes:     req.Imagenes,
		Categoria:    strings.TrimSpace(req.Categoria),
		Calificacion: req.Calificacion,
		TieneStock:   tieneStock,
		Specs:        req.Especificaciones,
	}, ""
}
