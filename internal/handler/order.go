package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tienda-online/internal/middleware"
	"tienda-online/internal/model"
	"tienda-online/internal/queue"
	"tienda-online/internal/repository"
	queue_publisher "tienda-online/internal/service"
)

// OrderHandler implements checkout and order history.  All methods assume
// JWT authentication has already run.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
}

func NewOrderHandler(o *repository.OrderRepo, p *repository.ProductRepo) *OrderHandler {
	return &OrderHandler{Orders: o, Products: p}
}

// ----- DTOs -----

type orderItemReq struct {
	IdProducto uint64 `json:"IdProducto"`
	Cantidad   int    `json:"cantidad"`
}

type direccionEnvioJSON struct {
	NombreCompleto string `json:"nombreCompleto"`
	Direccion      string `json:"direccion"`
	Ciudad         string `json:"ciudad"`
	Region         string `json:"region"`
}

type createOrderReq struct {
	Items          []orderItemReq     `json:"items"`
	DireccionEnvio direccionEnvioJSON `json:"direccionEnvio"`
	MetodoPago     string             `json:"metodoPago"`
}

type orderItemJSON struct {
	IdProducto     uint64  `json:"IdProducto"`
	NombreProducto string  `json:"nombreProducto"`
	Precio         float64 `json:"precio"`
	Cantidad       int     `json:"cantidad"`
	Imagen         string  `json:"imagen"`
}

type orderJSON struct {
	ID             uint64             `json:"id"`
	IdUsuario      uint64             `json:"idUsuario"`
	Items          []orderItemJSON    `json:"items"`
	TotalPedido    float64            `json:"totalPedido"`
	Estado         string             `json:"estado"`
	DireccionEnvio direccionEnvioJSON `json:"direccionEnvio"`
	MetodoPago     string             `json:"metodoPago"`
	FechaCreacion  time.Time          `json:"fechaCreacion"`
}

func toOrderJSON(o model.Order) orderJSON {
	items := make([]orderItemJSON, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemJSON{
			IdProducto:     it.ProductID,
			NombreProducto: it.Nombre,
			Precio:         it.Precio,
			Cantidad:       it.Cantidad,
			Imagen:         it.Imagen,
		})
	}
	return orderJSON{
		ID:          o.ID,
		IdUsuario:   o.UserID,
		Items:       items,
		TotalPedido: o.Total,
		Estado:      o.Estado,
		DireccionEnvio: direccionEnvioJSON{
			NombreCompleto: o.NombreCompleto,
			Direccion:      o.Direccion,
			Ciudad:         o.Ciudad,
			Region:         o.Region,
		},
		MetodoPago:    o.MetodoPago,
		FechaCreacion: o.CreatedAt,
	}
}

// ValidationError carries the Spanish message returned to the client for a
// rejected order.  Any other error from buildOrder is a server fault.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// productLookup resolves a product id to its live record.  The repository
// method satisfies it; tests use an in-memory map.
type productLookup func(ctx context.Context, id uint64) (model.Product, error)

// buildOrder validates a checkout request against live product records and
// assembles the order document.  Validation is sequential and stops at the
// first failing item, so a rejected order never has partial side effects.
// Each line snapshots the product's current name, price and image; the
// total is the sum of unit price times quantity across lines.
func buildOrder(ctx context.Context, req createOrderReq, userID uint64, lookup productLookup) (model.Order, error) {
	if len(req.Items) == 0 {
		return model.Order{}, &ValidationError{"El pedido debe contener al menos un elemento"}
	}
	d := req.DireccionEnvio
	if d.NombreCompleto == "" || d.Direccion == "" || d.Ciudad == "" || d.Region == "" {
		return model.Order{}, &ValidationError{"Se requiere una dirección de envío completa"}
	}
	if req.MetodoPago == "" {
		return model.Order{}, &ValidationError{"Se requiere un método de pago"}
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	total := 0.0
	for _, it := range req.Items {
		if it.IdProducto == 0 || it.Cantidad <= 0 {
			return model.Order{}, &ValidationError{"Datos de elemento inválidos: se requieren IdProducto y cantidad"}
		}
		p, err := lookup(ctx, it.IdProducto)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return model.Order{}, &ValidationError{fmt.Sprintf("Producto no encontrado: %d", it.IdProducto)}
			}
			return model.Order{}, err
		}
		if !p.TieneStock {
			return model.Order{}, &ValidationError{fmt.Sprintf("El producto está agotado: %s", p.Nombre)}
		}
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Nombre:    p.Nombre,
			Precio:    p.Precio,
			Cantidad:  it.Cantidad,
			Imagen:    p.Imagen,
		})
		total += p.Precio * float64(it.Cantidad)
	}

	return model.Order{
		UserID:         userID,
		Items:          items,
		Total:          total,
		Estado:         model.EstadoPendiente,
		NombreCompleto: d.NombreCompleto,
		Direccion:      d.Direccion,
		Ciudad:         d.Ciudad,
		Region:         d.Region,
		MetodoPago:     req.MetodoPago,
	}, nil
}

// Create handles POST /api/pedidos.  On success the order is persisted
// with estado "pendiente" and an order.created event is published on a
// best-effort basis.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := buildOrder(ctx, req, userID, h.Products.GetByID)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return fail(c, http.StatusBadRequest, ve.Msg)
		}
		return fail(c, http.StatusInternalServerError, "Error creando pedido")
	}

	if err := h.Orders.Create(ctx, &order); err != nil {
		return fail(c, http.StatusInternalServerError, "Error creando pedido")
	}

	// Downstream consumers log/notify; a broker failure must not fail checkout.
	_ = queue_publisher.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total,
		Estado:     order.Estado,
		MetodoPago: order.MetodoPago,
		Ciudad:     order.Ciudad,
		NumItems:   len(order.Items),
		CreatedAt:  order.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Pedido creado correctamente",
		"pedido":  toOrderJSON(order),
	})
}

// List handles GET /api/pedidos, most recent first.
func (h *OrderHandler) List(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error obteniendo pedidos")
	}
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderJSON(o))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"pedidos": out,
	})
}

// Get handles GET /api/pedidos/:id scoped to the authenticated user.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No autorizado")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusNotFound, "Pedido no encontrado")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail(c, http.StatusNotFound, "Pedido no encontrado")
		}
		return fail(c, http.StatusInternalServerError, "Error obteniendo pedido")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"pedido":  toOrderJSON(o),
	})
}
