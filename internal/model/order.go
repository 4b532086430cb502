package model

import "time"

// Order statuses.  The set is closed but transitions are not validated
// anywhere; orders are created as EstadoPendiente and only the estado
// column changes afterwards.
const (
	EstadoPendiente  = "pendiente"
	EstadoConfirmado = "confirmado"
	EstadoEnviado    = "enviado"
	EstadoEntregado  = "entregado"
	EstadoCancelado  = "cancelado"
)

// Order groups the line items purchased by a user in one checkout.  The
// shipping address is an embedded copy, not a reference, and Total must
// equal the sum of Precio*Cantidad over Items at creation time.
//
// Fields:
//
//	ID             – primary key identifier.
//	UserID         – user who placed the order.
//	Items          – snapshotted line items.
//	Total          – sum of unit price times quantity across lines.
//	Estado         – one of the Estado* constants.
//	NombreCompleto – recipient full name.
//	Direccion      – street address copied at checkout.
//	Ciudad         – city copied at checkout.
//	Region         – region copied at checkout.
//	MetodoPago     – payment method string.
//	CreatedAt      – creation timestamp.
type Order struct {
	ID             uint64      // orders.id
	UserID         uint64      // orders.user_id
	Items          []OrderItem // order_items rows
	Total          float64     // orders.total
	Estado         string      // orders.estado
	NombreCompleto string      // orders.nombre_completo
	Direccion      string      // orders.direccion
	Ciudad         string      // orders.ciudad
	Region         string      // orders.region
	MetodoPago     string      // orders.metodo_pago
	CreatedAt      time.Time   // orders.created_at
}

// OrderItem is a snapshot of a product at checkout time: id, name, unit
// price and image are copied from the live product record, never
// referenced.  Cantidad is always >= 1.
type OrderItem struct {
	ProductID uint64  // order_items.product_id
	Nombre    string  // order_items.nombre
	Precio    float64 // order_items.precio
	Cantidad  int     // order_items.cantidad
	Imagen    string  // order_items.imagen
}
