// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published when a checkout persists a new order.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID    uint64  `json:"order_id"`
	UserID     uint64  `json:"user_id"`
	Total      float64 `json:"total"`
	Estado     string  `json:"estado"`
	MetodoPago string  `json:"metodo_pago"`
	Ciudad     string  `json:"ciudad"`
	NumItems   int     `json:"num_items"`
	CreatedAt  string  `json:"created_at"`
}
