package model

import "time"

// Address is a shipping address owned by exactly one user.  Addresses are
// created, updated and deleted only through user-scoped endpoints; the
// primary flag marks the default address shown at checkout.
//
// Fields:
//
//	ID          – UUID identifier of the address.
//	UserID      – owning user.
//	Direccion   – free-text street address.
//	Ciudad      – city.
//	Region      – region or state.
//	EsPrincipal – whether this is the user's primary address.
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Address struct {
	ID          string    // addresses.id (UUID)
	UserID      uint64    // addresses.user_id
	Direccion   string    // addresses.direccion
	Ciudad      string    // addresses.ciudad
	Region      string    // addresses.region
	EsPrincipal bool      // addresses.es_principal
	CreatedAt   time.Time // addresses.created_at
	UpdatedAt   time.Time // addresses.updated_at
}
