// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// failure scenarios: ErrForbidden means the caller tried to mutate a
// resource owned by someone else and maps to HTTP 403, while the
// *NotFound values map to HTTP 404.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrProductNotFound is returned when a product id does not resolve to a
// catalog row.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned when an order does not exist or belongs to
// a different user.  The two cases are deliberately indistinguishable.
var ErrOrderNotFound = errors.New("order not found")

// ErrAddressNotFound is returned when an address id does not resolve
// within the caller's own addresses.
var ErrAddressNotFound = errors.New("address not found")

// ErrUserNotFound is returned when a user id no longer resolves to a row,
// e.g. a token subject for a deleted account.
var ErrUserNotFound = errors.New("user not found")
