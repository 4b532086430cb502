package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"tienda-online/internal/model"
)

// AddressRepo manages the shipping addresses embedded under a user.  Every
// query is scoped by user_id, so an address can only ever be read or
// mutated through its owner.
type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

const addressColumns = "id,user_id,direccion,ciudad,region,es_principal,created_at,updated_at"

// ListByUser returns the user's addresses, oldest first.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id=? ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Direccion, &a.Ciudad, &a.Region,
			&a.EsPrincipal, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts an address for the user and returns the stored row.
func (r *AddressRepo) Create(ctx context.Context, userID uint64, direccion, ciudad, region string, esPrincipal bool) (model.Address, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO addresses (id, user_id, direccion, ciudad, region, es_principal) VALUES (?,?,?,?,?,?)",
		id, userID, direccion, ciudad, region, esPrincipal)
	if err != nil {
		return model.Address{}, err
	}
	return r.getOwned(ctx, userID, id)
}

// Update overwrites an address owned by the user.  ErrAddressNotFound is
// returned when the id does not exist under this user.
func (r *AddressRepo) Update(ctx context.Context, userID uint64, id, direccion, ciudad, region string, esPrincipal bool) (model.Address, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE addresses SET direccion=?, ciudad=?, region=?, es_principal=? WHERE id=? AND user_id=?",
		direccion, ciudad, region, esPrincipal, id, userID)
	if err != nil {
		return model.Address{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Could be a no-op update; verify the row is actually there.
		if _, err := r.getOwned(ctx, userID, id); err != nil {
			return model.Address{}, err
		}
	}
	return r.getOwned(ctx, userID, id)
}

// Delete removes an address owned by the user.
func (r *AddressRepo) Delete(ctx context.Context, userID uint64, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepo) getOwned(ctx context.Context, userID uint64, id string) (model.Address, error) {
	var a model.Address
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&a.ID, &a.UserID, &a.Direccion, &a.Ciudad, &a.Region,
		&a.EsPrincipal, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Address{}, ErrAddressNotFound
	}
	return a, err
}
