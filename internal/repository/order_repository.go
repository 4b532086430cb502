package repository

import (
	"context"
	"database/sql"

	"tienda-online/internal/model"
)

// OrderRepo persists orders and their snapshotted line items.  An order and
// its items are written inside one transaction, so a failure can never
// leave a partial order behind.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = "id,user_id,total,estado,nombre_completo,direccion,ciudad,region,metodo_pago,created_at"

// Create inserts the order plus all items and populates the generated ID
// and creation timestamp on the provided record.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, total, estado, nombre_completo, direccion, ciudad, region, metodo_pago) VALUES (?,?,?,?,?,?,?,?)",
		o.UserID, o.Total, o.Estado, o.NombreCompleto, o.Direccion, o.Ciudad, o.Region, o.MetodoPago)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) > 0 {
		query := "INSERT INTO order_items (order_id, product_id, nombre, precio, cantidad, imagen) VALUES "
		args := make([]any, 0, len(o.Items)*6)
		for i, it := range o.Items {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?,?,?)"
			args = append(args, o.ID, it.ProductID, it.Nombre, it.Precio, it.Cantidad, it.Imagen)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM orders WHERE id=?", o.ID).Scan(&o.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns the user's orders, most recent first, items included.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetByID fetches one order scoped to the user.  A missing order and an
// order owned by someone else both yield ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id, userID uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? AND user_id=? LIMIT 1", id, userID)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// CountByUser returns the number of orders a user has placed.
func (r *OrderRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id=?", userID).Scan(&n)
	return n, err
}

func (r *OrderRepo) loadItems(ctx context.Context, o *model.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, nombre, precio, cantidad, imagen FROM order_items WHERE order_id=? ORDER BY id",
		o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	o.Items = []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Nombre, &it.Precio, &it.Cantidad, &it.Imagen); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(s interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.UserID, &o.Total, &o.Estado, &o.NombreCompleto,
		&o.Direccion, &o.Ciudad, &o.Region, &o.MetodoPago, &o.CreatedAt)
	return o, err
}
