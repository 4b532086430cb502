package repository

import (
	"context"
	"database/sql"
	"strings"

	"tienda-online/internal/model"
)

// ProductRepo provides catalog queries and owner-scoped mutations.  The
// ordered image and specification lists live in the product_images and
// product_specs child tables and are rewritten as a whole on every update.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span repositories.
func (r *ProductRepo) DB() *sql.DB { return r.db }

const productColumns = "id,nombre,descripcion,precio,imagen,categoria,calificacion,tiene_stock,creado_por,created_at,updated_at"

// ProductSearchQuery defines filters & pagination for browsing the catalog.
// Zero values mean "no filter".  Page numbers start at 1.
type ProductSearchQuery struct {
	Busqueda   string
	Categoria  string
	MinPrecio  *float64
	MaxPrecio  *float64
	OrdenarPor string
	Pagina     int
	Limite     int
}

// Search returns one page of products plus the total match count.  Busqueda
// matches name, description and category case-insensitively; OrdenarPor
// accepts precio_asc (default), precio_desc, nombre and calificacion.
func (r *ProductRepo) Search(ctx context.Context, q ProductSearchQuery) ([]model.Product, int64, error) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(q.Busqueda); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		where = append(where, "(LOWER(nombre) LIKE ? OR LOWER(descripcion) LIKE ? OR LOWER(categoria) LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.Categoria != "" {
		where = append(where, "categoria = ?")
		args = append(args, q.Categoria)
	}
	if q.MinPrecio != nil {
		where = append(where, "precio >= ?")
		args = append(args, *q.MinPrecio)
	}
	if q.MaxPrecio != nil {
		where = append(where, "precio <= ?")
		args = append(args, *q.MaxPrecio)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var orden string
	switch q.OrdenarPor {
	case "precio_desc":
		orden = "precio DESC"
	case "nombre":
		orden = "nombre ASC"
	case "calificacion":
		orden = "calificacion DESC"
	default: // precio_asc
		orden = "precio ASC"
	}

	page := q.Pagina
	if page < 1 {
		page = 1
	}
	limit := q.Limite
	if limit < 1 {
		limit = 15
	}
	offset := (page - 1) * limit

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE "+cond+" ORDER BY "+orden+", id ASC LIMIT ? OFFSET ?",
		listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// GetByID fetches a product with its images and specs.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	if err := r.loadChildren(ctx, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Categories returns the sorted distinct category list.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT categoria FROM products ORDER BY categoria")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a product and its child rows in one transaction and
// populates the generated ID on the provided record.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
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
		"INSERT INTO products (nombre, descripcion, precio, imagen, categoria, calificacion, tiene_stock, creado_por) VALUES (?,?,?,?,?,?,?,?)",
		p.Nombre, p.Descripcion, p.Precio, p.Imagen, p.Categoria, p.Calificacion, p.TieneStock, p.CreadoPor)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if err := insertChildren(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update overwrites a product owned by userID.  Child tables are rewritten
// so the stored order always matches the submitted order.  Returns
// ErrProductNotFound or ErrForbidden as appropriate.
func (r *ProductRepo) Update(ctx context.Context, id, userID uint64, p *model.Product) error {
	owner, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}

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

	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET nombre=?, descripcion=?, precio=?, imagen=?, categoria=?, calificacion=?, tiene_stock=? WHERE id=?",
		p.Nombre, p.Descripcion, p.Precio, p.Imagen, p.Categoria, p.Calificacion, p.TieneStock, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM product_specs WHERE product_id=?", id); err != nil {
		return err
	}
	p.ID = id
	if err := insertChildren(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a product owned by userID along with its child rows.
func (r *ProductRepo) Delete(ctx context.Context, id, userID uint64) error {
	owner, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}

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

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM product_specs WHERE product_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *ProductRepo) ownerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT creado_por FROM products WHERE id=? LIMIT 1", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrProductNotFound
	}
	return owner, err
}

func (r *ProductRepo) loadChildren(ctx context.Context, p *model.Product) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT url FROM product_images WHERE product_id=? ORDER BY position", p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	p.Imagenes = []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return err
		}
		p.Imagenes = append(p.Imagenes, url)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	specRows, err := r.db.QueryContext(ctx,
		"SELECT clave, valor FROM product_specs WHERE product_id=? ORDER BY position", p.ID)
	if err != nil {
		return err
	}
	defer specRows.Close()
	p.Specs = []model.Spec{}
	for specRows.Next() {
		var s model.Spec
		if err := specRows.Scan(&s.Clave, &s.Valor); err != nil {
			return err
		}
		p.Specs = append(p.Specs, s)
	}
	return specRows.Err()
}

// insertChildren bulk-inserts image and spec rows for a product inside the
// caller's transaction.
func insertChildren(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	if len(p.Imagenes) > 0 {
		query := "INSERT INTO product_images (product_id, position, url) VALUES "
		args := make([]any, 0, len(p.Imagenes)*3)
		for i, url := range p.Imagenes {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?)"
			args = append(args, p.ID, i, url)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if len(p.Specs) > 0 {
		query := "INSERT INTO product_specs (product_id, position, clave, valor) VALUES "
		args := make([]any, 0, len(p.Specs)*4)
		for i, s := range p.Specs {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?)"
			args = append(args, p.ID, i, s.Clave, s.Valor)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// scanProduct reads the fixed product column set from a row or rows cursor.
func scanProduct(s interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Imagen,
		&p.Categoria, &p.Calificacion, &p.TieneStock, &p.CreadoPor,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}
