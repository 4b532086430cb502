package model

import "time"

// Product is a catalog entry.  Order lines snapshot the name, price and
// image at checkout time, so later edits to a product never change past
// orders.  Stock is a boolean availability flag, not a counter.
//
// Fields:
//
//	ID           – primary key identifier.
//	Nombre       – product name.
//	Descripcion  – long description.
//	Precio       – unit price, >= 0.
//	Imagen       – primary image URL.
//	Imagenes     – ordered list of additional image URLs.
//	Categoria    – category name used for filtering.
//	Calificacion – rating between 0 and 5.
//	TieneStock   – availability flag.
//	Specs        – ordered key/value specification list.
//	CreadoPor    – user who owns the product.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Product struct {
	ID           uint64    // products.id
	Nombre       string    // products.nombre
	Descripcion  string    // products.descripcion
	Precio       float64   // products.precio
	Imagen       string    // products.imagen
	Imagenes     []string  // product_images rows ordered by position
	Categoria    string    // products.categoria
	Calificacion float64   // products.calificacion
	TieneStock   bool      // products.tiene_stock
	Specs        []Spec    // product_specs rows ordered by position
	CreadoPor    uint64    // products.creado_por
	CreatedAt    time.Time // products.created_at
	UpdatedAt    time.Time // products.updated_at
}

// Spec is one entry of a product's specification list.  Specifications are
// an explicit ordered key/value list rather than a free-form map so their
// display order survives round trips.
type Spec struct {
	Clave string `json:"clave"` // product_specs.clave
	Valor string `json:"valor"` // product_specs.valor
}
