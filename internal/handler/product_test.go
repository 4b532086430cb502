package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-online/internal/model"
)

func validProductReq() productReq {
	return productReq{
		NombreProducto:      "Teclado mecánico",
		DescripcionProducto: "Switches rojos, retroiluminado",
		Precio:              45.9,
		Imagen:              "/img/teclado.jpg",
		Categoria:           "perifericos",
		Calificacion:        4.5,
	}
}

func TestProductFromReqValid(t *testing.T) {
	p, msg := productFromReq(validProductReq())
	require.Empty(t, msg)
	assert.Equal(t, "Teclado mecánico", p.Nombre)
	assert.True(t, p.TieneStock) // omitted flag defaults to available
}

func TestProductFromReqExplicitStock(t *testing.T) {
	req := validProductReq()
	agotado := false
	req.TieneStock = &agotado

	p, msg := productFromReq(req)
	require.Empty(t, msg)
	assert.False(t, p.TieneStock)
}

func TestProductFromReqValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*productReq)
		want   string
	}{
		{"sin nombre", func(r *productReq) { r.NombreProducto = "  " }, "El nombre del producto es requerido"},
		{"sin descripcion", func(r *productReq) { r.DescripcionProducto = "" }, "La descripción del producto es requerida"},
		{"precio negativo", func(r *productReq) { r.Precio = -1 }, "El precio debe ser mayor o igual a 0"},
		{"sin imagen", func(r *productReq) { r.Imagen = "" }, "La imagen del producto es requerida"},
		{"sin categoria", func(r *productReq) { r.Categoria = "" }, "La categoría del producto es requerida"},
		{"calificacion fuera de rango", func(r *productReq) { r.Calificacion = 5.5 }, "La calificación debe estar entre 0 y 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validProductReq()
			tc.mutate(&req)
			_, msg := productFromReq(req)
			assert.Equal(t, tc.want, msg)
		})
	}
}

func TestToProductJSONFieldNames(t *testing.T) {
	p := model.Product{
		ID:          3,
		Nombre:      "Mouse",
		Descripcion: "Inalámbrico",
		Precio:      19.9,
		Specs:       []model.Spec{{Clave: "dpi", Valor: "1600"}},
		TieneStock:  true,
		CreadoPor:   7,
	}
	j := toProductJSON(p)
	assert.Equal(t, "Mouse", j.NombreProducto)
	assert.Equal(t, "Inalámbrico", j.DescripcionProducto)
	require.Len(t, j.Especificaciones, 1)
	assert.Equal(t, "dpi", j.Especificaciones[0].Clave)
	assert.Equal(t, uint64(7), j.CreadoPor)
}
