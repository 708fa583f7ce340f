package poliza

import (
	"crmseguros/internal/model"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// ComisionMensual is prima × porcentaje / 100.
func ComisionMensual(prima, porcentaje decimal.Decimal) decimal.Decimal {
	return prima.Mul(porcentaje).Div(cien)
}

// ArmarDetalle prices one product line from a catalog entry. Values are taken as
// given; callers decide whether zero or negative amounts are acceptable.
func ArmarDetalle(p model.Producto, prima, suma decimal.Decimal) model.ProductoDetalle {
	return model.ProductoDetalle{
		ProductoID:         p.ID,
		Nombre:             p.Nombre,
		Categoria:          p.Categoria,
		Ramo:               RamoDeProducto(p),
		Aseguradora:        p.Aseguradora,
		PrimaMensual:       prima,
		SumaAsegurada:      suma,
		PorcentajeComision: p.PorcentajeComision,
		ComisionGenerada:   ComisionMensual(prima, p.PorcentajeComision),
	}
}
