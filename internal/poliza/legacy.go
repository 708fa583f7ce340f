package poliza

import (
	"crmseguros/internal/model"

	"github.com/shopspring/decimal"
)

// Placeholders for legacy lines whose product was not loaded.
const (
	NombreLegacy    = "Producto (Legacy)"
	CategoriaLegacy = "General"
)

// ReconciliarLegacy returns the product lines to edit for p. Policies stored before
// multi-product support only have a product reference and totals; they come back
// as one synthetic line carrying those totals. The percentage of such a line is
// unknown and stays zero.
func ReconciliarLegacy(p *model.Poliza) []model.ProductoDetalle {
	if len(p.ProductosDetalle) > 0 {
		out := make([]model.ProductoDetalle, len(p.ProductosDetalle))
		copy(out, p.ProductosDetalle)
		return out
	}
	if p.ProductoID == nil {
		return []model.ProductoDetalle{}
	}

	d := model.ProductoDetalle{
		ProductoID:         *p.ProductoID,
		Nombre:             NombreLegacy,
		Categoria:          CategoriaLegacy,
		PrimaMensual:       p.PrimaTotal,
		SumaAsegurada:      p.SumaAseguradaTotal,
		PorcentajeComision: decimal.Zero,
		ComisionGenerada:   p.ComisionAgente,
		Legacy:             true,
	}
	if prod := p.Producto; prod != nil {
		if prod.Nombre != "" {
			d.Nombre = prod.Nombre
		}
		if prod.Categoria != "" {
			d.Categoria = prod.Categoria
		}
		d.Aseguradora = prod.Aseguradora
		d.Ramo = RamoDeProducto(*prod)
	}
	return []model.ProductoDetalle{d}
}

// RamoLegacy infers the single ramo of a policy without product lines from its
// legacy product's category or name.
func RamoLegacy(p *model.Poliza) model.Ramo {
	if p.Producto == nil {
		return model.RamoNinguno
	}
	return RamoDeProducto(*p.Producto)
}
