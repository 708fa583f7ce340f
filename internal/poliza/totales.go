package poliza

import (
	"crmseguros/internal/model"

	"github.com/shopspring/decimal"
)

// Totales are the policy-level aggregates of a product list.
type Totales struct {
	PrimaTotal         decimal.Decimal `json:"prima_total"`
	SumaAseguradaTotal decimal.Decimal `json:"suma_asegurada_total"`
	ComisionAgente     decimal.Decimal `json:"comision_agente"`
}

// CalcularTotales folds the product lines into policy totals. The commission is
// recomputed from premium and percentage; only legacy lines, whose percentage is
// unknown, contribute their stored commission.
func CalcularTotales(items []model.ProductoDetalle) Totales {
	t := Totales{
		PrimaTotal:         decimal.Zero,
		SumaAseguradaTotal: decimal.Zero,
		ComisionAgente:     decimal.Zero,
	}
	for _, d := range items {
		t.PrimaTotal = t.PrimaTotal.Add(d.PrimaMensual)
		t.SumaAseguradaTotal = t.SumaAseguradaTotal.Add(d.SumaAsegurada)
		if d.Legacy {
			t.ComisionAgente = t.ComisionAgente.Add(d.ComisionGenerada)
			continue
		}
		t.ComisionAgente = t.ComisionAgente.Add(ComisionMensual(d.PrimaMensual, d.PorcentajeComision))
	}
	return t
}

// Redondear rounds every total to cents, the precision of the stored columns.
func (t Totales) Redondear() Totales {
	return Totales{
		PrimaTotal:         t.PrimaTotal.Round(2),
		SumaAseguradaTotal: t.SumaAseguradaTotal.Round(2),
		ComisionAgente:     t.ComisionAgente.Round(2),
	}
}
