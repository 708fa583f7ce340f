package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaProductoRequest is one product line as entered in the policy form. A line
// missing any of its three values is skipped, the same as an incomplete row in
// the form.
type LineaProductoRequest struct {
	ProductoID    string           `json:"producto_id"    validate:"omitempty,uuid"`
	PrimaMensual  *decimal.Decimal `json:"prima_mensual"`
	SumaAsegurada *decimal.Decimal `json:"suma_asegurada"`
}

type GuardarPolizaRequest struct {
	NumeroPoliza     *string                `json:"numero_poliza"     validate:"omitempty,max=50"`
	ClienteID        string                 `json:"cliente_id"        validate:"omitempty,uuid"`
	Productos        []LineaProductoRequest `json:"productos"         validate:"dive"`
	Estado           string                 `json:"estado"            validate:"omitempty,oneof=ACTIVA 'PENDIENTE PAGO' CANCELADA VENCIDA"`
	FechaEmision     *time.Time             `json:"fecha_emision"`
	FechaVencimiento *time.Time             `json:"fecha_vencimiento"`
	AgenteID         *string                `json:"agente_id"         validate:"omitempty,uuid"`
}

// CotizarRequest previews lines and totals without persisting anything.
type CotizarRequest struct {
	Productos []LineaProductoRequest `json:"productos" validate:"required,min=1,dive"`
}

type PolizaFilter struct {
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Estado    string `form:"estado"`
	AgenteID  string `form:"agente_id"  validate:"omitempty,uuid"`
}

// PolizaLegacyImport is one row of the previous backend's export. Cliente and
// Producto were written as an object, an array or null depending on the join.
type PolizaLegacyImport struct {
	ID                 *string          `json:"id"`
	NumeroPoliza       *string          `json:"numero_poliza"`
	ClienteID          *string          `json:"cliente_id"`
	ProductoID         *string          `json:"producto_id"`
	PrimaTotal         decimal.Decimal  `json:"prima_total"`
	SumaAseguradaTotal decimal.Decimal  `json:"suma_asegurada_total"`
	ComisionAgente     decimal.Decimal  `json:"comision_agente"`
	FechaEmision       *time.Time       `json:"fecha_emision"`
	FechaVencimiento   *time.Time       `json:"fecha_vencimiento"`
	Estado             string           `json:"estado"`
	AgenteID           *string          `json:"agente_id"`
	Clientes           RelacionCliente  `json:"clientes"`
	Productos          RelacionProducto `json:"productos"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoDetalleResponse struct {
	ProductoID         string          `json:"producto_id"`
	Nombre             string          `json:"nombre"`
	Categoria          string          `json:"categoria"`
	Ramo               string          `json:"ramo"`
	Aseguradora        string          `json:"aseguradora"`
	PrimaMensual       decimal.Decimal `json:"prima_mensual"`
	SumaAsegurada      decimal.Decimal `json:"suma_asegurada"`
	PorcentajeComision decimal.Decimal `json:"porcentaje_comision"`
	ComisionMensual    decimal.Decimal `json:"comision_mensual"`
	ComisionAnual      decimal.Decimal `json:"comision_anual"`
	Legacy             bool            `json:"legacy"`
}

type TotalesResponse struct {
	PrimaTotal         decimal.Decimal `json:"prima_total"`
	SumaAseguradaTotal decimal.Decimal `json:"suma_asegurada_total"`
	ComisionAgente     decimal.Decimal `json:"comision_agente"`
	ComisionAnual      decimal.Decimal `json:"comision_anual"`
}

type CotizacionResponse struct {
	Productos []ProductoDetalleResponse `json:"productos"`
	Totales   TotalesResponse           `json:"totales"`
	Omitidos  int                       `json:"omitidos"`
}

type PolizaResponse struct {
	ID               string                    `json:"id"`
	NumeroPoliza     *string                   `json:"numero_poliza"`
	ClienteID        string                    `json:"cliente_id"`
	ClienteNombre    string                    `json:"cliente_nombre,omitempty"`
	ProductoID       *string                   `json:"producto_id"`
	Productos        []ProductoDetalleResponse `json:"productos"`
	Totales          TotalesResponse           `json:"totales"`
	FechaEmision     *time.Time                `json:"fecha_emision"`
	FechaVencimiento *time.Time                `json:"fecha_vencimiento"`
	Estado           string                    `json:"estado"`
	AgenteID         *string                   `json:"agente_id"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type ImportarResultado struct {
	Importados int               `json:"importados"`
	Omitidos   int               `json:"omitidos"`
	Errores    map[string]string `json:"errores,omitempty"`
}
