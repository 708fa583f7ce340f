package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ComisionQuery struct {
	Mes      int    `form:"mes"       validate:"omitempty,min=1,max=12"`
	Anio     int    `form:"anio"      validate:"omitempty,min=2000,max=2100"`
	AgenteID string `form:"agente_id" validate:"omitempty,uuid"`
}

type ReporteComisionRequest struct {
	Mes      int     `json:"mes"       validate:"required,min=1,max=12"`
	Anio     int     `json:"anio"      validate:"required,min=2000,max=2100"`
	AgenteID *string `json:"agente_id" validate:"omitempty,uuid"`
	Email    string  `json:"email"     validate:"required,email"`
}

type ComisionPolizaResponse struct {
	PolizaID        string          `json:"poliza_id"`
	NumeroPoliza    *string         `json:"numero_poliza"`
	ClienteNombre   string          `json:"cliente_nombre"`
	FechaEfectiva   time.Time       `json:"fecha_efectiva"`
	PrimaTotal      decimal.Decimal `json:"prima_total"`
	ComisionMensual decimal.Decimal `json:"comision_mensual"`
	ComisionAnual   decimal.Decimal `json:"comision_anual"`
}

type ComisionReporteResponse struct {
	Mes             int                      `json:"mes"`
	Anio            int                      `json:"anio"`
	AgenteID        *string                  `json:"agente_id"`
	AgenteNombre    string                   `json:"agente_nombre,omitempty"`
	Polizas         []ComisionPolizaResponse `json:"polizas"`
	PrimaTotal      decimal.Decimal          `json:"prima_total"`
	ComisionMensual decimal.Decimal          `json:"comision_mensual"`
	ComisionAnual   decimal.Decimal          `json:"comision_anual"`
}

type ReporteEncoladoResponse struct {
	Encolado bool   `json:"encolado"`
	Mensaje  string `json:"mensaje"`
}

// ReporteComisionJob is the payload queued for the report worker.
type ReporteComisionJob struct {
	Mes           int     `json:"mes"`
	Anio          int     `json:"anio"`
	AgenteID      *string `json:"agente_id"`
	Email         string  `json:"email"`
	SolicitadoPor string  `json:"solicitado_por"`
}
