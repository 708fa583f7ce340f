package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Estados de póliza.
const (
	PolizaActiva        = "ACTIVA"
	PolizaPendientePago = "PENDIENTE PAGO"
	PolizaCancelada     = "CANCELADA"
	PolizaVencida       = "VENCIDA"
)

// ProductoDetalle is one product line of a policy. Name, category, ramo, insurer
// and commission percentage are copied from the catalog when the line is added
// and do not follow later catalog edits.
type ProductoDetalle struct {
	ProductoID         uuid.UUID       `json:"producto_id"`
	Nombre             string          `json:"nombre"`
	Categoria          string          `json:"categoria"`
	Ramo               Ramo            `json:"ramo,omitempty"`
	Aseguradora        string          `json:"aseguradora"`
	PrimaMensual       decimal.Decimal `json:"prima_mensual"`
	SumaAsegurada      decimal.Decimal `json:"suma_asegurada"`
	PorcentajeComision decimal.Decimal `json:"porcentaje_comision"`
	// ComisionGenerada is the monthly commission of the line.
	ComisionGenerada decimal.Decimal `json:"comision_generada"`
	// Legacy marks a line rebuilt from a single-product policy; its percentage is unknown.
	Legacy bool `json:"legacy,omitempty"`
}

// ComisionAnual is the yearly estimate of the line.
func (d ProductoDetalle) ComisionAnual() decimal.Decimal {
	return d.ComisionGenerada.Mul(decimal.NewFromInt(12))
}

// Poliza stores an issued policy.
// ProductoID is the legacy single-product reference; for multi-product policies it
// holds ProductosDetalle[0].ProductoID.
// PrimaTotal, SumaAseguradaTotal and ComisionAgente are always derived from
// ProductosDetalle and never edited on their own.
type Poliza struct {
	ID                 uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroPoliza       *string                              `gorm:"type:varchar(50)"`
	ClienteID          uuid.UUID                            `gorm:"type:uuid;index;not null"`
	ProductoID         *uuid.UUID                           `gorm:"type:uuid;index"`
	ProductosDetalle   datatypes.JSONSlice[ProductoDetalle] `gorm:"type:jsonb"`
	PrimaTotal         decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0"`
	SumaAseguradaTotal decimal.Decimal                      `gorm:"type:decimal(14,2);not null;default:0"`
	ComisionAgente     decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0"`
	FechaEmision       *time.Time                           `gorm:"type:date"`
	FechaVencimiento   *time.Time                           `gorm:"type:date"`
	Estado             string                               `gorm:"type:varchar(20);not null;default:'PENDIENTE PAGO'"`
	AgenteID           *uuid.UUID                           `gorm:"type:uuid;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Poliza) TableName() string { return "polizas" }

// FechaEfectiva is the issue date, or the creation date when no issue date was recorded.
func (p Poliza) FechaEfectiva() time.Time {
	if p.FechaEmision != nil {
		return *p.FechaEmision
	}
	return p.CreatedAt
}
