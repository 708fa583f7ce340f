package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ramo is the explicit line-of-business tag of a catalog product.
type Ramo string

const (
	RamoNinguno Ramo = ""
	RamoVida    Ramo = "vida"
	RamoAP      Ramo = "ap"
	RamoSalud   Ramo = "salud"
)

// Ramos lists the buckets used for monthly goals, in display order.
var Ramos = []Ramo{RamoVida, RamoAP, RamoSalud}

func (r Ramo) Valido() bool {
	return r == RamoVida || r == RamoAP || r == RamoSalud
}

// Producto is an entry of the insurance product catalog.
// Ramo is nil for rows created before the column existed; those are classified
// from Categoria text.
type Producto struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre             string          `gorm:"index;not null"`
	Aseguradora        string          `gorm:"not null"`
	Categoria          string          `gorm:"not null;default:'General'"`
	Ramo               *Ramo           `gorm:"type:varchar(10)"`
	PorcentajeComision decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Activo             bool            `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Producto) TableName() string { return "productos" }

// RamoDeclarado returns the explicit ramo or RamoNinguno.
func (p Producto) RamoDeclarado() Ramo {
	if p.Ramo == nil {
		return RamoNinguno
	}
	return *p.Ramo
}
