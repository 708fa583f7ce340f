package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetaMensual holds the sales targets of a month. AgenteID nil means the global
// (team) goal.
type MetaMensual struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Mes       int             `gorm:"not null"`
	Anio      int             `gorm:"not null"`
	AgenteID  *uuid.UUID      `gorm:"type:uuid"`
	MetaVida  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MetaAP    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:meta_ap"`
	MetaSalud decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MetaMensual) TableName() string { return "metas_mensuales" }

// Meta returns the target of one ramo.
func (m MetaMensual) Meta(r Ramo) decimal.Decimal {
	switch r {
	case RamoVida:
		return m.MetaVida
	case RamoAP:
		return m.MetaAP
	case RamoSalud:
		return m.MetaSalud
	}
	return decimal.Zero
}

// Total is the sum of the three targets.
func (m MetaMensual) Total() decimal.Decimal {
	return m.MetaVida.Add(m.MetaAP).Add(m.MetaSalud)
}
