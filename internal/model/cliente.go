package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is created when a lead reaches the won stage. LeadID is unique so a
// lead is promoted at most once.
type Cliente struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string    `gorm:"not null"`
	Email           *string
	Telefono        *string
	FechaNacimiento *time.Time `gorm:"type:date"`
	Direccion       *string
	Ocupacion       *string
	LeadID          *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	AgenteID        *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Cliente) TableName() string { return "clientes" }
