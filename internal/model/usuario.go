package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAgente = "agente"
	RolAdmin  = "admin"
)

// Usuario stores agents and administrators (the "profiles" of the CRM).
// Rol: "agente" | "admin"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	Telefono     *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
