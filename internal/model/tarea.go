package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos y estados de tarea.
const (
	TareaLlamada  = "LLAMADA"
	TareaReunion  = "REUNION"
	TareaWhatsApp = "WHATSAPP"
	TareaEmail    = "EMAIL"
	TareaOtro     = "OTRO"

	TareaPendiente  = "PENDIENTE"
	TareaCompletada = "COMPLETADA"
)

// Tarea is a follow-up activity of an agent, optionally tied to a lead or client.
type Tarea struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Titulo           string    `gorm:"not null"`
	Descripcion      *string
	Tipo             string     `gorm:"type:varchar(20);not null"`
	Estado           string     `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	FechaVencimiento *time.Time `gorm:"index"`
	LeadID           *uuid.UUID `gorm:"type:uuid;index"`
	ClienteID        *uuid.UUID `gorm:"type:uuid;index"`
	AgenteID         *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Tarea) TableName() string { return "tareas" }
