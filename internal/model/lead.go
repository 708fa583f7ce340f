package model

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospect moving through the sales pipeline.
// Etapa always holds a canonical stage name (see package pipeline).
type Lead struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string     `gorm:"not null"`
	Email     *string    `gorm:"index"`
	Telefono  *string
	Fuente    string     `gorm:"type:varchar(50);not null;default:'manual'"`
	Etapa     string     `gorm:"type:varchar(30);index;not null"`
	Notas     *string
	AgenteID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Lead) TableName() string { return "leads" }
