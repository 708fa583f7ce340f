package dto

import "time"

type ActualizarClienteRequest struct {
	Nombre          *string    `json:"nombre"           validate:"omitempty,min=2,max=150"`
	Email           *string    `json:"email"            validate:"omitempty,email"`
	Telefono        *string    `json:"telefono"         validate:"omitempty,max=30"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento"`
	Direccion       *string    `json:"direccion"        validate:"omitempty,max=250"`
	Ocupacion       *string    `json:"ocupacion"        validate:"omitempty,max=100"`
	AgenteID        *string    `json:"agente_id"        validate:"omitempty,uuid"`
}

type ClienteResponse struct {
	ID              string     `json:"id"`
	Nombre          string     `json:"nombre"`
	Email           *string    `json:"email"`
	Telefono        *string    `json:"telefono"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento"`
	Direccion       *string    `json:"direccion"`
	Ocupacion       *string    `json:"ocupacion"`
	LeadID          *string    `json:"lead_id"`
	AgenteID        *string    `json:"agente_id"`
	CreatedAt       time.Time  `json:"created_at"`
}
