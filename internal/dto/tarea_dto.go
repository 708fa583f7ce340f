package dto

import "time"

type GuardarTareaRequest struct {
	Titulo           string     `json:"titulo"            validate:"required,min=2,max=200"`
	Descripcion      *string    `json:"descripcion"`
	Tipo             string     `json:"tipo"              validate:"required,oneof=LLAMADA REUNION WHATSAPP EMAIL OTRO"`
	Estado           string     `json:"estado"            validate:"omitempty,oneof=PENDIENTE COMPLETADA"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
	LeadID           *string    `json:"lead_id"           validate:"omitempty,uuid"`
	ClienteID        *string    `json:"cliente_id"        validate:"omitempty,uuid"`
	AgenteID         *string    `json:"agente_id"         validate:"omitempty,uuid"`
}

type TareaFilter struct {
	Estado    string `form:"estado"     validate:"omitempty,oneof=PENDIENTE COMPLETADA"`
	Tipo      string `form:"tipo"       validate:"omitempty,oneof=LLAMADA REUNION WHATSAPP EMAIL OTRO"`
	LeadID    string `form:"lead_id"    validate:"omitempty,uuid"`
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
}

type TareaResponse struct {
	ID               string     `json:"id"`
	Titulo           string     `json:"titulo"`
	Descripcion      *string    `json:"descripcion"`
	Tipo             string     `json:"tipo"`
	Estado           string     `json:"estado"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
	LeadID           *string    `json:"lead_id"`
	ClienteID        *string    `json:"cliente_id"`
	AgenteID         *string    `json:"agente_id"`
}
