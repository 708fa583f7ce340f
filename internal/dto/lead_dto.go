package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type GuardarLeadRequest struct {
	Nombre   string  `json:"nombre"    validate:"required,min=2,max=150"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Telefono *string `json:"telefono"  validate:"omitempty,max=30"`
	Fuente   string  `json:"fuente"    validate:"omitempty,max=50"`
	Etapa    string  `json:"etapa"     validate:"omitempty,max=40"`
	Notas    *string `json:"notas"`
	AgenteID *string `json:"agente_id" validate:"omitempty,uuid"`
}

type MoverLeadRequest struct {
	Etapa string `json:"etapa" validate:"required"`
}

// LeadImportRow is one record of a bulk import. Etapa is free text; unknown
// values land in NUEVO. Rows without a name are skipped and reported.
type LeadImportRow struct {
	Nombre   string  `json:"nombre"`
	Email    *string `json:"email"`
	Telefono *string `json:"telefono"`
	Fuente   string  `json:"fuente"`
	Etapa    string  `json:"etapa"`
	Notas    *string `json:"notas"`
}

type ImportarLeadsRequest struct {
	Leads []LeadImportRow `json:"leads" validate:"required,min=1,max=5000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LeadResponse struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     *string   `json:"email"`
	Telefono  *string   `json:"telefono"`
	Fuente    string    `json:"fuente"`
	Etapa     string    `json:"etapa"`
	Notas     *string   `json:"notas"`
	AgenteID  *string   `json:"agente_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ColumnaResponse struct {
	Etapa string         `json:"etapa"`
	Leads []LeadResponse `json:"leads"`
}

type PipelineResponse struct {
	Columnas []ColumnaResponse `json:"columnas"`
}

// GuardarLeadResponse reports the saved lead and, when the save promoted it,
// the client that was created or already existed.
type GuardarLeadResponse struct {
	Lead    LeadResponse     `json:"lead"`
	Cliente *ClienteResponse `json:"cliente,omitempty"`
}
