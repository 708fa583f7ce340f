package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre             string          `json:"nombre"              validate:"required,min=2,max=120"`
	Aseguradora        string          `json:"aseguradora"         validate:"required,max=120"`
	Categoria          string          `json:"categoria"           validate:"omitempty,max=60"`
	Ramo               *string         `json:"ramo"                validate:"omitempty,oneof=vida ap salud"`
	PorcentajeComision decimal.Decimal `json:"porcentaje_comision" validate:"min=0,max=100"`
}

type ActualizarProductoRequest struct {
	Nombre             *string          `json:"nombre"              validate:"omitempty,min=2,max=120"`
	Aseguradora        *string          `json:"aseguradora"         validate:"omitempty,max=120"`
	Categoria          *string          `json:"categoria"           validate:"omitempty,max=60"`
	Ramo               *string          `json:"ramo"                validate:"omitempty,oneof=vida ap salud"`
	PorcentajeComision *decimal.Decimal `json:"porcentaje_comision" validate:"omitempty,min=0,max=100"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductoFilter.Activo: "true" (default) active only, "false" inactive only, "all" everything.
type ProductoFilter struct {
	Activo      string `form:"activo"`
	Nombre      string `form:"nombre"`
	Aseguradora string `form:"aseguradora"`
	Ramo        string `form:"ramo" validate:"omitempty,oneof=vida ap salud"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                 string          `json:"id"`
	Nombre             string          `json:"nombre"`
	Aseguradora        string          `json:"aseguradora"`
	Categoria          string          `json:"categoria"`
	Ramo               string          `json:"ramo"`
	PorcentajeComision decimal.Decimal `json:"porcentaje_comision"`
	Activo             bool            `json:"activo"`
}
