package dto

import "github.com/shopspring/decimal"

type MetaQuery struct {
	Mes      int    `form:"mes"       validate:"omitempty,min=1,max=12"`
	Anio     int    `form:"anio"      validate:"omitempty,min=2000,max=2100"`
	AgenteID string `form:"agente_id" validate:"omitempty,uuid"`
}

type GuardarMetaRequest struct {
	Mes       int             `json:"mes"        validate:"required,min=1,max=12"`
	Anio      int             `json:"anio"       validate:"required,min=2000,max=2100"`
	AgenteID  *string         `json:"agente_id"  validate:"omitempty,uuid"`
	MetaVida  decimal.Decimal `json:"meta_vida"  validate:"min=0"`
	MetaAP    decimal.Decimal `json:"meta_ap"    validate:"min=0"`
	MetaSalud decimal.Decimal `json:"meta_salud" validate:"min=0"`
}

type MetaResponse struct {
	Mes       int             `json:"mes"`
	Anio      int             `json:"anio"`
	AgenteID  *string         `json:"agente_id"`
	MetaVida  decimal.Decimal `json:"meta_vida"`
	MetaAP    decimal.Decimal `json:"meta_ap"`
	MetaSalud decimal.Decimal `json:"meta_salud"`
	// Origen: "agente", "global" or "default" (configured fallback).
	Origen string `json:"origen"`
}
