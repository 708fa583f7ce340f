// Package session carries the caller identity every service call is scoped by.
package session

import (
	"crmseguros/internal/model"

	"github.com/google/uuid"
)

// Session is built once per request from the access token.
type Session struct {
	UsuarioID uuid.UUID
	Nombre    string
	Rol       string
}

func (s Session) EsAdmin() bool { return s.Rol == model.RolAdmin }

// AgenteScope returns the agent id rows must belong to, or nil when the caller
// sees every agent's rows.
func (s Session) AgenteScope() *uuid.UUID {
	if s.EsAdmin() {
		return nil
	}
	id := s.UsuarioID
	return &id
}

// PuedeVer reports whether a row owned by agenteID is visible to the caller.
// Rows without an owner are visible to admins only.
func (s Session) PuedeVer(agenteID *uuid.UUID) bool {
	if s.EsAdmin() {
		return true
	}
	return agenteID != nil && *agenteID == s.UsuarioID
}
