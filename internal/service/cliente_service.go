package service

import (
	"context"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
)

type ClienteService interface {
	Listar(ctx context.Context, sess session.Session) ([]dto.ClienteResponse, error)
	Obtener(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func mapCliente(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:              c.ID.String(),
		Nombre:          c.Nombre,
		Email:           c.Email,
		Telefono:        c.Telefono,
		FechaNacimiento: c.FechaNacimiento,
		Direccion:       c.Direccion,
		Ocupacion:       c.Ocupacion,
		LeadID:          uuidStr(c.LeadID),
		AgenteID:        uuidStr(c.AgenteID),
		CreatedAt:       c.CreatedAt,
	}
}

func (s *clienteService) Listar(ctx context.Context, sess session.Session) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, sess.AgenteScope())
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		resp[i] = mapCliente(&clientes[i])
	}
	return resp, nil
}

func (s *clienteService) Obtener(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "cliente")
	}
	if !sess.PuedeVer(c.AgenteID) {
		return nil, ErrSinPermiso
	}
	resp := mapCliente(c)
	return &resp, nil
}

// Actualizar edits a client. Only admins reach it (enforced by the router).
func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "cliente")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.FechaNacimiento != nil {
		c.FechaNacimiento = req.FechaNacimiento
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.Ocupacion != nil {
		c.Ocupacion = req.Ocupacion
	}
	if req.AgenteID != nil {
		aid, err := uuid.Parse(*req.AgenteID)
		if err != nil {
			return nil, invalida("agente_id")
		}
		c.AgenteID = &aid
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := mapCliente(c)
	return &resp, nil
}
