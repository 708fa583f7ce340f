package service

import (
	"context"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
)

type TareaService interface {
	Listar(ctx context.Context, sess session.Session, filter dto.TareaFilter) ([]dto.TareaResponse, error)
	Crear(ctx context.Context, sess session.Session, req dto.GuardarTareaRequest) (*dto.TareaResponse, error)
	Actualizar(ctx context.Context, sess session.Session, id uuid.UUID, req dto.GuardarTareaRequest) (*dto.TareaResponse, error)
	Completar(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.TareaResponse, error)
}

type tareaService struct {
	repo repository.TareaRepository
}

func NewTareaService(repo repository.TareaRepository) TareaService {
	return &tareaService{repo: repo}
}

func mapTarea(t *model.Tarea) dto.TareaResponse {
	return dto.TareaResponse{
		ID:               t.ID.String(),
		Titulo:           t.Titulo,
		Descripcion:      t.Descripcion,
		Tipo:             t.Tipo,
		Estado:           t.Estado,
		FechaVencimiento: t.FechaVencimiento,
		LeadID:           uuidStr(t.LeadID),
		ClienteID:        uuidStr(t.ClienteID),
		AgenteID:         uuidStr(t.AgenteID),
	}
}

func parseFiltroID(s, campo string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, invalida(campo)
	}
	return &id, nil
}

func (s *tareaService) Listar(ctx context.Context, sess session.Session, filter dto.TareaFilter) ([]dto.TareaResponse, error) {
	f := repository.TareaFilter{AgenteID: sess.AgenteScope(), Estado: filter.Estado, Tipo: filter.Tipo}
	var err error
	if f.LeadID, err = parseFiltroID(filter.LeadID, "lead_id"); err != nil {
		return nil, err
	}
	if f.ClienteID, err = parseFiltroID(filter.ClienteID, "cliente_id"); err != nil {
		return nil, err
	}
	tareas, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TareaResponse, len(tareas))
	for i := range tareas {
		resp[i] = mapTarea(&tareas[i])
	}
	return resp, nil
}

func aplicarTarea(t *model.Tarea, sess session.Session, req dto.GuardarTareaRequest) error {
	t.Titulo = req.Titulo
	t.Descripcion = req.Descripcion
	t.Tipo = req.Tipo
	if req.Estado != "" {
		t.Estado = req.Estado
	}
	if t.Estado == "" {
		t.Estado = model.TareaPendiente
	}
	t.FechaVencimiento = req.FechaVencimiento

	var err error
	if t.LeadID, err = parseOpcional(req.LeadID); err != nil {
		return invalida("lead_id")
	}
	if t.ClienteID, err = parseOpcional(req.ClienteID); err != nil {
		return invalida("cliente_id")
	}
	if sess.EsAdmin() && req.AgenteID != nil {
		aid, err := uuid.Parse(*req.AgenteID)
		if err != nil {
			return invalida("agente_id")
		}
		t.AgenteID = &aid
	}
	return nil
}

func (s *tareaService) Crear(ctx context.Context, sess session.Session, req dto.GuardarTareaRequest) (*dto.TareaResponse, error) {
	owner := sess.UsuarioID
	t := &model.Tarea{AgenteID: &owner}
	if err := aplicarTarea(t, sess, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	resp := mapTarea(t)
	return &resp, nil
}

func (s *tareaService) cargar(ctx context.Context, sess session.Session, id uuid.UUID) (*model.Tarea, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tarea")
	}
	if !sess.PuedeVer(t.AgenteID) {
		return nil, ErrSinPermiso
	}
	return t, nil
}

func (s *tareaService) Actualizar(ctx context.Context, sess session.Session, id uuid.UUID, req dto.GuardarTareaRequest) (*dto.TareaResponse, error) {
	t, err := s.cargar(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := aplicarTarea(t, sess, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	resp := mapTarea(t)
	return &resp, nil
}

func (s *tareaService) Completar(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.TareaResponse, error) {
	t, err := s.cargar(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if t.Estado != model.TareaCompletada {
		t.Estado = model.TareaCompletada
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
	}
	resp := mapTarea(t)
	return &resp, nil
}
