package repository

import (
	"context"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TareaFilter narrows List. AgenteID nil means every agent.
type TareaFilter struct {
	AgenteID  *uuid.UUID
	Estado    string
	Tipo      string
	LeadID    *uuid.UUID
	ClienteID *uuid.UUID
}

type TareaRepository interface {
	Create(ctx context.Context, t *model.Tarea) error
	Update(ctx context.Context, t *model.Tarea) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tarea, error)
	List(ctx context.Context, filter TareaFilter) ([]model.Tarea, error)
}

type tareaRepo struct{ db *gorm.DB }

func NewTareaRepository(db *gorm.DB) TareaRepository { return &tareaRepo{db: db} }

func (r *tareaRepo) Create(ctx context.Context, t *model.Tarea) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tareaRepo) Update(ctx context.Context, t *model.Tarea) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tareaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tarea, error) {
	var t model.Tarea
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *tareaRepo) List(ctx context.Context, filter TareaFilter) ([]model.Tarea, error) {
	var tareas []model.Tarea
	q := r.db.WithContext(ctx)
	if filter.AgenteID != nil {
		q = q.Where("agente_id = ?", *filter.AgenteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.LeadID != nil {
		q = q.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	err := q.Order("fecha_vencimiento ASC NULLS LAST, created_at DESC").Find(&tareas).Error
	return tareas, err
}
