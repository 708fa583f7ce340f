package repository

import (
	"context"
	"time"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PolizaFilter narrows List. AgenteID nil means every agent.
type PolizaFilter struct {
	AgenteID  *uuid.UUID
	ClienteID *uuid.UUID
	Estado    string
}

type PolizaRepository interface {
	// Save creates the policy when ID is unset and replaces it otherwise.
	Save(ctx context.Context, p *model.Poliza) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Poliza, error)
	List(ctx context.Context, filter PolizaFilter) ([]model.Poliza, error)
	// ListActivasEntre returns ACTIVA policies whose issue date (or creation date
	// when unset) falls in [desde, hasta).
	ListActivasEntre(ctx context.Context, agenteID *uuid.UUID, desde, hasta time.Time) ([]model.Poliza, error)
	// ImportarLegacy inserts legacy rows, skipping ids that already exist.
	ImportarLegacy(ctx context.Context, polizas []model.Poliza) (int64, error)
}

type polizaRepo struct{ db *gorm.DB }

func NewPolizaRepository(db *gorm.DB) PolizaRepository { return &polizaRepo{db: db} }

func (r *polizaRepo) Save(ctx context.Context, p *model.Poliza) error {
	q := r.db.WithContext(ctx).Omit(clause.Associations)
	if p.ID == uuid.Nil {
		return q.Create(p).Error
	}
	return q.Save(p).Error
}

func (r *polizaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Poliza, error) {
	var p model.Poliza
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Producto").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *polizaRepo) List(ctx context.Context, filter PolizaFilter) ([]model.Poliza, error) {
	var polizas []model.Poliza
	q := r.db.WithContext(ctx).Preload("Cliente").Preload("Producto")
	if filter.AgenteID != nil {
		q = q.Where("agente_id = ?", *filter.AgenteID)
	}
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	err := q.Order("created_at DESC").Find(&polizas).Error
	return polizas, err
}

func (r *polizaRepo) ListActivasEntre(ctx context.Context, agenteID *uuid.UUID, desde, hasta time.Time) ([]model.Poliza, error) {
	var polizas []model.Poliza
	q := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Producto").
		Where("estado = ?", model.PolizaActiva).
		Where("COALESCE(fecha_emision, created_at::date) >= ? AND COALESCE(fecha_emision, created_at::date) < ?", desde, hasta)
	if agenteID != nil {
		q = q.Where("agente_id = ?", *agenteID)
	}
	err := q.Order("COALESCE(fecha_emision, created_at::date) ASC").Find(&polizas).Error
	return polizas, err
}

func (r *polizaRepo) ImportarLegacy(ctx context.Context, polizas []model.Poliza) (int64, error) {
	if len(polizas) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		CreateInBatches(polizas, 200)
	return res.RowsAffected, res.Error
}
