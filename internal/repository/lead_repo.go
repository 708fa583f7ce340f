package repository

import (
	"context"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadRepository interface {
	// Save creates the lead when ID is unset and replaces the full record otherwise.
	Save(ctx context.Context, l *model.Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	// List returns leads owned by agenteID, or all leads when nil.
	List(ctx context.Context, agenteID *uuid.UUID) ([]model.Lead, error)
	CreateBatch(ctx context.Context, leads []model.Lead) error
}

type leadRepo struct{ db *gorm.DB }

func NewLeadRepository(db *gorm.DB) LeadRepository { return &leadRepo{db: db} }

func (r *leadRepo) Save(ctx context.Context, l *model.Lead) error {
	if l.ID == uuid.Nil {
		return r.db.WithContext(ctx).Create(l).Error
	}
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *leadRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var l model.Lead
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *leadRepo) List(ctx context.Context, agenteID *uuid.UUID) ([]model.Lead, error) {
	var leads []model.Lead
	q := r.db.WithContext(ctx)
	if agenteID != nil {
		q = q.Where("agente_id = ?", *agenteID)
	}
	err := q.Order("created_at DESC").Find(&leads).Error
	return leads, err
}

func (r *leadRepo) CreateBatch(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(leads, 500).Error
	})
}
