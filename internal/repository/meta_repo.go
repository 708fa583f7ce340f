package repository

import (
	"context"
	"errors"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetaRepository interface {
	// Get returns the goal of (mes, anio) for agenteID, or the global goal when
	// agenteID is nil. gorm.ErrRecordNotFound when none is stored.
	Get(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (*model.MetaMensual, error)
	// Save upserts by (agente-or-global, mes, anio).
	Save(ctx context.Context, m *model.MetaMensual) error
}

type metaRepo struct{ db *gorm.DB }

func NewMetaRepository(db *gorm.DB) MetaRepository { return &metaRepo{db: db} }

func scopeMeta(q *gorm.DB, mes, anio int, agenteID *uuid.UUID) *gorm.DB {
	q = q.Where("mes = ? AND anio = ?", mes, anio)
	if agenteID == nil {
		return q.Where("agente_id IS NULL")
	}
	return q.Where("agente_id = ?", *agenteID)
}

func (r *metaRepo) Get(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (*model.MetaMensual, error) {
	var m model.MetaMensual
	err := scopeMeta(r.db.WithContext(ctx), mes, anio, agenteID).First(&m).Error
	return &m, err
}

func (r *metaRepo) Save(ctx context.Context, m *model.MetaMensual) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var actual model.MetaMensual
		err := scopeMeta(tx, m.Mes, m.Anio, m.AgenteID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&actual).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(m).Error
		case err != nil:
			return err
		}
		m.ID = actual.ID
		m.CreatedAt = actual.CreatedAt
		return tx.Save(m).Error
	})
}
