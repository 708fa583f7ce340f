package repository

import (
	"context"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClienteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByLeadID(ctx context.Context, leadID uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, agenteID *uuid.UUID) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	// PromoverLead creates the client of a won lead. Calling it again for the same
	// lead returns the client created the first time.
	PromoverLead(ctx context.Context, l *model.Lead) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) FindByLeadID(ctx context.Context, leadID uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "lead_id = ?", leadID).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, agenteID *uuid.UUID) ([]model.Cliente, error) {
	var clientes []model.Cliente
	q := r.db.WithContext(ctx)
	if agenteID != nil {
		q = q.Where("agente_id = ?", *agenteID)
	}
	err := q.Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) PromoverLead(ctx context.Context, l *model.Lead) (*model.Cliente, error) {
	leadID := l.ID
	c := &model.Cliente{
		Nombre:   l.Nombre,
		Email:    l.Email,
		Telefono: l.Telefono,
		LeadID:   &leadID,
		AgenteID: l.AgenteID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lead_id"}},
			DoNothing: true,
		}).Create(c)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		// Already promoted: hand back the existing client.
		return tx.First(c, "lead_id = ?", leadID).Error
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
