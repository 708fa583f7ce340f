package service

import (
	"context"
	"errors"
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Where a goal came from.
const (
	OrigenAgente  = "agente"
	OrigenGlobal  = "global"
	OrigenDefault = "default"
)

type MetaService interface {
	Obtener(ctx context.Context, sess session.Session, q dto.MetaQuery) (*dto.MetaResponse, error)
	// Guardar upserts a goal. Only admins reach it (enforced by the router).
	Guardar(ctx context.Context, req dto.GuardarMetaRequest) (*dto.MetaResponse, error)
	// Vigente resolves the goal in force: the agent's own, else the global one,
	// else the configured defaults.
	Vigente(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (model.MetaMensual, string, error)
}

type metaService struct {
	repo     repository.MetaRepository
	defaults model.MetaMensual
}

func NewMetaService(repo repository.MetaRepository, cfg *config.Config) MetaService {
	return &metaService{
		repo: repo,
		defaults: model.MetaMensual{
			MetaVida:  decimal.NewFromFloat(cfg.MetaVidaDefault),
			MetaAP:    decimal.NewFromFloat(cfg.MetaAPDefault),
			MetaSalud: decimal.NewFromFloat(cfg.MetaSaludDefault),
		},
	}
}

// mesAnio fills missing month/year with the current ones.
func mesAnio(mes, anio int, now time.Time) (int, int) {
	if mes == 0 {
		mes = int(now.Month())
	}
	if anio == 0 {
		anio = now.Year()
	}
	return mes, anio
}

func mapMeta(m model.MetaMensual, origen string) dto.MetaResponse {
	return dto.MetaResponse{
		Mes:       m.Mes,
		Anio:      m.Anio,
		AgenteID:  uuidStr(m.AgenteID),
		MetaVida:  m.MetaVida,
		MetaAP:    m.MetaAP,
		MetaSalud: m.MetaSalud,
		Origen:    origen,
	}
}

func (s *metaService) Vigente(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (model.MetaMensual, string, error) {
	if agenteID != nil {
		m, err := s.repo.Get(ctx, mes, anio, agenteID)
		if err == nil {
			return *m, OrigenAgente, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return model.MetaMensual{}, "", err
		}
	}
	m, err := s.repo.Get(ctx, mes, anio, nil)
	if err == nil {
		return *m, OrigenGlobal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MetaMensual{}, "", err
	}
	d := s.defaults
	d.Mes, d.Anio, d.AgenteID = mes, anio, agenteID
	return d, OrigenDefault, nil
}

func (s *metaService) Obtener(ctx context.Context, sess session.Session, q dto.MetaQuery) (*dto.MetaResponse, error) {
	mes, anio := mesAnio(q.Mes, q.Anio, time.Now())
	agenteID := sess.AgenteScope()
	if sess.EsAdmin() && q.AgenteID != "" {
		aid, err := uuid.Parse(q.AgenteID)
		if err != nil {
			return nil, invalida("agente_id")
		}
		agenteID = &aid
	}
	m, origen, err := s.Vigente(ctx, mes, anio, agenteID)
	if err != nil {
		return nil, err
	}
	resp := mapMeta(m, origen)
	return &resp, nil
}

func (s *metaService) Guardar(ctx context.Context, req dto.GuardarMetaRequest) (*dto.MetaResponse, error) {
	agenteID, err := parseOpcional(req.AgenteID)
	if err != nil {
		return nil, invalida("agente_id")
	}
	m := &model.MetaMensual{
		Mes:       req.Mes,
		Anio:      req.Anio,
		AgenteID:  agenteID,
		MetaVida:  req.MetaVida,
		MetaAP:    req.MetaAP,
		MetaSalud: req.MetaSalud,
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	origen := OrigenGlobal
	if agenteID != nil {
		origen = OrigenAgente
	}
	resp := mapMeta(*m, origen)
	return &resp, nil
}
