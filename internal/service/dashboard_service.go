package service

import (
	"context"
	"time"

	"crmseguros/internal/dashboard"
	"crmseguros/internal/dto"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"
)

type DashboardService interface {
	Resumen(ctx context.Context, sess session.Session, q dto.DashboardQuery) (*dashboard.Resumen, error)
}

type dashboardService struct {
	tareas  repository.TareaRepository
	leads   repository.LeadRepository
	polizas repository.PolizaRepository
	metas   MetaService
	now     func() time.Time
}

func NewDashboardService(tareas repository.TareaRepository, leads repository.LeadRepository, polizas repository.PolizaRepository, metas MetaService) DashboardService {
	return &dashboardService{tareas: tareas, leads: leads, polizas: polizas, metas: metas, now: time.Now}
}

// inicioMes returns [first day of mes/anio, first day of the next month) in loc.
func inicioMes(mes, anio int, loc *time.Location) (time.Time, time.Time) {
	desde := time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, loc)
	return desde, desde.AddDate(0, 1, 0)
}

func (s *dashboardService) Resumen(ctx context.Context, sess session.Session, q dto.DashboardQuery) (*dashboard.Resumen, error) {
	ahora := s.now()
	mes, anio := mesAnio(q.Mes, q.Anio, ahora)
	scope := sess.AgenteScope()

	tareas, err := s.tareas.List(ctx, repository.TareaFilter{AgenteID: scope})
	if err != nil {
		return nil, err
	}
	leads, err := s.leads.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	desde, hasta := inicioMes(mes, anio, time.UTC)
	polizas, err := s.polizas.ListActivasEntre(ctx, scope, desde, hasta)
	if err != nil {
		return nil, err
	}
	meta, _, err := s.metas.Vigente(ctx, mes, anio, scope)
	if err != nil {
		return nil, err
	}

	r := dashboard.Resumir(dashboard.Entrada{
		Tareas:  tareas,
		Leads:   leads,
		Polizas: polizas,
		Meta:    meta,
		Mes:     mes,
		Anio:    anio,
		Ahora:   ahora,
	})
	return &r, nil
}
