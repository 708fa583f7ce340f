package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmseguros/internal/dto"
	"crmseguros/internal/poliza"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteEncolador queues the PDF rendering of a commission report.
type ReporteEncolador interface {
	EnqueueReporteComision(ctx context.Context, job dto.ReporteComisionJob) error
}

type ComisionService interface {
	// Reporte lists the ACTIVA policies effective in the month with their
	// commission. Agents always get their own report.
	Reporte(ctx context.Context, sess session.Session, q dto.ComisionQuery) (*dto.ComisionReporteResponse, error)
	SolicitarReporte(ctx context.Context, sess session.Session, req dto.ReporteComisionRequest) (*dto.ReporteEncoladoResponse, error)
	// Generar builds a report without session checks; agenteID nil covers every agent.
	Generar(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (*dto.ComisionReporteResponse, error)
}

type comisionService struct {
	polizas  repository.PolizaRepository
	usuarios repository.UsuarioRepository
	cola     ReporteEncolador
}

func NewComisionService(polizas repository.PolizaRepository, usuarios repository.UsuarioRepository, cola ReporteEncolador) ComisionService {
	return &comisionService{polizas: polizas, usuarios: usuarios, cola: cola}
}

// agenteObjetivo resolves whose report is requested.
func agenteObjetivo(sess session.Session, pedido *string) (*uuid.UUID, error) {
	if !sess.EsAdmin() {
		if pedido != nil && *pedido != "" && *pedido != sess.UsuarioID.String() {
			return nil, ErrSinPermiso
		}
		return sess.AgenteScope(), nil
	}
	id, err := parseOpcional(pedido)
	if err != nil {
		return nil, invalida("agente_id")
	}
	return id, nil
}

func (s *comisionService) Reporte(ctx context.Context, sess session.Session, q dto.ComisionQuery) (*dto.ComisionReporteResponse, error) {
	mes, anio := mesAnio(q.Mes, q.Anio, time.Now())
	agenteID, err := agenteObjetivo(sess, &q.AgenteID)
	if err != nil {
		return nil, err
	}
	return s.Generar(ctx, mes, anio, agenteID)
}

func (s *comisionService) Generar(ctx context.Context, mes, anio int, agenteID *uuid.UUID) (*dto.ComisionReporteResponse, error) {
	desde, hasta := inicioMes(mes, anio, time.UTC)
	polizas, err := s.polizas.ListActivasEntre(ctx, agenteID, desde, hasta)
	if err != nil {
		return nil, err
	}

	rep := &dto.ComisionReporteResponse{
		Mes:             mes,
		Anio:            anio,
		AgenteID:        uuidStr(agenteID),
		Polizas:         make([]dto.ComisionPolizaResponse, 0, len(polizas)),
		PrimaTotal:      decimal.Zero,
		ComisionMensual: decimal.Zero,
	}
	if agenteID != nil {
		u, err := s.usuarios.FindByID(ctx, *agenteID)
		switch {
		case err == nil:
			rep.AgenteNombre = u.Nombre
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	for i := range polizas {
		p := &polizas[i]
		t := poliza.CalcularTotales(poliza.ReconciliarLegacy(p)).Redondear()
		fila := dto.ComisionPolizaResponse{
			PolizaID:        p.ID.String(),
			NumeroPoliza:    p.NumeroPoliza,
			FechaEfectiva:   p.FechaEfectiva(),
			PrimaTotal:      t.PrimaTotal,
			ComisionMensual: t.ComisionAgente,
			ComisionAnual:   t.ComisionAgente.Mul(doce),
		}
		if p.Cliente != nil {
			fila.ClienteNombre = p.Cliente.Nombre
		}
		rep.Polizas = append(rep.Polizas, fila)
		rep.PrimaTotal = rep.PrimaTotal.Add(t.PrimaTotal)
		rep.ComisionMensual = rep.ComisionMensual.Add(t.ComisionAgente)
	}
	rep.ComisionAnual = rep.ComisionMensual.Mul(doce)
	return rep, nil
}

func (s *comisionService) SolicitarReporte(ctx context.Context, sess session.Session, req dto.ReporteComisionRequest) (*dto.ReporteEncoladoResponse, error) {
	agenteID, err := agenteObjetivo(sess, req.AgenteID)
	if err != nil {
		return nil, err
	}
	if s.cola == nil {
		return nil, fmt.Errorf("%w: cola de reportes no disponible", ErrServicioExterno)
	}
	job := dto.ReporteComisionJob{
		Mes:           req.Mes,
		Anio:          req.Anio,
		AgenteID:      uuidStr(agenteID),
		Email:         req.Email,
		SolicitadoPor: sess.UsuarioID.String(),
	}
	if err := s.cola.EnqueueReporteComision(ctx, job); err != nil {
		log.Error().Err(err).Str("usuario_id", job.SolicitadoPor).Msg("no se pudo encolar el reporte de comisiones")
		return nil, fmt.Errorf("%w: %w", ErrServicioExterno, err)
	}
	log.Info().Int("mes", req.Mes).Int("anio", req.Anio).Str("email", req.Email).Msg("reporte de comisiones encolado")
	return &dto.ReporteEncoladoResponse{
		Encolado: true,
		Mensaje:  fmt.Sprintf("El reporte %02d/%d se enviará a %s", req.Mes, req.Anio, req.Email),
	}, nil
}
