package worker

// reporte_worker.go renders commission reports queued by POST
// /v1/comisiones/reporte into a PDF and queues the e-mail that carries it.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crmseguros/internal/dto"
	"crmseguros/internal/infra"
	"crmseguros/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailEncolador queues the delivery of a rendered report.
type EmailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReporteWorker struct {
	comisiones  service.ComisionService
	emails      EmailEncolador
	storagePath string
	render      func(*dto.ComisionReporteResponse, string) (string, error)
	backoff     time.Duration
}

func NewReporteWorker(comisiones service.ComisionService, emails EmailEncolador, storagePath string) *ReporteWorker {
	return &ReporteWorker{
		comisiones:  comisiones,
		emails:      emails,
		storagePath: storagePath,
		render:      infra.GenerateComisionPDF,
		backoff:     time.Second,
	}
}

func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.ReporteComisionJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("reporte_worker: invalid payload: %w", err)
	}
	var agenteID *uuid.UUID
	if job.AgenteID != nil {
		id, err := uuid.Parse(*job.AgenteID)
		if err != nil {
			return fmt.Errorf("reporte_worker: invalid agente_id: %w", err)
		}
		agenteID = &id
	}

	var pdfPath string
	err := withRetry(ctx, maxAttempts, w.backoff, func(attempt int) error {
		rep, err := w.comisiones.Generar(ctx, job.Mes, job.Anio, agenteID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("reporte_worker: report query failed")
			return err
		}
		pdfPath, err = w.render(rep, w.storagePath)
		return err
	})
	if err != nil {
		log.Error().Err(err).Int("mes", job.Mes).Int("anio", job.Anio).Msg("reporte_worker: giving up")
		return err
	}

	email := EmailJobPayload{
		ToEmail: job.Email,
		Subject: fmt.Sprintf("Reporte de comisiones %02d/%d", job.Mes, job.Anio),
		Body:    "Adjuntamos el reporte de comisiones solicitado.",
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, email); err != nil {
		return fmt.Errorf("reporte_worker: enqueue email: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("to", job.Email).Msg("reporte_worker: report rendered")
	return nil
}
