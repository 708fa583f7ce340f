package worker

// email_worker.go sends report e-mails from QueueEmail, retrying up to
// maxAttempts times before the job goes to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Sender delivers one e-mail. *infra.Mailer implements it.
type Sender interface {
	SendReporte(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	sender  Sender
	backoff time.Duration
}

func NewEmailWorker(sender Sender) *EmailWorker {
	return &EmailWorker{sender: sender, backoff: time.Second}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		return errors.New("email_worker: empty to_email")
	}

	err := withRetry(ctx, maxAttempts, w.backoff, func(attempt int) error {
		err := w.sender.SendReporte(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: giving up")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: sent")
	return nil
}
