package worker

import (
	"context"
	"encoding/json"
	"time"

	"crmseguros/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"
	QueueEmail    = "jobs:email"
)

// Job types.
const (
	JobReporteComision = "reporte_comision"
	JobEmail           = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReporteComision pushes a commission report job.
func (d *Dispatcher) EnqueueReporteComision(ctx context.Context, job dto.ReporteComisionJob) error {
	return d.enqueue(ctx, QueueReportes, JobReporteComision, job)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Processor handles the payload of one job type. A returned error is final:
// retries happen inside the processor.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processors map[string]Processor) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, processors)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, processors map[string]Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, Queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, processors, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, processors map[string]Processor, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "desconocido", json.RawMessage(raw), "payload ilegible", 0)
		return
	}
	p, ok := processors[job.Type]
	if !ok {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no processor for job type")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "tipo de job desconocido", 0)
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := p.Process(ctx, job.Payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), maxAttempts)
	}
}

// maxAttempts bounds the retries of every processor.
const maxAttempts = 3

// withRetry calls fn up to attempts times with exponential backoff.
// With base 1s: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
