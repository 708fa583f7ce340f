package worker

// Dead letter queue: one Redis list per source queue, dlq:{queue}. Jobs land
// here when their processor gives up or the envelope cannot be decoded, and
// stay until an admin requeues them.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// Queues lists every queue the pool consumes, in BRPOP priority order.
var Queues = []string{QueueReportes, QueueEmail}

var dlqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jobs_dlq_total",
	Help: "Jobs moved to the dead letter queue, by queue and job type.",
}, []string{"queue", "type"})

// ErrColaDesconocida is returned for a queue name outside Queues.
var ErrColaDesconocida = errors.New("cola desconocida")

// DLQEntry wraps a failed job with what is needed to replay it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a failed job. Push errors are logged; the job is lost then.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("job_type", jobType).Msg("dlq: push failed, job dropped")
		return
	}
	dlqTotal.WithLabelValues(queue, jobType).Inc()
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

func colaValida(queue string) bool {
	for _, q := range Queues {
		if q == queue {
			return true
		}
	}
	return false
}

// ── Admin operations (through the Dispatcher) ────────────────────────────────

// Pendientes returns the DLQ size of every queue.
func (d *Dispatcher) Pendientes(ctx context.Context) (map[string]int64, error) {
	pipe := d.rdb.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(Queues))
	for _, q := range Queues {
		cmds[q] = pipe.LLen(ctx, DLQPrefix+q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(cmds))
	for q, c := range cmds {
		out[q] = c.Val()
	}
	return out, nil
}

// Reencolar moves up to limit parked jobs of queue back to it, oldest first.
// Entries that cannot be decoded stay in the DLQ.
func (d *Dispatcher) Reencolar(ctx context.Context, queue string, limit int) (int, error) {
	if !colaValida(queue) {
		return 0, fmt.Errorf("%w: %s", ErrColaDesconocida, queue)
	}
	key := DLQPrefix + queue
	moved := 0
	for moved < limit {
		raw, err := d.rdb.RPop(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.JobType == "" {
			// Put it back at the head so the loop does not spin on it.
			if perr := d.rdb.LPush(ctx, key, raw).Err(); perr != nil {
				return moved, perr
			}
			log.Warn().Str("queue", queue).Msg("dlq: undecodable entry left in place")
			break
		}
		encoded, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
		if err != nil {
			return moved, err
		}
		if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			_ = d.rdb.RPush(ctx, key, raw).Err()
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("jobs", moved).Msg("dlq: jobs requeued")
	}
	return moved, nil
}
