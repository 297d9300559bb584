package worker

import (
	"context"
	"encoding/json"
	"time"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAudit = "jobs:audit"
	QueueEmail = "jobs:email"

	// MaxJobAttempts is the retry budget before a job moves to the DLQ.
	MaxJobAttempts = 5
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error triggers a retry with
// the attempt counter bumped; exhausting the budget moves the job to the DLQ.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// AuditJobPayload carries a stock audit record whose synchronous insert
// failed. The audit worker retries the write.
type AuditJobPayload struct {
	ItemID           string  `json:"item_id"`
	PreviousQuantity string  `json:"previous_quantity"`
	NewQuantity      string  `json:"new_quantity"`
	Reason           string  `json:"reason"`
	Notes            *string `json:"notes,omitempty"`
	CreatedBy        *string `json:"created_by,omitempty"`
	RecordedAt       string  `json:"recorded_at"` // ISO 8601
}

// EmailJobPayload asks for an invoice email to be sent.
type EmailJobPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAudit queues a failed audit write for retry. Satisfies the
// inventory service's AuditQueue.
func (d *Dispatcher) EnqueueAudit(ctx context.Context, adj *model.InventoryAdjustment) error {
	payload := AuditJobPayload{
		ItemID:           adj.ItemID.String(),
		PreviousQuantity: adj.PreviousQuantity.String(),
		NewQuantity:      adj.NewQuantity.String(),
		Reason:           adj.Reason,
		Notes:            adj.Notes,
		CreatedBy:        adj.CreatedBy,
		RecordedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	return d.enqueue(ctx, QueueAudit, "audit", payload)
}

// EnqueueInvoiceEmail queues an invoice email. Satisfies the sales service's
// MailQueue.
func (d *Dispatcher) EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID) error {
	return d.enqueue(ctx, QueueEmail, "email", EmailJobPayload{InvoiceID: invoiceID.String()})
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

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	queues := []string{QueueAudit, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= MaxJobAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		encoded, merr := json.Marshal(job)
		if merr != nil {
			log.Error().Err(merr).Str("type", job.Type).Msg("failed to re-encode job for retry")
			return
		}
		if perr := rdb.LPush(ctx, queue, encoded).Err(); perr != nil {
			log.Error().Err(perr).Str("queue", queue).Msg("failed to requeue job")
			return
		}
		log.Warn().
			Str("type", job.Type).
			Str("queue", queue).
			Int("attempts", job.Attempts).
			Err(err).
			Msg("job failed, requeued")
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}
