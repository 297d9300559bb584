package worker

// retry_cron.go
// Background goroutine that periodically re-drains the audit dead letter
// queue back onto the live queue. Audit records must eventually land in the
// database; email DLQ entries stay put for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redrainTickInterval = 5 * time.Minute
	redrainBatchSize    = 10
)

// StartRetryCron launches a goroutine that ticks every few minutes and moves
// a bounded batch of audit DLQ entries back to QueueAudit with the attempt
// counter reset. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(redrainTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				redrainAuditDLQ(ctx, rdb)
			}
		}
	}()
}

func redrainAuditDLQ(ctx context.Context, rdb *redis.Client) {
	dlqKey := DLQPrefix + QueueAudit
	moved := 0

	for i := 0; i < redrainBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty or unavailable
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: corrupt DLQ entry dropped")
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to encode job")
			continue
		}
		if err := rdb.LPush(ctx, QueueAudit, encoded).Err(); err != nil {
			// Put the entry back so it is not lost.
			_ = rdb.LPush(ctx, dlqKey, raw).Err()
			log.Error().Err(err).Msg("retry_cron: requeue failed, entry returned to DLQ")
			break
		}
		moved++
	}

	if moved > 0 {
		log.Info().Int("count", moved).Msg("retry_cron: audit DLQ entries requeued")
	}
}
