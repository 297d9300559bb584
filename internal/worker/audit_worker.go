package worker

// audit_worker.go
// Retries stock audit writes that failed synchronously. Audit rows are
// append-only; a retried insert can only duplicate if the original write
// actually landed, which the synchronous path rules out.

import (
	"context"
	"encoding/json"
	"fmt"

	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AuditWorker drains QueueAudit and re-attempts the insert.
type AuditWorker struct {
	adjustments repository.AdjustmentRepository
}

func NewAuditWorker(adjustments repository.AdjustmentRepository) *AuditWorker {
	return &AuditWorker{adjustments: adjustments}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AuditJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}

	itemID, err := uuid.Parse(payload.ItemID)
	if err != nil {
		log.Error().Str("item_id", payload.ItemID).Msg("audit_worker: invalid item_id")
		return nil
	}
	prev, err := decimal.NewFromString(payload.PreviousQuantity)
	if err != nil {
		return fmt.Errorf("audit_worker: bad previous_quantity %q: %w", payload.PreviousQuantity, err)
	}
	next, err := decimal.NewFromString(payload.NewQuantity)
	if err != nil {
		return fmt.Errorf("audit_worker: bad new_quantity %q: %w", payload.NewQuantity, err)
	}

	adj := &model.InventoryAdjustment{
		ItemID:           itemID,
		PreviousQuantity: prev,
		NewQuantity:      next,
		Reason:           payload.Reason,
		Notes:            payload.Notes,
		CreatedBy:        payload.CreatedBy,
	}
	if err := w.adjustments.Create(ctx, adj); err != nil {
		return fmt.Errorf("audit_worker: insert failed: %w", err)
	}
	log.Info().Str("item_id", payload.ItemID).Msg("audit_worker: deferred audit record written")
	return nil
}
