package service

import (
	"context"
	"errors"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// reasonTransactionTypes maps an adjustment reason onto the stock procedure's
// transaction type. Unknown reasons become a generic adjustment.
var reasonTransactionTypes = map[string]string{
	model.AdjustmentReasonSale:              "sales_order",
	model.AdjustmentReasonPurchaseOrder:     "purchase_order",
	model.AdjustmentReasonCraftCompleted:    "craft_completed",
	model.AdjustmentReasonManufacturingUsed: "manufacturing_used",
}

func transactionTypeFor(reason string) string {
	if t, ok := reasonTransactionTypes[reason]; ok {
		return t
	}
	return "adjustment"
}

// AuditQueue accepts audit records that could not be written synchronously.
// The worker pool drains it and retries the insert.
type AuditQueue interface {
	EnqueueAudit(ctx context.Context, adj *model.InventoryAdjustment) error
}

// InventoryService owns stock mutation, the audit trail, item links and
// low-stock alerts.
type InventoryService struct {
	items       repository.ItemRepository
	adjustments repository.AdjustmentRepository
	auditQueue  AuditQueue
}

func NewInventoryService(items repository.ItemRepository, adjustments repository.AdjustmentRepository, auditQueue AuditQueue) *InventoryService {
	return &InventoryService{items: items, adjustments: adjustments, auditQueue: auditQueue}
}

// AdjustStockParams is the internal entry point used by the order workflows;
// the HTTP layer maps dto.AdjustStockRequest onto it.
type AdjustStockParams struct {
	ItemID        uuid.UUID
	QuantityDelta decimal.Decimal
	Reason        string
	Notes         *string
	ReferenceID   *uuid.UUID
	ReferenceType *string
	CreatedBy     *string
}

// AdjustStock applies a relative stock change with full audit.
//
// The steps run in order, not atomically. The audit write is best-effort:
// a failure is queued for retry and never blocks the stock mutation. The
// stock mutation itself is delegated to the store procedure; when the
// procedure is absent the service degrades to a direct stock update so the
// business can keep operating against a partially migrated database.
func (s *InventoryService) AdjustStock(ctx context.Context, p AdjustStockParams) (*dto.AdjustStockResponse, error) {
	item, err := s.items.FindByID(ctx, p.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "item", ID: p.ItemID.String()}
		}
		return nil, err
	}

	previous := item.CurrentStock
	next := previous.Add(p.QuantityDelta)
	if next.IsNegative() {
		return nil, &InvalidOperationError{
			Message: "insufficient stock for " + item.Name +
				": have " + previous.String() + ", change " + p.QuantityDelta.String(),
		}
	}

	adj := &model.InventoryAdjustment{
		ItemID:           item.ID,
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           p.Reason,
		Notes:            p.Notes,
		CreatedBy:        p.CreatedBy,
	}
	if err := s.adjustments.Create(ctx, adj); err != nil {
		log.Warn().Err(err).Str("item_id", item.ID.String()).
			Msg("audit write failed, queueing for retry")
		if s.auditQueue != nil {
			if qerr := s.auditQueue.EnqueueAudit(ctx, adj); qerr != nil {
				log.Error().Err(qerr).Str("item_id", item.ID.String()).
					Msg("audit enqueue failed, record lost")
			}
		}
	}

	params := repository.StockTransactionParams{
		ItemID:          item.ID,
		TransactionType: transactionTypeFor(p.Reason),
		QuantityChange:  p.QuantityDelta,
		ReferenceID:     p.ReferenceID,
		ReferenceType:   p.ReferenceType,
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
	}
	if item.IsVariant() {
		params.ItemID = *item.ParentItemID
		variantID := item.ID
		variantName := item.Name
		params.VariantItemID = &variantID
		params.VariantName = &variantName
	}

	err = s.items.RecordStockTransaction(ctx, params)
	if errors.Is(err, repository.ErrStockProcedureMissing) {
		log.Warn().Str("item_id", item.ID.String()).
			Msg("stock procedure missing, applying direct update")
		err = s.items.UpdateStock(ctx, item.ID, p.QuantityDelta)
	}
	if err != nil {
		return nil, err
	}

	return &dto.AdjustStockResponse{
		ItemID:           item.ID.String(),
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           p.Reason,
	}, nil
}

// ListAdjustments returns audit history, newest first. A missing audit table
// (migration not applied yet) yields an empty list, not an error.
func (s *InventoryService) ListAdjustments(ctx context.Context, filter dto.AdjustmentFilter) ([]dto.AdjustmentResponse, error) {
	var (
		adjs []model.InventoryAdjustment
		err  error
	)
	if filter.ItemID != "" {
		itemID, perr := uuid.Parse(filter.ItemID)
		if perr != nil {
			return nil, &ValidationError{Field: "item_id", Message: "must be a UUID"}
		}
		adjs, err = s.adjustments.ListByItem(ctx, itemID, filter.Limit)
	} else {
		adjs, err = s.adjustments.List(ctx, filter.Limit)
	}
	if err != nil {
		if repository.IsUndefinedTable(err) {
			log.Warn().Msg("inventory_adjustments table missing, returning empty history")
			return []dto.AdjustmentResponse{}, nil
		}
		return nil, err
	}

	out := make([]dto.AdjustmentResponse, 0, len(adjs))
	for _, a := range adjs {
		resp := dto.AdjustmentResponse{
			ID:               a.ID.String(),
			ItemID:           a.ItemID.String(),
			PreviousQuantity: a.PreviousQuantity,
			NewQuantity:      a.NewQuantity,
			Reason:           a.Reason,
			Notes:            a.Notes,
			CreatedBy:        a.CreatedBy,
			CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if a.Item != nil {
			resp.ItemName = a.Item.Name
		}
		out = append(out, resp)
	}
	return out, nil
}

// ── Item links ───────────────────────────────────────────────────────────────

// AddLink creates a bill-of-materials edge. Self-links are rejected before
// any store call; duplicate edges surface as a conflict.
func (s *InventoryService) AddLink(ctx context.Context, req dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	parentID, err := uuid.Parse(req.ParentItemID)
	if err != nil {
		return nil, &ValidationError{Field: "parent_item_id", Message: "must be a UUID"}
	}
	childID, err := uuid.Parse(req.ChildItemID)
	if err != nil {
		return nil, &ValidationError{Field: "child_item_id", Message: "must be a UUID"}
	}
	if parentID == childID {
		return nil, &InvalidOperationError{Message: "an item cannot be linked to itself"}
	}

	if _, err := s.items.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "item", ID: parentID.String()}
		}
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "item", ID: childID.String()}
		}
		return nil, err
	}

	qty := req.Quantity
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	if qty.IsNegative() {
		return nil, &ValidationError{Field: "quantity", Message: "must be positive"}
	}

	link := &model.ItemLink{ParentItemID: parentID, ChildItemID: childID, Quantity: qty}
	if err := s.items.CreateLink(ctx, link); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "link already exists"}
		}
		return nil, err
	}

	return &dto.LinkResponse{
		ID:           link.ID.String(),
		ParentItemID: parentID.String(),
		ChildItemID:  childID.String(),
		Quantity:     qty,
	}, nil
}

func (s *InventoryService) ListLinks(ctx context.Context) ([]dto.LinkResponse, error) {
	links, err := s.items.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LinkResponse, 0, len(links))
	for _, l := range links {
		resp := dto.LinkResponse{
			ID:           l.ID.String(),
			ParentItemID: l.ParentItemID.String(),
			ChildItemID:  l.ChildItemID.String(),
			Quantity:     l.Quantity,
		}
		if l.Parent != nil {
			resp.ParentName = l.Parent.Name
		}
		if l.Child != nil {
			resp.ChildName = l.Child.Name
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *InventoryService) RemoveLink(ctx context.Context, id uuid.UUID) error {
	return s.items.DeleteLink(ctx, id)
}

// ── Alerts ───────────────────────────────────────────────────────────────────

// LowStockAlerts lists active items at or below their minimum stock level.
func (s *InventoryService) LowStockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	items, err := s.items.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockAlertResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.StockAlertResponse{
			ItemID:       it.ID.String(),
			Name:         it.Name,
			SKU:          it.SKU,
			CurrentStock: it.CurrentStock,
			MinStock:     it.MinStock,
		})
	}
	return out, nil
}
