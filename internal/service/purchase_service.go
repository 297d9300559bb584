package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseService owns the procurement workflow: order creation with
// immediate stock-in, edits with delta compensation, and cancellation with
// full reversal.
type PurchaseService struct {
	purchases    repository.PurchaseRepository
	suppliers    repository.SupplierRepository
	items        repository.ItemRepository
	transactions repository.TransactionRepository
	inventory    *InventoryService

	now func() time.Time
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	suppliers repository.SupplierRepository,
	items repository.ItemRepository,
	transactions repository.TransactionRepository,
	inventory *InventoryService,
) *PurchaseService {
	return &PurchaseService{
		purchases:    purchases,
		suppliers:    suppliers,
		items:        items,
		transactions: transactions,
		inventory:    inventory,
		now:          time.Now,
	}
}

func (s *PurchaseService) generateOrderNumber() string {
	t := s.now()
	return fmt.Sprintf("PO-%d-%06d", t.Year(), t.UnixNano()%1000000)
}

// resolveLine turns one request line into a model line. ItemID wins; a bare
// ItemName is looked up and, if unknown, kept as a name-only line.
func (s *PurchaseService) resolveLine(ctx context.Context, req dto.PurchaseLineRequest) (model.PurchaseOrderItem, error) {
	line := model.PurchaseOrderItem{
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
	}
	if req.Quantity.Sign() <= 0 {
		return line, &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	line.TotalCost = req.Quantity.Mul(req.UnitCost).Round(2)

	if req.ItemID != nil && *req.ItemID != "" {
		itemID, err := uuid.Parse(*req.ItemID)
		if err != nil {
			return line, &ValidationError{Field: "item_id", Message: "must be a UUID"}
		}
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return line, &NotFoundError{Entity: "item", ID: itemID.String()}
			}
			return line, err
		}
		line.ItemID = &item.ID
		line.ItemName = item.Name
	} else if req.ItemName != "" {
		item, err := s.items.FindByName(ctx, req.ItemName)
		switch {
		case err == nil:
			line.ItemID = &item.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// name-only line, no stock tracking
		default:
			return line, err
		}
	} else {
		return line, &ValidationError{Field: "items", Message: "each line needs item_id or item_name"}
	}

	if req.VariantItemID != nil && *req.VariantItemID != "" {
		variantID, err := uuid.Parse(*req.VariantItemID)
		if err != nil {
			return line, &ValidationError{Field: "variant_item_id", Message: "must be a UUID"}
		}
		line.VariantItemID = &variantID
	}
	return line, nil
}

// Create writes the order header and lines transactionally, then applies
// stock-in per line and records the expense. The post-transaction steps are
// sequential and individually logged; a late failure leaves earlier effects
// in place (the order and any applied stock survive).
func (s *PurchaseService) Create(ctx context.Context, req dto.CreatePurchaseOrderRequest, createdBy *string) (*dto.PurchaseOrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, &ValidationError{Field: "supplier_id", Message: "must be a UUID"}
	}
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "supplier", ID: supplierID.String()}
		}
		return nil, err
	}

	lines := make([]model.PurchaseOrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, lr := range req.Items {
		line, err := s.resolveLine(ctx, lr)
		if err != nil {
			return nil, err
		}
		total = total.Add(line.TotalCost)
		lines = append(lines, line)
	}

	po := &model.PurchaseOrder{
		OrderNumber: s.generateOrderNumber(),
		SupplierID:  supplier.ID,
		Status:      model.PurchaseStatusConfirmed,
		TotalAmount: total,
		Notes:       req.Notes,
	}
	if err := s.purchases.CreateWithLines(ctx, po, lines); err != nil {
		return nil, err
	}

	// Stock-in per line, sequentially. Failures are logged and skipped so a
	// single bad line does not strand the whole delivery.
	refType := "purchase_order"
	for _, line := range lines {
		if line.ItemID == nil {
			continue
		}
		target := *line.ItemID
		if line.VariantItemID != nil {
			target = *line.VariantItemID
		}
		_, aerr := s.inventory.AdjustStock(ctx, AdjustStockParams{
			ItemID:        target,
			QuantityDelta: line.Quantity,
			Reason:        model.AdjustmentReasonPurchaseOrder,
			ReferenceID:   &po.ID,
			ReferenceType: &refType,
			CreatedBy:     createdBy,
		})
		if aerr != nil {
			log.Error().Err(aerr).
				Str("order", po.OrderNumber).Str("item", line.ItemName).
				Msg("stock-in failed for purchase line")
		}
	}

	if err := s.upsertExpense(ctx, po); err != nil {
		log.Error().Err(err).Str("order", po.OrderNumber).
			Msg("expense record failed for purchase order")
	}

	po.Supplier = supplier
	po.Items = lines
	return purchaseToResponse(po), nil
}

func (s *PurchaseService) upsertExpense(ctx context.Context, po *model.PurchaseOrder) error {
	ref := po.OrderNumber
	notes := "Purchase order " + po.OrderNumber
	return s.transactions.Upsert(ctx, &model.FinancialTransaction{
		Type:            model.TransactionTypeExpense,
		Amount:          po.TotalAmount,
		Category:        model.TransactionCategoryPurchases,
		Date:            s.now(),
		ReferenceNumber: &ref,
		Notes:           &notes,
	})
}

func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseOrderResponse, error) {
	po, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id.String()}
		}
		return nil, err
	}
	return purchaseToResponse(po), nil
}

func (s *PurchaseService) List(ctx context.Context, filter dto.PurchaseOrderFilter) (*dto.PurchaseOrderListResponse, error) {
	rf := repository.PurchaseFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.SupplierID != "" {
		supplierID, err := uuid.Parse(filter.SupplierID)
		if err != nil {
			return nil, &ValidationError{Field: "supplier_id", Message: "must be a UUID"}
		}
		rf.SupplierID = &supplierID
	}
	orders, total, err := s.purchases.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *purchaseToResponse(&orders[i]))
	}
	return &dto.PurchaseOrderListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Update replaces the line set and compensates stock by the per-item
// quantity delta between the old and new lines.
func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseOrderRequest, updatedBy *string) (*dto.PurchaseOrderResponse, error) {
	po, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id.String()}
		}
		return nil, err
	}
	if po.Status == model.PurchaseStatusReceived {
		return nil, &InvalidOperationError{Message: "received orders cannot be edited"}
	}

	oldQty := map[uuid.UUID]decimal.Decimal{}
	for _, line := range po.Items {
		if line.ItemID != nil {
			target := *line.ItemID
			if line.VariantItemID != nil {
				target = *line.VariantItemID
			}
			oldQty[target] = oldQty[target].Add(line.Quantity)
		}
	}

	lines := make([]model.PurchaseOrderItem, 0, len(req.Items))
	newQty := map[uuid.UUID]decimal.Decimal{}
	total := decimal.Zero
	for _, lr := range req.Items {
		line, err := s.resolveLine(ctx, lr)
		if err != nil {
			return nil, err
		}
		total = total.Add(line.TotalCost)
		if line.ItemID != nil {
			target := *line.ItemID
			if line.VariantItemID != nil {
				target = *line.VariantItemID
			}
			newQty[target] = newQty[target].Add(line.Quantity)
		}
		lines = append(lines, line)
	}

	po.TotalAmount = total
	if req.Notes != nil {
		po.Notes = req.Notes
	}
	if err := s.purchases.ReplaceLines(ctx, po, lines); err != nil {
		return nil, err
	}

	// Compensate only the quantity deltas.
	refType := "purchase_order"
	for itemID, nq := range newQty {
		delta := nq.Sub(oldQty[itemID])
		if delta.IsZero() {
			continue
		}
		s.compensate(ctx, po, itemID, delta, refType, updatedBy)
	}
	for itemID, oq := range oldQty {
		if _, still := newQty[itemID]; still {
			continue
		}
		s.compensate(ctx, po, itemID, oq.Neg(), refType, updatedBy)
	}

	if err := s.upsertExpense(ctx, po); err != nil {
		log.Error().Err(err).Str("order", po.OrderNumber).
			Msg("expense refresh failed for purchase order")
	}
	return s.Get(ctx, id)
}

func (s *PurchaseService) compensate(ctx context.Context, po *model.PurchaseOrder, itemID uuid.UUID, delta decimal.Decimal, refType string, by *string) {
	_, err := s.inventory.AdjustStock(ctx, AdjustStockParams{
		ItemID:        itemID,
		QuantityDelta: delta,
		Reason:        model.AdjustmentReasonPurchaseOrder,
		ReferenceID:   &po.ID,
		ReferenceType: &refType,
		CreatedBy:     by,
	})
	if err != nil {
		log.Error().Err(err).
			Str("order", po.OrderNumber).Str("item_id", itemID.String()).
			Str("delta", delta.String()).
			Msg("stock compensation failed")
	}
}

// UpdateStatus moves the order through its lifecycle. "cancelled" triggers
// full reversal and removal — cancelled orders are not retained.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy *string) error {
	if status == "cancelled" {
		return s.Cancel(ctx, id, updatedBy)
	}
	if err := s.purchases.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "purchase order", ID: id.String()}
		}
		return err
	}
	return nil
}

// Cancel reverses every stock-tracked line, deletes the expense record and
// removes the order with its lines.
func (s *PurchaseService) Cancel(ctx context.Context, id uuid.UUID, cancelledBy *string) error {
	po, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "purchase order", ID: id.String()}
		}
		return err
	}

	refType := "purchase_order"
	for _, line := range po.Items {
		if line.ItemID == nil {
			continue
		}
		target := *line.ItemID
		if line.VariantItemID != nil {
			target = *line.VariantItemID
		}
		s.compensate(ctx, po, target, line.Quantity.Neg(), refType, cancelledBy)
	}

	if err := s.transactions.DeleteByReference(ctx, po.OrderNumber,
		model.TransactionCategoryPurchases, model.TransactionTypeExpense); err != nil {
		log.Error().Err(err).Str("order", po.OrderNumber).
			Msg("expense cleanup failed on cancellation")
	}

	return s.purchases.DeleteWithLines(ctx, id)
}

func purchaseToResponse(po *model.PurchaseOrder) *dto.PurchaseOrderResponse {
	resp := &dto.PurchaseOrderResponse{
		ID:          po.ID.String(),
		OrderNumber: po.OrderNumber,
		SupplierID:  po.SupplierID.String(),
		Status:      po.Status,
		TotalAmount: po.TotalAmount,
		Notes:       po.Notes,
		Items:       make([]dto.PurchaseLineResponse, 0, len(po.Items)),
		CreatedAt:   po.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if po.Supplier != nil {
		resp.SupplierName = po.Supplier.Name
	}
	for _, line := range po.Items {
		lr := dto.PurchaseLineResponse{
			ID:               line.ID.String(),
			ItemName:         line.ItemName,
			Quantity:         line.Quantity,
			UnitCost:         line.UnitCost,
			TotalCost:        line.TotalCost,
			ReceivedQuantity: line.ReceivedQuantity,
		}
		if line.ItemID != nil {
			id := line.ItemID.String()
			lr.ItemID = &id
		}
		if line.VariantItemID != nil {
			id := line.VariantItemID.String()
			lr.VariantItemID = &id
		}
		resp.Items = append(resp.Items, lr)
	}
	return resp
}
