package service

import (
	"context"
	"errors"
	"testing"

	"craftledger/internal/dto"
	"craftledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	items := newStubItemRepo()
	adjs := &stubAdjustmentRepo{}
	svc := NewInventoryService(items, adjs, nil)

	item := seedItem(items, "Ceramic Mug", "MUG-001", 10, 2)

	_, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        item.ID,
		QuantityDelta: decimal.NewFromInt(-15),
		Reason:        model.AdjustmentReasonSale,
	})

	var invalid *InvalidOperationError
	require.ErrorAs(t, err, &invalid)
	// Nothing was touched: no audit row, no stock call, stock unchanged.
	assert.Empty(t, adjs.rows)
	assert.Empty(t, items.stockCalls)
	assert.Equal(t, "10", items.items[item.ID].CurrentStock.String())
}

func TestAdjustStockSale(t *testing.T) {
	items := newStubItemRepo()
	adjs := &stubAdjustmentRepo{}
	svc := NewInventoryService(items, adjs, nil)

	item := seedItem(items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        item.ID,
		QuantityDelta: decimal.NewFromInt(-4),
		Reason:        model.AdjustmentReasonSale,
	})
	require.NoError(t, err)
	assert.Equal(t, "10", resp.PreviousQuantity.String())
	assert.Equal(t, "6", resp.NewQuantity.String())

	require.Len(t, adjs.rows, 1)
	assert.Equal(t, model.AdjustmentReasonSale, adjs.rows[0].Reason)

	require.Len(t, items.stockCalls, 1)
	assert.Equal(t, "sales_order", items.stockCalls[0].TransactionType)
	assert.Equal(t, "6", items.items[item.ID].CurrentStock.String())
}

func TestAdjustStockUnknownReasonIsGenericAdjustment(t *testing.T) {
	assert.Equal(t, "adjustment", transactionTypeFor("spillage"))
	assert.Equal(t, "craft_completed", transactionTypeFor(model.AdjustmentReasonCraftCompleted))
}

func TestAdjustStockVariantTargetsParent(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)

	parent := seedItem(items, "Scented Candle", "CAN-001", 0, 0)
	variant := seedVariant(items, parent, "Scented Candle - Lavender", "CAN-001-LAV", 8)

	_, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        variant.ID,
		QuantityDelta: decimal.NewFromInt(-3),
		Reason:        model.AdjustmentReasonSale,
	})
	require.NoError(t, err)

	// The call references the parent with the variant alongside; the variant
	// row takes the change.
	require.Len(t, items.stockCalls, 1)
	call := items.stockCalls[0]
	assert.Equal(t, parent.ID, call.ItemID)
	require.NotNil(t, call.VariantItemID)
	assert.Equal(t, variant.ID, *call.VariantItemID)
	require.NotNil(t, call.VariantName)
	assert.Equal(t, "Scented Candle - Lavender", *call.VariantName)
	assert.Equal(t, "5", items.items[variant.ID].CurrentStock.String())
}

func TestAdjustStockProcedureMissingFallsBack(t *testing.T) {
	items := newStubItemRepo()
	items.procMissing = true
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)

	item := seedItem(items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        item.ID,
		QuantityDelta: decimal.NewFromInt(5),
		Reason:        model.AdjustmentReasonManual,
	})
	require.NoError(t, err)
	assert.Equal(t, "15", resp.NewQuantity.String())
	assert.Equal(t, 1, items.updateStockCalls)
	assert.Equal(t, "15", items.items[item.ID].CurrentStock.String())
}

func TestAdjustStockAuditFailureIsQueuedNotFatal(t *testing.T) {
	items := newStubItemRepo()
	adjs := &stubAdjustmentRepo{failCreate: errors.New("relation does not exist")}
	queue := &auditQueueSpy{}
	svc := NewInventoryService(items, adjs, queue)

	item := seedItem(items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        item.ID,
		QuantityDelta: decimal.NewFromInt(-2),
		Reason:        model.AdjustmentReasonSale,
	})
	require.NoError(t, err)
	assert.Equal(t, "8", resp.NewQuantity.String())

	// The failed audit write went to the retry queue; the stock change stuck.
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "10", queue.enqueued[0].PreviousQuantity.String())
	assert.Equal(t, "8", items.items[item.ID].CurrentStock.String())
}

func TestAdjustStockUnknownItem(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)

	_, err := svc.AdjustStock(context.Background(), AdjustStockParams{
		ItemID:        uuid.New(),
		QuantityDelta: decimal.NewFromInt(1),
		Reason:        model.AdjustmentReasonManual,
	})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// ── Links ────────────────────────────────────────────────────────────────────

func TestAddLinkSelfRejectedBeforeStore(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)
	item := seedItem(items, "Gift Box", "BOX-001", 5, 0)

	_, err := svc.AddLink(context.Background(), dto.CreateLinkRequest{
		ParentItemID: item.ID.String(),
		ChildItemID:  item.ID.String(),
		Quantity:     decimal.NewFromInt(2),
	})

	var invalid *InvalidOperationError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, items.createLinkCalls)
}

func TestAddLinkDefaultsQuantityToOne(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)
	parent := seedItem(items, "Gift Box", "BOX-001", 5, 0)
	child := seedItem(items, "Ribbon", "RIB-001", 50, 0)

	resp, err := svc.AddLink(context.Background(), dto.CreateLinkRequest{
		ParentItemID: parent.ID.String(),
		ChildItemID:  child.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", resp.Quantity.String())
}

func TestAddLinkDuplicateConflict(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)
	parent := seedItem(items, "Gift Box", "BOX-001", 5, 0)
	child := seedItem(items, "Ribbon", "RIB-001", 50, 0)

	req := dto.CreateLinkRequest{
		ParentItemID: parent.ID.String(),
		ChildItemID:  child.ID.String(),
		Quantity:     decimal.NewFromInt(2),
	}
	_, err := svc.AddLink(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.AddLink(context.Background(), req)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

// ── Alerts ───────────────────────────────────────────────────────────────────

func TestLowStockAlerts(t *testing.T) {
	items := newStubItemRepo()
	svc := NewInventoryService(items, &stubAdjustmentRepo{}, nil)

	seedItem(items, "Healthy", "OK-001", 50, 5)
	seedItem(items, "Low", "LOW-001", 3, 5)
	seedItem(items, "Out", "OUT-001", 0, 10)
	seedItem(items, "Untracked", "UNT-001", 0, 0) // min_stock 0 never alerts

	alerts, err := svc.LowStockAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}
