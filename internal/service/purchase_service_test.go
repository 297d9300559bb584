package service

import (
	"context"
	"testing"

	"craftledger/internal/dto"
	"craftledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPurchaseFixture() (*PurchaseService, *stubPurchaseRepo, *stubSupplierRepo, *stubItemRepo, *stubTransactionRepo) {
	purchases := newStubPurchaseRepo()
	suppliers := newStubSupplierRepo()
	items := newStubItemRepo()
	txns := newStubTransactionRepo()
	inventory := NewInventoryService(items, &stubAdjustmentRepo{}, nil)
	svc := NewPurchaseService(purchases, suppliers, items, txns, inventory)
	return svc, purchases, suppliers, items, txns
}

func TestCreatePurchaseOrder(t *testing.T) {
	svc, _, suppliers, items, txns := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	mug := seedItem(items, "Ceramic Mug", "MUG-001", 10, 2)
	glaze := seedItem(items, "Blue Glaze", "GLZ-001", 0, 1)

	mugID := mug.ID.String()
	glazeID := glaze.ID.String()
	resp, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(3), UnitCost: decimal.NewFromInt(100)},
			{ItemID: &glazeID, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(100)},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.PurchaseStatusConfirmed, resp.Status)
	assert.Equal(t, "400", resp.TotalAmount.String())
	assert.Regexp(t, `^PO-\d{4}-\d{6}$`, resp.OrderNumber)

	// Stock arrived immediately.
	assert.Equal(t, "13", items.items[mug.ID].CurrentStock.String())
	assert.Equal(t, "1", items.items[glaze.ID].CurrentStock.String())

	// One expense row, keyed by the order number.
	expense := txns.byReference(resp.OrderNumber)
	require.NotNil(t, expense)
	assert.Equal(t, model.TransactionTypeExpense, expense.Type)
	assert.Equal(t, model.TransactionCategoryPurchases, expense.Category)
	assert.Equal(t, "400", expense.Amount.String())
}

func TestCreatePurchaseOrderNameOnlyLine(t *testing.T) {
	svc, purchases, suppliers, items, _ := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	resp, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemName: "Packing Tape", Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(20)},
		},
	}, nil)
	require.NoError(t, err)

	// The unknown name stays a name-only line: no stock effect anywhere.
	require.Len(t, resp.Items, 1)
	assert.Nil(t, resp.Items[0].ItemID)
	assert.Empty(t, items.stockCalls)
	assert.Len(t, purchases.orders, 1)
}

func TestCreatePurchaseOrderLineWithoutItemRef(t *testing.T) {
	svc, _, suppliers, _, _ := newPurchaseFixture()
	supplier := seedSupplier(suppliers, "Clay Works Ltd")

	_, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(10)},
		},
	}, nil)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestUpdatePurchaseOrderCompensatesStockDelta(t *testing.T) {
	svc, _, suppliers, items, txns := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	mug := seedItem(items, "Ceramic Mug", "MUG-001", 0, 0)
	mugID := mug.ID.String()

	created, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(50)},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "10", items.items[mug.ID].CurrentStock.String())

	id := mustUUID(t, created.ID)
	updated, err := svc.Update(context.Background(), id, dto.UpdatePurchaseOrderRequest{
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(6), UnitCost: decimal.NewFromInt(50)},
		},
	}, nil)
	require.NoError(t, err)

	// Only the delta (−4) moved, and the expense was refreshed in place.
	assert.Equal(t, "6", items.items[mug.ID].CurrentStock.String())
	assert.Equal(t, "300", updated.TotalAmount.String())
	expense := txns.byReference(created.OrderNumber)
	require.NotNil(t, expense)
	assert.Equal(t, "300", expense.Amount.String())
}

func TestUpdateReceivedOrderRejected(t *testing.T) {
	svc, purchases, suppliers, items, _ := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	mug := seedItem(items, "Ceramic Mug", "MUG-001", 0, 0)
	mugID := mug.ID.String()

	created, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(50)},
		},
	}, nil)
	require.NoError(t, err)

	id := mustUUID(t, created.ID)
	purchases.orders[id].Status = model.PurchaseStatusReceived

	_, err = svc.Update(context.Background(), id, dto.UpdatePurchaseOrderRequest{
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(50)},
		},
	}, nil)
	var invalid *InvalidOperationError
	assert.ErrorAs(t, err, &invalid)
}

func TestCancelPurchaseOrderReversesEverything(t *testing.T) {
	svc, purchases, suppliers, items, txns := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	mug := seedItem(items, "Ceramic Mug", "MUG-001", 5, 0)
	mugID := mug.ID.String()

	created, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(7), UnitCost: decimal.NewFromInt(40)},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "12", items.items[mug.ID].CurrentStock.String())

	id := mustUUID(t, created.ID)
	require.NoError(t, svc.UpdateStatus(context.Background(), id, "cancelled", nil))

	// Stock back where it started, order gone, expense gone.
	assert.Equal(t, "5", items.items[mug.ID].CurrentStock.String())
	assert.NotContains(t, purchases.orders, id)
	assert.Nil(t, txns.byReference(created.OrderNumber))
}

func TestPurchaseStatusTransition(t *testing.T) {
	svc, purchases, suppliers, items, _ := newPurchaseFixture()

	supplier := seedSupplier(suppliers, "Clay Works Ltd")
	mug := seedItem(items, "Ceramic Mug", "MUG-001", 0, 0)
	mugID := mug.ID.String()

	created, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseLineRequest{
			{ItemID: &mugID, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(40)},
		},
	}, nil)
	require.NoError(t, err)

	id := mustUUID(t, created.ID)
	require.NoError(t, svc.UpdateStatus(context.Background(), id, model.PurchaseStatusReceived, nil))
	assert.Equal(t, model.PurchaseStatusReceived, purchases.orders[id].Status)
}
