package service

import (
	"context"
	"math/rand"
	"testing"

	"craftledger/internal/dto"
	"craftledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salesFixture struct {
	svc       *SalesService
	sales     *stubSalesRepo
	customers *stubCustomerRepo
	items     *stubItemRepo
	invoices  *stubInvoiceRepo
	txns      *stubTransactionRepo
	mail      *mailQueueSpy
}

func newSalesFixture() *salesFixture {
	f := &salesFixture{
		sales:     newStubSalesRepo(),
		customers: newStubCustomerRepo(),
		items:     newStubItemRepo(),
		invoices:  newStubInvoiceRepo(),
		txns:      newStubTransactionRepo(),
		mail:      &mailQueueSpy{},
	}
	inventory := NewInventoryService(f.items, &stubAdjustmentRepo{}, nil)
	f.svc = NewSalesService(f.sales, f.customers, f.items, f.invoices, f.txns, inventory, f.mail, pdfWriterStub{})
	f.svc.rng = rand.New(rand.NewSource(1)) // deterministic order numbers
	return f
}

func TestCreateSalesOrderPendingHasNoStockEffect(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.SalesStatusPending, resp.Status)
	assert.Equal(t, model.OrderSourceManual, resp.Source)
	assert.Regexp(t, `^\d{8}$`, resp.OrderNumber)
	// Price fell back to the catalog selling price.
	assert.Equal(t, "400", resp.TotalAmount.String())
	// Stock untouched until completion.
	assert.Equal(t, "10", f.items.items[mug.ID].CurrentStock.String())
	assert.Empty(t, f.invoices.invoices)
}

func TestPOSCheckoutCompletesImmediately(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
		Status: model.SalesStatusCompleted,
		Source: model.OrderSourcePOS,
	}, nil)
	require.NoError(t, err)

	// Stock out, income in, invoice created and its email queued.
	assert.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())

	income := f.txns.byReference(resp.OrderNumber)
	require.NotNil(t, income)
	assert.Equal(t, model.TransactionTypeIncome, income.Type)
	assert.Equal(t, model.TransactionCategorySales, income.Category)
	assert.Equal(t, "400", income.Amount.String())

	require.Len(t, f.invoices.invoices, 1)
	assert.Len(t, f.mail.invoiceIDs, 1)
}

func TestSalePriceOverridesSellingPrice(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)
	sale := decimal.NewFromInt(80)
	f.items.items[mug.ID].SalePrice = &sale

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "160", resp.TotalAmount.String())
}

func TestDiscountExceedingLineRejected(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	_, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{
				ItemID:   mug.ID.String(),
				Quantity: decimal.NewFromInt(1),
				Discount: decimal.NewFromInt(500),
			},
		},
	}, nil)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestWalkInCustomerIsNull(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	walkIn := "walk-in"
	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		CustomerID: &walkIn,
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.CustomerID)
}

func TestAdvanceProducesBalance(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
		Status:        model.SalesStatusOrderConfirmed,
		AdvanceAmount: decimal.NewFromInt(100),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "300", resp.TotalAmount.String())
	assert.Equal(t, "200", resp.BalanceAmount.String())
}

func TestOrderNumberExhaustion(t *testing.T) {
	f := newSalesFixture()
	f.sales.numberAlwaysTaken = true
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	_, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	}, nil)
	var exhausted *ExhaustedRetriesError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, orderNumberAttempts, exhausted.Attempts)
}

func TestCompletionAppliedOnce(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
	}, nil)
	require.NoError(t, err)
	id := mustUUID(t, resp.ID)

	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())

	// Completed → delivered → full_payment_done must not deduct again.
	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusDelivered, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusFullPaymentDone, nil)
	require.NoError(t, err)
	assert.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())
	assert.Len(t, f.invoices.invoices, 1)
}

func TestCompletedOrderDowngradeRejected(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
		Status: model.SalesStatusCompleted,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())
	id := mustUUID(t, resp.ID)

	// Stepping back to processing would let a later re-completion deduct
	// the same lines again.
	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusProcessing, nil)
	var invalid *InvalidOperationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.SalesStatusCompleted, f.sales.orders[id].Status)
	assert.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())

	// Completing again is a no-op, never a second deduction.
	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())
	assert.Len(t, f.invoices.invoices, 1)
}

func TestAdvanceAmountValidated(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	_, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
		AdvanceAmount: decimal.NewFromInt(-50),
	}, nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	// Total is 300; an advance above it makes the balance meaningless.
	_, err = f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
		AdvanceAmount: decimal.NewFromInt(500),
	}, nil)
	require.ErrorAs(t, err, &validation)
}

func TestCancelCompletedOrderRestoresStock(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
		Status: model.SalesStatusCompleted,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "6", f.items.items[mug.ID].CurrentStock.String())

	id := mustUUID(t, resp.ID)
	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusCancelled, nil)
	require.NoError(t, err)

	assert.Equal(t, "10", f.items.items[mug.ID].CurrentStock.String())
	assert.Nil(t, f.txns.byReference(resp.OrderNumber))
}

func TestCancelledOrderIsImmutable(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	}, nil)
	require.NoError(t, err)
	id := mustUUID(t, resp.ID)

	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusCancelled, nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), id, model.SalesStatusPending, nil)
	var invalid *InvalidOperationError
	assert.ErrorAs(t, err, &invalid)
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func TestGetInvoiceCreatesOnDemandForCompleted(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
	}, nil)
	require.NoError(t, err)
	id := mustUUID(t, resp.ID)

	// Pending order: no invoice, not even on request.
	_, err = f.svc.GetInvoice(context.Background(), id)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Simulate an order completed before invoicing existed: status flips
	// without side effects, then the first fetch creates the invoice.
	f.sales.orders[id].Status = model.SalesStatusCompleted
	inv, err := f.svc.GetInvoice(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "200", inv.Amount.String())
	assert.Regexp(t, `^INV-\d{6}-\d{4}$`, inv.InvoiceNumber)
	require.NotNil(t, inv.PDFUrl)
}

func TestMarkInvoicePaidIsIdempotent(t *testing.T) {
	f := newSalesFixture()
	mug := seedItem(f.items, "Ceramic Mug", "MUG-001", 10, 2)

	resp, err := f.svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Items: []dto.SalesLineRequest{
			{ItemID: mug.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
		Status: model.SalesStatusCompleted,
	}, nil)
	require.NoError(t, err)

	inv, err := f.svc.GetInvoice(context.Background(), mustUUID(t, resp.ID))
	require.NoError(t, err)

	paid, err := f.svc.MarkInvoicePaid(context.Background(), mustUUID(t, inv.ID))
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	again, err := f.svc.MarkInvoicePaid(context.Background(), mustUUID(t, inv.ID))
	require.NoError(t, err)
	assert.Equal(t, paid.PaidAt, again.PaidAt)
}
