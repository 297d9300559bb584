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

func TestCreateTransaction(t *testing.T) {
	txns := newStubTransactionRepo()
	svc := NewFinanceService(txns)

	resp, err := svc.Create(context.Background(), dto.CreateTransactionRequest{
		Type:     model.TransactionTypeExpense,
		Amount:   decimal.NewFromInt(75),
		Category: "utilities",
		Date:     "2026-08-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-12", resp.Date)
	assert.Equal(t, "75", resp.Amount.String())
}

func TestCreateTransactionRejectsNonPositiveAmount(t *testing.T) {
	svc := NewFinanceService(newStubTransactionRepo())

	_, err := svc.Create(context.Background(), dto.CreateTransactionRequest{
		Type:     model.TransactionTypeIncome,
		Amount:   decimal.Zero,
		Category: "sales",
		Date:     "2026-08-12",
	})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateTransactionBadDate(t *testing.T) {
	svc := NewFinanceService(newStubTransactionRepo())

	_, err := svc.Create(context.Background(), dto.CreateTransactionRequest{
		Type:     model.TransactionTypeIncome,
		Amount:   decimal.NewFromInt(10),
		Category: "sales",
		Date:     "12/08/2026",
	})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateTransactionDuplicateReference(t *testing.T) {
	txns := newStubTransactionRepo()
	svc := NewFinanceService(txns)

	ref := "00001234"
	req := dto.CreateTransactionRequest{
		Type:            model.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(400),
		Category:        model.TransactionCategorySales,
		Date:            "2026-08-12",
		ReferenceNumber: &ref,
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUpsertRefreshesExistingOrderRow(t *testing.T) {
	txns := newStubTransactionRepo()

	ref := "PO-2026-000042"
	first := &model.FinancialTransaction{
		Type:            model.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(500),
		Category:        model.TransactionCategoryPurchases,
		Date:            day("2026-08-10"),
		ReferenceNumber: &ref,
	}
	require.NoError(t, txns.Upsert(context.Background(), first))

	second := &model.FinancialTransaction{
		Type:            model.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(650),
		Category:        model.TransactionCategoryPurchases,
		Date:            day("2026-08-11"),
		ReferenceNumber: &ref,
	}
	require.NoError(t, txns.Upsert(context.Background(), second))

	// Still one row, refreshed in place.
	require.Len(t, txns.rows, 1)
	assert.Equal(t, "650", txns.byReference(ref).Amount.String())
}

func TestUpdateTransactionPartial(t *testing.T) {
	txns := newStubTransactionRepo()
	svc := NewFinanceService(txns)

	created, err := svc.Create(context.Background(), dto.CreateTransactionRequest{
		Type:     model.TransactionTypeExpense,
		Amount:   decimal.NewFromInt(75),
		Category: "utilities",
		Date:     "2026-08-12",
	})
	require.NoError(t, err)

	amount := decimal.NewFromInt(90)
	updated, err := svc.Update(context.Background(), mustUUID(t, created.ID), dto.UpdateTransactionRequest{
		Amount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, "90", updated.Amount.String())
	assert.Equal(t, "utilities", updated.Category)
	assert.Equal(t, "2026-08-12", updated.Date)
}
