package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	TransactionCategoryPurchases = "purchases"
	TransactionCategorySales     = "sales"
)

// FinancialTransaction is an independent ledger row. Order-linked rows carry
// the order number in ReferenceNumber; at most one row may exist per
// (reference_number, category, type) — enforced by a partial unique index
// (see infra.applySchemaPatches) and written via an atomic upsert.
type FinancialTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type            string          `gorm:"type:varchar(10);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category        string          `gorm:"type:varchar(40);not null"`
	PaymentMethod   *string         `gorm:"type:varchar(30)"`
	Date            time.Time       `gorm:"not null;index"`
	ReferenceNumber *string         `gorm:"index"`
	BillImages      JSONList        `gorm:"type:jsonb"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (FinancialTransaction) TableName() string { return "financial_transactions" }
