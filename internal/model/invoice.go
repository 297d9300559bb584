package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Invoice is the one-to-one billing artifact of a sales order.
// Amount always equals the order total at creation time.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SalesOrderID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAt        *time.Time
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SalesOrder *SalesOrder `gorm:"foreignKey:SalesOrderID"`
}

func (Invoice) TableName() string { return "invoices" }
