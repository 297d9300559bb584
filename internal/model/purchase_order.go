package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order lifecycle. Cancellation deletes the order outright instead
// of retaining a cancelled row, so there is no cancelled status here.
const (
	PurchaseStatusDraft     = "draft"
	PurchaseStatusConfirmed = "confirmed"
	PurchaseStatusReceived  = "received"
)

// PurchaseOrder is a procurement order against a supplier.
// Invariant: TotalAmount equals the sum of line TotalCost values at creation
// and after every edit — line totals are always recomputed server-side.
type PurchaseOrder struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber string          `gorm:"uniqueIndex;not null"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      string          `gorm:"type:varchar(20);not null;default:'draft'"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Supplier *Supplier           `gorm:"foreignKey:SupplierID"`
	Items    []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

// PurchaseOrderItem is one line of a purchase order. ItemID is nullable:
// rows written against the legacy schema carry only ItemName (see the
// repository line writer for the compatibility path).
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           *uuid.UUID      `gorm:"type:uuid;index"`
	VariantItemID    *uuid.UUID      `gorm:"type:uuid"`
	ItemName         string          `gorm:"not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	CreatedAt        time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

func (PurchaseOrderItem) TableName() string { return "purchase_order_items" }
