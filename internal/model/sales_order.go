package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sales order statuses. The first group is the standard lifecycle; the second
// is the extended manual workflow used for made-to-order sales.
const (
	SalesStatusPending    = "pending"
	SalesStatusProcessing = "processing"
	SalesStatusCompleted  = "completed"
	SalesStatusCancelled  = "cancelled"

	SalesStatusOrderConfirmed  = "order_confirmed"
	SalesStatusAdvancePaid     = "advance_paid"
	SalesStatusCrafted         = "crafted"
	SalesStatusDelivered       = "delivered"
	SalesStatusFullPaymentDone = "full_payment_done"
)

// Order sources.
const (
	OrderSourceManual  = "manual"
	OrderSourceWebsite = "website"
	OrderSourcePOS     = "pos"
)

// SalesOrder is a customer order. CustomerID is NULL for walk-in sales.
type SalesOrder struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid;index"`
	Status          string          `gorm:"type:varchar(30);not null;default:'pending'"`
	PaymentMethod   *string         `gorm:"type:varchar(30)"`
	AdvanceAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BalanceAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Source          string          `gorm:"type:varchar(20);not null;default:'manual'"`
	ShippingAddress *string
	DeliveryDate    *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Customer *Customer        `gorm:"foreignKey:CustomerID"`
	Items    []SalesOrderItem `gorm:"foreignKey:SalesOrderID"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

// SalesOrderItem is one line of a sales order.
// TotalPrice = Quantity × UnitPrice − Discount, recomputed on every write.
type SalesOrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SalesOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID        *uuid.UUID      `gorm:"type:uuid;index"`
	VariantItemID *uuid.UUID      `gorm:"type:uuid"`
	ItemName      string          `gorm:"not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

func (SalesOrderItem) TableName() string { return "sales_order_items" }
