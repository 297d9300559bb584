package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjustment reasons. Anything outside this list is treated as a generic
// manual adjustment when classified for the stock procedure.
const (
	AdjustmentReasonSale              = "sale"
	AdjustmentReasonPurchaseOrder     = "purchase_order"
	AdjustmentReasonCraftCompleted    = "craft_completed"
	AdjustmentReasonManufacturingUsed = "manufacturing_used"
	AdjustmentReasonReturn            = "return"
	AdjustmentReasonManual            = "manual adjustment"
)

// InventoryAdjustment is the append-only audit record of a stock change.
// Rows are immutable once created — no Update/Delete anywhere in the code.
type InventoryAdjustment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	PreviousQuantity decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	NewQuantity      decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Reason           string          `gorm:"type:varchar(40);not null"`
	Notes            *string
	CreatedBy        *string `gorm:"type:varchar(120)"`
	CreatedAt        time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

func (InventoryAdjustment) TableName() string { return "inventory_adjustments" }
