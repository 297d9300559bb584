package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemLink is a directed "requires" edge between two inventory items: the
// parent needs Quantity units of the child (bill-of-materials relationship).
// Self-loops are rejected in the service before any store call; duplicate
// edges are rejected by the composite unique index.
type ItemLink struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParentItemID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_item_link_pair;not null"`
	ChildItemID  uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_item_link_pair;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:1"`
	CreatedAt    time.Time

	Parent *InventoryItem `gorm:"foreignKey:ParentItemID"`
	Child  *InventoryItem `gorm:"foreignKey:ChildItemID"`
}

func (ItemLink) TableName() string { return "item_links" }
