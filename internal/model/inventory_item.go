package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item type / category classification.
const (
	ItemTypeMaterials        = "materials"
	ItemTypeFinishedProducts = "finished_products"

	ItemCategorySelling  = "selling"
	ItemCategoryCrafting = "crafting"
)

// InventoryItem represents both standalone items and variant participants.
// A variant has ParentItemID set and shares the parent's identity while
// carrying its own price, stock and images. Stock for a parent with variants
// is the sum of variant stocks — the parent's own CurrentStock is ignored.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU          string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"index;not null"`
	Description  *string
	Unit         string           `gorm:"not null;default:'unit'"`
	PurchaseCost decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CurrentStock decimal.Decimal  `gorm:"type:decimal(14,3);not null;default:0"`
	MinStock     decimal.Decimal  `gorm:"type:decimal(14,3);not null;default:0"`
	ItemType     string           `gorm:"type:varchar(30);not null;default:'materials'"`
	ItemCategory string           `gorm:"type:varchar(30);not null;default:'crafting'"`
	ParentItemID *uuid.UUID       `gorm:"type:uuid;index"`
	Active       bool             `gorm:"not null;default:true"`

	// E-commerce presentation
	ImageURL         *string
	AdditionalImages JSONList `gorm:"type:jsonb"`
	Slug             *string  `gorm:"index"`
	MetaTitle        *string
	MetaDescription  *string
	Featured         bool    `gorm:"not null;default:false"`
	Dimensions       JSONMap `gorm:"type:jsonb"`
	Specifications   JSONMap `gorm:"type:jsonb"`
	ProductTypes     JSONList `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Parent   *InventoryItem  `gorm:"foreignKey:ParentItemID"`
	Variants []InventoryItem `gorm:"foreignKey:ParentItemID"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// IsVariant reports whether the item is a sub-item of another item.
func (i *InventoryItem) IsVariant() bool { return i.ParentItemID != nil }

// AggregateStock returns the stock to display: the sum of variant stocks when
// variants exist, the item's own stock otherwise.
func (i *InventoryItem) AggregateStock() decimal.Decimal {
	if len(i.Variants) == 0 {
		return i.CurrentStock
	}
	total := decimal.Zero
	for _, v := range i.Variants {
		total = total.Add(v.CurrentStock)
	}
	return total
}
