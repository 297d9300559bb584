package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	SKU          string           `json:"sku"           validate:"required,min=2,max=40"`
	Name         string           `json:"name"          validate:"required,min=2,max=120"`
	Description  *string          `json:"description"`
	Unit         string           `json:"unit"`
	PurchaseCost decimal.Decimal  `json:"purchase_cost" validate:"min=0"`
	SellingPrice decimal.Decimal  `json:"selling_price" validate:"min=0"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	CurrentStock decimal.Decimal  `json:"current_stock" validate:"min=0"`
	MinStock     decimal.Decimal  `json:"min_stock"     validate:"min=0"`
	ItemType     string           `json:"item_type"     validate:"omitempty,oneof=materials finished_products"`
	ItemCategory string           `json:"item_category" validate:"omitempty,oneof=selling crafting"`
	ParentItemID *string          `json:"parent_item_id" validate:"omitempty,uuid"`

	ImageURL         *string           `json:"image_url"`
	AdditionalImages []string          `json:"additional_images"`
	Slug             *string           `json:"slug"`
	MetaTitle        *string           `json:"meta_title"`
	MetaDescription  *string           `json:"meta_description"`
	Featured         bool              `json:"featured"`
	Dimensions       map[string]string `json:"dimensions"`
	Specifications   map[string]string `json:"specifications"`
	ProductTypes     []string          `json:"product_types"`
}

// UpdateItemRequest carries partial-update semantics: only non-nil fields are
// written, everything else is left untouched server-side.
type UpdateItemRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Description  *string          `json:"description"`
	Unit         *string          `json:"unit"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	MinStock     *decimal.Decimal `json:"min_stock"`
	ItemType     *string          `json:"item_type"     validate:"omitempty,oneof=materials finished_products"`
	ItemCategory *string          `json:"item_category" validate:"omitempty,oneof=selling crafting"`
	Active       *bool            `json:"active"`

	ImageURL         *string            `json:"image_url"`
	AdditionalImages *[]string          `json:"additional_images"`
	Slug             *string            `json:"slug"`
	MetaTitle        *string            `json:"meta_title"`
	MetaDescription  *string            `json:"meta_description"`
	Featured         *bool              `json:"featured"`
	Dimensions       *map[string]string `json:"dimensions"`
	Specifications   *map[string]string `json:"specifications"`
	ProductTypes     *[]string          `json:"product_types"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ItemFilter struct {
	Name         string `form:"name"`
	SKU          string `form:"sku"`
	ItemType     string `form:"item_type"`
	ItemCategory string `form:"item_category"`
	Active       string `form:"active"` // "false" = inactive, "all" = everything, default = active
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID           string           `json:"id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	Unit         string           `json:"unit"`
	PurchaseCost decimal.Decimal  `json:"purchase_cost"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	CurrentStock decimal.Decimal  `json:"current_stock"`
	MinStock     decimal.Decimal  `json:"min_stock"`
	ItemType     string           `json:"item_type"`
	ItemCategory string           `json:"item_category"`
	ParentItemID *string          `json:"parent_item_id"`
	Active       bool             `json:"active"`

	ImageURL         *string           `json:"image_url"`
	AdditionalImages []string          `json:"additional_images"`
	Slug             *string           `json:"slug"`
	MetaTitle        *string           `json:"meta_title"`
	MetaDescription  *string           `json:"meta_description"`
	Featured         bool              `json:"featured"`
	Dimensions       map[string]string `json:"dimensions"`
	Specifications   map[string]string `json:"specifications"`
	ProductTypes     []string          `json:"product_types"`

	Variants  []ItemResponse `json:"variants,omitempty"`
	CreatedAt string         `json:"created_at"`
}

type ItemListResponse struct {
	Data  []ItemResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
