package dto

import "github.com/shopspring/decimal"

// ─── Stock adjustment ────────────────────────────────────────────────────────

type AdjustStockRequest struct {
	ItemID        string          `json:"item_id"        validate:"required,uuid"`
	QuantityDelta decimal.Decimal `json:"quantity_delta" validate:"required"`
	Reason        string          `json:"reason"         validate:"required"`
	Notes         *string         `json:"notes"`
}

type AdjustStockResponse struct {
	ItemID           string          `json:"item_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Reason           string          `json:"reason"`
}

// ─── Adjustment history ──────────────────────────────────────────────────────

type AdjustmentFilter struct {
	ItemID string `form:"item_id" validate:"omitempty,uuid"`
	Limit  int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type AdjustmentResponse struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	ItemName         string          `json:"item_name,omitempty"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Reason           string          `json:"reason"`
	Notes            *string         `json:"notes"`
	CreatedBy        *string         `json:"created_by"`
	CreatedAt        string          `json:"created_at"`
}

// ─── Item links ──────────────────────────────────────────────────────────────

type CreateLinkRequest struct {
	ParentItemID string          `json:"parent_item_id" validate:"required,uuid"`
	ChildItemID  string          `json:"child_item_id"  validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"       validate:"required"`
}

type LinkResponse struct {
	ID           string          `json:"id"`
	ParentItemID string          `json:"parent_item_id"`
	ParentName   string          `json:"parent_name,omitempty"`
	ChildItemID  string          `json:"child_item_id"`
	ChildName    string          `json:"child_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ─── Alerts ──────────────────────────────────────────────────────────────────

type StockAlertResponse struct {
	ItemID       string          `json:"item_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
}
