package dto

import "github.com/shopspring/decimal"

type PurchaseLineRequest struct {
	// ItemID is preferred; ItemName is a fallback for legacy callers that
	// only know the display name.
	ItemID        *string         `json:"item_id"         validate:"omitempty,uuid"`
	VariantItemID *string         `json:"variant_item_id" validate:"omitempty,uuid"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"  validate:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost" validate:"min=0"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required,uuid"`
	Items      []PurchaseLineRequest `json:"items"       validate:"required,min=1,dive"`
	Notes      *string               `json:"notes"`
}

type UpdatePurchaseOrderRequest struct {
	Items []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes *string               `json:"notes"`
}

type UpdatePurchaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft confirmed received cancelled"`
}

type PurchaseLineResponse struct {
	ID               string          `json:"id"`
	ItemID           *string         `json:"item_id"`
	VariantItemID    *string         `json:"variant_item_id"`
	ItemName         string          `json:"item_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

type PurchaseOrderResponse struct {
	ID           string                 `json:"id"`
	OrderNumber  string                 `json:"order_number"`
	SupplierID   string                 `json:"supplier_id"`
	SupplierName string                 `json:"supplier_name,omitempty"`
	Status       string                 `json:"status"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Notes        *string                `json:"notes"`
	Items        []PurchaseLineResponse `json:"items"`
	CreatedAt    string                 `json:"created_at"`
}

type PurchaseOrderListResponse struct {
	Data  []PurchaseOrderResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type PurchaseOrderFilter struct {
	SupplierID string `form:"supplier_id" validate:"omitempty,uuid"`
	Status     string `form:"status"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}
