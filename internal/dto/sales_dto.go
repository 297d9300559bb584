package dto

import "github.com/shopspring/decimal"

type SalesLineRequest struct {
	ItemID        string          `json:"item_id"         validate:"required,uuid"`
	VariantItemID *string         `json:"variant_item_id" validate:"omitempty,uuid"`
	Quantity      decimal.Decimal `json:"quantity"   validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"min=0"`
	Discount      decimal.Decimal `json:"discount"   validate:"min=0"`
}

type CreateSalesOrderRequest struct {
	// CustomerID accepts "", "walk-in" or a UUID; the sentinel values are
	// normalized to a NULL customer.
	CustomerID      *string            `json:"customer_id"`
	Items           []SalesLineRequest `json:"items"  validate:"required,min=1,dive"`
	Status          string             `json:"status" validate:"omitempty,oneof=pending processing completed order_confirmed"`
	PaymentMethod   *string            `json:"payment_method"`
	AdvanceAmount   decimal.Decimal    `json:"advance_amount" validate:"min=0"`
	Source          string             `json:"source" validate:"omitempty,oneof=manual website pos"`
	ShippingAddress *string            `json:"shipping_address"`
	DeliveryDate    *string            `json:"delivery_date"`
	Notes           *string            `json:"notes"`
}

type UpdateSalesStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled order_confirmed advance_paid crafted delivered full_payment_done"`
}

type SalesLineResponse struct {
	ID            string          `json:"id"`
	ItemID        *string         `json:"item_id"`
	VariantItemID *string         `json:"variant_item_id"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type SalesOrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      *string             `json:"customer_id"`
	CustomerName    string              `json:"customer_name,omitempty"`
	Status          string              `json:"status"`
	PaymentMethod   *string             `json:"payment_method"`
	AdvanceAmount   decimal.Decimal     `json:"advance_amount"`
	BalanceAmount   decimal.Decimal     `json:"balance_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Source          string              `json:"source"`
	ShippingAddress *string             `json:"shipping_address"`
	Notes           *string             `json:"notes"`
	Items           []SalesLineResponse `json:"items"`
	CreatedAt       string              `json:"created_at"`
}

type SalesOrderListResponse struct {
	Data  []SalesOrderResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type SalesOrderFilter struct {
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Status     string `form:"status"`
	Source     string `form:"source"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Invoices ────────────────────────────────────────────────────────────────

type InvoiceResponse struct {
	ID            string          `json:"id"`
	SalesOrderID  string          `json:"sales_order_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaidAt        *string         `json:"paid_at"`
	PDFUrl        *string         `json:"pdf_url"`
	CreatedAt     string          `json:"created_at"`
}
