package dto

import "github.com/shopspring/decimal"

type CreateTransactionRequest struct {
	Type            string          `json:"type"     validate:"required,oneof=income expense"`
	Amount          decimal.Decimal `json:"amount"   validate:"required"`
	Category        string          `json:"category" validate:"required"`
	PaymentMethod   *string         `json:"payment_method"`
	Date            string          `json:"date"     validate:"required"` // YYYY-MM-DD
	ReferenceNumber *string         `json:"reference_number"`
	BillImages      []string        `json:"bill_images"`
	Notes           *string         `json:"notes"`
}

type UpdateTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	PaymentMethod *string          `json:"payment_method"`
	Date          *string          `json:"date"`
	Notes         *string          `json:"notes"`
}

type TransactionResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	PaymentMethod   *string         `json:"payment_method"`
	Date            string          `json:"date"`
	ReferenceNumber *string         `json:"reference_number"`
	BillImages      []string        `json:"bill_images"`
	Notes           *string         `json:"notes"`
}

type TransactionFilter struct {
	Type     string `form:"type" validate:"omitempty,oneof=income expense"`
	Category string `form:"category"`
	From     string `form:"from"`
	To       string `form:"to"`
	Limit    int    `form:"limit,default=100" validate:"min=1,max=500"`
}
