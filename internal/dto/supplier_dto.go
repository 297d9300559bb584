package dto

type CreateSupplierRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PaymentTerms *string `json:"payment_terms"`
}

type SupplierResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	PaymentTerms *string `json:"payment_terms"`
	Active       bool    `json:"active"`
}

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type CustomerResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}
