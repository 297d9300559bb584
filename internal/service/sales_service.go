package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderNumberAttempts = 10

// MailQueue accepts invoice ids for asynchronous email delivery.
type MailQueue interface {
	EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID) error
}

// InvoicePDFWriter renders an invoice document and returns its storage path.
type InvoicePDFWriter interface {
	WriteInvoicePDF(inv *model.Invoice, so *model.SalesOrder) (string, error)
}

// SalesService owns the sales workflow: order creation across POS, website
// and manual channels, status transitions with stock effects, and invoicing.
type SalesService struct {
	sales        repository.SalesRepository
	customers    repository.CustomerRepository
	items        repository.ItemRepository
	invoices     repository.InvoiceRepository
	transactions repository.TransactionRepository
	inventory    *InventoryService
	mailQueue    MailQueue
	pdf          InvoicePDFWriter

	rng *rand.Rand
	now func() time.Time
}

func NewSalesService(
	sales repository.SalesRepository,
	customers repository.CustomerRepository,
	items repository.ItemRepository,
	invoices repository.InvoiceRepository,
	transactions repository.TransactionRepository,
	inventory *InventoryService,
	mailQueue MailQueue,
	pdf InvoicePDFWriter,
) *SalesService {
	return &SalesService{
		sales:        sales,
		customers:    customers,
		items:        items,
		invoices:     invoices,
		transactions: transactions,
		inventory:    inventory,
		mailQueue:    mailQueue,
		pdf:          pdf,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
}

// generateOrderNumber draws random 8-digit numbers and probes for collision,
// bounded at orderNumberAttempts.
func (s *SalesService) generateOrderNumber(ctx context.Context) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		candidate := fmt.Sprintf("%08d", 10000000+s.rng.Intn(90000000))
		exists, err := s.sales.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &ExhaustedRetriesError{Operation: "order number generation", Attempts: orderNumberAttempts}
}

func (s *SalesService) generateInvoiceNumber() string {
	t := s.now()
	return fmt.Sprintf("INV-%04d%02d-%04d", t.Year(), t.Month(), s.rng.Intn(10000))
}

// normalizeCustomer maps the walk-in sentinels onto a NULL customer.
func (s *SalesService) normalizeCustomer(ctx context.Context, raw *string) (*uuid.UUID, *model.Customer, error) {
	if raw == nil || *raw == "" || *raw == "walk-in" {
		return nil, nil, nil
	}
	customerID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, nil, &ValidationError{Field: "customer_id", Message: "must be a UUID or \"walk-in\""}
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Entity: "customer", ID: customerID.String()}
		}
		return nil, nil, err
	}
	return &customer.ID, customer, nil
}

func (s *SalesService) Create(ctx context.Context, req dto.CreateSalesOrderRequest, createdBy *string) (*dto.SalesOrderResponse, error) {
	customerID, customer, err := s.normalizeCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	lines := make([]model.SalesOrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, lr := range req.Items {
		if lr.Quantity.Sign() <= 0 {
			return nil, &ValidationError{Field: "quantity", Message: "must be positive"}
		}
		itemID, err := uuid.Parse(lr.ItemID)
		if err != nil {
			return nil, &ValidationError{Field: "item_id", Message: "must be a UUID"}
		}
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "item", ID: itemID.String()}
			}
			return nil, err
		}

		unitPrice := lr.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = item.SellingPrice
			if item.SalePrice != nil && item.SalePrice.Sign() > 0 {
				unitPrice = *item.SalePrice
			}
		}
		linePrice := lr.Quantity.Mul(unitPrice).Sub(lr.Discount).Round(2)
		if linePrice.IsNegative() {
			return nil, &ValidationError{Field: "discount", Message: "exceeds line amount"}
		}

		line := model.SalesOrderItem{
			ItemID:    &item.ID,
			ItemName:  item.Name,
			Quantity:  lr.Quantity,
			UnitPrice: unitPrice,
			Discount:  lr.Discount,
			TotalPrice: linePrice,
		}
		if lr.VariantItemID != nil && *lr.VariantItemID != "" {
			variantID, err := uuid.Parse(*lr.VariantItemID)
			if err != nil {
				return nil, &ValidationError{Field: "variant_item_id", Message: "must be a UUID"}
			}
			line.VariantItemID = &variantID
		}
		total = total.Add(linePrice)
		lines = append(lines, line)
	}

	if req.AdvanceAmount.IsNegative() {
		return nil, &ValidationError{Field: "advance_amount", Message: "must not be negative"}
	}
	if req.AdvanceAmount.GreaterThan(total) {
		return nil, &ValidationError{Field: "advance_amount", Message: "exceeds order total"}
	}

	orderNumber, err := s.generateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.SalesStatusPending
	}
	source := req.Source
	if source == "" {
		source = model.OrderSourceManual
	}

	so := &model.SalesOrder{
		OrderNumber:     orderNumber,
		CustomerID:      customerID,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		AdvanceAmount:   req.AdvanceAmount,
		BalanceAmount:   total.Sub(req.AdvanceAmount),
		TotalAmount:     total,
		Source:          source,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	if req.DeliveryDate != nil && *req.DeliveryDate != "" {
		d, err := time.Parse("2006-01-02", *req.DeliveryDate)
		if err != nil {
			return nil, &ValidationError{Field: "delivery_date", Message: "must be YYYY-MM-DD"}
		}
		so.DeliveryDate = &d
	}

	if err := s.sales.CreateWithLines(ctx, so, lines); err != nil {
		return nil, err
	}
	so.Items = lines
	so.Customer = customer

	// Orders born completed (POS checkout) take their stock and financial
	// effects immediately.
	if status == model.SalesStatusCompleted {
		s.applyCompletion(ctx, so, createdBy)
	}

	return salesToResponse(so), nil
}

func (s *SalesService) Get(ctx context.Context, id uuid.UUID) (*dto.SalesOrderResponse, error) {
	so, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "sales order", ID: id.String()}
		}
		return nil, err
	}
	return salesToResponse(so), nil
}

func (s *SalesService) List(ctx context.Context, filter dto.SalesOrderFilter) (*dto.SalesOrderListResponse, error) {
	rf := repository.SalesFilter{
		Status: filter.Status,
		Source: filter.Source,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, &ValidationError{Field: "customer_id", Message: "must be a UUID"}
		}
		rf.CustomerID = &customerID
	}
	orders, total, err := s.sales.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SalesOrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *salesToResponse(&orders[i]))
	}
	return &dto.SalesOrderListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// isCompletedStatus reports whether a status carries completion side effects.
// These statuses form a one-way family: once an order enters it, stock and
// income have been applied and the only exit is cancellation.
func isCompletedStatus(status string) bool {
	switch status {
	case model.SalesStatusCompleted, model.SalesStatusDelivered, model.SalesStatusFullPaymentDone:
		return true
	}
	return false
}

// UpdateStatus transitions the order. Moving into completed applies stock
// and financial effects once; cancelling a completed order restores stock.
// Downgrading out of the completed family is rejected, otherwise a later
// re-completion would deduct the same lines twice.
func (s *SalesService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy *string) (*dto.SalesOrderResponse, error) {
	so, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "sales order", ID: id.String()}
		}
		return nil, err
	}
	if so.Status == status {
		return salesToResponse(so), nil
	}
	if so.Status == model.SalesStatusCancelled {
		return nil, &InvalidOperationError{Message: "cancelled orders cannot change status"}
	}

	wasCompleted := isCompletedStatus(so.Status)
	if wasCompleted && !isCompletedStatus(status) && status != model.SalesStatusCancelled {
		return nil, &InvalidOperationError{
			Message: "completed orders can only advance within completed states or be cancelled",
		}
	}

	if err := s.sales.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	so.Status = status

	switch {
	case isCompletedStatus(status):
		if !wasCompleted {
			s.applyCompletion(ctx, so, updatedBy)
		}
	case status == model.SalesStatusCancelled:
		if wasCompleted {
			s.restoreStock(ctx, so, updatedBy)
			if err := s.transactions.DeleteByReference(ctx, so.OrderNumber,
				model.TransactionCategorySales, model.TransactionTypeIncome); err != nil {
				log.Error().Err(err).Str("order", so.OrderNumber).
					Msg("income cleanup failed on cancellation")
			}
		}
	}

	return s.Get(ctx, id)
}

// applyCompletion runs the completion side effects: stock-out per line,
// income record, invoice and its email. Each step is best-effort and logged.
func (s *SalesService) applyCompletion(ctx context.Context, so *model.SalesOrder, by *string) {
	refType := "sales_order"
	for _, line := range so.Items {
		if line.ItemID == nil {
			continue
		}
		target := *line.ItemID
		if line.VariantItemID != nil {
			target = *line.VariantItemID
		}
		_, err := s.inventory.AdjustStock(ctx, AdjustStockParams{
			ItemID:        target,
			QuantityDelta: line.Quantity.Neg(),
			Reason:        model.AdjustmentReasonSale,
			ReferenceID:   &so.ID,
			ReferenceType: &refType,
			CreatedBy:     by,
		})
		if err != nil {
			log.Error().Err(err).
				Str("order", so.OrderNumber).Str("item", line.ItemName).
				Msg("stock-out failed for sales line")
		}
	}

	ref := so.OrderNumber
	notes := "Sales order " + so.OrderNumber
	if err := s.transactions.Upsert(ctx, &model.FinancialTransaction{
		Type:            model.TransactionTypeIncome,
		Amount:          so.TotalAmount,
		Category:        model.TransactionCategorySales,
		PaymentMethod:   so.PaymentMethod,
		Date:            s.now(),
		ReferenceNumber: &ref,
		Notes:           &notes,
	}); err != nil {
		log.Error().Err(err).Str("order", so.OrderNumber).
			Msg("income record failed for sales order")
	}

	if _, err := s.ensureInvoice(ctx, so); err != nil {
		log.Error().Err(err).Str("order", so.OrderNumber).
			Msg("invoice creation failed")
	}
}

func (s *SalesService) restoreStock(ctx context.Context, so *model.SalesOrder, by *string) {
	refType := "sales_order"
	for _, line := range so.Items {
		if line.ItemID == nil {
			continue
		}
		target := *line.ItemID
		if line.VariantItemID != nil {
			target = *line.VariantItemID
		}
		_, err := s.inventory.AdjustStock(ctx, AdjustStockParams{
			ItemID:        target,
			QuantityDelta: line.Quantity,
			Reason:        model.AdjustmentReasonReturn,
			ReferenceID:   &so.ID,
			ReferenceType: &refType,
			CreatedBy:     by,
		})
		if err != nil {
			log.Error().Err(err).
				Str("order", so.OrderNumber).Str("item", line.ItemName).
				Msg("stock restore failed on cancellation")
		}
	}
}

// ensureInvoice returns the order's invoice, creating it (with PDF and a
// queued email) if absent.
func (s *SalesService) ensureInvoice(ctx context.Context, so *model.SalesOrder) (*model.Invoice, error) {
	existing, err := s.invoices.FindBySalesOrder(ctx, so.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inv := &model.Invoice{
		SalesOrderID:  so.ID,
		InvoiceNumber: s.generateInvoiceNumber(),
		Amount:        so.TotalAmount,
		Status:        model.InvoiceStatusPending,
	}
	if s.pdf != nil {
		if path, perr := s.pdf.WriteInvoicePDF(inv, so); perr != nil {
			log.Error().Err(perr).Str("order", so.OrderNumber).Msg("invoice PDF render failed")
		} else {
			inv.PDFPath = &path
		}
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		if repository.IsUniqueViolation(err) {
			return s.invoices.FindBySalesOrder(ctx, so.ID)
		}
		return nil, err
	}

	if s.mailQueue != nil {
		if qerr := s.mailQueue.EnqueueInvoiceEmail(ctx, inv.ID); qerr != nil {
			log.Error().Err(qerr).Str("invoice", inv.InvoiceNumber).
				Msg("invoice email enqueue failed")
		}
	}
	return inv, nil
}

// GetInvoice fetches the invoice of a sales order, creating it on first
// request for completed orders.
func (s *SalesService) GetInvoice(ctx context.Context, salesOrderID uuid.UUID) (*dto.InvoiceResponse, error) {
	so, err := s.sales.FindByID(ctx, salesOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "sales order", ID: salesOrderID.String()}
		}
		return nil, err
	}

	inv, err := s.invoices.FindBySalesOrder(ctx, so.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if so.Status != model.SalesStatusCompleted && so.Status != model.SalesStatusFullPaymentDone {
			return nil, &NotFoundError{Entity: "invoice for order", ID: so.OrderNumber}
		}
		inv, err = s.ensureInvoice(ctx, so)
	}
	if err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

// MarkInvoicePaid stamps the invoice paid with the current time.
func (s *SalesService) MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "invoice", ID: invoiceID.String()}
		}
		return nil, err
	}
	if inv.Status == model.InvoiceStatusPaid {
		return invoiceToResponse(inv), nil
	}
	now := s.now()
	inv.Status = model.InvoiceStatusPaid
	inv.PaidAt = &now
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

func salesToResponse(so *model.SalesOrder) *dto.SalesOrderResponse {
	resp := &dto.SalesOrderResponse{
		ID:              so.ID.String(),
		OrderNumber:     so.OrderNumber,
		Status:          so.Status,
		PaymentMethod:   so.PaymentMethod,
		AdvanceAmount:   so.AdvanceAmount,
		BalanceAmount:   so.BalanceAmount,
		TotalAmount:     so.TotalAmount,
		Source:          so.Source,
		ShippingAddress: so.ShippingAddress,
		Notes:           so.Notes,
		Items:           make([]dto.SalesLineResponse, 0, len(so.Items)),
		CreatedAt:       so.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if so.CustomerID != nil {
		id := so.CustomerID.String()
		resp.CustomerID = &id
	}
	if so.Customer != nil {
		resp.CustomerName = so.Customer.Name
	}
	for _, line := range so.Items {
		lr := dto.SalesLineResponse{
			ID:         line.ID.String(),
			ItemName:   line.ItemName,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Discount:   line.Discount,
			TotalPrice: line.TotalPrice,
		}
		if line.ItemID != nil {
			id := line.ItemID.String()
			lr.ItemID = &id
		}
		if line.VariantItemID != nil {
			id := line.VariantItemID.String()
			lr.VariantItemID = &id
		}
		resp.Items = append(resp.Items, lr)
	}
	return resp
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		SalesOrderID:  inv.SalesOrderID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		Status:        inv.Status,
		PDFUrl:        inv.PDFPath,
		CreatedAt:     inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if inv.PaidAt != nil {
		t := inv.PaidAt.Format("2006-01-02T15:04:05Z07:00")
		resp.PaidAt = &t
	}
	return resp
}
