package worker

// email_worker.go
// Processes invoice email jobs from QueueEmail: resolves the invoice, its
// order and the customer address, then sends the PDF through the SMTP
// circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"craftledger/internal/infra"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailWorker processes invoice email jobs from QueueEmail.
type EmailWorker struct {
	invoices  repository.InvoiceRepository
	sales     repository.SalesRepository
	customers repository.CustomerRepository
	mailer    *infra.Mailer
	cb        *infra.CircuitBreaker
	business  string
}

func NewEmailWorker(
	invoices repository.InvoiceRepository,
	sales repository.SalesRepository,
	customers repository.CustomerRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	business string,
) *EmailWorker {
	return &EmailWorker{
		invoices:  invoices,
		sales:     sales,
		customers: customers,
		mailer:    mailer,
		cb:        cb,
		business:  business,
	}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("email_worker: invalid invoice_id")
		return nil
	}

	inv, err := w.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("email_worker: fetch invoice: %w", err)
	}
	so, err := w.sales.FindByID(ctx, inv.SalesOrderID)
	if err != nil {
		return fmt.Errorf("email_worker: fetch order: %w", err)
	}
	if so.CustomerID == nil {
		log.Debug().Str("invoice", inv.InvoiceNumber).Msg("email_worker: walk-in order, no email")
		return nil
	}
	customer, err := w.customers.FindByID(ctx, *so.CustomerID)
	if err != nil {
		return fmt.Errorf("email_worker: fetch customer: %w", err)
	}
	if customer.Email == nil || *customer.Email == "" {
		log.Debug().Str("invoice", inv.InvoiceNumber).Msg("email_worker: customer has no email")
		return nil
	}

	pdfPath := ""
	if inv.PDFPath != nil {
		pdfPath = *inv.PDFPath
	}
	subject := fmt.Sprintf("%s — Invoice %s", w.business, inv.InvoiceNumber)
	body := fmt.Sprintf("Hi %s,\n\nPlease find attached invoice %s for order %s.\nTotal: %s\n\nThank you!",
		customer.Name, inv.InvoiceNumber, so.OrderNumber, inv.Amount.StringFixed(2))

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendInvoice(*customer.Email, subject, body, pdfPath)
	})
	if sendErr != nil {
		return fmt.Errorf("email_worker: send failed: %w", sendErr)
	}
	log.Info().Str("to", *customer.Email).Str("invoice", inv.InvoiceNumber).
		Msg("email_worker: invoice sent")
	return nil
}
