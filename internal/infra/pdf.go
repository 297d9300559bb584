package infra

// pdf.go — Invoice PDF generation using go-pdf/fpdf.
// Renders an A4 invoice with business header, invoice and order numbers,
// an item table (name, quantity, unit price, discount, line total), and a
// bold total with advance/balance breakdown for partially paid orders.
//
// The output file is saved to storagePath/invoice_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"craftledger/internal/model"

	"github.com/go-pdf/fpdf"
)

// InvoicePDF renders invoice documents into a storage directory.
type InvoicePDF struct {
	businessName string
	storagePath  string
}

func NewInvoicePDF(businessName, storagePath string) *InvoicePDF {
	return &InvoicePDF{businessName: businessName, storagePath: storagePath}
}

// WriteInvoicePDF generates the invoice document for a sales order.
// Returns the absolute path to the generated file.
func (g *InvoicePDF) WriteInvoicePDF(inv *model.Invoice, so *model.SalesOrder) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	filePath := filepath.Join(g.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, g.businessName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Invoice "+inv.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Order "+so.OrderNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, inv.CreatedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")

	if so.Customer != nil {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Billed to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW, 5, so.Customer.Name, "", 1, "L", false, 0, "")
		if so.ShippingAddress != nil && *so.ShippingAddress != "" {
			pdf.CellFormat(contentW, 5, *so.ShippingAddress, "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Items table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // item name
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.16 // unit price
	col4 := contentW * 0.12 // discount
	col5 := contentW * 0.16 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Disc", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range so.Items {
		name := line.ItemName
		if len(name) > 40 {
			name = name[:39] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, line.Quantity.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, line.Discount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, line.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3+col4, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col5, 7, so.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if !so.AdvanceAmount.IsZero() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(col1+col2+col3+col4, 5, "Advance paid", "", 0, "L", false, 0, "")
		pdf.CellFormat(col5, 5, so.AdvanceAmount.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2+col3+col4, 5, "Balance due", "", 0, "L", false, 0, "")
		pdf.CellFormat(col5, 5, so.BalanceAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Thank you for your order!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
