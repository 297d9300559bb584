package service

import (
	"context"
	"sort"
	"time"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/shopspring/decimal"
)

// ExcelWriter renders a sales report workbook and returns its bytes.
type ExcelWriter interface {
	WriteSalesReport(report *dto.SalesReportResponse) ([]byte, error)
}

// ReportService assembles derived views: the unified transaction feed and
// the sales report. Assembly is pure Go over fetched rows, so a partial
// fetch degrades to a smaller feed rather than an error.
type ReportService struct {
	transactions repository.TransactionRepository
	purchases    repository.PurchaseRepository
	sales        repository.SalesRepository
	adjustments  repository.AdjustmentRepository
	excel        ExcelWriter

	now func() time.Time
}

func NewReportService(
	transactions repository.TransactionRepository,
	purchases repository.PurchaseRepository,
	sales repository.SalesRepository,
	adjustments repository.AdjustmentRepository,
	excel ExcelWriter,
) *ReportService {
	return &ReportService{
		transactions: transactions,
		purchases:    purchases,
		sales:        sales,
		adjustments:  adjustments,
		excel:        excel,
		now:          time.Now,
	}
}

func (s *ReportService) resolveRange(filter dto.ReportFilter) (time.Time, time.Time, error) {
	to := s.now().Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
	from := to.AddDate(0, 0, -30)
	if filter.From != "" {
		f, err := parseDay("from", filter.From)
		if err != nil {
			return from, to, err
		}
		from = f
	}
	if filter.To != "" {
		t, err := parseDay("to", filter.To)
		if err != nil {
			return from, to, err
		}
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return from, to, &ValidationError{Field: "to", Message: "must not be before from"}
	}
	return from, to, nil
}

// TransactionFeed merges financial transactions, purchase orders, sales
// orders and stock adjustments into one date-sorted stream with per-kind
// totals.
func (s *ReportService) TransactionFeed(ctx context.Context, filter dto.ReportFilter) (*dto.TransactionFeedResponse, error) {
	from, to, err := s.resolveRange(filter)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.adjustments.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return BuildTransactionFeed(txns, purchases, sales, adjustments), nil
}

// BuildTransactionFeed is the pure assembly step behind TransactionFeed.
// Order-linked financial rows are skipped when the order itself is in the
// window, so an order never appears twice in the feed.
func BuildTransactionFeed(
	txns []model.FinancialTransaction,
	purchases []model.PurchaseOrder,
	sales []model.SalesOrder,
	adjustments []model.InventoryAdjustment,
) *dto.TransactionFeedResponse {
	orderRefs := map[string]bool{}
	for _, po := range purchases {
		orderRefs[po.OrderNumber] = true
	}
	for _, so := range sales {
		orderRefs[so.OrderNumber] = true
	}

	entries := make([]dto.FeedEntry, 0, len(txns)+len(purchases)+len(sales)+len(adjustments))
	totals := map[string]decimal.Decimal{
		"income":  decimal.Zero,
		"expense": decimal.Zero,
	}

	for _, t := range txns {
		if t.ReferenceNumber != nil && orderRefs[*t.ReferenceNumber] {
			continue
		}
		desc := t.Category
		if t.Notes != nil {
			desc = *t.Notes
		}
		entry := dto.FeedEntry{
			Kind:        t.Type,
			Date:        t.Date.Format("2006-01-02"),
			Amount:      t.Amount,
			Description: desc,
		}
		if t.ReferenceNumber != nil {
			entry.Reference = *t.ReferenceNumber
		}
		entries = append(entries, entry)
		totals[t.Type] = totals[t.Type].Add(t.Amount)
	}

	for _, po := range purchases {
		desc := "Purchase order"
		if po.Supplier != nil {
			desc = "Purchase from " + po.Supplier.Name
		}
		entries = append(entries, dto.FeedEntry{
			Kind:        "purchase_order",
			Date:        po.CreatedAt.Format("2006-01-02"),
			Amount:      po.TotalAmount,
			Description: desc,
			Reference:   po.OrderNumber,
		})
		totals["expense"] = totals["expense"].Add(po.TotalAmount)
	}

	for _, so := range sales {
		if so.Status == model.SalesStatusCancelled {
			continue
		}
		desc := "Sales order"
		if so.Customer != nil {
			desc = "Sale to " + so.Customer.Name
		}
		entries = append(entries, dto.FeedEntry{
			Kind:        "sales_order",
			Date:        so.CreatedAt.Format("2006-01-02"),
			Amount:      so.TotalAmount,
			Description: desc,
			Reference:   so.OrderNumber,
		})
		totals["income"] = totals["income"].Add(so.TotalAmount)
	}

	// Adjustment entries carry the quantity delta, not money, so they stay
	// out of the totals. Order-driven adjustments are already represented
	// by their orders and are skipped.
	for _, a := range adjustments {
		if a.Reason == model.AdjustmentReasonSale || a.Reason == model.AdjustmentReasonPurchaseOrder {
			continue
		}
		desc := "Stock adjustment: " + a.Reason
		if a.Item != nil {
			desc = a.Item.Name + ": " + a.Reason
		}
		entries = append(entries, dto.FeedEntry{
			Kind:        "adjustment",
			Date:        a.CreatedAt.Format("2006-01-02"),
			Amount:      a.NewQuantity.Sub(a.PreviousQuantity),
			Description: desc,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})

	return &dto.TransactionFeedResponse{Entries: entries, Totals: totals}
}

// SalesReport aggregates completed sales by day and by item.
func (s *ReportService) SalesReport(ctx context.Context, filter dto.ReportFilter) (*dto.SalesReportResponse, error) {
	from, to, err := s.resolveRange(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.sales.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report := BuildSalesReport(orders)
	report.From = from.Format("2006-01-02")
	report.To = to.Format("2006-01-02")
	return report, nil
}

// BuildSalesReport is the pure aggregation behind SalesReport.
func BuildSalesReport(orders []model.SalesOrder) *dto.SalesReportResponse {
	report := &dto.SalesReportResponse{
		OrderCount: len(orders),
		GrossSales: decimal.Zero,
		Discounts:  decimal.Zero,
		NetSales:   decimal.Zero,
	}

	byDay := map[string]*dto.SalesReportDay{}
	byItem := map[string]*dto.SalesReportItem{}

	for _, so := range orders {
		day := so.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &dto.SalesReportDay{Date: day}
			byDay[day] = d
		}
		d.OrderCount++
		d.Total = d.Total.Add(so.TotalAmount)
		report.NetSales = report.NetSales.Add(so.TotalAmount)

		for _, line := range so.Items {
			gross := line.Quantity.Mul(line.UnitPrice).Round(2)
			report.GrossSales = report.GrossSales.Add(gross)
			report.Discounts = report.Discounts.Add(line.Discount)

			it, ok := byItem[line.ItemName]
			if !ok {
				it = &dto.SalesReportItem{ItemName: line.ItemName}
				byItem[line.ItemName] = it
			}
			it.Quantity = it.Quantity.Add(line.Quantity)
			it.Revenue = it.Revenue.Add(line.TotalPrice)
		}
	}

	for _, d := range byDay {
		report.ByDay = append(report.ByDay, *d)
	}
	sort.Slice(report.ByDay, func(i, j int) bool {
		return report.ByDay[i].Date < report.ByDay[j].Date
	})

	for _, it := range byItem {
		report.TopItems = append(report.TopItems, *it)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		return report.TopItems[i].Revenue.GreaterThan(report.TopItems[j].Revenue)
	})
	if len(report.TopItems) > 10 {
		report.TopItems = report.TopItems[:10]
	}

	return report
}

// SalesReportExcel renders the sales report as an xlsx workbook.
func (s *ReportService) SalesReportExcel(ctx context.Context, filter dto.ReportFilter) ([]byte, error) {
	report, err := s.SalesReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.excel.WriteSalesReport(report)
}
