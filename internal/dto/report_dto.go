package dto

import "github.com/shopspring/decimal"

// FeedEntry is one row of the unified transaction feed: financial
// transactions, purchase orders, sales orders and inventory adjustments
// merged into a single tagged, date-sorted stream.
type FeedEntry struct {
	Kind        string          `json:"kind"` // income | expense | purchase_order | sales_order | adjustment
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
}

type TransactionFeedResponse struct {
	Entries []FeedEntry                `json:"entries"`
	Totals  map[string]decimal.Decimal `json:"totals"`
}

// ─── Sales report ────────────────────────────────────────────────────────────

type SalesReportDay struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

type SalesReportItem struct {
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReportResponse struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	OrderCount  int               `json:"order_count"`
	GrossSales  decimal.Decimal   `json:"gross_sales"`
	Discounts   decimal.Decimal   `json:"discounts"`
	NetSales    decimal.Decimal   `json:"net_sales"`
	ByDay       []SalesReportDay  `json:"by_day"`
	TopItems    []SalesReportItem `json:"top_items"`
}

type ReportFilter struct {
	From string `form:"from"` // YYYY-MM-DD, default: 30 days ago
	To   string `form:"to"`   // YYYY-MM-DD, default: today
}
