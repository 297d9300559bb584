package repository

// line_writer.go — compatibility shim for the half-finished line-item schema
// migration. New deployments link order lines to inventory items by id; older
// databases only have name columns. Inserts probe the id-backed schema first
// and fall back to a name-only INSERT when the id columns are missing.
// TODO: delete this shim once all deployments confirm the item_id columns.

import (
	"craftledger/internal/model"

	"gorm.io/gorm"
)

// LineWriter writes order line rows with the dual-schema fallback.
// It operates on a transaction handle so line inserts stay inside the
// caller's order transaction.
type LineWriter struct{}

func NewLineWriter() *LineWriter { return &LineWriter{} }

// InsertPurchaseLine writes one purchase order line.
func (w *LineWriter) InsertPurchaseLine(tx *gorm.DB, line *model.PurchaseOrderItem) error {
	err := tx.Create(line).Error
	if err == nil || !IsUndefinedColumn(err) {
		return err
	}
	// Legacy schema: no item_id / variant_item_id columns.
	return tx.Exec(
		`INSERT INTO purchase_order_items
		   (purchase_order_id, item_name, quantity, unit_cost, total_cost, received_quantity)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		line.PurchaseOrderID, line.ItemName, line.Quantity,
		line.UnitCost, line.TotalCost, line.ReceivedQuantity,
	).Error
}

// InsertSalesLine writes one sales order line.
func (w *LineWriter) InsertSalesLine(tx *gorm.DB, line *model.SalesOrderItem) error {
	err := tx.Create(line).Error
	if err == nil || !IsUndefinedColumn(err) {
		return err
	}
	return tx.Exec(
		`INSERT INTO sales_order_items
		   (sales_order_id, item_name, quantity, unit_price, discount, total_price)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		line.SalesOrderID, line.ItemName, line.Quantity,
		line.UnitPrice, line.Discount, line.TotalPrice,
	).Error
}
