package infra

import (
	"fmt"

	"craftledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. The production
// schema (tables, the stock procedure, triggers) is owned by SQL migrations
// applied outside this process; at startup we only apply idempotent patches
// that reconcile constraints the migrations cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS / guard
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one financial row per order reference, per category and
		// direction. Partial: standalone transactions have no reference.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'financial_transactions')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_fin_txn_reference') THEN
		    CREATE UNIQUE INDEX idx_fin_txn_reference
		        ON financial_transactions (reference_number, category, type)
		        WHERE reference_number IS NOT NULL;
		  END IF;
		END $$`,
		// Audit history is always read newest-first per item.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'inventory_adjustments')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_adjustments_item_created') THEN
		    CREATE INDEX idx_adjustments_item_created
		        ON inventory_adjustments (item_id, created_at DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations builds the full schema for integration tests: AutoMigrate of
// all models, the schema patches, and a test copy of the stock procedure
// (production gets the real one from SQL migrations).
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.InventoryItem{},
		&model.ItemLink{},
		&model.InventoryAdjustment{},
		&model.Supplier{},
		&model.Customer{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
		&model.Invoice{},
		&model.FinancialTransaction{},
		&model.User{},
	); err != nil {
		return err
	}
	if err := applySchemaPatches(db); err != nil {
		return err
	}
	return db.Exec(stockProcedureDDL).Error
}

// stockProcedureDDL is a minimal implementation of the stock mutation
// procedure for test databases: updates current_stock and logs the change in
// inventory_transactions, failing when the result would go negative.
const stockProcedureDDL = `
CREATE TABLE IF NOT EXISTS inventory_transactions (
    id               uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    item_id          uuid NOT NULL,
    transaction_type varchar(40) NOT NULL,
    quantity_change  numeric(14,3) NOT NULL,
    variant_item_id  uuid,
    reference_id     uuid,
    reference_type   varchar(40),
    notes            text,
    created_by       varchar(120),
    created_at       timestamptz NOT NULL DEFAULT now()
);

CREATE OR REPLACE FUNCTION record_inventory_transaction(
    p_item_id uuid,
    p_transaction_type text,
    p_quantity_change numeric,
    p_variant_item_id uuid,
    p_reference_id uuid,
    p_reference_type text,
    p_notes text,
    p_created_by text
) RETURNS void AS $$
DECLARE
    v_target uuid;
    v_stock numeric;
BEGIN
    v_target := COALESCE(p_variant_item_id, p_item_id);
    SELECT current_stock INTO v_stock FROM inventory_items WHERE id = v_target FOR UPDATE;
    IF v_stock IS NULL THEN
        RAISE EXCEPTION 'item % not found', v_target;
    END IF;
    IF v_stock + p_quantity_change < 0 THEN
        RAISE EXCEPTION 'insufficient stock for item %', v_target;
    END IF;
    UPDATE inventory_items SET current_stock = current_stock + p_quantity_change WHERE id = v_target;
    INSERT INTO inventory_transactions
        (item_id, transaction_type, quantity_change, variant_item_id, reference_id, reference_type, notes, created_by)
    VALUES
        (p_item_id, p_transaction_type, p_quantity_change, p_variant_item_id, p_reference_id, p_reference_type, p_notes, p_created_by);
END;
$$ LANGUAGE plpgsql;
`
