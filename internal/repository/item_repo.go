package repository

import (
	"context"

	"craftledger/internal/dto"
	"craftledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockTransactionParams are the arguments of the store's atomic stock
// mutation procedure. The procedure is the single source of truth for
// current_stock; two call shapes exist in the wild (variant referenced by id
// vs. by name) and the repository probes the id-based shape first.
type StockTransactionParams struct {
	ItemID          uuid.UUID
	TransactionType string // sales_order | purchase_order | craft_completed | manufacturing_used | adjustment
	QuantityChange  decimal.Decimal
	VariantItemID   *uuid.UUID
	VariantName     *string
	ReferenceID     *uuid.UUID
	ReferenceType   *string
	Notes           *string
	CreatedBy       *string
}

// ItemRepository defines the data access contract for inventory items and
// their bill-of-materials links. Services depend on this interface, not on
// the concrete GORM implementation, enabling clean unit testing via stubs.
type ItemRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByName(ctx context.Context, name string) (*model.InventoryItem, error)
	List(ctx context.Context, filter dto.ItemFilter) ([]model.InventoryItem, int64, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	ListVariants(ctx context.Context, parentID uuid.UUID) ([]model.InventoryItem, error)
	Update(ctx context.Context, item *model.InventoryItem) error
	// UpdateFields sends only the given columns — partial-update semantics,
	// omitted fields are left untouched server-side.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Links
	CreateLink(ctx context.Context, link *model.ItemLink) error
	ListLinks(ctx context.Context) ([]model.ItemLink, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
	DeleteLinksForItem(ctx context.Context, itemID uuid.UUID) error

	// RecordStockTransaction invokes the store-side atomic stock mutation.
	// Returns ErrStockProcedureMissing when the procedure does not exist.
	RecordStockTransaction(ctx context.Context, p StockTransactionParams) error
	// UpdateStock is the degraded fallback when the procedure is missing:
	// a direct relative update of current_stock with no transaction log.
	UpdateStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).Preload("Variants").First(&item, id).Error
	return &item, err
}

func (r *itemRepo) FindByName(ctx context.Context, name string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).Where("name = ? AND active = true", name).First(&item).Error
	return &item, err
}

func (r *itemRepo) List(ctx context.Context, filter dto.ItemFilter) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	q := r.db.WithContext(ctx).Model(&model.InventoryItem{})

	// Active filter: "false" = inactive, "all" = everything, default = active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}

	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.ItemType != "" {
		q = q.Where("item_type = ?", filter.ItemType)
	}
	if filter.ItemCategory != "" {
		q = q.Where("item_category = ?", filter.ItemCategory)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Variants").Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("active = true AND parent_item_id IS NULL AND current_stock <= min_stock AND min_stock > 0").
		Order("current_stock ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) ListVariants(ctx context.Context, parentID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Where("parent_item_id = ?", parentID).Find(&items).Error
	return items, err
}

func (r *itemRepo) Update(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.InventoryItem{}, id).Error
}

// ── Links ────────────────────────────────────────────────────────────────────

func (r *itemRepo) CreateLink(ctx context.Context, link *model.ItemLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *itemRepo) ListLinks(ctx context.Context) ([]model.ItemLink, error) {
	var links []model.ItemLink
	err := r.db.WithContext(ctx).Preload("Parent").Preload("Child").Find(&links).Error
	return links, err
}

func (r *itemRepo) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ItemLink{}, id).Error
}

func (r *itemRepo) DeleteLinksForItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("parent_item_id = ? OR child_item_id = ?", itemID, itemID).
		Delete(&model.ItemLink{}).Error
}

// ── Stock mutation ───────────────────────────────────────────────────────────

func (r *itemRepo) RecordStockTransaction(ctx context.Context, p StockTransactionParams) error {
	// Preferred shape: variant referenced by id.
	err := r.db.WithContext(ctx).Exec(
		`SELECT record_inventory_transaction(?::uuid, ?, ?::numeric, ?::uuid, ?::uuid, ?, ?, ?)`,
		p.ItemID, p.TransactionType, p.QuantityChange, p.VariantItemID,
		p.ReferenceID, p.ReferenceType, p.Notes, p.CreatedBy,
	).Error
	if err == nil {
		return nil
	}
	if !IsUndefinedFunction(err) {
		return err
	}

	// Legacy shape: variant referenced by name.
	err = r.db.WithContext(ctx).Exec(
		`SELECT record_inventory_transaction(?::uuid, ?, ?::numeric, ?::text, ?::uuid, ?, ?, ?)`,
		p.ItemID, p.TransactionType, p.QuantityChange, p.VariantName,
		p.ReferenceID, p.ReferenceType, p.Notes, p.CreatedBy,
	).Error
	if err == nil {
		return nil
	}
	if IsUndefinedFunction(err) {
		return ErrStockProcedureMissing
	}
	return err
}

func (r *itemRepo) UpdateStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta)).Error
}

func (r *itemRepo) DB() *gorm.DB { return r.db }
