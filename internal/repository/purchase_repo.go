package repository

import (
	"context"
	"time"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseFilter narrows purchase order listings.
type PurchaseFilter struct {
	Status     string
	SupplierID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type PurchaseRepository interface {
	// CreateWithLines writes the order header and its lines in one
	// transaction. Line inserts go through the LineWriter shim.
	CreateWithLines(ctx context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.PurchaseOrder, int64, error)
	// ListBetween returns every order in the window, unpaginated. Feed
	// assembly uses it so no order is silently truncated.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.PurchaseOrder, error)
	Update(ctx context.Context, po *model.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// ReplaceLines deletes the existing lines and writes the new set inside
	// one transaction, updating the header total alongside.
	ReplaceLines(ctx context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error
	// DeleteWithLines removes lines then the header in one transaction.
	DeleteWithLines(ctx context.Context, id uuid.UUID) error
}

type purchaseRepo struct {
	db    *gorm.DB
	lines *LineWriter
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db: db, lines: NewLineWriter()}
}

func (r *purchaseRepo) CreateWithLines(ctx context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Supplier").Create(po).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].PurchaseOrderID = po.ID
			if err := r.lines.InsertPurchaseLine(tx, &lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Preload("Supplier").Preload("Items").First(&po, id).Error
	return &po, err
}

func (r *purchaseRepo) List(ctx context.Context, filter PurchaseFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Supplier").Preload("Items").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *purchaseRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *purchaseRepo) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Supplier").Save(po).Error
}

func (r *purchaseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseRepo) ReplaceLines(ctx context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", po.ID).
			Delete(&model.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = uuid.Nil
			lines[i].PurchaseOrderID = po.ID
			if err := r.lines.InsertPurchaseLine(tx, &lines[i]); err != nil {
				return err
			}
		}
		return tx.Omit("Items", "Supplier").Save(po).Error
	})
}

func (r *purchaseRepo) DeleteWithLines(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).
			Delete(&model.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PurchaseOrder{}, id).Error
	})
}
