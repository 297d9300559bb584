package repository

import (
	"context"
	"time"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesFilter narrows sales order listings.
type SalesFilter struct {
	Status     string
	Source     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type SalesRepository interface {
	CreateWithLines(ctx context.Context, so *model.SalesOrder, lines []model.SalesOrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
	List(ctx context.Context, filter SalesFilter) ([]model.SalesOrder, int64, error)
	Update(ctx context.Context, so *model.SalesOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteWithLines(ctx context.Context, id uuid.UUID) error
	// OrderNumberExists probes a candidate order number for collision.
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.SalesOrder, error)
	// ListBetween returns every order in the window regardless of status,
	// unpaginated, for feed assembly.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.SalesOrder, error)
}

type salesRepo struct {
	db    *gorm.DB
	lines *LineWriter
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepo{db: db, lines: NewLineWriter()}
}

func (r *salesRepo) CreateWithLines(ctx context.Context, so *model.SalesOrder, lines []model.SalesOrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Customer").Create(so).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].SalesOrderID = so.ID
			if err := r.lines.InsertSalesLine(tx, &lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *salesRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	var so model.SalesOrder
	err := r.db.WithContext(ctx).Preload("Customer").Preload("Items").First(&so, id).Error
	return &so, err
}

func (r *salesRepo) List(ctx context.Context, filter SalesFilter) ([]model.SalesOrder, int64, error) {
	var orders []model.SalesOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SalesOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
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
	err := q.Preload("Customer").Preload("Items").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *salesRepo) Update(ctx context.Context, so *model.SalesOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Customer").Save(so).Error
}

func (r *salesRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.SalesOrder{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *salesRepo) DeleteWithLines(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sales_order_id = ?", id).
			Delete(&model.SalesOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.SalesOrder{}, id).Error
	})
}

func (r *salesRepo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SalesOrder{}).
		Where("order_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *salesRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.SalesOrder, error) {
	var orders []model.SalesOrder
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status = ? AND created_at BETWEEN ? AND ?", model.SalesStatusCompleted, from, to).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *salesRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.SalesOrder, error) {
	var orders []model.SalesOrder
	err := r.db.WithContext(ctx).Preload("Customer").
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
