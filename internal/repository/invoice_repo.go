package repository

import (
	"context"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]model.Invoice, int64, error)
	Update(ctx context.Context, inv *model.Invoice) error
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("SalesOrder").First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("sales_order_id = ?", salesOrderID).First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, limit, offset int) ([]model.Invoice, int64, error) {
	var invs []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&invs).Error
	return invs, total, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}
