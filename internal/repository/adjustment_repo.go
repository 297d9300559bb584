package repository

import (
	"context"
	"time"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdjustmentRepository persists the append-only stock audit trail.
// There is intentionally no Update or Delete: adjustments are immutable.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *model.InventoryAdjustment) error
	List(ctx context.Context, limit int) ([]model.InventoryAdjustment, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryAdjustment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.InventoryAdjustment, error)
}

type adjustmentRepo struct{ db *gorm.DB }

func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository { return &adjustmentRepo{db: db} }

func (r *adjustmentRepo) Create(ctx context.Context, adj *model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(adj).Error
}

func (r *adjustmentRepo) List(ctx context.Context, limit int) ([]model.InventoryAdjustment, error) {
	var adjs []model.InventoryAdjustment
	err := r.db.WithContext(ctx).Preload("Item").
		Order("created_at DESC").Limit(limit).Find(&adjs).Error
	return adjs, err
}

func (r *adjustmentRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryAdjustment, error) {
	var adjs []model.InventoryAdjustment
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).
		Order("created_at DESC").Limit(limit).Find(&adjs).Error
	return adjs, err
}

func (r *adjustmentRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.InventoryAdjustment, error) {
	var adjs []model.InventoryAdjustment
	err := r.db.WithContext(ctx).Preload("Item").
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").Find(&adjs).Error
	return adjs, err
}
