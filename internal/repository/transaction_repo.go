package repository

import (
	"context"
	"time"

	"craftledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter narrows financial transaction listings.
type TransactionFilter struct {
	Type     string
	Category string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type TransactionRepository interface {
	Create(ctx context.Context, t *model.FinancialTransaction) error
	// Upsert inserts or, on a (reference_number, category, type) collision,
	// refreshes amount, payment method, date and notes of the existing row.
	// This keeps one financial record per order even under concurrent or
	// repeated order mutations.
	Upsert(ctx context.Context, t *model.FinancialTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialTransaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.FinancialTransaction, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.FinancialTransaction, error)
	Update(ctx context.Context, t *model.FinancialTransaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByReference(ctx context.Context, referenceNumber, category, txType string) error
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) Create(ctx context.Context, t *model.FinancialTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) Upsert(ctx context.Context, t *model.FinancialTransaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "reference_number"}, {Name: "category"}, {Name: "type"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "reference_number IS NOT NULL"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "payment_method", "date", "notes", "updated_at",
		}),
	}).Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialTransaction, error) {
	var t model.FinancialTransaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, filter TransactionFilter) ([]model.FinancialTransaction, int64, error) {
	var txns []model.FinancialTransaction
	var total int64

	q := r.db.WithContext(ctx).Model(&model.FinancialTransaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("date DESC").Limit(filter.Limit).Offset(offset).Find(&txns).Error
	return txns, total, err
}

func (r *transactionRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.FinancialTransaction, error) {
	var txns []model.FinancialTransaction
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC").
		Find(&txns).Error
	return txns, err
}

func (r *transactionRepo) Update(ctx context.Context, t *model.FinancialTransaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FinancialTransaction{}, id).Error
}

func (r *transactionRepo) DeleteByReference(ctx context.Context, referenceNumber, category, txType string) error {
	return r.db.WithContext(ctx).
		Where("reference_number = ? AND category = ? AND type = ?", referenceNumber, category, txType).
		Delete(&model.FinancialTransaction{}).Error
}
