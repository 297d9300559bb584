package service

import (
	"context"
	"errors"
	"time"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinanceService owns standalone financial transactions. Order-linked rows
// are written by the order workflows through the same repository upsert.
type FinanceService struct {
	transactions repository.TransactionRepository
}

func NewFinanceService(transactions repository.TransactionRepository) *FinanceService {
	return &FinanceService{transactions: transactions}
}

func parseDay(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "must be YYYY-MM-DD"}
	}
	return t, nil
}

func (s *FinanceService) Create(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	date, err := parseDay("date", req.Date)
	if err != nil {
		return nil, err
	}
	if req.Amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}

	t := &model.FinancialTransaction{
		Type:            req.Type,
		Amount:          req.Amount,
		Category:        req.Category,
		PaymentMethod:   req.PaymentMethod,
		Date:            date,
		ReferenceNumber: req.ReferenceNumber,
		BillImages:      model.JSONList(req.BillImages),
		Notes:           req.Notes,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "a transaction with this reference already exists"}
		}
		return nil, err
	}
	return transactionToResponse(t), nil
}

func (s *FinanceService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "transaction", ID: id.String()}
		}
		return nil, err
	}
	return transactionToResponse(t), nil
}

func (s *FinanceService) List(ctx context.Context, filter dto.TransactionFilter) ([]dto.TransactionResponse, error) {
	rf := repository.TransactionFilter{
		Type:     filter.Type,
		Category: filter.Category,
		Page:     1,
		Limit:    filter.Limit,
	}
	if filter.From != "" {
		from, err := parseDay("from", filter.From)
		if err != nil {
			return nil, err
		}
		rf.From = &from
	}
	if filter.To != "" {
		to, err := parseDay("to", filter.To)
		if err != nil {
			return nil, err
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		rf.To = &end
	}

	txns, _, err := s.transactions.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, *transactionToResponse(&txns[i]))
	}
	return out, nil
}

func (s *FinanceService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "transaction", ID: id.String()}
		}
		return nil, err
	}
	if req.Amount != nil {
		if req.Amount.Sign() <= 0 {
			return nil, &ValidationError{Field: "amount", Message: "must be positive"}
		}
		t.Amount = *req.Amount
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.PaymentMethod != nil {
		t.PaymentMethod = req.PaymentMethod
	}
	if req.Date != nil {
		date, err := parseDay("date", *req.Date)
		if err != nil {
			return nil, err
		}
		t.Date = date
	}
	if req.Notes != nil {
		t.Notes = req.Notes
	}
	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, err
	}
	return transactionToResponse(t), nil
}

func (s *FinanceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.transactions.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "transaction", ID: id.String()}
		}
		return err
	}
	return s.transactions.Delete(ctx, id)
}

func transactionToResponse(t *model.FinancialTransaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:              t.ID.String(),
		Type:            t.Type,
		Amount:          t.Amount,
		Category:        t.Category,
		PaymentMethod:   t.PaymentMethod,
		Date:            t.Date.Format("2006-01-02"),
		ReferenceNumber: t.ReferenceNumber,
		BillImages:      t.BillImages,
		Notes:           t.Notes,
	}
}
