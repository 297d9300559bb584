package service

import (
	"context"
	"errors"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierService struct {
	suppliers repository.SupplierRepository
}

func NewSupplierService(suppliers repository.SupplierRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers}
}

func (s *SupplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier := &model.Supplier{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		PaymentTerms: req.PaymentTerms,
		Active:       true,
	}
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "a supplier with this name already exists"}
		}
		return nil, err
	}
	return supplierToResponse(supplier), nil
}

func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "supplier", ID: id.String()}
		}
		return nil, err
	}
	return supplierToResponse(supplier), nil
}

func (s *SupplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "supplier", ID: id.String()}
		}
		return nil, err
	}
	supplier.Name = req.Name
	supplier.Address = req.Address
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.PaymentTerms = req.PaymentTerms
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "a supplier with this name already exists"}
		}
		return nil, err
	}
	return supplierToResponse(supplier), nil
}

func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.suppliers.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "supplier", ID: id.String()}
		}
		return err
	}
	return s.suppliers.Delete(ctx, id)
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		Address:      s.Address,
		Phone:        s.Phone,
		Email:        s.Email,
		PaymentTerms: s.PaymentTerms,
		Active:       s.Active,
	}
}
