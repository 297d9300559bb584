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

// ItemService owns the inventory item catalog: CRUD, variants, filtering.
type ItemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) *ItemService {
	return &ItemService{items: items}
}

func (s *ItemService) Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	item := &model.InventoryItem{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Unit:         req.Unit,
		PurchaseCost: req.PurchaseCost,
		SellingPrice: req.SellingPrice,
		SalePrice:    req.SalePrice,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		ItemType:     req.ItemType,
		ItemCategory: req.ItemCategory,
		Active:       true,

		ImageURL:         req.ImageURL,
		AdditionalImages: model.JSONList(req.AdditionalImages),
		Slug:             req.Slug,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		Featured:         req.Featured,
		Dimensions:       model.JSONMap(req.Dimensions),
		Specifications:   model.JSONMap(req.Specifications),
		ProductTypes:     model.JSONList(req.ProductTypes),
	}
	if item.Unit == "" {
		item.Unit = "unit"
	}
	if item.ItemType == "" {
		item.ItemType = model.ItemTypeMaterials
	}
	if item.ItemCategory == "" {
		item.ItemCategory = model.ItemCategoryCrafting
	}

	if req.ParentItemID != nil && *req.ParentItemID != "" {
		parentID, err := uuid.Parse(*req.ParentItemID)
		if err != nil {
			return nil, &ValidationError{Field: "parent_item_id", Message: "must be a UUID"}
		}
		parent, err := s.items.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "item", ID: parentID.String()}
			}
			return nil, err
		}
		// One level of nesting only: a variant cannot parent a variant.
		if parent.IsVariant() {
			return nil, &InvalidOperationError{Message: "parent item is itself a variant"}
		}
		item.ParentItemID = &parentID
	}

	if err := s.items.Create(ctx, item); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "an item with this SKU already exists"}
		}
		return nil, err
	}
	return itemToResponse(item), nil
}

func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "item", ID: id.String()}
		}
		return nil, err
	}
	return itemToResponse(item), nil
}

func (s *ItemService) List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	items, total, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		data = append(data, *itemToResponse(&items[i]))
	}
	return &dto.ItemListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Update applies a partial update: only non-nil request fields are written.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Unit != nil {
		fields["unit"] = *req.Unit
	}
	if req.PurchaseCost != nil {
		fields["purchase_cost"] = *req.PurchaseCost
	}
	if req.SellingPrice != nil {
		fields["selling_price"] = *req.SellingPrice
	}
	if req.SalePrice != nil {
		fields["sale_price"] = *req.SalePrice
	}
	if req.MinStock != nil {
		fields["min_stock"] = *req.MinStock
	}
	if req.ItemType != nil {
		fields["item_type"] = *req.ItemType
	}
	if req.ItemCategory != nil {
		fields["item_category"] = *req.ItemCategory
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.AdditionalImages != nil {
		fields["additional_images"] = model.JSONList(*req.AdditionalImages)
	}
	if req.Slug != nil {
		fields["slug"] = *req.Slug
	}
	if req.MetaTitle != nil {
		fields["meta_title"] = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		fields["meta_description"] = *req.MetaDescription
	}
	if req.Featured != nil {
		fields["featured"] = *req.Featured
	}
	if req.Dimensions != nil {
		fields["dimensions"] = model.JSONMap(*req.Dimensions)
	}
	if req.Specifications != nil {
		fields["specifications"] = model.JSONMap(*req.Specifications)
	}
	if req.ProductTypes != nil {
		fields["product_types"] = model.JSONList(*req.ProductTypes)
	}

	if len(fields) == 0 {
		return nil, &ValidationError{Message: "no fields to update"}
	}

	if err := s.items.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "item", ID: id.String()}
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an item and its link edges. Items referenced by order lines
// keep their rows (lines carry a nullable item id plus the name snapshot).
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "item", ID: id.String()}
		}
		return err
	}
	if len(item.Variants) > 0 {
		return &InvalidOperationError{Message: "delete the item's variants first"}
	}
	if err := s.items.DeleteLinksForItem(ctx, id); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}

func (s *ItemService) ListVariants(ctx context.Context, parentID uuid.UUID) ([]dto.ItemResponse, error) {
	variants, err := s.items.ListVariants(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(variants))
	for i := range variants {
		out = append(out, *itemToResponse(&variants[i]))
	}
	return out, nil
}

func itemToResponse(item *model.InventoryItem) *dto.ItemResponse {
	resp := &dto.ItemResponse{
		ID:           item.ID.String(),
		SKU:          item.SKU,
		Name:         item.Name,
		Description:  item.Description,
		Unit:         item.Unit,
		PurchaseCost: item.PurchaseCost,
		SellingPrice: item.SellingPrice,
		SalePrice:    item.SalePrice,
		CurrentStock: item.AggregateStock(),
		MinStock:     item.MinStock,
		ItemType:     item.ItemType,
		ItemCategory: item.ItemCategory,
		Active:       item.Active,

		ImageURL:         item.ImageURL,
		AdditionalImages: item.AdditionalImages,
		Slug:             item.Slug,
		MetaTitle:        item.MetaTitle,
		MetaDescription:  item.MetaDescription,
		Featured:         item.Featured,
		Dimensions:       item.Dimensions,
		Specifications:   item.Specifications,
		ProductTypes:     item.ProductTypes,

		CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if item.ParentItemID != nil {
		id := item.ParentItemID.String()
		resp.ParentItemID = &id
	}
	for i := range item.Variants {
		resp.Variants = append(resp.Variants, *itemToResponse(&item.Variants[i]))
	}
	return resp
}
