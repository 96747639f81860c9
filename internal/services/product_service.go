package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/cache"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ProductService struct {
	productRepo repositories.ProductRepository
	variantRepo repositories.VariantRepository
	cache       cache.ProductCache
	audit       *AuditService
}

func NewProductService(
	productRepo repositories.ProductRepository,
	variantRepo repositories.VariantRepository,
	productCache cache.ProductCache,
	audit *AuditService,
) *ProductService {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	return &ProductService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		cache:       productCache,
		audit:       audit,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, adminID uuid.UUID, req dtos.CreateProductRequest) (*models.Product, error) {
	if err := checkPrice("base_price", req.BasePrice); err != nil {
		return nil, err
	}
	p := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		SKUPrefix:   req.SKUPrefix,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Status:      models.ProductStatusDraft,
		Options:     optionsFromInput(req.Options),
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		if appErr, ok := rejectedError("Product "+p.Name, err); ok {
			return nil, appErr
		}
		return nil, internalError("Failed to create product", err)
	}

	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditCreate,
		TargetID:    &p.ID,
		TargetType:  models.TargetProduct,
		TargetLabel: p.Name,
		Details:     p,
	})
	return p, nil
}

// GetProduct reads through the product cache.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	cached, gen, ok := s.cache.Get(ctx, id)
	if ok {
		return cached, nil
	}
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load product", err)
	}
	if p == nil {
		return nil, notFound("Product")
	}
	s.cache.Set(ctx, p, gen)
	return p, nil
}

// loadProduct bypasses the cache; writes are always built on the stored row.
func (s *ProductService) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("Failed to load product", err)
	}
	if p == nil {
		return nil, notFound("Product")
	}
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, adminID, productID uuid.UUID, req dtos.UpdateProductRequest) (*models.Product, error) {
	before, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	edit := *before
	if req.Name != nil {
		edit.Name = *req.Name
	}
	if req.Slug != nil {
		edit.Slug = *req.Slug
	}
	if req.SKUPrefix != nil {
		edit.SKUPrefix = *req.SKUPrefix
	}
	if req.Description != nil {
		edit.Description = *req.Description
	}
	if req.BasePrice != nil {
		if err := checkPrice("base_price", *req.BasePrice); err != nil {
			return nil, err
		}
		edit.BasePrice = *req.BasePrice
	}
	if req.Status != nil {
		edit.Status = *req.Status
	}

	updated, err := s.productRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	s.cache.Invalidate(ctx, productID)
	if err != nil {
		return nil, writeError[*models.Product]("product", "Product "+before.Name, err)
	}
	writeSucceeded("product")

	s.audit.RecordChange(adminID, models.TargetProduct, updated.ID, updated.Name, before, updated)
	return updated, nil
}

// ReplaceOptions swaps the product's option list. It never touches the
// variants; regenerating them is a separate, confirmed step.
func (s *ProductService) ReplaceOptions(ctx context.Context, adminID, productID uuid.UUID, req dtos.ReplaceOptionsRequest) (*models.Product, error) {
	before, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	edit := *before
	edit.Options = optionsFromInput(req.Options)

	updated, err := s.productRepo.SaveOptionsIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	s.cache.Invalidate(ctx, productID)
	if err != nil {
		return nil, writeError[*models.Product]("product", "Product "+before.Name, err)
	}
	writeSucceeded("product")

	s.audit.RecordChange(adminID, models.TargetProduct, updated.ID, updated.Name,
		map[string]any{"options": optionSummary(before.Options)},
		map[string]any{"options": optionSummary(updated.Options)},
	)
	return updated, nil
}

// PreviewVariants returns the matrix RegenerateVariants would write.
func (s *ProductService) PreviewVariants(ctx context.Context, productID uuid.UUID) (*dtos.VariantMatrixResponse, error) {
	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	variants, err := GenerateVariantMatrix(p.SKUPrefix, p.BasePrice, p.Options)
	if err != nil {
		return nil, validationError(err.Error(), err)
	}
	return &dtos.VariantMatrixResponse{Variants: variants}, nil
}

/*
RegenerateVariants replaces every variant of the product with the cartesian
product of its current options. Per-variant edits (SKU overrides, prices,
stock) are lost, so the caller must send confirm=true together with the
product's updated_at. The product row is the lock: if it changed since the
admin looked at it, nothing is written and a conflict comes back.
*/
func (s *ProductService) RegenerateVariants(ctx context.Context, adminID, productID uuid.UUID, req dtos.RegenerateVariantsRequest) (*dtos.VariantMatrixResponse, error) {
	if !req.Confirm {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeConfirmRequired,
			Message:    "Regenerating variants discards every per-variant edit. Resend with confirm=true to proceed.",
		}
	}

	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	variants, err := GenerateVariantMatrix(p.SKUPrefix, p.BasePrice, p.Options)
	if err != nil {
		return nil, validationError(err.Error(), err)
	}
	if len(variants) == 0 {
		return nil, validationError(ErrEmptyMatrix.Error(), ErrEmptyMatrix)
	}
	for i := range variants {
		variants[i].ID = uuid.New()
		variants[i].ProductID = p.ID
	}

	updated, err := s.productRepo.SaveVariantsIfVersion(ctx, p, req.ExpectedUpdatedAt, variants)
	s.cache.Invalidate(ctx, productID)
	if err != nil {
		return nil, writeError[*models.Product]("product", "Product "+p.Name, err)
	}
	writeSucceeded("product")

	s.audit.Record(AuditEntry{
		AdminID:     adminID,
		Action:      models.AuditGenerate,
		TargetID:    &updated.ID,
		TargetType:  models.TargetProductVariant,
		TargetLabel: updated.Name,
		Details: map[string]any{
			"variant_count": len(variants),
			"options":       optionSummary(updated.Options),
		},
	})
	return &dtos.VariantMatrixResponse{Product: updated, Variants: variants}, nil
}

func (s *ProductService) ListVariants(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, internalError("Failed to list variants", err)
	}
	if variants == nil {
		variants = []*models.ProductVariant{}
	}
	return variants, nil
}

func (s *ProductService) UpdateVariant(ctx context.Context, adminID, variantID uuid.UUID, req dtos.UpdateVariantRequest) (*models.ProductVariant, error) {
	before, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, internalError("Failed to load variant", err)
	}
	if before == nil {
		return nil, notFound("Variant")
	}

	edit := *before
	if req.SKU != nil {
		edit.SKU = *req.SKU
	}
	if req.Price != nil {
		if err := checkPrice("price", *req.Price); err != nil {
			return nil, err
		}
		edit.Price = *req.Price
	}
	if req.CostPrice != nil {
		if err := checkPrice("cost_price", *req.CostPrice); err != nil {
			return nil, err
		}
		edit.CostPrice = *req.CostPrice
	}
	if req.Stock != nil {
		edit.Stock = *req.Stock
	}

	updated, err := s.variantRepo.SaveIfVersion(ctx, &edit, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, writeError[*models.ProductVariant]("product_variant", "Variant "+before.Name, err)
	}
	writeSucceeded("product_variant")

	s.audit.RecordChange(adminID, models.TargetProductVariant, updated.ID, updated.SKU, before, updated)
	return updated, nil
}

func checkPrice(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		err := errors.New(field + " must not be negative")
		return validationError(err.Error(), err)
	}
	return nil
}

func optionsFromInput(in []dtos.ProductOptionInput) []models.ProductOption {
	out := make([]models.ProductOption, len(in))
	for i, o := range in {
		values := o.Values
		if values == nil {
			values = []string{}
		}
		out[i] = models.ProductOption{Name: o.Name, Values: values, Position: i}
	}
	return out
}

// optionSummary drops generated ids so an audit diff only shows real changes.
func optionSummary(options []models.ProductOption) map[string][]string {
	out := make(map[string][]string, len(options))
	for _, o := range options {
		out[o.Name] = o.Values
	}
	return out
}
