package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type productFixture struct {
	products *fakeProductRepo
	variants *fakeVariantRepo
	cache    *fakeCache
	auditLog *fakeAuditRepo
	audit    *AuditService
	svc      *ProductService
	adminID  uuid.UUID
}

func newProductFixture() *productFixture {
	f := &productFixture{
		variants: newFakeVariantRepo(),
		cache:    newFakeCache(),
		auditLog: &fakeAuditRepo{},
		adminID:  uuid.New(),
	}
	f.products = newFakeProductRepo(f.variants)
	f.audit = NewAuditService(f.auditLog)
	f.svc = NewProductService(f.products, f.variants, f.cache, f.audit)
	return f
}

func (f *productFixture) create(t *testing.T, options ...dtos.ProductOptionInput) *models.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), f.adminID, dtos.CreateProductRequest{
		Name:      "Velvet Lip",
		Slug:      "velvet-lip",
		SKUPrefix: "VL",
		BasePrice: decimal.RequireFromString("18.00"),
		Options:   options,
	})
	require.NoError(t, err)
	return p
}

func sizeColor() []dtos.ProductOptionInput {
	return []dtos.ProductOptionInput{
		{Name: "Size", Values: []string{"S", "M"}},
		{Name: "Color", Values: []string{"Red", "Blue"}},
	}
}

func TestRegenerateVariants_RequiresConfirm(t *testing.T) {
	f := newProductFixture()
	p := f.create(t, sizeColor()...)

	_, err := f.svc.RegenerateVariants(context.Background(), f.adminID, p.ID, dtos.RegenerateVariantsRequest{
		ExpectedUpdatedAt: p.UpdatedAt,
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeConfirmRequired)

	variants, _ := f.variants.ListByProductID(context.Background(), p.ID)
	assert.Empty(t, variants)
	f.audit.Wait()
}

func TestRegenerateVariants_WritesMatrix(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t, sizeColor()...)

	res, err := f.svc.RegenerateVariants(ctx, f.adminID, p.ID, dtos.RegenerateVariantsRequest{
		ExpectedUpdatedAt: p.UpdatedAt,
		Confirm:           true,
	})
	require.NoError(t, err)
	require.Len(t, res.Variants, 4)
	assert.True(t, res.Product.UpdatedAt.After(p.UpdatedAt), "regenerating moves the product token")

	stored, err := f.svc.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	names := []string{}
	for _, v := range stored {
		names = append(names, v.Name)
		assert.Equal(t, p.ID, v.ProductID)
		assert.True(t, v.Price.Equal(p.BasePrice))
	}
	assert.Equal(t, []string{"S / Red", "S / Blue", "M / Red", "M / Blue"}, names)
	assert.Contains(t, f.cache.invalidated, p.ID)

	// Regenerating again with the new token replaces, never appends.
	_, err = f.svc.RegenerateVariants(ctx, f.adminID, p.ID, dtos.RegenerateVariantsRequest{
		ExpectedUpdatedAt: res.Product.UpdatedAt,
		Confirm:           true,
	})
	require.NoError(t, err)
	stored, _ = f.svc.ListVariants(ctx, p.ID)
	assert.Len(t, stored, 4)
	f.audit.Wait()
}

func TestRegenerateVariants_StaleProductConflicts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t, sizeColor()...)

	name := "Velvet Lip Matte"
	_, err := f.svc.UpdateProduct(ctx, f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, Name: &name})
	require.NoError(t, err)

	_, err = f.svc.RegenerateVariants(ctx, f.adminID, p.ID, dtos.RegenerateVariantsRequest{
		ExpectedUpdatedAt: p.UpdatedAt,
		Confirm:           true,
	})
	appErr := requireAppError(t, err, http.StatusConflict, utils.ErrCodeRowVersionConflict)
	current := appErr.Details.(*models.Product)
	assert.Equal(t, "Velvet Lip Matte", current.Name)

	variants, _ := f.variants.ListByProductID(ctx, p.ID)
	assert.Empty(t, variants, "a conflicting regenerate writes nothing")
	f.audit.Wait()
}

func TestRegenerateVariants_EmptyOptionRejected(t *testing.T) {
	f := newProductFixture()
	p := f.create(t,
		dtos.ProductOptionInput{Name: "Shade", Values: []string{"Ruby"}},
		dtos.ProductOptionInput{Name: "Finish"},
	)

	_, err := f.svc.RegenerateVariants(context.Background(), f.adminID, p.ID, dtos.RegenerateVariantsRequest{
		ExpectedUpdatedAt: p.UpdatedAt,
		Confirm:           true,
	})
	appErr := requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.ErrorIs(t, appErr, ErrEmptyMatrix)
	f.audit.Wait()
}

func TestPreviewVariants(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	noOptions := f.create(t)
	_, err := f.svc.PreviewVariants(ctx, noOptions.ID)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	p := f.create(t, sizeColor()...)
	res, err := f.svc.PreviewVariants(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, res.Variants, 4)
	assert.Nil(t, res.Product)

	stored, _ := f.variants.ListByProductID(ctx, p.ID)
	assert.Empty(t, stored, "preview never writes")
	f.audit.Wait()
}

func TestReplaceOptions_DoesNotRegenerate(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t, sizeColor()...)
	res, err := f.svc.RegenerateVariants(ctx, f.adminID, p.ID, dtos.RegenerateVariantsRequest{ExpectedUpdatedAt: p.UpdatedAt, Confirm: true})
	require.NoError(t, err)

	updated, err := f.svc.ReplaceOptions(ctx, f.adminID, p.ID, dtos.ReplaceOptionsRequest{
		ExpectedUpdatedAt: res.Product.UpdatedAt,
		Options: []dtos.ProductOptionInput{
			{Name: "Size", Values: []string{"S", "M", "L"}},
			{Name: "Color", Values: []string{"Red", "Blue"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "M", "L"}, updated.Options[0].Values)

	stored, _ := f.variants.ListByProductID(ctx, p.ID)
	assert.Len(t, stored, 4, "variants stay until an explicit regenerate")

	_, err = f.svc.ReplaceOptions(ctx, f.adminID, p.ID, dtos.ReplaceOptionsRequest{ExpectedUpdatedAt: res.Product.UpdatedAt})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeRowVersionConflict)
	f.audit.Wait()
}

func TestGetProduct_ReadsThroughCache(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t)

	got, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	_, _, cached := f.cache.Get(ctx, p.ID)
	assert.True(t, cached)

	name := "Renamed"
	_, err = f.svc.UpdateProduct(ctx, f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, Name: &name})
	require.NoError(t, err)
	_, _, cached = f.cache.Get(ctx, p.ID)
	assert.False(t, cached, "writes invalidate the cached copy")

	_, err = f.svc.GetProduct(ctx, uuid.New())
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	f.audit.Wait()
}

// interleavingProductRepo runs during once, right after the first read
// has loaded its row.
type interleavingProductRepo struct {
	*fakeProductRepo
	during func()
}

func (r *interleavingProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := r.fakeProductRepo.GetByID(ctx, id)
	if during := r.during; during != nil {
		r.during = nil
		during()
	}
	return p, err
}

func TestGetProduct_FillAfterConcurrentWriteIsDropped(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t)

	name := "Velvet Lip Matte"
	repo := &interleavingProductRepo{fakeProductRepo: f.products, during: func() {
		_, err := f.svc.UpdateProduct(ctx, f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, Name: &name})
		require.NoError(t, err)
	}}
	reader := NewProductService(repo, f.variants, f.cache, f.audit)

	got, err := reader.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Velvet Lip", got.Name)
	_, _, cached := f.cache.Get(ctx, p.ID)
	assert.False(t, cached, "a fill that read before the write must not be stored")

	got, err = reader.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	cachedRow, _, cached := f.cache.Get(ctx, p.ID)
	require.True(t, cached)
	assert.Equal(t, name, cachedRow.Name)
	f.audit.Wait()
}

func TestUpdateProduct_NegativePriceRejected(t *testing.T) {
	f := newProductFixture()
	p := f.create(t)
	price := decimal.NewFromInt(-1)

	_, err := f.svc.UpdateProduct(context.Background(), f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, BasePrice: &price})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	f.audit.Wait()
}

func TestCreateProduct_DuplicateSlugIsConflict(t *testing.T) {
	f := newProductFixture()
	f.create(t)

	_, err := f.svc.CreateProduct(context.Background(), f.adminID, dtos.CreateProductRequest{
		Name:      "Velvet Lip Refill",
		Slug:      "velvet-lip",
		SKUPrefix: "VLR",
		BasePrice: decimal.RequireFromString("12.00"),
	})
	appErr := requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
	assert.Contains(t, appErr.Message, "products_slug_key")
	f.audit.Wait()
}

func TestUpdateProduct_ConstraintViolationIsNotRetryable(t *testing.T) {
	f := newProductFixture()
	p := f.create(t)
	f.products.failWrites = &pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"}

	slug := "taken-slug"
	_, err := f.svc.UpdateProduct(context.Background(), f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, Slug: &slug})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	f.products.failWrites = &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(16)"}
	_, err = f.svc.UpdateProduct(context.Background(), f.adminID, p.ID, dtos.UpdateProductRequest{ExpectedUpdatedAt: p.UpdatedAt, Slug: &slug})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	f.audit.Wait()
}

func TestUpdateVariant_OCC(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := f.create(t, sizeColor()...)
	_, err := f.svc.RegenerateVariants(ctx, f.adminID, p.ID, dtos.RegenerateVariantsRequest{ExpectedUpdatedAt: p.UpdatedAt, Confirm: true})
	require.NoError(t, err)

	variants, _ := f.svc.ListVariants(ctx, p.ID)
	v := variants[0]
	stock := 12
	updated, err := f.svc.UpdateVariant(ctx, f.adminID, v.ID, dtos.UpdateVariantRequest{ExpectedUpdatedAt: v.UpdatedAt, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)

	sku := "VL-CUSTOM"
	_, err = f.svc.UpdateVariant(ctx, f.adminID, v.ID, dtos.UpdateVariantRequest{ExpectedUpdatedAt: v.UpdatedAt, SKU: &sku})
	appErr := requireAppError(t, err, http.StatusConflict, utils.ErrCodeRowVersionConflict)
	assert.Equal(t, 12, appErr.Details.(*models.ProductVariant).Stock)
	f.audit.Wait()
}
