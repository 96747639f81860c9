package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/dtos"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/services"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ProductsController struct {
	productService *services.ProductService
	validate       *validator.Validate
}

func NewProductsController(productService *services.ProductService) *ProductsController {
	return &ProductsController{
		productService: productService,
		validate:       validator.New(),
	}
}

// POST /api/v1/admin/products
func (c *ProductsController) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateProductRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	product, err := c.productService.CreateProduct(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// GET /api/v1/admin/products/{id}
func (c *ProductsController) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	product, err := c.productService.GetProduct(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// PATCH /api/v1/admin/products/{id}
func (c *ProductsController) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateProductRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	product, err := c.productService.UpdateProduct(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// PUT /api/v1/admin/products/{id}/options
func (c *ProductsController) ReplaceOptionsHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.ReplaceOptionsRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	product, err := c.productService.ReplaceOptions(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GET /api/v1/admin/products/{id}/variants/preview
func (c *ProductsController) PreviewVariantsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	matrix, err := c.productService.PreviewVariants(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, matrix)
}

// POST /api/v1/admin/products/{id}/variants/regenerate
func (c *ProductsController) RegenerateVariantsHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RegenerateVariantsRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	matrix, err := c.productService.RegenerateVariants(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, matrix)
}

// GET /api/v1/admin/products/{id}/variants
func (c *ProductsController) ListVariantsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	variants, err := c.productService.ListVariants(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, variants)
}

// PATCH /api/v1/admin/variants/{id}
func (c *ProductsController) UpdateVariantHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateVariantRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	variant, err := c.productService.UpdateVariant(r.Context(), adminID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, variant)
}
