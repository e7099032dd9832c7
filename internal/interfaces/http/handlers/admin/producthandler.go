// Package admin contains handlers for the admin surface. All routes
// mounted here sit behind the auth and admin-role middleware.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quillstore/quill/internal/application/product/usecases"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

type ProductHandler struct {
	createProductUC *usecases.CreateProductUseCase
	updateProductUC *usecases.UpdateProductUseCase
	deleteProductUC *usecases.DeleteProductUseCase
	setPublishedUC  *usecases.SetProductPublishedUseCase
	linkProviderUC  *usecases.LinkProviderUseCase
	listProductsUC  *usecases.ListProductsUseCase
	getProductUC    *usecases.GetProductUseCase
	logger          logger.Interface
}

func NewProductHandler(
	createProductUC *usecases.CreateProductUseCase,
	updateProductUC *usecases.UpdateProductUseCase,
	deleteProductUC *usecases.DeleteProductUseCase,
	setPublishedUC *usecases.SetProductPublishedUseCase,
	linkProviderUC *usecases.LinkProviderUseCase,
	listProductsUC *usecases.ListProductsUseCase,
	getProductUC *usecases.GetProductUseCase,
	log logger.Interface,
) *ProductHandler {
	return &ProductHandler{
		createProductUC: createProductUC,
		updateProductUC: updateProductUC,
		deleteProductUC: deleteProductUC,
		setPublishedUC:  setPublishedUC,
		linkProviderUC:  linkProviderUC,
		listProductsUC:  listProductsUC,
		getProductUC:    getProductUC,
		logger:          log,
	}
}

type CreateProductRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	World       string `json:"world"`
	Description string `json:"description"`
	PriceCents  uint64 `json:"price_cents"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Position    int    `json:"position"`
}

type UpdateProductRequest struct {
	Title       string `json:"title" binding:"required"`
	World       string `json:"world"`
	Description string `json:"description"`
	PriceCents  uint64 `json:"price_cents"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Position    *int   `json:"position"`
}

// UpdateProductStatusRequest toggles storefront visibility.
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=published unpublished"`
}

type LinkProviderRequest struct {
	ProviderProductID string `json:"provider_product_id"`
	ProviderVariantID string `json:"provider_variant_id" binding:"required"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create product", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreateProductCommand{
		Title:       req.Title,
		Slug:        req.Slug,
		World:       req.World,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Position:    req.Position,
	}

	result, err := h.createProductUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Product created successfully")
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update product",
			"product_sid", c.Param("sid"),
			"error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.UpdateProductCommand{
		SID:         c.Param("sid"),
		Title:       req.Title,
		World:       req.World,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Position:    req.Position,
	}

	result, err := h.updateProductUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Product updated successfully", result)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	cmd := usecases.DeleteProductCommand{SID: c.Param("sid")}

	if err := h.deleteProductUC.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *ProductHandler) UpdateProductStatus(c *gin.Context) {
	var req UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update product status", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.SetProductPublishedCommand{
		SID:       c.Param("sid"),
		Published: req.Status == "published",
	}

	result, err := h.setPublishedUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Product status updated successfully", result)
}

func (h *ProductHandler) LinkProvider(c *gin.Context) {
	var req LinkProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for link provider", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.LinkProviderCommand{
		SID:               c.Param("sid"),
		ProviderProductID: req.ProviderProductID,
		ProviderVariantID: req.ProviderVariantID,
	}

	result, err := h.linkProviderUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Provider linked successfully", result)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listProductsUC.Execute(c.Request.Context(), usecases.ListProductsQuery{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Products, result.Total, result.Page, result.PageSize)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	result, err := h.getProductUC.Execute(c.Request.Context(), usecases.GetProductQuery{
		SID: c.Param("sid"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
