package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quillstore/quill/internal/application/product/usecases"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

// ProductHandler serves the public storefront catalog.
type ProductHandler struct {
	listCatalogUC *usecases.ListCatalogUseCase
	getCatalogUC  *usecases.GetCatalogProductUseCase
	logger        logger.Interface
}

func NewProductHandler(
	listCatalogUC *usecases.ListCatalogUseCase,
	getCatalogUC *usecases.GetCatalogProductUseCase,
	logger logger.Interface,
) *ProductHandler {
	return &ProductHandler{
		listCatalogUC: listCatalogUC,
		getCatalogUC:  getCatalogUC,
		logger:        logger,
	}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	result, err := h.listCatalogUC.Execute(c.Request.Context(), usecases.ListCatalogQuery{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list catalog", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Products, result.Total, result.Page, result.PageSize)
}

// GetProduct handles GET /products/:slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	result, err := h.getCatalogUC.Execute(c.Request.Context(), usecases.GetCatalogProductQuery{Slug: slug})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
