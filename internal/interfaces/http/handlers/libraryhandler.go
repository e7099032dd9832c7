package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillstore/quill/internal/application/library/usecases"
	"github.com/quillstore/quill/internal/shared/constants"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

// LibraryHandler serves the authenticated buyer's owned products.
type LibraryHandler struct {
	listLibraryUC    *usecases.ListLibraryUseCase
	checkOwnershipUC *usecases.CheckOwnershipUseCase
	logger           logger.Interface
}

func NewLibraryHandler(
	listLibraryUC *usecases.ListLibraryUseCase,
	checkOwnershipUC *usecases.CheckOwnershipUseCase,
	logger logger.Interface,
) *LibraryHandler {
	return &LibraryHandler{
		listLibraryUC:    listLibraryUC,
		checkOwnershipUC: checkOwnershipUC,
		logger:           logger,
	}
}

// GetMyLibrary handles GET /library
// Lists the current account's entitlements, active by default.
func (h *LibraryHandler) GetMyLibrary(c *gin.Context) {
	accountID, ok := accountIDFromContext(c, h.logger)
	if !ok {
		return
	}

	includeRefunded := c.Query("include_refunded") == "true"

	result, err := h.listLibraryUC.Execute(c.Request.Context(), usecases.ListLibraryQuery{
		AccountID:       accountID,
		IncludeRefunded: includeRefunded,
	})
	if err != nil {
		h.logger.Errorw("failed to list library", "error", err, "account_id", accountID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CheckOwnership handles GET /library/products/:sid
// Reports whether the current account owns one product.
func (h *LibraryHandler) CheckOwnership(c *gin.Context) {
	accountID, ok := accountIDFromContext(c, h.logger)
	if !ok {
		return
	}

	result, err := h.checkOwnershipUC.Execute(c.Request.Context(), usecases.CheckOwnershipQuery{
		AccountID:  accountID,
		ProductSID: c.Param("sid"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// accountIDFromContext extracts the authenticated account's database ID
// set by the auth middleware. Writes the error response on failure.
func accountIDFromContext(c *gin.Context, log logger.Interface) (uint, bool) {
	val, exists := c.Get(constants.ContextKeyAccountID)
	if !exists {
		log.Warnw("account ID not found in context")
		utils.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return 0, false
	}

	accountID, ok := val.(uint)
	if !ok {
		log.Warnw("invalid account ID type in context", "account_id", val)
		utils.ErrorResponse(c, http.StatusInternalServerError, "invalid account ID")
		return 0, false
	}

	return accountID, true
}
