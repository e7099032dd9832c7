package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	fulfillment "github.com/quillstore/quill/internal/application/fulfillment/usecases"
	library "github.com/quillstore/quill/internal/application/library/usecases"
	"github.com/quillstore/quill/internal/shared/constants"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

// EntitlementHandler covers the manual reconciliation surface: granting,
// revoking, and restoring entitlements outside the webhook pipeline.
type EntitlementHandler struct {
	grantUC       *fulfillment.GrantEntitlementUseCase
	revokeUC      *fulfillment.RevokeEntitlementUseCase
	restoreUC     *fulfillment.RestoreEntitlementUseCase
	listAccountUC *library.ListAccountLibraryUseCase
	logger        logger.Interface
}

func NewEntitlementHandler(
	grantUC *fulfillment.GrantEntitlementUseCase,
	revokeUC *fulfillment.RevokeEntitlementUseCase,
	restoreUC *fulfillment.RestoreEntitlementUseCase,
	listAccountUC *library.ListAccountLibraryUseCase,
	log logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		grantUC:       grantUC,
		revokeUC:      revokeUC,
		restoreUC:     restoreUC,
		listAccountUC: listAccountUC,
		logger:        log,
	}
}

type GrantEntitlementRequest struct {
	AccountSID string `json:"account_sid" validate:"required"`
	ProductSID string `json:"product_sid" validate:"required"`
	Note       string `json:"note" validate:"max=500"`
}

type RevokeEntitlementRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *EntitlementHandler) GrantEntitlement(c *gin.Context) {
	var req GrantEntitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for grant entitlement", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.grantUC.Execute(c.Request.Context(), fulfillment.GrantEntitlementCommand{
		AccountSID: req.AccountSID,
		ProductSID: req.ProductSID,
		Note:       req.Note,
		GrantedBy:  adminSID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result, "Entitlement granted successfully")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Entitlement already exists", result)
}

func (h *EntitlementHandler) RevokeEntitlement(c *gin.Context) {
	var req RevokeEntitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.logger.Warnw("invalid request body for revoke entitlement", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err := h.revokeUC.Execute(c.Request.Context(), fulfillment.RevokeEntitlementCommand{
		EntitlementSID: c.Param("sid"),
		Reason:         req.Reason,
		RevokedBy:      adminSID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entitlement revoked successfully", nil)
}

func (h *EntitlementHandler) RestoreEntitlement(c *gin.Context) {
	err := h.restoreUC.Execute(c.Request.Context(), fulfillment.RestoreEntitlementCommand{
		EntitlementSID: c.Param("sid"),
		RestoredBy:     adminSID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entitlement restored successfully", nil)
}

// ListAccountEntitlements handles GET /admin/accounts/:sid/entitlements
// Includes refunded grants so support can see the full history.
func (h *EntitlementHandler) ListAccountEntitlements(c *gin.Context) {
	result, err := h.listAccountUC.Execute(c.Request.Context(), library.ListAccountLibraryQuery{
		AccountSID:      c.Param("sid"),
		IncludeRefunded: true,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// adminSID returns the acting admin's account SID for audit metadata.
func adminSID(c *gin.Context) string {
	if val, exists := c.Get(constants.ContextKeyAccountSID); exists {
		if sid, ok := val.(string); ok {
			return sid
		}
	}
	return ""
}
