package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quillstore/quill/internal/application/fulfillment/usecases"
	"github.com/quillstore/quill/internal/infrastructure/webhook"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

// maxWebhookBodyBytes caps webhook payload size. Provider order events
// are a few KB; anything bigger is garbage.
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives fulfillment events from the payment provider.
type WebhookHandler struct {
	verifier  *webhook.Verifier
	processUC *usecases.ProcessOrderEventUseCase
	timeout   time.Duration
	logger    logger.Interface
}

func NewWebhookHandler(
	verifier *webhook.Verifier,
	processUC *usecases.ProcessOrderEventUseCase,
	timeout time.Duration,
	logger logger.Interface,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		processUC: processUC,
		timeout:   timeout,
		logger:    logger,
	}
}

// HandleOrderEvent handles POST /webhooks/lemonsqueezy
// Signature verification runs over the raw body bytes before any
// parsing. 401 invalid signature, 400 malformed payload, 500 storage
// failure (provider redelivers; idempotent upsert absorbs the retry),
// 200 everything else including partial resolution.
func (h *WebhookHandler) HandleOrderEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(webhook.SignatureHeader)
	if !h.verifier.Verify(body, signature) {
		h.logger.Warnw("webhook signature verification failed",
			"client_ip", c.ClientIP(),
			"has_signature", signature != "",
		)
		utils.ErrorResponse(c, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.processUC.Execute(ctx, body)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"event_name":    result.EventName,
		"order_ref":     result.OrderRef,
		"granted":       len(result.Granted),
		"already_owned": len(result.AlreadyOwned),
		"refunded":      len(result.Refunded),
		"failures":      len(result.Failures),
	})
}
