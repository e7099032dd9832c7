package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quillstore/quill/internal/infrastructure/services"
	"github.com/quillstore/quill/internal/shared/constants"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/utils"
)

const (
	// sseKeepaliveInterval is the interval for sending keepalive comments.
	sseKeepaliveInterval = 30 * time.Second

	// sseContentType is the content type for SSE responses.
	sseContentType = "text/event-stream"
)

// RealtimeHandler streams library entitlement events to buyers over SSE.
type RealtimeHandler struct {
	hub    *services.LibraryHub
	logger logger.Interface
}

func NewRealtimeHandler(hub *services.LibraryHub, log logger.Interface) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: log,
	}
}

// StreamLibraryEvents handles GET /realtime/library
// Opens an SSE stream scoped to the authenticated account. Events for other
// accounts are never delivered on this connection.
func (h *RealtimeHandler) StreamLibraryEvents(c *gin.Context) {
	accountSIDVal, exists := c.Get(constants.ContextKeyAccountSID)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	accountSID, ok := accountSIDVal.(string)
	if !ok || accountSID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	connID := uuid.New().String()

	conn := h.hub.RegisterConn(connID, accountSID)
	if conn == nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connections"})
		return
	}

	h.setupSSEResponse(c)

	// Initial comment so proxies and clients see the stream open immediately.
	if _, err := c.Writer.WriteString(": connected\n\n"); err != nil {
		h.hub.UnregisterConn(connID)
		h.logger.Warnw("SSE initial write error",
			"conn_id", connID,
			"error", err,
		)
		return
	}
	c.Writer.Flush()

	h.runEventLoop(c, conn, connID, accountSID)
}

// setupSSEResponse sets common SSE response headers.
// Note: CORS headers are handled by global CORS middleware.
func (h *RealtimeHandler) setupSSEResponse(c *gin.Context) {
	c.Header("Content-Type", sseContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable Nginx buffering
}

// runEventLoop runs the SSE event loop with keepalive.
// This is a blocking call that handles event delivery, keepalive, and
// disconnect. The loop exits when the client disconnects or a write fails.
func (h *RealtimeHandler) runEventLoop(c *gin.Context, conn *services.SSEConn, connID, accountSID string) {
	keepAliveTicker := time.NewTicker(sseKeepaliveInterval)
	defer keepAliveTicker.Stop()

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			h.hub.UnregisterConn(connID)
			h.logger.Infow("library SSE connection closed by client",
				"conn_id", connID,
				"account_sid", accountSID,
			)
			return

		case data, ok := <-conn.Send:
			if !ok {
				// Channel closed by hub shutdown
				return
			}
			if _, err := c.Writer.Write(data); err != nil {
				h.hub.UnregisterConn(connID)
				h.logger.Warnw("library SSE write error",
					"conn_id", connID,
					"error", err,
				)
				return
			}
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				h.hub.UnregisterConn(connID)
				h.logger.Warnw("library SSE keepalive error",
					"conn_id", connID,
					"error", err,
				)
				return
			}
			c.Writer.Flush()
		}
	}
}
