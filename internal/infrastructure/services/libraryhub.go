// Package services provides infrastructure services.
package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quillstore/quill/internal/shared/logger"
)

// LibraryEventType represents the type of library SSE event.
type LibraryEventType string

const (
	LibraryEventGranted  LibraryEventType = "library:granted"
	LibraryEventRefunded LibraryEventType = "library:refunded"
	LibraryEventRestored LibraryEventType = "library:restored"
)

// LibraryEvent represents an SSE event for a library change.
type LibraryEvent struct {
	Type           LibraryEventType `json:"type"`
	EntitlementSID string           `json:"entitlementId"`
	ProductSID     string           `json:"productId"`
	OrderRef       string           `json:"orderRef,omitempty"`
	Timestamp      int64            `json:"timestamp"`
}

// SSEConn represents an SSE connection from a signed-in buyer.
type SSEConn struct {
	ID          string
	AccountSID  string
	Send        chan []byte
	ConnectedAt time.Time
	closed      atomic.Bool
}

// TrySend attempts to send data to the SSE connection.
// Returns false if the channel is closed or full. Delivery is
// best-effort: a full buffer drops the event rather than blocking the
// broadcaster.
func (c *SSEConn) TrySend(data []byte) (sent bool) {
	if c.closed.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close marks the connection as closed and closes the send channel.
func (c *SSEConn) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.Send)
	}
}

// LibraryHub manages SSE connections from buyers and fans library
// events out to them. Connections are keyed by account, and events are
// only ever delivered to connections registered for the event's
// account.
type LibraryHub struct {
	// SSE connections: map[connID]*SSEConn
	conns   map[string]*SSEConn
	connsMu sync.RWMutex

	// Connection IDs per account, for scoped delivery and limits
	accountConns   map[string]map[string]bool
	accountConnsMu sync.RWMutex

	maxConnsPerAccount int
	sendBufferSize     int

	done     chan struct{}
	shutdown atomic.Bool

	logger logger.Interface
}

// LibraryHubConfig holds configuration for LibraryHub.
type LibraryHubConfig struct {
	MaxConnsPerAccount int // Max SSE connections per account (default: 5)
	SendBufferSize     int // Per-connection send buffer (default: 16)
}

// NewLibraryHub creates a new LibraryHub instance.
func NewLibraryHub(log logger.Interface, config *LibraryHubConfig) *LibraryHub {
	maxConns := 5
	bufferSize := 16

	if config != nil {
		if config.MaxConnsPerAccount > 0 {
			maxConns = config.MaxConnsPerAccount
		}
		if config.SendBufferSize > 0 {
			bufferSize = config.SendBufferSize
		}
	}

	return &LibraryHub{
		conns:              make(map[string]*SSEConn),
		accountConns:       make(map[string]map[string]bool),
		maxConnsPerAccount: maxConns,
		sendBufferSize:     bufferSize,
		done:               make(chan struct{}),
		logger:             log,
	}
}

// Shutdown stops the LibraryHub and closes all connections.
// Safe to call multiple times.
func (h *LibraryHub) Shutdown() {
	if !h.shutdown.CompareAndSwap(false, true) {
		return
	}

	close(h.done)

	h.connsMu.Lock()
	h.accountConnsMu.Lock()
	for _, conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[string]*SSEConn)
	h.accountConns = make(map[string]map[string]bool)
	h.accountConnsMu.Unlock()
	h.connsMu.Unlock()
}

// RegisterConn registers a new SSE connection for the given account.
// Returns the connection or nil if max connections exceeded or hub is shutdown.
func (h *LibraryHub) RegisterConn(connID, accountSID string) *SSEConn {
	if h.shutdown.Load() {
		return nil
	}

	conn := &SSEConn{
		ID:          connID,
		AccountSID:  accountSID,
		Send:        make(chan []byte, h.sendBufferSize),
		ConnectedAt: time.Now().UTC(),
	}

	// Always acquire locks in consistent order (connsMu -> accountConnsMu)
	// to prevent deadlock with UnregisterConn
	h.connsMu.Lock()
	defer h.connsMu.Unlock()

	h.accountConnsMu.Lock()
	defer h.accountConnsMu.Unlock()

	// Re-check under the locks: a Shutdown racing this registration has
	// already cleared the maps and would never close this conn.
	if h.shutdown.Load() {
		return nil
	}

	if len(h.accountConns[accountSID]) >= h.maxConnsPerAccount {
		h.logger.Warnw("SSE connection limit exceeded",
			"account_sid", accountSID,
			"limit", h.maxConnsPerAccount,
		)
		return nil
	}

	h.conns[connID] = conn
	if h.accountConns[accountSID] == nil {
		h.accountConns[accountSID] = make(map[string]bool)
	}
	h.accountConns[accountSID][connID] = true

	h.logger.Infow("SSE connection registered",
		"conn_id", connID,
		"account_sid", accountSID,
	)

	return conn
}

// UnregisterConn removes an SSE connection.
func (h *LibraryHub) UnregisterConn(connID string) {
	h.connsMu.Lock()
	h.accountConnsMu.Lock()

	conn, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
		if set := h.accountConns[conn.AccountSID]; set != nil {
			delete(set, connID)
			if len(set) == 0 {
				delete(h.accountConns, conn.AccountSID)
			}
		}
	}

	h.accountConnsMu.Unlock()
	h.connsMu.Unlock()

	if ok {
		conn.Close()

		h.logger.Infow("SSE connection unregistered",
			"conn_id", connID,
			"account_sid", conn.AccountSID,
		)
	}
}

// NotifyAccount sends a library event to every connection held by the
// given account and to no one else.
func (h *LibraryHub) NotifyAccount(accountSID string, event *LibraryEvent) {
	data, err := h.formatSSEEvent(event)
	if err != nil {
		h.logger.Errorw("failed to format SSE event",
			"event_type", event.Type,
			"error", err,
		)
		return
	}

	h.accountConnsMu.RLock()
	connIDs := make([]string, 0, len(h.accountConns[accountSID]))
	for connID := range h.accountConns[accountSID] {
		connIDs = append(connIDs, connID)
	}
	h.accountConnsMu.RUnlock()

	if len(connIDs) == 0 {
		return
	}

	h.connsMu.RLock()
	defer h.connsMu.RUnlock()

	for _, connID := range connIDs {
		conn, ok := h.conns[connID]
		if !ok {
			continue
		}
		if !conn.TrySend(data) {
			h.logger.Warnw("failed to send SSE event, channel full",
				"conn_id", conn.ID,
				"event_type", event.Type,
			)
		}
	}
}

// NotifyGranted notifies the account that a new entitlement landed in its library.
func (h *LibraryHub) NotifyGranted(accountSID, entitlementSID, productSID, orderRef string) {
	h.NotifyAccount(accountSID, &LibraryEvent{
		Type:           LibraryEventGranted,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
		OrderRef:       orderRef,
		Timestamp:      time.Now().UTC().Unix(),
	})
}

// NotifyRefunded notifies the account that an entitlement was refunded.
func (h *LibraryHub) NotifyRefunded(accountSID, entitlementSID, productSID string) {
	h.NotifyAccount(accountSID, &LibraryEvent{
		Type:           LibraryEventRefunded,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
		Timestamp:      time.Now().UTC().Unix(),
	})
}

// NotifyRestored notifies the account that a refunded entitlement was reinstated.
func (h *LibraryHub) NotifyRestored(accountSID, entitlementSID, productSID string) {
	h.NotifyAccount(accountSID, &LibraryEvent{
		Type:           LibraryEventRestored,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
		Timestamp:      time.Now().UTC().Unix(),
	})
}

// GetConnCount returns the current number of SSE connections.
func (h *LibraryHub) GetConnCount() int {
	h.connsMu.RLock()
	defer h.connsMu.RUnlock()
	return len(h.conns)
}

// formatSSEEvent formats an event as SSE data.
func (h *LibraryHub) formatSSEEvent(event *LibraryEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	// SSE format: "event: <type>\ndata: <json>\n\n"
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data)), nil
}
