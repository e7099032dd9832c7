package http

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillstore/quill/internal/infrastructure/pubsub"
	"github.com/quillstore/quill/internal/infrastructure/services"
	"github.com/quillstore/quill/internal/shared/logger"
)

// blockingEventBus holds its subscriber until the context is canceled,
// same as the Redis bus with a healthy connection.
type blockingEventBus struct {
	subscribed chan struct{}
	stopped    chan struct{}
}

func newBlockingEventBus() *blockingEventBus {
	return &blockingEventBus{
		subscribed: make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (b *blockingEventBus) PublishEntitlementEvent(ctx context.Context, event pubsub.EntitlementEvent) error {
	return nil
}

func (b *blockingEventBus) SubscribeEntitlementEvents(ctx context.Context, handler func(event pubsub.EntitlementEvent)) error {
	close(b.subscribed)
	<-ctx.Done()
	close(b.stopped)
	return ctx.Err()
}

func containerTestLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// The bus subscribe loop only returns on context cancellation, so the
// relay must run on its own goroutine. Container startup blocking here
// would keep the HTTP server from ever listening.
func TestStartEventRelay_DoesNotBlockStartup(t *testing.T) {
	log := containerTestLogger()
	bus := newBlockingEventBus()

	hub := services.NewLibraryHub(log, &services.LibraryHubConfig{
		MaxConnsPerAccount: 1,
		SendBufferSize:     1,
	})
	defer hub.Shutdown()

	c := &Container{
		log:        log,
		eventBus:   bus,
		libraryHub: hub,
	}

	done := make(chan struct{})
	go func() {
		c.startEventRelay()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("startEventRelay did not return while the bus subscription was active")
	}

	select {
	case <-bus.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("event relay never subscribed to the bus")
	}

	c.eventBusCancelMu.Lock()
	cancel := c.eventBusCancel
	c.eventBusCancelMu.Unlock()
	require.NotNil(t, cancel, "startEventRelay must store the cancel func for Shutdown")

	cancel()

	select {
	case <-bus.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("relay subscriber did not stop on context cancellation")
	}
}
