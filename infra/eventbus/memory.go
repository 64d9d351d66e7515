// Package eventbus provides event bus implementations: an in-process bus for
// tests and single-node deployments, and a Kafka publisher for the
// back-office monitoring feed.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/corebank/platform/pkg/eventbus"
)

// MemoryEventBus is a synchronous in-process bus. Handlers run on the
// publishing goroutine; a handler error is logged and does not stop delivery
// to the remaining handlers.
type MemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]eventbus.HandlerFunc
	logger   *slog.Logger
}

// NewMemory creates an in-process event bus.
func NewMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger,
	}
}

// Publish implements eventbus.EventBus.
func (b *MemoryEventBus) Publish(ctx context.Context, e eventbus.Event) error {
	b.mu.RLock()
	handlers := b.handlers[e.EventType()]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			b.logger.Error("event handler failed",
				"event", e.EventType(),
				"error", err,
			)
		}
	}
	return nil
}

// Subscribe implements eventbus.EventBus.
func (b *MemoryEventBus) Subscribe(eventType string, h eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}
