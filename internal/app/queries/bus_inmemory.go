package queries

import (
	"context"
	"fmt"
	"sync"
)

type askFunc func(ctx context.Context, q Query) (any, error)

// InMemoryBus routes read requests to handlers registered by key. Unlike
// the command side there is no middleware pipeline in front of it, so the
// bus itself guards concurrent registration: fixture reloads and tests
// register while requests are already flowing.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]askFunc
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]askFunc)}
}

// RegisterRaw attaches an untyped handler. Registering the same key twice
// is a wiring bug and panics at startup rather than shadowing silently.
func (b *InMemoryBus) RegisterRaw(key string, handler askFunc) {
	if key == "" {
		panic("queries: empty key registration")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.handlers[key]; dup {
		panic("queries: duplicate registration for " + key)
	}
	b.handlers[key] = handler
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[query.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return h(ctx, query)
}

// RegisterHandler registers a typed handler under the given key.
func RegisterHandler[Q Query, R any](bus *InMemoryBus, key string, handler Handler[Q, R]) {
	if bus == nil {
		panic("queries: nil bus")
	}
	bus.RegisterRaw(key, func(ctx context.Context, raw Query) (any, error) {
		q, ok := any(raw).(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, key)
		}
		return handler.Handle(ctx, q)
	})
}
