package store

import (
	"context"
	"sync"

	"mercadoluz.com/storefront/internal/cart"
)

// Memory keeps serialized carts in process memory. It is the default backend
// and the test double for the Redis adapter; both share last-writer-wins
// semantics over the whole value.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: map[string][]byte{}}
}

// Load returns the raw serialized cart, or cart.ErrCartNotStored when the key
// has never been written.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.items[key]
	if !ok {
		return nil, cart.ErrCartNotStored
	}
	dup := make([]byte, len(raw))
	copy(dup, raw)
	return dup, nil
}

// Save overwrites the stored value wholesale.
func (m *Memory) Save(_ context.Context, key string, raw []byte) error {
	dup := make([]byte, len(raw))
	copy(dup, raw)
	m.mu.Lock()
	m.items[key] = dup
	m.mu.Unlock()
	return nil
}
