package storage

import (
	"sync"

	"overcooked-orders/order-svc/internal/domain"
)

// statusHub fans status updates out to per-order subscribers. Callbacks run
// outside the hub lock so they may unsubscribe themselves.
type statusHub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(domain.StatusUpdate)
}

func newStatusHub() *statusHub {
	return &statusHub{subs: make(map[string]map[int]func(domain.StatusUpdate))}
}

func (h *statusHub) add(orderID string, fn func(domain.StatusUpdate)) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[int]func(domain.StatusUpdate))
	}
	h.subs[orderID][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[orderID], id)
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
		})
	}
}

func (h *statusHub) dispatch(update domain.StatusUpdate) int {
	h.mu.RLock()
	fns := make([]func(domain.StatusUpdate), 0, len(h.subs[update.OrderID]))
	for _, fn := range h.subs[update.OrderID] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(update)
	}
	return len(fns)
}

func (h *statusHub) count(orderID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orderID])
}
