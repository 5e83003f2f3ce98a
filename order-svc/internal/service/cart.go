package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

const cartKeyPrefix = "restaurant_cart"

func CartKey(sessionID string) string {
	return cartKeyPrefix + ":" + sessionID
}

type cartSubscriber struct {
	id int
	fn func(domain.CartEvent)
}

// CartStore owns the cart lines of one session. Every mutation persists the
// whole collection and then notifies subscribers while still holding the
// lock, so subscribers must not call back into the store.
type CartStore struct {
	checkoutMu sync.Mutex

	mu          sync.Mutex
	key         string
	storage     Storage
	logger      *zap.Logger
	now         func() time.Time
	lines       []domain.CartLine
	subscribers []cartSubscriber
	nextSubID   int
}

type CartOption func(*CartStore)

func WithClock(now func() time.Time) CartOption {
	return func(c *CartStore) { c.now = now }
}

func NewCartStore(sessionID string, storage Storage, logger *zap.Logger, opts ...CartOption) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CartStore{
		key:     CartKey(sessionID),
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

func (c *CartStore) load() {
	var stored []domain.CartLine
	found, err := c.storage.Get(c.key, &stored)
	if err != nil {
		c.logger.Warn("cart load failed, starting empty",
			zap.Error(&PersistenceError{Op: "get", Key: c.key, Err: err}))
		return
	}
	if !found {
		return
	}

	seen := make(map[string]int, len(stored))
	for _, line := range stored {
		if line.ID == "" || line.Quantity <= 0 {
			continue
		}
		if idx, ok := seen[line.ID]; ok {
			c.lines[idx].Quantity += line.Quantity
			continue
		}
		seen[line.ID] = len(c.lines)
		c.lines = append(c.lines, line)
	}
}

func (c *CartStore) indexOf(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// commit persists and notifies. Callers hold c.mu.
func (c *CartStore) commit() {
	if err := c.storage.Set(c.key, c.lines); err != nil {
		c.logger.Warn("cart persist failed",
			zap.Int("lines", len(c.lines)),
			zap.Error(&PersistenceError{Op: "set", Key: c.key, Err: err}))
	}

	evt := c.snapshotLocked()
	for _, sub := range c.subscribers {
		sub.fn(evt)
	}
}

func (c *CartStore) snapshotLocked() domain.CartEvent {
	items := c.itemsLocked()
	count := 0
	for _, line := range items {
		count += line.Quantity
	}
	return domain.CartEvent{Items: items, Subtotal: Subtotal(items), Count: count}
}

func (c *CartStore) itemsLocked() []domain.CartLine {
	items := make([]domain.CartLine, len(c.lines))
	copy(items, c.lines)
	return items
}

func (c *CartStore) AddItem(item domain.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(item.ID); idx >= 0 {
		c.lines[idx].Quantity++
	} else {
		c.lines = append(c.lines, domain.CartLine{
			MenuItem: item,
			Quantity: 1,
			AddedAt:  c.now(),
		})
	}
	c.commit()
}

// RemoveItem deletes the line for id. An absent id is a no-op and nothing
// is persisted or broadcast.
func (c *CartStore) RemoveItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.removeLocked(id) {
		c.commit()
	}
}

func (c *CartStore) removeLocked(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return true
}

func (c *CartStore) UpdateQuantity(id string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		if c.removeLocked(id) {
			c.commit()
		}
		return
	}

	idx := c.indexOf(id)
	if idx < 0 {
		return
	}
	c.lines[idx].Quantity = qty
	c.commit()
}

func (c *CartStore) GetItem(id string) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(id); idx >= 0 {
		return c.lines[idx], true
	}
	return domain.CartLine{}, false
}

// GetTotal returns the subtotal only; fees and tax come from ComputeBill.
func (c *CartStore) GetTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Subtotal(c.lines)
}

func (c *CartStore) GetItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c *CartStore) Items() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

func (c *CartStore) Snapshot() domain.CartEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *CartStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.commit()
}

// RemoveOrdered takes the quantities in ordered out of the cart. Lines added
// or topped up after the snapshot was taken keep the difference.
func (c *CartStore) RemoveOrdered(ordered []domain.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for _, line := range ordered {
		idx := c.indexOf(line.ID)
		if idx < 0 {
			continue
		}
		changed = true
		if c.lines[idx].Quantity <= line.Quantity {
			c.removeLocked(line.ID)
			continue
		}
		c.lines[idx].Quantity -= line.Quantity
	}
	if changed {
		c.commit()
	}
}

// LockCheckout serializes checkouts of this cart. Other mutations are not
// blocked.
func (c *CartStore) LockCheckout() func() {
	c.checkoutMu.Lock()
	return c.checkoutMu.Unlock
}

// Subscribe registers fn for cart-changed events. Events are delivered in
// registration order on the goroutine that performed the mutation.
func (c *CartStore) Subscribe(fn func(domain.CartEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, cartSubscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, sub := range c.subscribers {
				if sub.id == id {
					c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

type cartEntry struct {
	store    *CartStore
	lastUsed time.Time
}

// Carts hands out one CartStore per session id. Stores idle past the
// eviction cutoff are dropped and reload from storage on next use, which
// also picks up writes made by other replicas.
type Carts struct {
	mu      sync.Mutex
	storage Storage
	logger  *zap.Logger
	opts    []CartOption
	stores  map[string]*cartEntry
}

func NewCarts(storage Storage, logger *zap.Logger, opts ...CartOption) *Carts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Carts{
		storage: storage,
		logger:  logger,
		opts:    opts,
		stores:  make(map[string]*cartEntry),
	}
}

func (c *Carts) Session(sessionID string) *CartStore {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.stores[sessionID]; ok {
		entry.lastUsed = time.Now()
		return entry.store
	}
	store := NewCartStore(sessionID, c.storage, c.logger, c.opts...)
	c.stores[sessionID] = &cartEntry{store: store, lastUsed: time.Now()}
	return store
}

// Evict drops every store last used before cutoff and returns how many went.
func (c *Carts) Evict(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for id, entry := range c.stores {
		if entry.lastUsed.Before(cutoff) {
			delete(c.stores, id)
			n++
		}
	}
	return n
}

// Run evicts stores idle for longer than idle until ctx is done.
func (c *Carts) Run(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := c.Evict(now.Add(-idle)); n > 0 {
				c.logger.Debug("evicted idle carts", zap.Int("count", n))
			}
		}
	}
}
