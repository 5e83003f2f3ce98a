package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overcooked-orders/order-svc/internal/domain"
)

type recorder struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (r *recorder) record(u domain.StatusUpdate) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

func (r *recorder) statuses() []domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OrderStatus, 0, len(r.updates))
	for _, u := range r.updates {
		out = append(out, u.Status)
	}
	return out
}

func TestStatusHub(t *testing.T) {
	hub := newStatusHub()
	var a, b recorder

	removeA := hub.add("o1", a.record)
	var removeB func()
	removeB = hub.add("o1", func(u domain.StatusUpdate) {
		b.record(u)
		removeB()
	})
	hub.add("o2", func(domain.StatusUpdate) { t.Fatal("delivered to the wrong order") })

	assert.Equal(t, 2, hub.dispatch(domain.StatusUpdate{OrderID: "o1", Status: domain.StatusPreparing}))
	assert.Equal(t, 1, hub.count("o1"))

	removeA()
	removeA()
	assert.Zero(t, hub.dispatch(domain.StatusUpdate{OrderID: "o1", Status: domain.StatusReady}))
	assert.Equal(t, []domain.OrderStatus{domain.StatusPreparing}, a.statuses())
	assert.Equal(t, []domain.OrderStatus{domain.StatusPreparing}, b.statuses())
}

func TestLocalStatusFeed_Publish(t *testing.T) {
	ctx := context.Background()
	feed := NewLocalStatusFeed(nil, 0, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return now }

	var rec recorder
	remove, err := feed.Subscribe(ctx, "o1", rec.record)
	require.NoError(t, err)

	require.NoError(t, feed.PublishStatus(ctx, domain.StatusUpdate{OrderID: "o1", Status: domain.StatusPreparing}))
	remove()
	require.NoError(t, feed.PublishStatus(ctx, domain.StatusUpdate{OrderID: "o1", Status: domain.StatusReady}))

	require.Len(t, rec.updates, 1)
	assert.Equal(t, now, rec.updates[0].Timestamp)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, feed.PublishStatus(cancelled, domain.StatusUpdate{OrderID: "o1"}), context.Canceled)
	assert.NoError(t, feed.PublishOrderEvent(ctx, domain.OrderEvent{Type: "order_created", OrderID: "o1"}))
}

func TestLocalStatusFeed_Simulation(t *testing.T) {
	repo := NewSampleRepository()
	feed := NewLocalStatusFeed(repo, 2*time.Millisecond, nil)

	// ORDER-001 is a delivery order already being prepared.
	var rec recorder
	remove, err := feed.Subscribe(context.Background(), "ORDER-001", rec.record)
	require.NoError(t, err)
	defer remove()

	assert.Eventually(t, func() bool { return len(rec.statuses()) == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, []domain.OrderStatus{domain.StatusOutForDelivery, domain.StatusDelivered}, rec.statuses())
}

func TestLocalStatusFeed_SimulationStopsOnUnsubscribe(t *testing.T) {
	repo := NewSampleRepository()
	feed := NewLocalStatusFeed(repo, time.Hour, nil)

	var rec recorder
	remove, err := feed.Subscribe(context.Background(), "ORDER-001", rec.record)
	require.NoError(t, err)
	remove()

	assert.Zero(t, feed.hub.count("ORDER-001"))
	assert.Empty(t, rec.statuses())
}
