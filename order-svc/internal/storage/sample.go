package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"overcooked-orders/order-svc/internal/domain"
)

// SampleRepository serves the demo catalog and keeps submitted orders in
// memory. It backs the service when no database is configured.
type SampleRepository struct {
	mu     sync.RWMutex
	menu   []domain.MenuItem
	orders map[string]domain.Order
	now    func() time.Time
}

func NewSampleRepository() *SampleRepository {
	r := &SampleRepository{
		menu:   domain.SampleMenu(),
		orders: make(map[string]domain.Order),
		now:    time.Now,
	}
	for _, order := range domain.SampleOrders(r.now()) {
		r.orders[order.ID] = order
	}
	return r
}

func (r *SampleRepository) FetchCatalog(ctx context.Context) ([]domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.MenuItem(nil), r.menu...), nil
}

func (r *SampleRepository) FetchOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *SampleRepository) SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	order := domain.Order{
		ID:           uuid.NewString(),
		UserID:       draft.UserID,
		Items:        append([]domain.CartLine(nil), draft.Items...),
		Mode:         draft.Mode,
		OrderDetails: draft.OrderDetails,
		Bill:         draft.Bill,
		Total:        draft.Total,
		Status:       draft.Status,
		CreatedAt:    r.now(),
	}

	r.mu.Lock()
	r.orders[order.ID] = order
	r.mu.Unlock()
	return order.ID, nil
}

func (r *SampleRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.CartLine(nil), order.Items...)
	return &order, nil
}

func (r *SampleRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	r.orders[orderID] = order
	return nil
}
