package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

const qrKeyPrefix = "qrcode"

type OrderLists struct {
	Current  []domain.Order `json:"current"`
	History  []domain.Order `json:"history"`
	Fallback bool           `json:"fallback"`
}

type OrderService struct {
	repo      OrderRepository
	catalog   MenuLookup
	storage   Storage
	qrEncoder QRGenerator
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(repo OrderRepository, catalog MenuLookup, storage Storage, qr QRGenerator, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:      repo,
		catalog:   catalog,
		storage:   storage,
		qrEncoder: qr,
		logger:    logger,
		now:       time.Now,
	}
}

// SplitOrders sorts orders into the current list and the newest-first
// history list.
func SplitOrders(orders []domain.Order) (current, history []domain.Order) {
	current = []domain.Order{}
	history = []domain.Order{}
	for _, o := range orders {
		switch {
		case o.Status.IsCurrent():
			current = append(current, o)
		case o.Status.IsHistory():
			history = append(history, o)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	return current, history
}

// Orders falls back to the sample history when the repository fails; the
// returned error is then a *RepositoryError alongside usable lists.
func (s *OrderService) Orders(ctx context.Context, userID string) (OrderLists, error) {
	orders, err := s.repo.FetchOrders(ctx, userID)
	if err == nil {
		current, history := SplitOrders(orders)
		return OrderLists{Current: current, History: history}, nil
	}

	s.logger.Warn("orders unavailable, using sample data", zap.String("user", userID), zap.Error(err))
	current, history := SplitOrders(domain.SampleOrders(s.now()))
	return OrderLists{Current: current, History: history, Fallback: true},
		&RepositoryError{Op: "fetch orders", Err: err}
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, &RepositoryError{Op: "get order", Err: err}
	}
	order.QRCode = s.QRLink(order.ID)
	return order, nil
}

// Reorder adds every unit of a past order back into cart and returns the
// number of units added. Items the live catalog marks unavailable are skipped.
func (s *OrderService) Reorder(ctx context.Context, orderID string, cart *CartStore) (int, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, line := range order.Items {
		item := line.MenuItem
		if s.catalog != nil {
			if live, err := s.catalog.Find(ctx, line.ID); err == nil {
				if !live.Availability {
					continue
				}
				item = live
			}
		}
		for i := 0; i < line.Quantity; i++ {
			cart.AddItem(item)
			added++
		}
	}
	return added, nil
}

func (s *OrderService) QRCode(ctx context.Context, orderID string) ([]byte, error) {
	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}

	key := qrKeyPrefix + ":" + orderID
	var qr []byte
	if found, err := s.storage.Get(key, &qr); err == nil && found && len(qr) > 0 {
		return qr, nil
	}
	if s.qrEncoder == nil {
		return nil, errors.New("qr generation is not configured")
	}

	qr, err := s.qrEncoder.Generate(orderID)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}
	if err := s.storage.Set(key, qr); err != nil {
		s.logger.Warn("qr cache write failed", zap.String("order", orderID), zap.Error(err))
	}
	return qr, nil
}

func (s *OrderService) QRLink(orderID string) string {
	return fmt.Sprintf("/api/orders/%s/qrcode", orderID)
}
