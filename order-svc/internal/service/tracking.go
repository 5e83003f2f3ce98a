package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

type trackedOrder struct {
	tracker     *Tracker
	unsubscribe func()
	released    bool
}

// TrackingService keeps one Tracker per order and wires it to the status
// source until the order reaches a terminal status.
type TrackingService struct {
	repo      OrderRepository
	source    StatusSource
	publisher StatusPublisher
	logger    *zap.Logger
	opts      []TrackerOption
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	orders map[string]*trackedOrder
}

func NewTrackingService(repo OrderRepository, source StatusSource, publisher StatusPublisher, logger *zap.Logger, opts ...TrackerOption) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TrackingService{
		repo:      repo,
		source:    source,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		orders:    make(map[string]*trackedOrder),
	}
}

// Track starts tracking order. Calling it again for the same id returns the
// existing tracker.
func (s *TrackingService) Track(ctx context.Context, order *domain.Order) (*Tracker, error) {
	s.mu.Lock()
	if t, ok := s.orders[order.ID]; ok {
		s.mu.Unlock()
		return t.tracker, nil
	}
	tracker := NewTracker(order.ID, order.Mode, order.Status, s.opts...)
	entry := &trackedOrder{tracker: tracker}
	s.orders[order.ID] = entry
	s.mu.Unlock()

	if tracker.Terminal() || s.source == nil {
		return tracker, nil
	}

	unsubscribe, err := s.source.Subscribe(s.ctx, order.ID, func(update domain.StatusUpdate) {
		s.handle(entry, update)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.orders, order.ID)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	released := entry.released
	if !released {
		entry.unsubscribe = unsubscribe
	}
	s.mu.Unlock()
	if released {
		unsubscribe()
	}

	s.logger.Debug("tracking order", zap.String("order", order.ID), zap.String("status", order.Status.String()))
	return tracker, nil
}

func (s *TrackingService) handle(entry *trackedOrder, update domain.StatusUpdate) {
	tracker := entry.tracker
	n, err := tracker.Apply(update)
	if err != nil {
		s.logger.Debug("status update rejected",
			zap.String("order", tracker.OrderID()),
			zap.String("status", update.Status.String()),
			zap.Error(err))
		return
	}
	if n == nil {
		return
	}

	s.logger.Info("order status changed",
		zap.String("order", n.OrderID),
		zap.String("from", n.Previous.String()),
		zap.String("to", n.Status.String()))

	if err := s.repo.UpdateOrderStatus(s.ctx, n.OrderID, n.Status); err != nil {
		s.logger.Warn("persist order status failed", zap.String("order", n.OrderID), zap.Error(err))
	}

	if tracker.Terminal() {
		s.release(entry)
	}
}

// release drops the status subscription but keeps the tracker so clients can
// still read the final timeline.
func (s *TrackingService) release(entry *trackedOrder) {
	s.mu.Lock()
	unsubscribe := entry.unsubscribe
	entry.unsubscribe = nil
	entry.released = true
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Tracker returns the tracker for orderID, loading the order from the
// repository when it is not tracked yet.
func (s *TrackingService) Tracker(ctx context.Context, orderID string) (*Tracker, error) {
	s.mu.Lock()
	entry, ok := s.orders[orderID]
	s.mu.Unlock()
	if ok {
		return entry.tracker, nil
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, &RepositoryError{Op: "get order", Err: err}
	}
	return s.Track(ctx, order)
}

// RequestStatus publishes a status change for orderID to the transport. The
// tracker only moves once the update comes back through the status source.
func (s *TrackingService) RequestStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	tracker, err := s.Tracker(ctx, orderID)
	if err != nil {
		return err
	}
	if tracker.Terminal() {
		return ErrTerminalStatus
	}
	if status != domain.StatusCancelled && tracker.position(status) < 0 {
		return ErrUnknownStatus
	}
	if s.publisher == nil {
		return errors.New("no status publisher configured")
	}

	return s.publisher.PublishStatus(ctx, domain.StatusUpdate{
		OrderID:   orderID,
		Status:    status,
		Timestamp: s.now(),
	})
}

func (s *TrackingService) Stop(orderID string) {
	s.mu.Lock()
	entry, ok := s.orders[orderID]
	delete(s.orders, orderID)
	s.mu.Unlock()
	if ok {
		s.release(entry)
	}
}

func (s *TrackingService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, entry := range s.orders {
		if !entry.released && !entry.tracker.Terminal() {
			n++
		}
	}
	return n
}

// Close tears down every subscription.
func (s *TrackingService) Close() {
	s.cancel()

	s.mu.Lock()
	entries := make([]*trackedOrder, 0, len(s.orders))
	for _, entry := range s.orders {
		entries = append(entries, entry)
	}
	s.mu.Unlock()

	for _, entry := range entries {
		s.release(entry)
	}
}
