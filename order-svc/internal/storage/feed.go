package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

type OrderLookup interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// LocalStatusFeed is an in-process status transport. Published updates are
// delivered synchronously to subscribers of the order. With a non-zero
// Interval every subscription also walks the order through its remaining
// stages on a timer, one stage per tick.
type LocalStatusFeed struct {
	Interval time.Duration
	lookup   OrderLookup
	logger   *zap.Logger
	hub      *statusHub
	now      func() time.Time
}

func NewLocalStatusFeed(lookup OrderLookup, interval time.Duration, logger *zap.Logger) *LocalStatusFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStatusFeed{
		Interval: interval,
		lookup:   lookup,
		logger:   logger,
		hub:      newStatusHub(),
		now:      time.Now,
	}
}

func (f *LocalStatusFeed) Subscribe(ctx context.Context, orderID string, onUpdate func(domain.StatusUpdate)) (func(), error) {
	remove := f.hub.add(orderID, onUpdate)
	if f.Interval <= 0 || f.lookup == nil {
		return remove, nil
	}

	simCtx, cancel := context.WithCancel(ctx)
	go f.simulate(simCtx, orderID, onUpdate)

	return func() {
		cancel()
		remove()
	}, nil
}

// simulate delivers only to the subscription that started it.
func (f *LocalStatusFeed) simulate(ctx context.Context, orderID string, onUpdate func(domain.StatusUpdate)) {
	order, err := f.lookup.GetOrder(ctx, orderID)
	if err != nil {
		f.logger.Warn("status simulation aborted", zap.String("order", orderID), zap.Error(err))
		return
	}

	flow := domain.StatusFlow(order.Mode)
	next := 0
	for i, stage := range flow {
		if stage.Key == order.Status {
			next = i + 1
		}
	}

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for ; next < len(flow); next++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		onUpdate(domain.StatusUpdate{OrderID: orderID, Status: flow[next].Key, Timestamp: f.now()})
	}
}

func (f *LocalStatusFeed) PublishStatus(ctx context.Context, update domain.StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if update.Timestamp.IsZero() {
		update.Timestamp = f.now()
	}
	delivered := f.hub.dispatch(update)
	f.logger.Debug("status published",
		zap.String("order", update.OrderID),
		zap.String("status", update.Status.String()),
		zap.Int("subscribers", delivered))
	return nil
}

// PublishOrderEvent only logs; nothing consumes order events in-process.
func (f *LocalStatusFeed) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	f.logger.Info("order event",
		zap.String("type", evt.Type),
		zap.String("order", evt.OrderID),
		zap.String("mode", evt.Mode.String()),
		zap.Int64("total", evt.Total))
	return nil
}
