package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

func StatusSubject(orderID string) string {
	return "orders." + orderID + ".status"
}

func EventSubject(orderID string) string {
	return "orders." + orderID + ".events"
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) PublishStatus(ctx context.Context, update domain.StatusUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}
	return p.conn.Publish(StatusSubject(update.OrderID), payload)
}

func (p *NATSPublisher) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	return p.conn.Publish(EventSubject(evt.OrderID), payload)
}

// NATSStatusSource subscribes to the status subject of each tracked order.
type NATSStatusSource struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSStatusSource(conn *nats.Conn, logger *zap.Logger) *NATSStatusSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSStatusSource{conn: conn, logger: logger}
}

func (s *NATSStatusSource) Subscribe(ctx context.Context, orderID string, onUpdate func(domain.StatusUpdate)) (func(), error) {
	sub, err := s.conn.Subscribe(StatusSubject(orderID), func(msg *nats.Msg) {
		var update domain.StatusUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			s.logger.Warn("error unmarshaling status message", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if update.OrderID == "" {
			update.OrderID = orderID
		}
		onUpdate(update)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", StatusSubject(orderID), err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
				s.logger.Debug("unsubscribe failed", zap.String("order", orderID), zap.Error(err))
			}
		})
	}, nil
}
