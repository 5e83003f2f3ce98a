package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

type KafkaPublisher struct {
	Orders *kafka.Writer
	Status *kafka.Writer
}

func NewKafkaPublisher(orders, status *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Orders: orders, Status: status}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	return p.Orders.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
	})
}

func (p *KafkaPublisher) PublishStatus(ctx context.Context, update domain.StatusUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}
	return p.Status.WriteMessages(ctx, kafka.Message{
		Key:   []byte(update.OrderID),
		Value: payload,
	})
}

// KafkaStatusSource reads the status topic and hands each update to the
// subscribers of its order. Start must be running for updates to flow.
type KafkaStatusSource struct {
	Reader *kafka.Reader
	hub    *statusHub
	logger *zap.Logger
}

func NewKafkaStatusSource(reader *kafka.Reader, logger *zap.Logger) *KafkaStatusSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaStatusSource{Reader: reader, hub: newStatusHub(), logger: logger}
}

func (s *KafkaStatusSource) Subscribe(ctx context.Context, orderID string, onUpdate func(domain.StatusUpdate)) (func(), error) {
	return s.hub.add(orderID, onUpdate), nil
}

func (s *KafkaStatusSource) Start(ctx context.Context) {
	s.logger.Info("starting status consumer", zap.String("topic", s.Reader.Config().Topic))
	for {
		message, err := s.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Warn("error reading status message", zap.Error(err))
			continue
		}
		s.Handle(message.Value)
	}
}

func (s *KafkaStatusSource) Handle(payload []byte) {
	var update domain.StatusUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		s.logger.Warn("error unmarshaling status message", zap.Error(err))
		return
	}
	if update.OrderID == "" || update.Status == "" {
		s.logger.Warn("status message without order or status")
		return
	}
	s.hub.dispatch(update)
}
