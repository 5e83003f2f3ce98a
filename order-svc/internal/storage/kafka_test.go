package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overcooked-orders/order-svc/internal/domain"
)

func TestKafkaStatusSource_Handle(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []domain.OrderStatus
	}{
		{name: "valid update", payload: `{"orderId":"o1","status":"preparing"}`, want: []domain.OrderStatus{domain.StatusPreparing}},
		{name: "other order", payload: `{"orderId":"o2","status":"preparing"}`, want: []domain.OrderStatus{}},
		{name: "missing status", payload: `{"orderId":"o1"}`, want: []domain.OrderStatus{}},
		{name: "malformed payload", payload: `{"orderId":`, want: []domain.OrderStatus{}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			source := NewKafkaStatusSource(nil, nil)
			var rec recorder
			remove, err := source.Subscribe(context.Background(), "o1", rec.record)
			require.NoError(t, err)
			defer remove()

			source.Handle([]byte(testCase.payload))

			assert.Equal(t, testCase.want, rec.statuses())
		})
	}
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "orders.o1.status", StatusSubject("o1"))
	assert.Equal(t, "orders.o1.events", EventSubject("o1"))
}
