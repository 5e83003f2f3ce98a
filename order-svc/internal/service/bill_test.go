package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"overcooked-orders/order-svc/internal/domain"
	"overcooked-orders/order-svc/internal/service"
)

var (
	pizza  = domain.MenuItem{ID: "1", Name: "Margherita Pizza", Category: "pizza", Price: 299, Availability: true, IsVeg: true}
	coffee = domain.MenuItem{ID: "4", Name: "Cold Coffee", Category: "drinks", Price: 149, Availability: true, IsVeg: true}
)

func line(item domain.MenuItem, qty int) domain.CartLine {
	return domain.CartLine{MenuItem: item, Quantity: qty}
}

func TestComputeBill(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.CartLine
		mode  domain.OrderMode
		want  domain.BillBreakdown
	}{
		{
			name:  "delivery with two lines",
			lines: []domain.CartLine{line(pizza, 2), line(coffee, 1)},
			mode:  domain.ModeDelivery,
			want:  domain.BillBreakdown{Subtotal: 747, Tax: 37, DeliveryFee: 40, Total: 824},
		},
		{
			name:  "takeaway carries no fee",
			lines: []domain.CartLine{line(pizza, 2), line(coffee, 1)},
			mode:  domain.ModeTakeaway,
			want:  domain.BillBreakdown{Subtotal: 747, Tax: 37, Total: 784},
		},
		{
			name:  "dine-in rounds tax half up",
			lines: []domain.CartLine{line(pizza, 1)},
			mode:  domain.ModeDineIn,
			want:  domain.BillBreakdown{Subtotal: 299, Tax: 15, Total: 314},
		},
		{
			name:  "exact half rounds up",
			lines: []domain.CartLine{line(domain.MenuItem{ID: "x", Price: 10}, 1)},
			mode:  domain.ModeTakeaway,
			want:  domain.BillBreakdown{Subtotal: 10, Tax: 1, Total: 11},
		},
		{
			name:  "below half rounds down",
			lines: []domain.CartLine{line(domain.MenuItem{ID: "x", Price: 9}, 1)},
			mode:  domain.ModeTakeaway,
			want:  domain.BillBreakdown{Subtotal: 9, Tax: 0, Total: 9},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, service.ComputeBill(testCase.lines, testCase.mode))
		})
	}
}

func TestComputeBill_EmptyCartIsZeroForEveryMode(t *testing.T) {
	for _, mode := range domain.Modes {
		assert.Equal(t, domain.BillBreakdown{}, service.ComputeBill(nil, mode), mode.String())
		assert.Equal(t, domain.BillBreakdown{}, service.ComputeBill([]domain.CartLine{}, mode), mode.String())
	}
}

func TestComputeBill_DeliveryFeeDependsOnlyOnMode(t *testing.T) {
	carts := [][]domain.CartLine{
		{line(coffee, 1)},
		{line(pizza, 7)},
		{line(pizza, 1), line(coffee, 3)},
	}
	for _, lines := range carts {
		assert.Equal(t, int64(40), service.ComputeBill(lines, domain.ModeDelivery).DeliveryFee)
		assert.Zero(t, service.ComputeBill(lines, domain.ModeTakeaway).DeliveryFee)
		assert.Zero(t, service.ComputeBill(lines, domain.ModeDineIn).DeliveryFee)
	}
}
