package service

import (
	"github.com/shopspring/decimal"

	"overcooked-orders/order-svc/internal/domain"
)

// DeliveryFee is charged once per delivery order, in minor units.
const DeliveryFee int64 = 40

var taxRate = decimal.RequireFromString("0.05")

func Subtotal(lines []domain.CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.LineTotal()
	}
	return subtotal
}

// Tax is 5% of the subtotal rounded half up to a whole minor unit.
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()
}

// ComputeBill derives the bill for a cart in the given mode. An empty cart
// bills nothing, not even the delivery fee.
func ComputeBill(lines []domain.CartLine, mode domain.OrderMode) domain.BillBreakdown {
	subtotal := Subtotal(lines)
	if len(lines) == 0 {
		return domain.BillBreakdown{}
	}

	bill := domain.BillBreakdown{
		Subtotal: subtotal,
		Tax:      Tax(subtotal),
	}
	if mode == domain.ModeDelivery {
		bill.DeliveryFee = DeliveryFee
	}
	bill.Total = bill.Subtotal + bill.Tax + bill.DeliveryFee
	return bill
}
