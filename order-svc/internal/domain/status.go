package domain

import "strings"

type OrderStatus string

const (
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusReady          OrderStatus = "ready"
	StatusServed         OrderStatus = "served"
	StatusDelivered      OrderStatus = "delivered"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Label builds a display name from the dash-separated key.
func (s OrderStatus) Label() string {
	if s == "" {
		return "Unknown"
	}
	parts := strings.Split(string(s), "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

func (s OrderStatus) Message() string {
	switch s {
	case StatusConfirmed:
		return "Your order has been confirmed"
	case StatusPreparing:
		return "Your order is being prepared"
	case StatusOutForDelivery:
		return "Your order is out for delivery"
	case StatusReady:
		return "Your order is ready for pickup"
	case StatusServed:
		return "Your order has been served"
	case StatusDelivered:
		return "Your order has been delivered"
	case StatusCompleted:
		return "Order completed successfully"
	case StatusCancelled:
		return "Your order has been cancelled"
	}
	return "Order status updated"
}

// IsCurrent reports whether an order in this status still belongs on the
// "current orders" list.
func (s OrderStatus) IsCurrent() bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusReady, StatusServed:
		return true
	}
	return false
}

func (s OrderStatus) IsHistory() bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Stage struct {
	Key         OrderStatus `json:"key"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

var baseFlow = []Stage{
	{Key: StatusConfirmed, Title: "Order Confirmed", Description: "Your order has been received"},
	{Key: StatusPreparing, Title: "Preparing", Description: "Your food is being prepared"},
}

// StatusFlow returns the ordered lifecycle stages for a mode. The returned
// slice is a fresh copy.
func StatusFlow(mode OrderMode) []Stage {
	flow := append([]Stage(nil), baseFlow...)
	switch mode {
	case ModeDelivery:
		flow = append(flow,
			Stage{Key: StatusOutForDelivery, Title: "Out for Delivery", Description: "Your order is on the way"},
			Stage{Key: StatusDelivered, Title: "Delivered", Description: "Order delivered successfully"},
		)
	case ModeTakeaway:
		flow = append(flow,
			Stage{Key: StatusReady, Title: "Ready for Pickup", Description: "Your order is ready"},
			Stage{Key: StatusCompleted, Title: "Order Complete", Description: "Order picked up successfully"},
		)
	case ModeDineIn:
		flow = append(flow,
			Stage{Key: StatusServed, Title: "Served", Description: "Your order has been served"},
			Stage{Key: StatusCompleted, Title: "Order Complete", Description: "Enjoy your meal!"},
		)
	}
	return flow
}
