package domain

import "time"

type MenuItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Price        int64   `json:"price"`
	ImageURL     string  `json:"imageURL"`
	IsVeg        bool    `json:"isVeg"`
	Rating       float64 `json:"rating"`
	IsPopular    bool    `json:"isPopular"`
	Availability bool    `json:"availability"`
}

// CartLine is a menu item projected into the cart. Quantity is always >= 1.
type CartLine struct {
	MenuItem
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

func (l CartLine) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}

type BillBreakdown struct {
	Subtotal    int64 `json:"subtotal"`
	Tax         int64 `json:"tax"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
}

type CartEvent struct {
	Items    []CartLine `json:"items"`
	Subtotal int64      `json:"total"`
	Count    int        `json:"count"`
}

type Order struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Items        []CartLine    `json:"items"`
	Mode         OrderMode     `json:"mode"`
	OrderDetails OrderDetail   `json:"orderDetails"`
	Bill         BillBreakdown `json:"bill"`
	Total        int64         `json:"total"`
	Status       OrderStatus   `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	QRCode       string        `json:"qr_code,omitempty"`
}

// OrderDraft is what the checkout hands to the repository; the id and
// creation time are assigned on submission.
type OrderDraft struct {
	UserID       string        `json:"userId"`
	Items        []CartLine    `json:"items"`
	Mode         OrderMode     `json:"mode"`
	OrderDetails OrderDetail   `json:"orderDetails"`
	Bill         BillBreakdown `json:"bill"`
	Total        int64         `json:"total"`
	Status       OrderStatus   `json:"status"`
}

type StatusUpdate struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusNotification is produced by a tracker whenever it accepts a new status.
type StatusNotification struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Previous  OrderStatus `json:"previous"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

type OrderEvent struct {
	Type      string      `json:"type"`
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Mode      OrderMode   `json:"mode"`
	Status    OrderStatus `json:"status"`
	Total     int64       `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}
