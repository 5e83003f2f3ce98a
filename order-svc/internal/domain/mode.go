package domain

import (
	"strings"
	"time"
)

type OrderMode string

const (
	ModeDelivery OrderMode = "delivery"
	ModeTakeaway OrderMode = "takeaway"
	ModeDineIn   OrderMode = "dine-in"
)

var Modes = []OrderMode{ModeDelivery, ModeTakeaway, ModeDineIn}

func (m OrderMode) Valid() bool {
	switch m {
	case ModeDelivery, ModeTakeaway, ModeDineIn:
		return true
	}
	return false
}

func (m OrderMode) String() string {
	return string(m)
}

// Label turns "dine-in" into "Dine-in".
func (m OrderMode) Label() string {
	if m == "" {
		return ""
	}
	s := string(m)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m OrderMode) TrackButtonText() string {
	switch m {
	case ModeTakeaway:
		return "View Status"
	case ModeDineIn:
		return "View Order"
	default:
		return "Track Order"
	}
}

func (m OrderMode) EstimatedTime() string {
	switch m {
	case ModeTakeaway:
		return "15-20 mins"
	case ModeDineIn:
		return "10-15 mins"
	default:
		return "25-30 mins"
	}
}

func ParseMode(s string) (OrderMode, bool) {
	m := OrderMode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentOnline  PaymentMethod = "online"
	PaymentCounter PaymentMethod = "counter"
	PaymentTable   PaymentMethod = "table"
)

// DefaultPayment is the method preselected for each mode.
func (m OrderMode) DefaultPayment() PaymentMethod {
	switch m {
	case ModeTakeaway:
		return PaymentOnline
	case ModeDineIn:
		return PaymentTable
	default:
		return PaymentCOD
	}
}

func (m OrderMode) AllowedPayments() []PaymentMethod {
	switch m {
	case ModeDelivery:
		return []PaymentMethod{PaymentCOD, PaymentOnline}
	case ModeTakeaway:
		return []PaymentMethod{PaymentOnline, PaymentCounter}
	case ModeDineIn:
		return []PaymentMethod{PaymentTable, PaymentOnline}
	}
	return nil
}

type DeliveryDetail struct {
	Street       string `json:"deliveryAddress"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
	AltPhone     string `json:"altPhone,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type TakeawayDetail struct {
	PickupTime   time.Time `json:"pickupTime"`
	Instructions string    `json:"instructions,omitempty"`
}

type DineInDetail struct {
	TableNumber int    `json:"tableNumber"`
	GuestCount  int    `json:"guestCount"`
	Requests    string `json:"requests,omitempty"`
}

// OrderDetail is keyed by Mode: exactly one of Delivery, Takeaway or DineIn is set.
type OrderDetail struct {
	Mode          OrderMode       `json:"mode"`
	Phone         string          `json:"phone"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Delivery      *DeliveryDetail `json:"delivery,omitempty"`
	Takeaway      *TakeawayDetail `json:"takeaway,omitempty"`
	DineIn        *DineInDetail   `json:"dineIn,omitempty"`
}

type TimeSlot struct {
	Value    time.Time `json:"value"`
	Label    string    `json:"label"`
	Disabled bool      `json:"disabled"`
}

type Table struct {
	Number   int  `json:"number"`
	Capacity int  `json:"capacity"`
	Occupied bool `json:"occupied"`
}

// CheckoutSession pins the slots and table availability shown to a user so
// that a later submission is validated against what they actually saw.
type CheckoutSession struct {
	ID        string     `json:"id"`
	Mode      OrderMode  `json:"mode"`
	Slots     []TimeSlot `json:"slots,omitempty"`
	Tables    []Table    `json:"tables,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
