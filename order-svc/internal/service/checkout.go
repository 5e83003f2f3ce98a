package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
)

const (
	slotStep        = 15 * time.Minute
	prepBuffer      = 30 * time.Minute
	slotCount       = 12
	openingHour     = 10
	closingHour     = 22
	tableCount      = 12
	maxGuestCount   = 5
	sessionKeyBase  = "checkout_session"
	slotLabelLayout = "03:04 PM"
)

func SessionKey(id string) string {
	return sessionKeyBase + ":" + id
}

// SlotOpen reports whether a pickup at t falls inside opening hours.
func SlotOpen(t time.Time) bool {
	return t.Hour() >= openingHour && t.Hour() < closingHour
}

// GenerateTimeSlots rounds now up to the next quarter hour, adds the
// preparation buffer and enumerates the pickup slots from there.
func GenerateTimeSlots(now time.Time) []domain.TimeSlot {
	start := now.Truncate(time.Minute)
	if rem := start.Minute() % 15; rem != 0 {
		start = start.Add(time.Duration(15-rem) * time.Minute)
	}
	start = start.Add(prepBuffer)

	slots := make([]domain.TimeSlot, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		t := start.Add(time.Duration(i) * slotStep)
		slots = append(slots, domain.TimeSlot{
			Value:    t,
			Label:    t.Format(slotLabelLayout),
			Disabled: !SlotOpen(t),
		})
	}
	return slots
}

func tableCapacity(n int) int {
	switch {
	case n <= 4:
		return 2
	case n <= 8:
		return 4
	default:
		return 6
	}
}

func GenerateTables(avail TableAvailability) []domain.Table {
	tables := make([]domain.Table, 0, tableCount)
	for n := 1; n <= tableCount; n++ {
		tables = append(tables, domain.Table{
			Number:   n,
			Capacity: tableCapacity(n),
			Occupied: avail != nil && avail.Occupied(n),
		})
	}
	return tables
}

// OccupiedTables is a fixed availability map.
type OccupiedTables map[int]bool

func (o OccupiedTables) Occupied(n int) bool {
	return o[n]
}

// RandomOccupancy marks each table as taken with probability P.
type RandomOccupancy struct {
	mu  sync.Mutex
	rnd *rand.Rand
	P   float64
}

func NewRandomOccupancy(p float64) *RandomOccupancy {
	return &RandomOccupancy{rnd: rand.New(rand.NewSource(time.Now().UnixNano())), P: p}
}

func (r *RandomOccupancy) Occupied(int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64() < r.P
}

// RawFields is the checkout form as submitted by the client.
type RawFields struct {
	Street        string `json:"streetAddress"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	Phone         string `json:"phone"`
	AltPhone      string `json:"altPhone"`
	Instructions  string `json:"instructions"`
	PickupTime    string `json:"pickupTime"`
	TableNumber   int    `json:"tableNumber"`
	GuestCount    int    `json:"guestCount"`
	Requests      string `json:"requests"`
	PaymentMethod string `json:"paymentMethod"`
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "is required")
	}
	return value, nil
}

func paymentFor(mode domain.OrderMode, raw string) (domain.PaymentMethod, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mode.DefaultPayment(), nil
	}
	for _, allowed := range mode.AllowedPayments() {
		if string(allowed) == raw {
			return allowed, nil
		}
	}
	return "", invalid("paymentMethod", fmt.Sprintf("%q is not accepted for %s orders", raw, mode))
}

// BuildOrderDetail validates raw form input for mode and assembles the
// mode-specific detail. Takeaway and dine-in selections are checked against
// the slots and tables pinned on the checkout session.
func BuildOrderDetail(mode domain.OrderMode, raw RawFields, session *domain.CheckoutSession) (domain.OrderDetail, error) {
	if !mode.Valid() {
		return domain.OrderDetail{}, invalid("mode", fmt.Sprintf("unknown order mode %q", mode))
	}

	phone, err := required("phone", raw.Phone)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	payment, err := paymentFor(mode, raw.PaymentMethod)
	if err != nil {
		return domain.OrderDetail{}, err
	}

	detail := domain.OrderDetail{Mode: mode, Phone: phone, PaymentMethod: payment}

	switch mode {
	case domain.ModeDelivery:
		d := &domain.DeliveryDetail{
			AltPhone:     strings.TrimSpace(raw.AltPhone),
			Instructions: strings.TrimSpace(raw.Instructions),
		}
		if d.Street, err = required("streetAddress", raw.Street); err != nil {
			return domain.OrderDetail{}, err
		}
		if d.City, err = required("city", raw.City); err != nil {
			return domain.OrderDetail{}, err
		}
		if d.Pincode, err = required("pincode", raw.Pincode); err != nil {
			return domain.OrderDetail{}, err
		}
		detail.Delivery = d

	case domain.ModeTakeaway:
		pickup, err := selectSlot(raw.PickupTime, session)
		if err != nil {
			return domain.OrderDetail{}, err
		}
		detail.Takeaway = &domain.TakeawayDetail{
			PickupTime:   pickup,
			Instructions: strings.TrimSpace(raw.Instructions),
		}

	case domain.ModeDineIn:
		if err := selectTable(raw.TableNumber, session); err != nil {
			return domain.OrderDetail{}, err
		}
		if raw.GuestCount < 1 || raw.GuestCount > maxGuestCount {
			return domain.OrderDetail{}, invalid("guestCount", "select between 1 and 5 guests")
		}
		detail.DineIn = &domain.DineInDetail{
			TableNumber: raw.TableNumber,
			GuestCount:  raw.GuestCount,
			Requests:    strings.TrimSpace(raw.Requests),
		}
	}

	return detail, nil
}

func selectSlot(value string, session *domain.CheckoutSession) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid("pickupTime", "select a pickup time")
	}
	picked, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalid("pickupTime", "pickup time must be RFC 3339")
	}
	if session == nil {
		return time.Time{}, invalid("pickupTime", "no pickup slots were offered")
	}
	for _, slot := range session.Slots {
		if slot.Value.Equal(picked) {
			if slot.Disabled {
				return time.Time{}, invalid("pickupTime", "the restaurant is closed at "+slot.Label)
			}
			return slot.Value, nil
		}
	}
	return time.Time{}, invalid("pickupTime", "not one of the offered pickup slots")
}

func selectTable(number int, session *domain.CheckoutSession) error {
	if number == 0 {
		return invalid("tableNumber", "select a table")
	}
	if session == nil {
		return invalid("tableNumber", "no tables were offered")
	}
	for _, table := range session.Tables {
		if table.Number == number {
			if table.Occupied {
				return invalid("tableNumber", fmt.Sprintf("table %d is occupied", number))
			}
			return nil
		}
	}
	return invalid("tableNumber", fmt.Sprintf("table %d does not exist", number))
}

type PlaceOrderRequest struct {
	UserID    string
	Mode      domain.OrderMode
	SessionID string
	Fields    RawFields
}

// OrderStarter begins tracking a freshly placed order.
type OrderStarter interface {
	Track(ctx context.Context, order *domain.Order) (*Tracker, error)
}

type CheckoutService struct {
	repo    OrderRepository
	storage Storage
	tables  TableAvailability
	events  OrderEventPublisher
	tracker OrderStarter
	logger  *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

type CheckoutOption func(*CheckoutService)

func WithEventPublisher(p OrderEventPublisher) CheckoutOption {
	return func(s *CheckoutService) { s.events = p }
}

func WithOrderStarter(t OrderStarter) CheckoutOption {
	return func(s *CheckoutService) { s.tracker = t }
}

func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) { s.now = now }
}

// WithLocation sets the restaurant's time zone. Opening hours of pickup
// slots are judged in it.
func WithLocation(loc *time.Location) CheckoutOption {
	return func(s *CheckoutService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewCheckoutService(repo OrderRepository, storage Storage, tables TableAvailability, logger *zap.Logger, opts ...CheckoutOption) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CheckoutService{
		repo:    repo,
		storage: storage,
		tables:  tables,
		logger:  logger,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession pins the pickup slots and table availability shown to the
// user for this checkout.
func (s *CheckoutService) NewSession(mode domain.OrderMode) (*domain.CheckoutSession, error) {
	if !mode.Valid() {
		return nil, invalid("mode", fmt.Sprintf("unknown order mode %q", mode))
	}

	session := &domain.CheckoutSession{
		ID:        uuid.NewString(),
		Mode:      mode,
		CreatedAt: s.now().In(s.loc),
	}
	switch mode {
	case domain.ModeTakeaway:
		session.Slots = GenerateTimeSlots(session.CreatedAt)
	case domain.ModeDineIn:
		session.Tables = GenerateTables(s.tables)
	}

	if err := s.storage.Set(SessionKey(session.ID), session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	return session, nil
}

func (s *CheckoutService) loadSession(id string) (*domain.CheckoutSession, error) {
	if id == "" {
		return nil, nil
	}
	var session domain.CheckoutSession
	found, err := s.storage.Get(SessionKey(id), &session)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// PlaceOrder validates the checkout form, submits the cart as a new order
// and, once the repository accepted it, removes exactly the submitted lines
// from the cart. Concurrent checkouts of one cart run one after the other.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cart *CartStore, req PlaceOrderRequest) (*domain.Order, error) {
	unlock := cart.LockCheckout()
	defer unlock()

	items := cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	session, err := s.loadSession(req.SessionID)
	if err != nil {
		return nil, err
	}
	if session != nil && session.Mode != req.Mode {
		return nil, invalid("mode", "checkout session was opened for "+session.Mode.String())
	}

	detail, err := BuildOrderDetail(req.Mode, req.Fields, session)
	if err != nil {
		return nil, err
	}

	bill := ComputeBill(items, req.Mode)
	draft := &domain.OrderDraft{
		UserID:       req.UserID,
		Items:        items,
		Mode:         req.Mode,
		OrderDetails: detail,
		Bill:         bill,
		Total:        bill.Total,
		Status:       domain.StatusConfirmed,
	}

	id, err := s.repo.SubmitOrder(ctx, draft)
	if err != nil {
		return nil, &RepositoryError{Op: "submit order", Err: err}
	}

	order := &domain.Order{
		ID:           id,
		UserID:       draft.UserID,
		Items:        draft.Items,
		Mode:         draft.Mode,
		OrderDetails: draft.OrderDetails,
		Bill:         draft.Bill,
		Total:        draft.Total,
		Status:       draft.Status,
		CreatedAt:    s.now(),
	}

	cart.RemoveOrdered(items)
	if session != nil {
		if err := s.storage.Remove(SessionKey(session.ID)); err != nil {
			s.logger.Warn("checkout session cleanup failed", zap.String("session", session.ID), zap.Error(err))
		}
	}

	if s.events != nil {
		evt := domain.OrderEvent{
			Type:      "order_created",
			OrderID:   order.ID,
			UserID:    order.UserID,
			Mode:      order.Mode,
			Status:    order.Status,
			Total:     order.Total,
			Timestamp: order.CreatedAt,
		}
		if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
			s.logger.Warn("order event publish failed", zap.String("order", order.ID), zap.Error(err))
		}
	}

	if s.tracker != nil {
		if _, err := s.tracker.Track(ctx, order); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("start tracking failed", zap.String("order", order.ID), zap.Error(err))
		}
	}

	s.logger.Info("order placed",
		zap.String("order", order.ID),
		zap.String("mode", order.Mode.String()),
		zap.Int64("total", order.Total))
	return order, nil
}
