package service

import (
	"context"

	"overcooked-orders/order-svc/internal/domain"
)

// Storage is a synchronous key/value store holding JSON-encodable values.
type Storage interface {
	Get(key string, dest any) (bool, error)
	Set(key string, value any) error
	Remove(key string) error
}

type OrderRepository interface {
	FetchCatalog(ctx context.Context) ([]domain.MenuItem, error)
	FetchOrders(ctx context.Context, userID string) ([]domain.Order, error)
	SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (string, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// StatusSource delivers status updates for one order until the returned
// unsubscribe func is called. Unsubscribe must not block on delivery.
type StatusSource interface {
	Subscribe(ctx context.Context, orderID string, onUpdate func(domain.StatusUpdate)) (func(), error)
}

type StatusPublisher interface {
	PublishStatus(ctx context.Context, update domain.StatusUpdate) error
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error
}

// TableAvailability answers whether a table is taken at the moment a
// checkout session is opened.
type TableAvailability interface {
	Occupied(tableNumber int) bool
}

type MenuLookup interface {
	Find(ctx context.Context, itemID string) (domain.MenuItem, error)
}

type CatalogServiceInterface interface {
	MenuLookup
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	Filter(items []domain.MenuItem, filter MenuFilter) []domain.MenuItem
	AddToCart(ctx context.Context, cart *CartStore, itemID string) (domain.MenuItem, error)
}

type CheckoutServiceInterface interface {
	NewSession(mode domain.OrderMode) (*domain.CheckoutSession, error)
	PlaceOrder(ctx context.Context, cart *CartStore, req PlaceOrderRequest) (*domain.Order, error)
}

type OrderServiceInterface interface {
	Orders(ctx context.Context, userID string) (OrderLists, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Reorder(ctx context.Context, orderID string, cart *CartStore) (int, error)
	QRCode(ctx context.Context, orderID string) ([]byte, error)
	QRLink(orderID string) string
}

type TrackingServiceInterface interface {
	Tracker(ctx context.Context, orderID string) (*Tracker, error)
	RequestStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

var (
	_ CatalogServiceInterface  = (*CatalogService)(nil)
	_ CheckoutServiceInterface = (*CheckoutService)(nil)
	_ OrderServiceInterface    = (*OrderService)(nil)
	_ TrackingServiceInterface = (*TrackingService)(nil)
)
