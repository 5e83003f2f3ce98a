package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
	"overcooked-orders/order-svc/internal/service"
)

const (
	sessionHeader  = "X-Session-ID"
	userHeader     = "X-User-ID"
	defaultSession = "guest"
)

type Handler struct {
	Catalog  service.CatalogServiceInterface
	Carts    *service.Carts
	Checkout service.CheckoutServiceInterface
	Orders   service.OrderServiceInterface
	Tracking service.TrackingServiceInterface
	Logger   *zap.Logger
}

func NewHandler(
	catalog service.CatalogServiceInterface,
	carts *service.Carts,
	checkout service.CheckoutServiceInterface,
	orders service.OrderServiceInterface,
	tracking service.TrackingServiceInterface,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Catalog:  catalog,
		Carts:    carts,
		Checkout: checkout,
		Orders:   orders,
		Tracking: tracking,
		Logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.getMenu).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{id}", h.updateCartItem).Methods("PUT")
	r.HandleFunc("/api/cart/items/{id}", h.removeCartItem).Methods("DELETE")

	r.HandleFunc("/api/checkout/session", h.createCheckoutSession).Methods("POST")

	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/tracking", h.getTracking).Methods("GET")
	r.HandleFunc("/api/orders/{id}/events", h.streamStatus).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", h.updateStatus).Methods("POST")
	r.HandleFunc("/api/orders/{id}/cancel", h.cancelOrder).Methods("POST")
	r.HandleFunc("/api/orders/{id}/reorder", h.reorder).Methods("POST")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	var validation *service.ValidationError
	var repo *service.RepositoryError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrTerminalStatus),
		errors.Is(err, service.ErrBackwardTransition):
		return http.StatusConflict
	case errors.As(err, &repo):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	http.Error(w, err.Error(), code)
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	return defaultSession
}

func userID(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return id
	}
	return domain.SampleUserID
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Menu(r.Context())
	fallback := err != nil

	q := r.URL.Query()
	filtered := h.Catalog.Filter(items, service.MenuFilter{
		Category:   q.Get("category"),
		Diet:       q.Get("diet"),
		PriceRange: q.Get("price"),
		Query:      q.Get("q"),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":    filtered,
		"fallback": fallback,
	})
}

type cartResponse struct {
	Items         []domain.CartLine    `json:"items"`
	Count         int                  `json:"count"`
	Mode          domain.OrderMode     `json:"mode"`
	Bill          domain.BillBreakdown `json:"bill"`
	EstimatedTime string               `json:"estimatedTime"`
}

func cartView(cart *service.CartStore, mode domain.OrderMode) cartResponse {
	snap := cart.Snapshot()
	return cartResponse{
		Items:         snap.Items,
		Count:         snap.Count,
		Mode:          mode,
		Bill:          service.ComputeBill(snap.Items, mode),
		EstimatedTime: mode.EstimatedTime(),
	}
}

func modeParam(r *http.Request) domain.OrderMode {
	if mode, ok := domain.ParseMode(r.URL.Query().Get("mode")); ok {
		return mode
	}
	return domain.ModeDelivery
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart := h.Carts.Session(sessionID(r))
	writeJSON(w, http.StatusOK, cartView(cart, modeParam(r)))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		http.Error(w, "item_id is required", http.StatusBadRequest)
		return
	}

	cart := h.Carts.Session(sessionID(r))
	if _, err := h.Catalog.AddToCart(r.Context(), cart, req.ItemID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(cart, modeParam(r)))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		http.Error(w, "quantity is required", http.StatusBadRequest)
		return
	}

	cart := h.Carts.Session(sessionID(r))
	cart.UpdateQuantity(mux.Vars(r)["id"], *req.Quantity)
	writeJSON(w, http.StatusOK, cartView(cart, modeParam(r)))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cart := h.Carts.Session(sessionID(r))
	cart.RemoveItem(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, cartView(cart, modeParam(r)))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.Carts.Session(sessionID(r))
	cart.Clear()
	writeJSON(w, http.StatusOK, cartView(cart, modeParam(r)))
}

func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.Checkout.NewSession(domain.OrderMode(req.Mode))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type placeOrderRequest struct {
	Mode      string `json:"mode"`
	SessionID string `json:"sessionId"`
	service.RawFields
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cart := h.Carts.Session(sessionID(r))
	order, err := h.Checkout.PlaceOrder(r.Context(), cart, service.PlaceOrderRequest{
		UserID:    userID(r),
		Mode:      domain.OrderMode(req.Mode),
		SessionID: req.SessionID,
		Fields:    req.RawFields,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	order.QRCode = h.Orders.QRLink(order.ID)
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	lists, err := h.Orders.Orders(r.Context(), userID(r))
	if err != nil && !lists.Fallback {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type trackingResponse struct {
	OrderID         string                      `json:"orderId"`
	Mode            domain.OrderMode            `json:"mode"`
	Status          domain.OrderStatus          `json:"status"`
	StatusLabel     string                      `json:"statusLabel"`
	Terminal        bool                        `json:"terminal"`
	TrackButtonText string                      `json:"trackButtonText"`
	EstimatedTime   string                      `json:"estimatedTime"`
	Timeline        []service.TimelineEntry     `json:"timeline"`
	History         []domain.StatusNotification `json:"history"`
}

func trackingView(t *service.Tracker) trackingResponse {
	status := t.Status()
	return trackingResponse{
		OrderID:         t.OrderID(),
		Mode:            t.Mode(),
		Status:          status,
		StatusLabel:     status.Label(),
		Terminal:        t.Terminal(),
		TrackButtonText: t.Mode().TrackButtonText(),
		EstimatedTime:   t.Mode().EstimatedTime(),
		Timeline:        t.Timeline(),
		History:         t.History(),
	}
}

func (h *Handler) getTracking(w http.ResponseWriter, r *http.Request) {
	tracker, err := h.Tracking.Tracker(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackingView(tracker))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}
	h.requestStatus(w, r, domain.OrderStatus(req.Status))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.requestStatus(w, r, domain.StatusCancelled)
}

func (h *Handler) requestStatus(w http.ResponseWriter, r *http.Request, status domain.OrderStatus) {
	orderID := mux.Vars(r)["id"]
	if err := h.Tracking.RequestStatus(r.Context(), orderID, status); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"orderId": orderID,
		"status":  status,
	})
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	cart := h.Carts.Session(sessionID(r))
	added, err := h.Orders.Reorder(r.Context(), mux.Vars(r)["id"], cart)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added": added,
		"cart":  cartView(cart, modeParam(r)),
	})
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	qrCode, err := h.Orders.QRCode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qrCode)
}
