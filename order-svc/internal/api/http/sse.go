package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"overcooked-orders/order-svc/internal/domain"
	"overcooked-orders/order-svc/internal/service"
)

var keepaliveInterval = 30 * time.Second

func writeEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// streamStatus pushes status notifications for one order as server-sent
// events until the order is terminal or the client goes away.
func (h *Handler) streamStatus(w http.ResponseWriter, r *http.Request) {
	tracker, err := h.Tracking.Tracker(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID := uuid.New().String()
	logger := h.Logger.With(zap.String("subscriber_id", subscriberID), zap.String("order", tracker.OrderID()))
	logger.Info("new SSE connection")

	// Listeners run under the tracker lock; never block them.
	events := make(chan domain.StatusNotification, 16)
	unsubscribe := tracker.Subscribe(func(n domain.StatusNotification) {
		select {
		case events <- n:
		default:
			logger.Warn("dropping status event for slow client", zap.String("status", n.Status.String()))
		}
	})
	defer unsubscribe()

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	snapshot := trackingView(tracker)
	if err := writeEvent(w, "snapshot", snapshot); err != nil {
		return
	}
	if snapshot.Terminal {
		return
	}

	h.relay(r.Context(), w, tracker, events, snapshot.Status, logger)
}

// relay writes status events until ctx ends or the order is terminal. The
// subscription is taken before the snapshot, so an update already shown in
// it can arrive again; an event equal to the last status sent is skipped.
func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, tracker *service.Tracker, events <-chan domain.StatusNotification, last domain.OrderStatus, logger *zap.Logger) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("SSE client disconnected")
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case n := <-events:
			if n.Status == last {
				continue
			}
			if err := writeEvent(w, "status", n); err != nil {
				logger.Warn("SSE write failed", zap.Error(err))
				return
			}
			last = n.Status
			if tracker.Terminal() {
				return
			}
		}
	}
}
