package service

import (
	"sync"
	"time"

	"overcooked-orders/order-svc/internal/domain"
)

type StageState string

const (
	StageCompleted StageState = "completed"
	StageActive    StageState = "active"
	StagePending   StageState = "pending"
	StageCancelled StageState = "cancelled"
)

type TimelineEntry struct {
	domain.Stage
	State StageState `json:"state"`
}

type TrackerOption func(*Tracker)

// WithMonotonic rejects updates that move the order to an earlier stage.
func WithMonotonic() TrackerOption {
	return func(t *Tracker) { t.monotonic = true }
}

func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// Tracker is the lifecycle state machine of a single order. Apply is safe to
// call from the goroutine of any status source.
type Tracker struct {
	mu        sync.Mutex
	orderID   string
	mode      domain.OrderMode
	flow      []domain.Stage
	current   domain.OrderStatus
	index     int
	history   []domain.StatusNotification
	monotonic bool
	now       func() time.Time

	listeners []trackerListener
	nextID    int
}

type trackerListener struct {
	id int
	fn func(domain.StatusNotification)
}

func NewTracker(orderID string, mode domain.OrderMode, initial domain.OrderStatus, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		orderID: orderID,
		mode:    mode,
		flow:    domain.StatusFlow(mode),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	if initial == "" {
		initial = domain.StatusConfirmed
	}
	t.current = initial
	t.index = t.position(initial)
	if t.index < 0 && initial != domain.StatusCancelled {
		t.current = domain.StatusConfirmed
		t.index = 0
	}
	return t
}

func (t *Tracker) position(status domain.OrderStatus) int {
	for i, stage := range t.flow {
		if stage.Key == status {
			return i
		}
	}
	return -1
}

func (t *Tracker) OrderID() string { return t.orderID }

func (t *Tracker) Mode() domain.OrderMode { return t.mode }

func (t *Tracker) Status() domain.OrderStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tracker) terminalLocked() bool {
	return t.current == domain.StatusCancelled || t.index == len(t.flow)-1
}

func (t *Tracker) Terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminalLocked()
}

// Apply feeds one status update into the machine. It returns a nil
// notification and nil error when the status is unchanged.
func (t *Tracker) Apply(update domain.StatusUpdate) (*domain.StatusNotification, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if update.Status == t.current {
		return nil, nil
	}
	if t.terminalLocked() {
		return nil, ErrTerminalStatus
	}

	next := t.position(update.Status)
	if next < 0 && update.Status != domain.StatusCancelled {
		return nil, ErrUnknownStatus
	}
	if t.monotonic && next >= 0 && next < t.index {
		return nil, ErrBackwardTransition
	}

	ts := update.Timestamp
	if ts.IsZero() {
		ts = t.now()
	}
	n := domain.StatusNotification{
		OrderID:   t.orderID,
		Status:    update.Status,
		Previous:  t.current,
		Message:   update.Status.Message(),
		Timestamp: ts,
	}

	t.current = update.Status
	if next >= 0 {
		t.index = next
	}
	t.history = append(t.history, n)

	for _, l := range t.listeners {
		l.fn(n)
	}
	return &n, nil
}

// Timeline renders every stage of the mode's flow. A cancelled order keeps
// the stages it had completed and marks the stage it was in as cancelled.
func (t *Tracker) Timeline() []TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	cancelled := t.current == domain.StatusCancelled
	entries := make([]TimelineEntry, 0, len(t.flow))
	for i, stage := range t.flow {
		state := StagePending
		switch {
		case i < t.index:
			state = StageCompleted
		case i == t.index && cancelled:
			state = StageCancelled
		case i == t.index:
			state = StageActive
		}
		entries = append(entries, TimelineEntry{Stage: stage, State: state})
	}
	return entries
}

func (t *Tracker) History() []domain.StatusNotification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.StatusNotification(nil), t.history...)
}

// Subscribe registers fn for accepted transitions. fn runs while the tracker
// is locked and must not call back into it.
func (t *Tracker) Subscribe(fn func(domain.StatusNotification)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, trackerListener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, l := range t.listeners {
				if l.id == id {
					t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
