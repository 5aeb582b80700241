// Package relay delivers best-effort notifications to connected users.
//
// The Hub is a publish/subscribe registry keyed by user id. Delivery is
// at-most-once and never blocks the publisher: when a subscriber is absent or
// its buffer is full the event is dropped.
package relay

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/observability/metrics"
)

// Publisher is what business services need from the relay.
type Publisher interface {
	Publish(userID int64, ev Event) bool
	PublishMany(userIDs []int64, ev Event) int
}

var _ Publisher = (*Hub)(nil)

type Subscription struct {
	UserID int64

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events yields the events published to the subscriber.
func (s *Subscription) Events() <-chan Event { return s.events }

// Done is closed once the subscription is replaced, removed or the hub shuts
// down.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]*Subscription
	buffer int
	closed bool
	logger *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[int64]*Subscription),
		buffer: buffer,
		logger: logger.Named("relay"),
	}
}

// Subscribe registers the single subscription of userID. A previous
// subscription for the same user is closed.
func (h *Hub) Subscribe(userID int64) *Subscription {
	sub := &Subscription{
		UserID: userID,
		events: make(chan Event, h.buffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.close()
		return sub
	}
	if prev, ok := h.subs[userID]; ok {
		prev.close()
		h.logger.Debug("Replaced subscription", zap.Int64("user_id", userID))
	} else {
		metrics.Get().ConnectedClients.Add(context.Background(), 1)
	}
	h.subs[userID] = sub
	return sub
}

// Unsubscribe removes sub if it is still the current subscription of its user.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub.close()
	if current, ok := h.subs[sub.UserID]; ok && current == sub {
		delete(h.subs, sub.UserID)
		metrics.Get().ConnectedClients.Add(context.Background(), -1)
	}
}

func (h *Hub) Publish(userID int64, ev Event) bool {
	h.mu.RLock()
	sub, ok := h.subs[userID]
	h.mu.RUnlock()

	delivered := false
	if ok {
		select {
		case <-sub.done:
		case sub.events <- ev:
			delivered = true
		default:
		}
	}

	outcome := "delivered"
	if !delivered {
		outcome = "dropped"
		h.logger.Debug("Dropped notification",
			zap.Int64("user_id", userID),
			zap.String("kind", ev.Type),
			zap.Bool("online", ok))
	}
	metrics.Get().NotificationsTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", ev.Type),
		attribute.String("outcome", outcome),
	))
	return delivered
}

// PublishMany publishes ev to every user and returns how many received it.
func (h *Hub) PublishMany(userIDs []int64, ev Event) int {
	n := 0
	for _, id := range userIDs {
		if h.Publish(id, ev) {
			n++
		}
	}
	return n
}

func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.subs[userID]
	return ok
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		sub.close()
		delete(h.subs, id)
		metrics.Get().ConnectedClients.Add(context.Background(), -1)
	}
	h.closed = true
}
