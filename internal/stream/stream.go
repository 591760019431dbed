// Package stream fan-outs session lifecycle events to live dashboard
// subscribers (SSE clients). Delivery is best-effort: slow subscribers are
// skipped rather than blocking the publisher.
package stream

import (
	"context"
	"sync"
	"time"
)

// Session lifecycle event types.
const (
	EventLogin      = "login"
	EventLogout     = "logout"
	EventAuthDenied = "auth_denied"
)

// SessionEvent describes one observed session transition.
type SessionEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs session events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan SessionEvent
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan SessionEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan SessionEvent {
	ch := make(chan SessionEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt SessionEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
