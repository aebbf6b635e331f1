package events

import (
	"context"
	"sync"
)

const subscriberBufferSize = 16

// Broker fans check-in events out to in-process subscribers of a session.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan CheckInEvent]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[string]map[chan CheckInEvent]struct{})}
}

// Subscribe registers for events of one session. The returned cancel func must be called.
func (b *Broker) Subscribe(sessionID string) (<-chan CheckInEvent, func()) {
	channel := make(chan CheckInEvent, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[chan CheckInEvent]struct{})
	}
	b.subscribers[sessionID][channel] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[sessionID]; ok {
				delete(subs, channel)
				if len(subs) == 0 {
					delete(b.subscribers, sessionID)
				}
			}
			close(channel)
		})
	}
	return channel, cancel
}

// Publish delivers without blocking; slow subscribers drop events.
func (b *Broker) Publish(_ context.Context, event CheckInEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[event.SessionID] {
		select {
		case channel <- event:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of listeners on a session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID])
}
