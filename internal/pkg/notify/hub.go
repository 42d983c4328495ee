// internal/pkg/notify/hub.go
package notify

import "sync"

// Hub fans "something changed" signals out to subscribers of a topic.
// Publish never blocks: each subscription holds at most one pending
// signal and further publishes are coalesced into it.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

// Subscription receives a value on C after every publish to its topic
type Subscription struct {
	C <-chan struct{}

	ch    chan struct{}
	topic string
	hub   *Hub
	once  sync.Once
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers interest in topic until Close is called
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan struct{}, 1)
	sub := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish signals every current subscriber of topic
func (h *Hub) Publish(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
}

// Subscribers returns the number of live subscriptions on topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		subs := h.topics[s.topic]
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, s.topic)
		}
	})
}
