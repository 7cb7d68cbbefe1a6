package notify

import (
	"context"
	"sync"
)

// Notifier — fire-and-forget рассылка снапшота всем подписчикам топика.
type Notifier interface {
	Publish(ctx context.Context, topic string, snap RoomSnapshot)
}

const subscriptionBuffer = 16

type Subscription struct {
	topic string
	ch    chan RoomSnapshot
}

// C — канал снапшотов; закрывается при Unsubscribe.
func (s *Subscription) C() <-chan RoomSnapshot { return s.ch }

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{} // topic -> set of subscriptions
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{topic: topic, ch: make(chan RoomSnapshot, subscriptionBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.topics[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.topics[topic] = set
	}
	set[sub] = struct{}{}

	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.topics[sub.topic]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.ch)
			if len(set) == 0 {
				delete(h.topics, sub.topic)
			}
		}
	}
}

// Publish — best-effort: медленный подписчик теряет снапшот,
// но никогда не блокирует публикацию.
func (h *Hub) Publish(_ context.Context, topic string, snap RoomSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- snap:
		default:
		}
	}
}
