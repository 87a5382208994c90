package realtime

import "sync"

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 8

// Hub fans snapshots out to subscribers grouped by topic (a challenge id,
// a session id). Publish never blocks: when a subscriber's buffer is full the
// oldest pending value is dropped so the newest one always gets through.
type Hub[T any] struct {
	mu     sync.Mutex
	buffer int
	topics map[string]map[chan T]struct{}
}

// NewHub creates an empty hub. buffer <= 0 uses DefaultBuffer.
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{buffer: buffer, topics: make(map[string]map[chan T]struct{})}
}

// Subscribe registers a subscriber for topic. The returned cancel func
// unregisters it and closes the channel; calling it twice is safe.
func (h *Hub[T]) Subscribe(topic string) (<-chan T, func()) {
	ch := make(chan T, h.buffer)
	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan T]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() { once.Do(func() { h.unsubscribe(topic, ch) }) }
}

func (h *Hub[T]) unsubscribe(topic string, ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[topic]
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish delivers v to every subscriber of topic.
func (h *Hub[T]) Publish(topic string, v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		for {
			select {
			case ch <- v:
			default:
				// Full: drop the oldest and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Subscribers returns how many subscribers topic has.
func (h *Hub[T]) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
