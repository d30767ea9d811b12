package state

import "github.com/atomicstack/mqtt-analyzer/internal/broker"

// DefaultRingCapacity is the number of notifications kept for the stream view.
const DefaultRingCapacity = 100

// Ring keeps the most recent notifications. Once full, each push overwrites
// the oldest entry.
type Ring struct {
	items []broker.Notification
	start int
	size  int
}

// NewRing returns an empty ring. Non-positive capacities use
// DefaultRingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{items: make([]broker.Notification, capacity)}
}

func (r *Ring) Push(n broker.Notification) {
	capacity := len(r.items)
	if r.size < capacity {
		r.items[(r.start+r.size)%capacity] = n
		r.size++
		return
	}
	r.items[r.start] = n
	r.start = (r.start + 1) % capacity
}

func (r *Ring) Len() int {
	return r.size
}

func (r *Ring) Cap() int {
	return len(r.items)
}

// Items returns the buffered notifications, oldest first.
func (r *Ring) Items() []broker.Notification {
	if r.size == 0 {
		return nil
	}
	out := make([]broker.Notification, r.size)
	for i := range out {
		out[i] = r.items[(r.start+i)%len(r.items)]
	}
	return out
}

// Newest returns up to n of the most recent notifications, oldest first.
func (r *Ring) Newest(n int) []broker.Notification {
	items := r.Items()
	if n >= 0 && n < len(items) {
		return items[len(items)-n:]
	}
	return items
}
