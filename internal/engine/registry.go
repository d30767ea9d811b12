package engine

import (
	"sort"
	"sync"
)

// Registry is the set of topics the broker has accepted subscriptions for.
// Only the engine worker mutates it; any goroutine may read it. Topics are
// kept sorted so index based lookups are stable between reads.
type Registry struct {
	mu     sync.RWMutex
	topics []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Contains reports whether topic is subscribed.
func (r *Registry) Contains(topic string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, found := r.search(topic)
	return found
}

// Len returns the number of subscribed topics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics)
}

// Topics returns a sorted copy of the subscribed topics.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.topics) == 0 {
		return nil
	}
	dup := make([]string, len(r.topics))
	copy(dup, r.topics)
	return dup
}

// At returns the topic at index i in sorted order.
func (r *Registry) At(i int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.topics) {
		return "", false
	}
	return r.topics[i], true
}

func (r *Registry) add(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, found := r.search(topic)
	if found {
		return false
	}
	r.topics = append(r.topics, "")
	copy(r.topics[idx+1:], r.topics[idx:])
	r.topics[idx] = topic
	return true
}

func (r *Registry) remove(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, found := r.search(topic)
	if !found {
		return false
	}
	r.topics = append(r.topics[:idx], r.topics[idx+1:]...)
	return true
}

func (r *Registry) search(topic string) (int, bool) {
	idx := sort.SearchStrings(r.topics, topic)
	return idx, idx < len(r.topics) && r.topics[idx] == topic
}
