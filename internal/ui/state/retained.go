package state

import (
	"sort"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
)

// Retained maps each topic to the latest publish seen on it.
type Retained struct {
	entries map[string]broker.Notification
}

func NewRetained() *Retained {
	return &Retained{entries: make(map[string]broker.Notification)}
}

// Upsert stores n under its topic. Non-publish notifications are ignored.
func (r *Retained) Upsert(n broker.Notification) bool {
	if !n.IsPublish() {
		return false
	}
	r.entries[n.Topic] = n
	return true
}

func (r *Retained) Get(topic string) (broker.Notification, bool) {
	n, ok := r.entries[topic]
	return n, ok
}

func (r *Retained) Len() int {
	return len(r.entries)
}

// Topics returns the stored topics in sorted order.
func (r *Retained) Topics() []string {
	if len(r.entries) == 0 {
		return nil
	}
	topics := make([]string, 0, len(r.entries))
	for topic := range r.entries {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func (r *Retained) Remove(topic string) bool {
	if _, ok := r.entries[topic]; !ok {
		return false
	}
	delete(r.entries, topic)
	return true
}

// PruneMatching removes every entry whose topic is covered by filter and by
// none of the filters in keep, and returns how many were removed.
func (r *Retained) PruneMatching(filter string, keep []string, match broker.MatchFunc) int {
	removed := 0
	for topic := range r.entries {
		if !match(filter, topic) || coveredBy(keep, topic, match) {
			continue
		}
		delete(r.entries, topic)
		removed++
	}
	return removed
}

func coveredBy(filters []string, topic string, match broker.MatchFunc) bool {
	for _, f := range filters {
		if match(f, topic) {
			return true
		}
	}
	return false
}
