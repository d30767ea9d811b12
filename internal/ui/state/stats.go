package state

import (
	"sort"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
)

// TopicStats summarises the traffic seen on one topic.
type TopicStats struct {
	Topic    string
	Messages int
	Bytes    int
	LastSeen time.Time
}

// Stats aggregates message counts and connection events.
type Stats struct {
	topics map[string]*TopicStats

	Messages    int
	Bytes       int
	Disconnects int
	Reconnects  int

	Connected bool
	LastEvent broker.Kind
	LastError string
	Since     time.Time
}

func NewStats() *Stats {
	return &Stats{topics: make(map[string]*TopicStats)}
}

// Record folds n into the counters and reports whether anything changed.
func (s *Stats) Record(n broker.Notification) bool {
	switch n.Kind {
	case broker.KindPublish:
		entry, ok := s.topics[n.Topic]
		if !ok {
			entry = &TopicStats{Topic: n.Topic}
			s.topics[n.Topic] = entry
		}
		entry.Messages++
		entry.Bytes += len(n.Payload)
		entry.LastSeen = n.At
		s.Messages++
		s.Bytes += len(n.Payload)
		return true
	case broker.KindConnected:
		s.Connected = true
	case broker.KindReconnected:
		s.Connected = true
		s.Reconnects++
	case broker.KindDisconnected:
		s.Connected = false
		s.Disconnects++
	case broker.KindReconnecting:
		s.Connected = false
	default:
		return false
	}
	s.LastEvent = n.Kind
	s.LastError = n.Err
	s.Since = n.At
	return true
}

// Topics returns per-topic counters sorted by topic.
func (s *Stats) Topics() []TopicStats {
	out := make([]TopicStats, 0, len(s.topics))
	for _, entry := range s.topics {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// TopicCount returns the number of distinct topics seen.
func (s *Stats) TopicCount() int {
	return len(s.topics)
}
