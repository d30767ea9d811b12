package broker

import (
	"context"
	"sort"
	"sync"
)

// Call records a subscription change received by a Memory broker.
type Call struct {
	Op    string
	Topic string
}

const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
)

// Memory is an in-process broker used by tests and by the "memory" broker
// kind. Publishes are delivered to the sink when any active filter matches.
type Memory struct {
	sink Sink

	mu      sync.Mutex
	filters map[string]struct{}
	calls   []Call
	fail    map[string]error
	closed  bool
}

// NewMemory returns an in-memory broker delivering to sink.
func NewMemory(sink Sink) *Memory {
	return &Memory{
		sink:    sink,
		filters: make(map[string]struct{}),
		fail:    make(map[string]error),
	}
}

func (m *Memory) Subscribe(ctx context.Context, topic string) error {
	return m.apply(ctx, OpSubscribe, topic)
}

func (m *Memory) Unsubscribe(ctx context.Context, topic string) error {
	return m.apply(ctx, OpUnsubscribe, topic)
}

func (m *Memory) apply(ctx context.Context, op, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.calls = append(m.calls, Call{Op: op, Topic: topic})
	if err, ok := m.fail[topic]; ok {
		return err
	}
	if op == OpSubscribe {
		m.filters[topic] = struct{}{}
	} else {
		delete(m.filters, topic)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// FailOn makes every later subscription change for topic return err.
func (m *Memory) FailOn(topic string, err error) {
	m.mu.Lock()
	m.fail[topic] = err
	m.mu.Unlock()
}

// Calls returns the subscription changes received so far, in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Filters returns the active filters, sorted.
func (m *Memory) Filters() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.filters))
	for f := range m.filters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Publish delivers a message if any active filter matches topic. It reports
// whether the message was delivered.
func (m *Memory) Publish(topic string, payload []byte, retained bool) (bool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrClosed
	}
	matched := false
	for f := range m.filters {
		if MatchTopic(f, topic) {
			matched = true
			break
		}
	}
	m.mu.Unlock()
	if !matched {
		return false, nil
	}
	n := NewPublish(topic, clonePayload(payload))
	n.Retained = retained
	return true, m.sink.Publish(n)
}

// Emit delivers a lifecycle notification such as KindDisconnected.
func (m *Memory) Emit(kind Kind, err error) error {
	return m.sink.Publish(NewLifecycle(kind, err))
}
