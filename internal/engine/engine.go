// Package engine serialises subscription changes against a broker client and
// keeps the subscription registry consistent with what the broker accepted.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	"github.com/pkg/errors"
)

const commandBuffer = 128

// ErrStopped is reported by Err when the worker ended without a broker fault.
var ErrStopped = errors.New("engine: stopped")

// Source hands out independent copies of the notification stream.
type Source interface {
	Subscribe(ctx context.Context) (<-chan broker.Notification, error)
}

// Engine serialises subscription changes. Commands may be queued before the
// broker is dialed; the goroutine running Run applies them one at a time, in
// submission order, against the client it was given.
type Engine struct {
	source   Source
	registry *Registry
	commands chan Command

	done     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// New builds an engine over source. source may be nil when nothing reads
// notifications through the engine.
func New(source Source) *Engine {
	return &Engine{
		source:   source,
		registry: NewRegistry(),
		commands: make(chan Command, commandBuffer),
		done:     make(chan struct{}),
	}
}

// Registry returns the read side of the subscription registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Submit queues cmd for the worker. It returns false when the topic is blank
// or the worker has stopped.
func (e *Engine) Submit(cmd Command) bool {
	if strings.TrimSpace(cmd.Topic) == "" {
		events.Engine.Skip(cmd.Kind.String(), cmd.Topic, "empty topic")
		return false
	}
	select {
	case <-e.done:
		events.Engine.Skip(cmd.Kind.String(), cmd.Topic, "engine stopped")
		return false
	default:
	}
	select {
	case e.commands <- cmd:
		return true
	case <-e.done:
		events.Engine.Skip(cmd.Kind.String(), cmd.Topic, "engine stopped")
		return false
	}
}

// Subscribe queues a subscription to topic.
func (e *Engine) Subscribe(topic string) bool {
	return e.Submit(Subscribe(topic))
}

// Unsubscribe queues removal of topic.
func (e *Engine) Unsubscribe(topic string) bool {
	return e.Submit(Unsubscribe(topic))
}

// SubscribeAll queues a subscription per topic, in order. A failure partway
// leaves earlier subscriptions in place.
func (e *Engine) SubscribeAll(topics []string) {
	for _, topic := range topics {
		e.Subscribe(topic)
	}
}

// Notifications returns a new reader over the notification stream. Readers
// taken before the broker is dialed see its first Connected.
func (e *Engine) Notifications(ctx context.Context) (<-chan broker.Notification, error) {
	if e.source == nil {
		return nil, errors.New("engine: no notification source")
	}
	return e.source.Subscribe(ctx)
}

// Run applies queued commands to client until ctx ends or client fails. A
// broker failure is returned and also recorded for Err.
func (e *Engine) Run(ctx context.Context, client broker.Client) error {
	defer events.Engine.Stopped()
	if client == nil {
		err := errors.New("engine: no broker client")
		e.stop(err)
		return err
	}
	for {
		select {
		case <-ctx.Done():
			e.stop(nil)
			return nil
		case cmd := <-e.commands:
			if err := e.apply(ctx, client, cmd); err != nil {
				e.stop(err)
				return err
			}
		}
	}
}

// Done is closed once the worker has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns the broker fault that stopped the worker, ErrStopped after a
// clean stop, or nil while running.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Engine) apply(ctx context.Context, client broker.Client, cmd Command) error {
	kind := cmd.Kind.String()
	switch cmd.Kind {
	case CommandSubscribe:
		if e.registry.Contains(cmd.Topic) {
			events.Engine.Skip(kind, cmd.Topic, "already subscribed")
			return nil
		}
		if err := client.Subscribe(ctx, cmd.Topic); err != nil {
			events.Engine.Fault(kind, cmd.Topic, err)
			return errors.Wrapf(err, "subscribe %q", cmd.Topic)
		}
		e.registry.add(cmd.Topic)
	case CommandUnsubscribe:
		if !e.registry.Contains(cmd.Topic) {
			events.Engine.Skip(kind, cmd.Topic, "not subscribed")
			return nil
		}
		if err := client.Unsubscribe(ctx, cmd.Topic); err != nil {
			events.Engine.Fault(kind, cmd.Topic, err)
			return errors.Wrapf(err, "unsubscribe %q", cmd.Topic)
		}
		e.registry.remove(cmd.Topic)
	default:
		events.Engine.Skip(kind, cmd.Topic, "unknown command")
		return nil
	}
	events.Engine.Apply(kind, cmd.Topic)
	return nil
}

func (e *Engine) stop(err error) {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		if err == nil {
			err = ErrStopped
		}
		e.err = err
		e.mu.Unlock()
		close(e.done)
	})
}
