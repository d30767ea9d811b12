package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/logging"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSClient adapts a NATS connection to the Client contract. Topics are
// NATS subjects, so wildcards follow NATS syntax ("*" and ">").
type NATSClient struct {
	conn   *nats.Conn
	sink   Sink
	closed atomic.Bool

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// DialNATS connects to a NATS server.
func DialNATS(ctx context.Context, opts Options, sink Sink) (*NATSClient, error) {
	c := &NATSClient{sink: sink, subs: make(map[string]*nats.Subscription)}
	addr := opts.Addr()
	natsOpts := []nats.Option{
		nats.Name(opts.ClientID),
		nats.Timeout(opts.timeout()),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			events.Broker.Lifecycle(KindDisconnected.String(), err)
			c.emit(NewLifecycle(KindDisconnected, err))
		}),
		nats.ReconnectHandler(func(*nats.Conn) {
			events.Broker.Lifecycle(KindReconnected.String(), nil)
			c.emit(NewLifecycle(KindReconnected, nil))
		}),
	}
	if opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.Username, opts.Password))
	}

	events.Broker.Connect(KindNATS, addr, opts.ClientID)
	conn, err := nats.Connect("nats://"+addr, natsOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats server %s", addr)
	}
	if err := ctx.Err(); err != nil {
		conn.Close()
		return nil, err
	}
	c.conn = conn
	c.emit(NewLifecycle(KindConnected, nil))
	return c, nil
}

func (c *NATSClient) Subscribe(ctx context.Context, topic string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	sub, err := c.conn.Subscribe(topic, func(msg *nats.Msg) {
		c.emit(NewPublish(msg.Subject, clonePayload(msg.Data)))
	})
	if err != nil {
		return errors.Wrapf(err, "subscribe %q", topic)
	}
	if err := c.conn.FlushWithContext(ctx); err != nil {
		_ = sub.Unsubscribe()
		return errors.Wrapf(err, "confirm subscription %q", topic)
	}
	c.mu.Lock()
	c.subs[topic] = sub
	c.mu.Unlock()
	return nil
}

func (c *NATSClient) Unsubscribe(ctx context.Context, topic string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	sub, ok := c.subs[topic]
	delete(c.subs, topic)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		return errors.Wrapf(err, "unsubscribe %q", topic)
	}
	return nil
}

func (c *NATSClient) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}
	c.conn.Close()
	return nil
}

func (c *NATSClient) emit(n Notification) {
	if err := c.sink.Publish(n); err != nil && !c.closed.Load() {
		logging.Error(errors.Wrap(err, "deliver nats notification"))
	}
}
