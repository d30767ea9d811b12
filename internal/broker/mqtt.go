package broker

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/logging"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

// MQTTClient adapts a paho client to the Client contract. Subscriptions use
// QoS 1. The session is clean, so accepted filters are kept here and sent
// again after every reconnect.
type MQTTClient struct {
	client    mqtt.Client
	sink      Sink
	qos       byte
	timeout   time.Duration
	connected atomic.Bool
	closed    atomic.Bool

	mu      sync.Mutex
	filters map[string]struct{}
}

func newMQTTClient(client mqtt.Client, sink Sink, timeout time.Duration) *MQTTClient {
	return &MQTTClient{
		client:  client,
		sink:    sink,
		qos:     1,
		timeout: timeout,
		filters: make(map[string]struct{}),
	}
}

// DialMQTT connects to an MQTT broker and blocks until the first connection
// attempt completes.
func DialMQTT(ctx context.Context, opts Options, sink Sink) (*MQTTClient, error) {
	c := newMQTTClient(nil, sink, opts.timeout())
	addr := opts.Addr()
	co := mqtt.NewClientOptions().
		AddBroker("tcp://" + addr).
		SetClientID(opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectTimeout(opts.timeout()).
		SetDefaultPublishHandler(c.onMessage).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetReconnectingHandler(c.onReconnecting)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}

	events.Broker.Connect(KindMQTT, addr, opts.ClientID)
	c.client = mqtt.NewClient(co)
	if err := waitToken(ctx, c.client.Connect()); err != nil {
		return nil, errors.Wrapf(err, "connect to mqtt broker %s", addr)
	}
	return c, nil
}

func (c *MQTTClient) Subscribe(ctx context.Context, topic string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := waitToken(ctx, c.client.Subscribe(topic, c.qos, nil)); err != nil {
		return errors.Wrapf(err, "subscribe %q", topic)
	}
	c.mu.Lock()
	c.filters[topic] = struct{}{}
	c.mu.Unlock()
	return nil
}

func (c *MQTTClient) Unsubscribe(ctx context.Context, topic string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := waitToken(ctx, c.client.Unsubscribe(topic)); err != nil {
		return errors.Wrapf(err, "unsubscribe %q", topic)
	}
	c.mu.Lock()
	delete(c.filters, topic)
	c.mu.Unlock()
	return nil
}

// Filters returns the filters the broker has accepted, sorted.
func (c *MQTTClient) Filters() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.filters))
	for f := range c.filters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (c *MQTTClient) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}
	c.client.Disconnect(250)
	return nil
}

func (c *MQTTClient) onMessage(_ mqtt.Client, msg mqtt.Message) {
	n := NewPublish(msg.Topic(), clonePayload(msg.Payload()))
	n.QoS = msg.Qos()
	n.Retained = msg.Retained()
	c.emit(n)
}

// onConnect runs on a paho goroutine, so blocking on tokens is fine here.
func (c *MQTTClient) onConnect(mqtt.Client) {
	kind := KindConnected
	if c.connected.Swap(true) {
		kind = KindReconnected
	}
	var err error
	if kind == KindReconnected {
		err = c.resubscribe()
	}
	events.Broker.Lifecycle(kind.String(), err)
	c.emit(NewLifecycle(kind, err))
}

// resubscribe sends every accepted filter again. All filters are attempted;
// the first failure is returned.
func (c *MQTTClient) resubscribe() error {
	var first error
	for _, topic := range c.Filters() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := waitToken(ctx, c.client.Subscribe(topic, c.qos, nil))
		cancel()
		if err != nil {
			err = errors.Wrapf(err, "resubscribe %q", topic)
			logging.Error(err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (c *MQTTClient) onConnectionLost(_ mqtt.Client, err error) {
	events.Broker.Lifecycle(KindDisconnected.String(), err)
	c.emit(NewLifecycle(KindDisconnected, err))
}

func (c *MQTTClient) onReconnecting(mqtt.Client, *mqtt.ClientOptions) {
	events.Broker.Lifecycle(KindReconnecting.String(), nil)
	c.emit(NewLifecycle(KindReconnecting, nil))
}

func (c *MQTTClient) emit(n Notification) {
	if err := c.sink.Publish(n); err != nil && !c.closed.Load() {
		logging.Error(errors.Wrap(err, "deliver mqtt notification"))
	}
}

func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
