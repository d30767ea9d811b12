// Package broker defines the notifications and client contract the analyzer
// consumes from a publish/subscribe broker, along with MQTT, NATS, and
// in-memory implementations.
package broker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned when operating on a closed client.
	ErrClosed = errors.New("broker: client closed")

	// ErrUnknownKind is returned by Dial for an unsupported broker kind.
	ErrUnknownKind = errors.New("broker: unknown kind")
)

// Client issues subscription changes against a broker. Received messages and
// connection lifecycle changes are delivered to the Sink given at dial time.
// Implementations are driven from a single goroutine.
type Client interface {
	Subscribe(ctx context.Context, topic string) error
	Unsubscribe(ctx context.Context, topic string) error
	Close() error
}

// Sink receives notifications produced by a Client.
type Sink interface {
	Publish(n Notification) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Notification) error

func (f SinkFunc) Publish(n Notification) error {
	return f(n)
}

const (
	KindMQTT   = "mqtt"
	KindNATS   = "nats"
	KindMemory = "memory"
)

// Kinds lists the supported broker kinds.
func Kinds() []string {
	return []string{KindMQTT, KindNATS, KindMemory}
}

// Options describes how to reach a broker.
type Options struct {
	Kind           string
	Host           string
	Port           int
	Username       string
	Password       string
	ClientID       string
	ConnectTimeout time.Duration
}

// DefaultPort returns the conventional port for a broker kind.
func DefaultPort(kind string) int {
	switch kind {
	case KindNATS:
		return 4222
	default:
		return 1883
	}
}

// Addr returns host:port, substituting defaults for empty values.
func (o Options) Addr() string {
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = "localhost"
	}
	port := o.Port
	if port <= 0 {
		port = DefaultPort(o.Kind)
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (o Options) timeout() time.Duration {
	if o.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return o.ConnectTimeout
}

// Dial connects to the broker described by opts.
func Dial(ctx context.Context, opts Options, sink Sink) (Client, error) {
	if sink == nil {
		return nil, errors.New("broker: missing sink")
	}
	switch opts.Kind {
	case KindMQTT, "":
		return DialMQTT(ctx, opts, sink)
	case KindNATS:
		return DialNATS(ctx, opts, sink)
	case KindMemory:
		return NewMemory(sink), nil
	default:
		return nil, errors.Wrap(ErrUnknownKind, fmt.Sprintf("%q", opts.Kind))
	}
}
