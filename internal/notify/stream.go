// Package notify fans broker notifications out to any number of readers.
// Every reader receives a full, ordered copy of the stream.
package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/logging"
	"github.com/pkg/errors"
)

const TopicNotifications = "mqtt-analyzer.notifications"

const (
	metaKind     = "kind"
	metaTopic    = "topic"
	metaQoS      = "qos"
	metaRetained = "retained"
	metaErr      = "err"
	metaAt       = "at"
)

const readerBuffer = 64

// Stream is a broker.Sink whose notifications can be read by several
// independent subscribers. Publish blocks until every current reader has
// taken the notification, which keeps per-reader order equal to publish order.
type Stream struct {
	pubsub *gochannel.GoChannel
}

var _ broker.Sink = (*Stream)(nil)

// NewStream creates an empty stream. Notifications published while no reader
// is subscribed are dropped.
func NewStream() *Stream {
	return &Stream{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            readerBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
	}
}

// Publish hands n to every subscribed reader.
func (s *Stream) Publish(n broker.Notification) error {
	if err := s.pubsub.Publish(TopicNotifications, Encode(n)); err != nil {
		return errors.Wrap(err, "publish notification")
	}
	return nil
}

// Subscribe returns a new reader. The channel is closed when ctx ends or the
// stream is closed.
func (s *Stream) Subscribe(ctx context.Context) (<-chan broker.Notification, error) {
	msgs, err := s.pubsub.Subscribe(ctx, TopicNotifications)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe to notifications")
	}
	out := make(chan broker.Notification, readerBuffer)
	go func() {
		defer close(out)
		for msg := range msgs {
			n, err := Decode(msg)
			if err != nil {
				logging.Error(err)
				msg.Ack()
				continue
			}
			select {
			case out <- n:
				msg.Ack()
			case <-ctx.Done():
				msg.Ack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the stream down and closes every reader channel.
func (s *Stream) Close() error {
	return s.pubsub.Close()
}

// Encode converts a notification into a watermill message.
func Encode(n broker.Notification) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), n.Payload)
	msg.Metadata.Set(metaKind, n.Kind.String())
	if n.Topic != "" {
		msg.Metadata.Set(metaTopic, n.Topic)
	}
	msg.Metadata.Set(metaQoS, strconv.Itoa(int(n.QoS)))
	msg.Metadata.Set(metaRetained, strconv.FormatBool(n.Retained))
	if n.Err != "" {
		msg.Metadata.Set(metaErr, n.Err)
	}
	if !n.At.IsZero() {
		msg.Metadata.Set(metaAt, n.At.Format(time.RFC3339Nano))
	}
	return msg
}

// Decode is the inverse of Encode.
func Decode(msg *message.Message) (broker.Notification, error) {
	kind, ok := broker.ParseKind(msg.Metadata.Get(metaKind))
	if !ok {
		return broker.Notification{}, errors.Errorf("message %s: unknown notification kind %q", msg.UUID, msg.Metadata.Get(metaKind))
	}
	n := broker.Notification{
		Kind:  kind,
		Topic: msg.Metadata.Get(metaTopic),
		Err:   msg.Metadata.Get(metaErr),
	}
	if len(msg.Payload) > 0 {
		n.Payload = []byte(msg.Payload)
	}
	if v := msg.Metadata.Get(metaQoS); v != "" {
		qos, err := strconv.Atoi(v)
		if err != nil {
			return broker.Notification{}, errors.Wrapf(err, "message %s: parse qos", msg.UUID)
		}
		n.QoS = byte(qos)
	}
	if v := msg.Metadata.Get(metaRetained); v != "" {
		retained, err := strconv.ParseBool(v)
		if err != nil {
			return broker.Notification{}, errors.Wrapf(err, "message %s: parse retained flag", msg.UUID)
		}
		n.Retained = retained
	}
	if v := msg.Metadata.Get(metaAt); v != "" {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return broker.Notification{}, errors.Wrapf(err, "message %s: parse timestamp", msg.UUID)
		}
		n.At = at
	}
	return n, nil
}
