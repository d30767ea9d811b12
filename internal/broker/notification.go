package broker

import (
	"strings"
	"time"
)

// Kind distinguishes message deliveries from connection lifecycle events.
type Kind int

const (
	KindPublish Kind = iota
	KindConnected
	KindDisconnected
	KindReconnecting
	KindReconnected
)

var kindNames = [...]string{
	KindPublish:      "publish",
	KindConnected:    "connected",
	KindDisconnected: "disconnected",
	KindReconnecting: "reconnecting",
	KindReconnected:  "reconnected",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), true
		}
	}
	return 0, false
}

// Notification is a single event received from a broker client. Payload is
// owned by the notification and must not be modified.
type Notification struct {
	Kind     Kind
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
	Err      string
	At       time.Time
}

// NewPublish builds a publish notification stamped with the current time.
func NewPublish(topic string, payload []byte) Notification {
	return Notification{Kind: KindPublish, Topic: topic, Payload: payload, At: time.Now()}
}

// NewLifecycle builds a connection lifecycle notification.
func NewLifecycle(kind Kind, err error) Notification {
	n := Notification{Kind: kind, At: time.Now()}
	if err != nil {
		n.Err = err.Error()
	}
	return n
}

// IsPublish reports whether n carries a message.
func (n Notification) IsPublish() bool {
	return n.Kind == KindPublish
}

func clonePayload(b []byte) []byte {
	if b == nil {
		return nil
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	return dup
}
