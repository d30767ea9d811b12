package ui

import (
	"context"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Relay forwards every notification from notes to send, in order, until the
// channel closes or ctx ends. send is normally (*tea.Program).Send.
func Relay(ctx context.Context, notes <-chan broker.Notification, send func(tea.Msg)) error {
	defer events.Relay.Closed()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notes:
			if !ok {
				return nil
			}
			events.Relay.Forward(n.Kind.String(), n.Topic)
			send(NotificationMsg{Notification: n})
		}
	}
}
