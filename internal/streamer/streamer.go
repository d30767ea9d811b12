// Package streamer prints notifications as plain lines for non-interactive use.
package streamer

import (
	"context"
	"fmt"
	"io"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	"github.com/atomicstack/mqtt-analyzer/internal/theme"
	"github.com/pkg/errors"
)

var styles = theme.Default()

// Run writes one line per notification to w until notes closes or ctx ends.
func Run(ctx context.Context, notes <-chan broker.Notification, w io.Writer, kind format.Kind) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notes:
			if !ok {
				return nil
			}
			line, ok := Line(n, kind)
			if !ok {
				continue
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return errors.Wrap(err, "write stream output")
			}
		}
	}
}

// Line renders n. Publishes become "<topic> <payload>"; connection changes
// become a short status word. Other kinds are skipped.
func Line(n broker.Notification, kind format.Kind) (string, bool) {
	switch n.Kind {
	case broker.KindPublish:
		return styles.Topic.Render(n.Topic) + " " + format.String(kind, n.Payload), true
	case broker.KindDisconnected:
		return styles.Disconnected.Render("Disconnected!"), true
	case broker.KindConnected:
		return styles.Connected.Render("Connected!"), true
	case broker.KindReconnected:
		return styles.Connected.Render("Reconnected!"), true
	default:
		return "", false
	}
}
