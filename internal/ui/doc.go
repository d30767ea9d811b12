// Package ui contains the Bubble Tea program for the analyzer dashboard.
// The Model type focuses on message orchestration, while dedicated helpers own
// navigation, text input, and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses go to the navigation helpers (navigation.go). The handler is
//     picked by the panel on top of the navigation path, so the same key can
//     switch tabs, edit a topic, or unsubscribe depending on focus.
//   - Broker notifications arrive as NotificationMsg values, forwarded from the
//     notification stream by Relay. The dispatcher records them in the stream
//     ring, the retained map, and the statistics.
//
// State ownership:
//   - The navigation path, tabs, input buffers, ring, retained map, and
//     statistics live in internal/ui/state and are owned by the Model. They
//     are only touched from Update, so they need no locking.
//   - The subscription registry is owned by the engine worker. The Model only
//     reads it, and re-reads it on every key press since the worker may change
//     it between frames.
//   - Subscribe and unsubscribe requests leave the Model through the
//     internal/ui/command bus, which queues them on the engine.
package ui
