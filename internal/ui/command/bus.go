package command

import (
	"github.com/atomicstack/mqtt-analyzer/internal/engine"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Submitter accepts subscription commands. *engine.Engine satisfies it.
type Submitter interface {
	Submit(engine.Command) bool
}

// QueuedMsg reports whether a command reached the engine queue.
type QueuedMsg struct {
	Command  engine.Command
	Accepted bool
}

// Bus forwards subscription commands from the UI to the engine.
type Bus struct {
	target Submitter
}

// New initialises a command bus instance.
func New(target Submitter) *Bus {
	return &Bus{target: target}
}

// Execute hands cmd to the engine immediately, so commands issued by
// consecutive key presses keep their order, and returns a Bubble Tea command
// reporting the outcome.
func (b *Bus) Execute(cmd engine.Command) tea.Cmd {
	kind := cmd.Kind.String()
	accepted := false
	if b != nil && b.target != nil {
		accepted = b.target.Submit(cmd)
	}
	if accepted {
		events.Command.Queue(kind, cmd.Topic)
	} else {
		events.Command.Skip(kind, cmd.Topic)
	}
	return func() tea.Msg {
		return QueuedMsg{Command: cmd, Accepted: accepted}
	}
}
