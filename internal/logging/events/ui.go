package events

import "github.com/atomicstack/mqtt-analyzer/internal/logging"

type NavTracer struct{}

type InputTracer struct{}

type CommandTracer struct{}

var (
	Nav     = NavTracer{}
	Input   = InputTracer{}
	Command = CommandTracer{}
)

func (NavTracer) Focus(path string) {
	logging.Trace("nav.focus", map[string]interface{}{"path": path})
}

func (NavTracer) Tab(index int, title string) {
	logging.Trace("nav.tab", map[string]interface{}{"index": index, "title": title})
}

func (NavTracer) Cursor(panel string, cursor int) {
	logging.Trace("nav.cursor", map[string]interface{}{"panel": panel, "cursor": cursor})
}

func (InputTracer) Append(panel, value string) {
	logging.Trace("input.append", map[string]interface{}{"panel": panel, "value": value})
}

func (InputTracer) Backspace(panel, value string) {
	logging.Trace("input.backspace", map[string]interface{}{"panel": panel, "value": value})
}

func (InputTracer) Cleared(panel string) {
	logging.Trace("input.clear", map[string]interface{}{"panel": panel})
}

func (CommandTracer) Queue(kind, topic string) {
	logging.Trace("command.queue", map[string]interface{}{"kind": kind, "topic": topic})
}

func (CommandTracer) Skip(kind, topic string) {
	logging.Trace("command.skip", map[string]interface{}{"kind": kind, "topic": topic})
}
