// Package dispatcher applies broker notifications to the dashboard stores.
package dispatcher

import (
	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/ui/state"
)

type Result struct {
	StreamUpdated     bool
	RetainedUpdated   bool
	StatsUpdated      bool
	ConnectionChanged bool
}

// Changed reports whether any store was touched.
func (r Result) Changed() bool {
	return r.StreamUpdated || r.RetainedUpdated || r.StatsUpdated || r.ConnectionChanged
}

type Dispatcher struct {
	stream   *state.Ring
	retained *state.Retained
	stats    *state.Stats
}

func New(stream *state.Ring, retained *state.Retained, stats *state.Stats) *Dispatcher {
	return &Dispatcher{stream: stream, retained: retained, stats: stats}
}

// Handle records n. Every notification enters the stream; publishes also
// replace the retained entry for their topic.
func (d *Dispatcher) Handle(n broker.Notification) Result {
	var res Result
	d.stream.Push(n)
	res.StreamUpdated = true
	if n.IsPublish() {
		res.RetainedUpdated = d.retained.Upsert(n)
	} else {
		res.ConnectionChanged = true
	}
	res.StatsUpdated = d.stats.Record(n)
	return res
}
