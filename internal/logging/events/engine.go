package events

import "github.com/atomicstack/mqtt-analyzer/internal/logging"

type EngineTracer struct{}

type RelayTracer struct{}

type BrokerTracer struct{}

var (
	Engine = EngineTracer{}
	Relay  = RelayTracer{}
	Broker = BrokerTracer{}
)

func (EngineTracer) Apply(kind, topic string) {
	logging.Trace("engine.apply", map[string]interface{}{"kind": kind, "topic": topic})
}

func (EngineTracer) Skip(kind, topic, reason string) {
	logging.Trace("engine.skip", map[string]interface{}{"kind": kind, "topic": topic, "reason": reason})
}

func (EngineTracer) Fault(kind, topic string, err error) {
	if err == nil {
		return
	}
	logging.Trace("engine.fault", map[string]interface{}{"kind": kind, "topic": topic, "error": err.Error()})
}

func (EngineTracer) Stopped() {
	logging.Trace("engine.stopped", nil)
}

func (RelayTracer) Forward(kind, topic string) {
	logging.Trace("relay.forward", map[string]interface{}{"kind": kind, "topic": topic})
}

func (RelayTracer) Closed() {
	logging.Trace("relay.closed", nil)
}

func (BrokerTracer) Connect(kind, addr, clientID string) {
	logging.Trace("broker.connect", map[string]interface{}{"broker": kind, "addr": addr, "client_id": clientID})
}

func (BrokerTracer) Lifecycle(kind string, err error) {
	payload := map[string]interface{}{"kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("broker.lifecycle", payload)
}
