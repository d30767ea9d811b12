package broker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/logging"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doneToken is an already completed paho token.
type doneToken struct {
	err error
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                 { return t.err }

func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakePaho records SUBSCRIBE and UNSUBSCRIBE packets. Other methods are not
// used by the adapter after dialing.
type fakePaho struct {
	mqtt.Client

	mu     sync.Mutex
	subs   []string
	unsubs []string
	fail   map[string]error
}

func (f *fakePaho) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, topic)
	return doneToken{err: f.fail[topic]}
}

func (f *fakePaho) Unsubscribe(topics ...string) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubs = append(f.unsubs, topics...)
	return doneToken{}
}

func (f *fakePaho) subscribed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subs...)
}

func TestMQTTReconnectResubscribesAcceptedFilters(t *testing.T) {
	paho := &fakePaho{}
	sink := &recordingSink{}
	c := newMQTTClient(paho, sink, time.Second)
	ctx := context.Background()

	c.onConnect(paho)
	require.NoError(t, c.Subscribe(ctx, "b/#"))
	require.NoError(t, c.Subscribe(ctx, "a/+"))
	require.NoError(t, c.Subscribe(ctx, "gone"))
	require.NoError(t, c.Unsubscribe(ctx, "gone"))
	assert.Equal(t, []string{"a/+", "b/#"}, c.Filters())

	c.onConnectionLost(paho, errors.New("eof"))
	c.onConnect(paho)

	assert.Equal(t, []string{"b/#", "a/+", "gone", "a/+", "b/#"}, paho.subscribed())
	require.Len(t, sink.got, 3)
	assert.Equal(t, KindConnected, sink.got[0].Kind)
	assert.Equal(t, KindDisconnected, sink.got[1].Kind)
	assert.Equal(t, KindReconnected, sink.got[2].Kind)
	assert.Empty(t, sink.got[2].Err)
}

func TestMQTTFirstConnectDoesNotResubscribe(t *testing.T) {
	paho := &fakePaho{}
	c := newMQTTClient(paho, &recordingSink{}, time.Second)
	c.filters["x"] = struct{}{}

	c.onConnect(paho)

	assert.Empty(t, paho.subscribed())
}

func TestMQTTResubscribeFailureIsReported(t *testing.T) {
	logging.SetOutput(io.Discard)
	t.Cleanup(func() { logging.SetOutput(nil) })
	paho := &fakePaho{}
	sink := &recordingSink{}
	c := newMQTTClient(paho, sink, time.Second)
	ctx := context.Background()

	c.onConnect(paho)
	require.NoError(t, c.Subscribe(ctx, "a"))
	require.NoError(t, c.Subscribe(ctx, "b"))
	paho.fail = map[string]error{"a": errors.New("not authorized")}

	c.onConnect(paho)

	assert.Equal(t, []string{"a", "b", "a", "b"}, paho.subscribed())
	last := sink.got[len(sink.got)-1]
	assert.Equal(t, KindReconnected, last.Kind)
	assert.Contains(t, last.Err, `resubscribe "a"`)
}

func TestMQTTFailedSubscribeIsNotRemembered(t *testing.T) {
	paho := &fakePaho{fail: map[string]error{"bad": errors.New("denied")}}
	c := newMQTTClient(paho, &recordingSink{}, time.Second)

	require.Error(t, c.Subscribe(context.Background(), "bad"))
	assert.Empty(t, c.Filters())
}
