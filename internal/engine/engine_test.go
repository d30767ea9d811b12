package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func discard() broker.Sink {
	return broker.SinkFunc(func(broker.Notification) error { return nil })
}

// startEngine runs an engine over a memory broker until the test ends.
func startEngine(t *testing.T) (*Engine, *broker.Memory, <-chan error) {
	t.Helper()
	mem := broker.NewMemory(discard())
	eng := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- eng.Run(ctx, mem) }()
	t.Cleanup(cancel)
	return eng, mem, result
}

// drain submits a marker subscription and waits until the worker applied it,
// which means every earlier command has been applied too.
func drain(t *testing.T, eng *Engine, marker string) {
	t.Helper()
	require.True(t, eng.Subscribe(marker))
	require.Eventually(t, func() bool { return eng.Registry().Contains(marker) }, waitFor, tick)
}

func countCalls(calls []broker.Call, op, topic string) int {
	n := 0
	for _, call := range calls {
		if call.Op == op && call.Topic == topic {
			n++
		}
	}
	return n
}

func TestSubscribeTwiceReachesBrokerOnce(t *testing.T) {
	eng, mem, _ := startEngine(t)

	eng.Subscribe("a/b")
	eng.Subscribe("a/b")
	drain(t, eng, "marker")

	assert.Equal(t, []string{"a/b", "marker"}, eng.Registry().Topics())
	assert.Equal(t, 1, countCalls(mem.Calls(), broker.OpSubscribe, "a/b"))
}

func TestUnsubscribeUnknownTopicIsNoop(t *testing.T) {
	eng, mem, _ := startEngine(t)

	eng.Subscribe("keep")
	eng.Unsubscribe("missing")
	drain(t, eng, "marker")

	assert.Equal(t, []string{"keep", "marker"}, eng.Registry().Topics())
	assert.Zero(t, countCalls(mem.Calls(), broker.OpUnsubscribe, "missing"))
	assert.Equal(t, []string{"keep", "marker"}, mem.Filters())
}

func TestCommandsApplyInSubmissionOrder(t *testing.T) {
	for i := 0; i < 50; i++ {
		eng, mem, _ := startEngine(t)

		eng.Submit(Subscribe("A"))
		eng.Submit(Subscribe("B"))
		eng.Submit(Unsubscribe("A"))
		drain(t, eng, "Z")

		require.Equal(t, []string{"B", "Z"}, eng.Registry().Topics())
		require.Equal(t, []broker.Call{
			{Op: broker.OpSubscribe, Topic: "A"},
			{Op: broker.OpSubscribe, Topic: "B"},
			{Op: broker.OpUnsubscribe, Topic: "A"},
			{Op: broker.OpSubscribe, Topic: "Z"},
		}, mem.Calls())
	}
}

func TestSubmitRejectsBlankTopics(t *testing.T) {
	eng := New(nil)
	assert.False(t, eng.Subscribe(""))
	assert.False(t, eng.Subscribe("   "))
	assert.False(t, eng.Unsubscribe("\t"))
	assert.True(t, eng.Subscribe("ok"))
}

func TestSubscribeAllKeepsEarlierTopicsOnFailure(t *testing.T) {
	eng, mem, result := startEngine(t)
	mem.FailOn("bad", errors.New("not authorised"))

	eng.SubscribeAll([]string{"one", "bad", "three"})

	select {
	case err := <-result:
		require.Error(t, err)
		assert.Contains(t, err.Error(), `subscribe "bad"`)
		assert.Contains(t, err.Error(), "not authorised")
	case <-time.After(waitFor):
		t.Fatal("engine did not stop on broker failure")
	}

	assert.Equal(t, []string{"one"}, eng.Registry().Topics())
	assert.False(t, eng.Registry().Contains("three"))
}

func TestBrokerFaultStopsWorker(t *testing.T) {
	eng, mem, result := startEngine(t)
	cause := errors.New("connection refused")
	mem.FailOn("x", cause)

	eng.Subscribe("x")

	var err error
	select {
	case err = <-result:
	case <-time.After(waitFor):
		t.Fatal("engine did not stop")
	}
	require.ErrorIs(t, err, cause)

	select {
	case <-eng.Done():
	default:
		t.Fatal("done not closed after fault")
	}
	require.ErrorIs(t, eng.Err(), cause)
	assert.False(t, eng.Subscribe("later"))
	assert.False(t, eng.Registry().Contains("x"))
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	eng := New(nil)
	assert.NoError(t, eng.Err())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- eng.Run(ctx, broker.NewMemory(discard())) }()
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("engine did not stop")
	}
	assert.ErrorIs(t, eng.Err(), ErrStopped)
}

func TestNotificationsGivesEachReaderACopy(t *testing.T) {
	stream := notify.NewStream()
	defer stream.Close()
	eng := New(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Readers taken before the broker exists still see everything it emits.
	first, err := eng.Notifications(ctx)
	require.NoError(t, err)
	second, err := eng.Notifications(ctx)
	require.NoError(t, err)

	mem := broker.NewMemory(stream)
	go func() { _ = eng.Run(ctx, mem) }()

	drain(t, eng, "sensors/#")
	go func() { _, _ = mem.Publish("sensors/a", []byte("1"), false) }()

	for _, reader := range []<-chan broker.Notification{first, second} {
		select {
		case n := <-reader:
			assert.Equal(t, "sensors/a", n.Topic)
			assert.Equal(t, []byte("1"), n.Payload)
		case <-time.After(waitFor):
			t.Fatal("notification not delivered")
		}
	}

	_, err = New(nil).Notifications(ctx)
	assert.Error(t, err)
}

func TestRunWithoutClientStops(t *testing.T) {
	eng := New(nil)
	err := eng.Run(context.Background(), nil)
	require.Error(t, err)
	require.ErrorIs(t, eng.Err(), err)
	assert.False(t, eng.Subscribe("a"))
}
