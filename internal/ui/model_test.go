package ui

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNotificationsFillStreamAndRetained(t *testing.T) {
	h := newTestHarness(newFakeRegistry(), Options{BufferSize: 100})
	for i := 0; i < 150; i++ {
		h.Send(NotificationMsg{Notification: broker.NewPublish(fmt.Sprintf("t/%d", i%3), []byte(fmt.Sprint(i)))})
	}
	h.Send(NotificationMsg{Notification: broker.NewLifecycle(broker.KindDisconnected, nil)})

	stream := h.Model().Stream()
	if len(stream) != 100 {
		t.Fatalf("expected the stream capped at 100, got %d", len(stream))
	}
	if last := stream[len(stream)-1]; last.Kind != broker.KindDisconnected {
		t.Fatalf("expected lifecycle event last in the stream, got %s", last.Kind)
	}
	if first := stream[0]; string(first.Payload) != "51" {
		t.Fatalf("expected oldest kept payload 51, got %q", first.Payload)
	}
	n, ok := h.Model().Retained("t/2")
	if !ok || string(n.Payload) != "149" {
		t.Fatalf("expected latest retained payload 149, got %q", n.Payload)
	}
	if got := h.Model().RetainedTopics(); !reflect.DeepEqual(got, []string{"t/0", "t/1", "t/2"}) {
		t.Fatalf("unexpected retained topics %v", got)
	}
}

func TestRetainedKeptOnUnsubscribeByDefault(t *testing.T) {
	reg := newFakeRegistry("a/b")
	h := newTestHarness(reg, Options{})
	h.Send(NotificationMsg{Notification: broker.NewPublish("a/b", []byte("P1"))})

	unsubscribeFirst(h)

	if len(reg.cmds) != 1 {
		t.Fatalf("expected an unsubscribe command, got %v", reg.cmds)
	}
	if _, ok := h.Model().Retained("a/b"); !ok {
		t.Fatal("retained entry should survive unsubscribe when pruning is off")
	}
}

func TestRetainedPrunedOnUnsubscribeWhenEnabled(t *testing.T) {
	reg := newFakeRegistry("home/#", "office/a")
	h := newTestHarness(reg, Options{PruneRetained: true})
	for _, topic := range []string{"home/a", "home/b/c", "office/a"} {
		h.Send(NotificationMsg{Notification: broker.NewPublish(topic, []byte("v"))})
	}

	unsubscribeFirst(h)

	if got := h.Model().RetainedTopics(); !reflect.DeepEqual(got, []string{"office/a"}) {
		t.Fatalf("expected entries under home/# pruned, got %v", got)
	}
}

func TestPruneKeepsEntriesStillSubscribed(t *testing.T) {
	reg := newFakeRegistry("home/#", "home/b")
	h := newTestHarness(reg, Options{PruneRetained: true})
	for _, topic := range []string{"home/a", "home/b"} {
		h.Send(NotificationMsg{Notification: broker.NewPublish(topic, []byte("v"))})
	}

	unsubscribeFirst(h)

	if got := h.Model().RetainedTopics(); !reflect.DeepEqual(got, []string{"home/b"}) {
		t.Fatalf("expected home/b kept by its own subscription, got %v", got)
	}
}

func TestPruneFollowsNATSWildcards(t *testing.T) {
	reg := newFakeRegistry("home.>")
	h := newTestHarness(reg, Options{PruneRetained: true, BrokerKind: broker.KindNATS})
	for _, topic := range []string{"home.a", "home.b.c", "office.a"} {
		h.Send(NotificationMsg{Notification: broker.NewPublish(topic, []byte("v"))})
	}

	unsubscribeFirst(h)

	if got := h.Model().RetainedTopics(); !reflect.DeepEqual(got, []string{"office.a"}) {
		t.Fatalf("expected subjects under home.> pruned, got %v", got)
	}
}

// unsubscribeFirst walks to the first subscription and deletes it.
func unsubscribeFirst(h *Harness) {
	h.Key(tea.KeyDown)
	h.Key(tea.KeyDown)
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	h.Send(runeKey('d'))
}

func TestInitialTabFromOptions(t *testing.T) {
	h := newTestHarness(newFakeRegistry(), Options{InitialTab: uistate.TabRetained})
	if got := h.Model().ActiveTab(); got != uistate.TabRetained {
		t.Fatalf("expected retained tab, got %s", got)
	}
	h.Key(tea.KeyDown)
	h.Key(tea.KeyDown)
	if got := h.Model().Focus(); got != uistate.RetainedFilter {
		t.Fatalf("expected retained filter focus, got %s", got)
	}
}

func TestFaultMsgQuitsWithError(t *testing.T) {
	h := newTestHarness(newFakeRegistry(), Options{})
	cause := errors.New(`subscribe "x": connection lost`)
	h.Send(FaultMsg{Err: cause})
	if !h.Quit() {
		t.Fatal("expected fault to quit the program")
	}
	if !errors.Is(h.Model().Fault(), cause) {
		t.Fatalf("expected fault recorded, got %v", h.Model().Fault())
	}
}

func TestRejectedCommandReportsError(t *testing.T) {
	reg := newFakeRegistry()
	reg.reject = true
	h := newTestHarness(reg, Options{})
	h.Key(tea.KeyDown)
	h.Key(tea.KeyDown)
	h.Type("a/b")
	h.Key(tea.KeyEnter)
	if h.Model().errMsg == "" {
		t.Fatal("expected an error for a command the engine refused")
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	h := newTestHarness(newFakeRegistry(), Options{Width: 40})
	h.Send(tea.WindowSizeMsg{Width: 100, Height: 20})
	if h.Model().width != 40 || h.Model().height != 20 {
		t.Fatalf("unexpected size %dx%d", h.Model().width, h.Model().height)
	}
}
