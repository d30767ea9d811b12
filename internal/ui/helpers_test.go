package ui

import (
	"sort"

	"github.com/atomicstack/mqtt-analyzer/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeRegistry records submitted commands and, when apply is set, applies
// them immediately the way the engine worker would.
type fakeRegistry struct {
	topics []string
	cmds   []engine.Command
	apply  bool
	reject bool
}

func newFakeRegistry(topics ...string) *fakeRegistry {
	f := &fakeRegistry{apply: true}
	for _, topic := range topics {
		f.add(topic)
	}
	return f
}

func (f *fakeRegistry) Len() int { return len(f.topics) }

func (f *fakeRegistry) At(i int) (string, bool) {
	if i < 0 || i >= len(f.topics) {
		return "", false
	}
	return f.topics[i], true
}

func (f *fakeRegistry) Topics() []string {
	return append([]string(nil), f.topics...)
}

func (f *fakeRegistry) Submit(cmd engine.Command) bool {
	if f.reject {
		return false
	}
	f.cmds = append(f.cmds, cmd)
	if !f.apply {
		return true
	}
	switch cmd.Kind {
	case engine.CommandSubscribe:
		f.add(cmd.Topic)
	case engine.CommandUnsubscribe:
		for i, topic := range f.topics {
			if topic == cmd.Topic {
				f.topics = append(f.topics[:i], f.topics[i+1:]...)
				break
			}
		}
	}
	return true
}

func (f *fakeRegistry) add(topic string) {
	for _, existing := range f.topics {
		if existing == topic {
			return
		}
	}
	f.topics = append(f.topics, topic)
	sort.Strings(f.topics)
}

func newTestHarness(reg *fakeRegistry, opts Options) *Harness {
	return NewHarness(NewModel(reg, reg, opts))
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
