package ui

import (
	"github.com/atomicstack/mqtt-analyzer/internal/engine"
	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Type == tea.KeyCtrlC {
		m.quitting = true
		return tea.Quit
	}
	before := m.path.String()
	var cmd tea.Cmd
	switch top := m.path.Top(); top.Kind {
	case uistate.PanelRoot:
		m.path.Seed()
	case uistate.PanelTabBar:
		cmd = m.handleTabBarKey(key)
	case uistate.PanelSubscribeInput:
		cmd = m.handleSubscribeInputKey(key)
	case uistate.PanelSubscriptionList:
		cmd = m.handleSubscriptionListKey(key)
	case uistate.PanelSubscriptionListItem:
		cmd = m.handleListItemKey(key, top.Index)
	case uistate.PanelRetainedFilter:
		cmd = m.handleRetainedFilterKey(key)
	}
	if after := m.path.String(); after != before {
		events.Nav.Focus(after)
	}
	return cmd
}

// handleEscapeKey pops one panel. Root is never left focused: the default
// sub-path is pushed again instead.
func (m *Model) handleEscapeKey() {
	m.path.Pop()
	m.path.Seed()
	m.errMsg = ""
}

func (m *Model) handleTabBarKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "left", "h", "shift+tab":
		m.moveTab(-1)
	case "right", "l", "tab":
		m.moveTab(1)
	case "1", "2", "3", "4":
		m.tabs.Select(uistate.Tab(key.Runes[0] - '1'))
		events.Nav.Tab(int(m.tabs.Active()), m.tabs.Active().String())
	case "down", "j", "enter":
		m.descend()
	case "/":
		if m.tabs.Active() == uistate.TabRetained {
			m.descend()
		}
	case "esc":
		m.handleEscapeKey()
	}
	return nil
}

func (m *Model) moveTab(delta int) {
	var tab uistate.Tab
	if delta < 0 {
		tab = m.tabs.Prev()
	} else {
		tab = m.tabs.Next()
	}
	events.Nav.Tab(int(tab), tab.String())
}

// descend focuses the first child of the active tab. The tab bar and that
// child share a depth, so the top of the path is replaced.
func (m *Model) descend() {
	switch m.tabs.Active() {
	case uistate.TabSubscriptions:
		m.path.ReplaceTop(uistate.SubscribeInput)
	case uistate.TabRetained:
		m.path.ReplaceTop(uistate.RetainedFilter)
	}
}

func (m *Model) handleSubscribeInputKey(key tea.KeyMsg) tea.Cmd {
	if m.handleTextInput(&m.input, uistate.PanelSubscribeInput.String(), key) {
		return nil
	}
	switch key.Type {
	case tea.KeyEnter:
		topic, ok := m.input.Drain()
		if !ok {
			return nil
		}
		m.caretDirty = true
		events.Input.Cleared(uistate.PanelSubscribeInput.String())
		return m.bus.Execute(engine.Subscribe(topic))
	case tea.KeyEsc:
		m.handleEscapeKey()
	case tea.KeyDown:
		m.path.ReplaceTop(uistate.SubscriptionList)
	case tea.KeyUp:
		m.path.ReplaceTop(uistate.TabBar)
	}
	return nil
}

func (m *Model) handleSubscriptionListKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter":
		if m.subs.Len() > 0 {
			m.path.Push(uistate.ListItem(0))
			events.Nav.Cursor(uistate.PanelSubscriptionListItem.String(), 0)
		}
	case "up", "k":
		m.path.ReplaceTop(uistate.SubscribeInput)
	case "esc":
		m.handleEscapeKey()
	}
	return nil
}

// handleListItemKey acts on the subscription at index. The registry is read
// afresh on every key since the worker may have changed it since the last one.
func (m *Model) handleListItemKey(key tea.KeyMsg, index int) tea.Cmd {
	if key.Type == tea.KeyEsc {
		m.handleEscapeKey()
		return nil
	}
	n := m.subs.Len()
	if n == 0 {
		m.setListIndex(0)
		return nil
	}
	switch key.String() {
	case "up", "k":
		m.setListIndex(uistate.Clamp(index-1, n))
	case "down", "j":
		m.setListIndex(uistate.Clamp(index+1, n))
	case "home", "g":
		m.setListIndex(0)
	case "end", "G":
		m.setListIndex(n - 1)
	case "d", "x", "backspace", "delete":
		topic, ok := m.subs.At(index)
		if !ok {
			m.setListIndex(uistate.Clamp(index, n))
			return nil
		}
		if m.pruneRetained {
			m.retained.PruneMatching(topic, m.otherSubscriptions(topic), m.match)
		}
		return m.bus.Execute(engine.Unsubscribe(topic))
	}
	return nil
}

func (m *Model) otherSubscriptions(topic string) []string {
	topics := m.subs.Topics()
	others := make([]string, 0, len(topics))
	for _, t := range topics {
		if t != topic {
			others = append(others, t)
		}
	}
	return others
}

func (m *Model) setListIndex(index int) {
	if top := m.path.Top(); top.Kind == uistate.PanelSubscriptionListItem && top.Index == index {
		return
	}
	m.path.ReplaceTop(uistate.ListItem(index))
	events.Nav.Cursor(uistate.PanelSubscriptionListItem.String(), index)
}

func (m *Model) handleRetainedFilterKey(key tea.KeyMsg) tea.Cmd {
	if m.handleTextInput(&m.filter, uistate.PanelRetainedFilter.String(), key) {
		return nil
	}
	switch key.Type {
	case tea.KeyEsc:
		m.handleEscapeKey()
	case tea.KeyUp:
		m.path.ReplaceTop(uistate.TabBar)
	}
	return nil
}
