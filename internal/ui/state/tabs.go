package state

import "strings"

// Tab is one of the dashboard views.
type Tab int

const (
	TabSubscriptions Tab = iota
	TabStream
	TabRetained
	TabStatistics
)

var tabTitles = [...]string{
	TabSubscriptions: "Subscriptions",
	TabStream:        "Stream",
	TabRetained:      "Retained",
	TabStatistics:    "Statistics",
}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabTitles) {
		return "unknown"
	}
	return tabTitles[t]
}

// TabNames returns the lower-case tab names accepted by ParseTab.
func TabNames() []string {
	names := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		names[i] = strings.ToLower(title)
	}
	return names
}

// ParseTab resolves a tab by name, ignoring case.
func ParseTab(name string) (Tab, bool) {
	name = strings.TrimSpace(name)
	for i, title := range tabTitles {
		if strings.EqualFold(title, name) {
			return Tab(i), true
		}
	}
	return TabSubscriptions, false
}

// Tabs tracks the active view. Movement wraps in both directions.
type Tabs struct {
	index int
}

func NewTabs(initial Tab) *Tabs {
	t := &Tabs{}
	t.Select(initial)
	return t
}

func (t *Tabs) Active() Tab {
	return Tab(t.index)
}

func (t *Tabs) Len() int {
	return len(tabTitles)
}

// Titles returns the tab titles in display order.
func (t *Tabs) Titles() []string {
	titles := make([]string, len(tabTitles))
	copy(titles, tabTitles[:])
	return titles
}

func (t *Tabs) Next() Tab {
	return t.move(1)
}

func (t *Tabs) Prev() Tab {
	return t.move(-1)
}

// Select activates tab, wrapping out of range values.
func (t *Tabs) Select(tab Tab) {
	t.index = 0
	t.move(int(tab))
}

func (t *Tabs) move(delta int) Tab {
	n := len(tabTitles)
	t.index = ((t.index+delta)%n + n) % n
	return Tab(t.index)
}
