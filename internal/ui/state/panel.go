package state

import (
	"fmt"
	"strings"
)

// PanelKind identifies a focusable region of the dashboard.
type PanelKind int

const (
	PanelRoot PanelKind = iota
	PanelTabBar
	PanelSubscribeInput
	PanelSubscriptionList
	PanelSubscriptionListItem
	PanelRetainedFilter
)

var panelNames = [...]string{
	PanelRoot:                 "Root",
	PanelTabBar:               "TabBar",
	PanelSubscribeInput:       "SubscribeInput",
	PanelSubscriptionList:     "SubscriptionList",
	PanelSubscriptionListItem: "SubscriptionListItem",
	PanelRetainedFilter:       "RetainedFilter",
}

func (k PanelKind) String() string {
	if k < 0 || int(k) >= len(panelNames) {
		return fmt.Sprintf("Panel(%d)", int(k))
	}
	return panelNames[k]
}

// Panel is an entry on the navigation path. Index is only meaningful for
// PanelSubscriptionListItem.
type Panel struct {
	Kind  PanelKind
	Index int
}

var (
	Root             = Panel{Kind: PanelRoot}
	TabBar           = Panel{Kind: PanelTabBar}
	SubscribeInput   = Panel{Kind: PanelSubscribeInput}
	SubscriptionList = Panel{Kind: PanelSubscriptionList}
	RetainedFilter   = Panel{Kind: PanelRetainedFilter}
)

// ListItem returns the panel for the subscription at index i.
func ListItem(i int) Panel {
	return Panel{Kind: PanelSubscriptionListItem, Index: i}
}

func (p Panel) String() string {
	if p.Kind == PanelSubscriptionListItem {
		return fmt.Sprintf("%s(%d)", p.Kind, p.Index)
	}
	return p.Kind.String()
}

// DefaultSubPath is pushed on top of Root whenever Root would otherwise be
// the focused panel.
var DefaultSubPath = []Panel{TabBar}

// Path is the stack of focused panels. Root is always at the bottom and is
// never removed.
type Path struct {
	panels []Panel
}

// NewPath returns a path holding only Root.
func NewPath() *Path {
	return &Path{panels: []Panel{Root}}
}

// Top returns the focused panel.
func (p *Path) Top() Panel {
	return p.panels[len(p.panels)-1]
}

// Panels returns a copy of the path from Root to the top.
func (p *Path) Panels() []Panel {
	dup := make([]Panel, len(p.panels))
	copy(dup, p.panels)
	return dup
}

// Push enters a child context of the focused panel.
func (p *Path) Push(panel Panel) {
	p.panels = append(p.panels, panel)
}

// ReplaceTop swaps the focused panel for a sibling at the same depth. Root
// cannot be replaced, so on a bare path the panel is pushed instead.
func (p *Path) ReplaceTop(panel Panel) {
	if len(p.panels) == 1 {
		p.Push(panel)
		return
	}
	p.panels[len(p.panels)-1] = panel
}

// Pop leaves the focused panel. It reports false without changing the path
// when only Root remains.
func (p *Path) Pop() (Panel, bool) {
	if len(p.panels) == 1 {
		return Root, false
	}
	top := p.Top()
	p.panels = p.panels[:len(p.panels)-1]
	return top, true
}

// Seed pushes the default sub-path when Root is focused. It reports whether
// anything was pushed.
func (p *Path) Seed() bool {
	if p.Top() != Root {
		return false
	}
	for _, panel := range DefaultSubPath {
		p.Push(panel)
	}
	return true
}

func (p *Path) String() string {
	parts := make([]string, len(p.panels))
	for i, panel := range p.panels {
		parts[i] = panel.String()
	}
	return strings.Join(parts, " > ")
}
