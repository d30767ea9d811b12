package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	"github.com/atomicstack/mqtt-analyzer/internal/format/table"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	subscribePlaceholder = "(topic filter, e.g. sensors/#)"
	filterPlaceholder    = "(type to filter topics)"
	timeLayout           = "15:04:05"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []styledLine{{text: m.tabBar(), raw: true}, {}}
	bottom := m.bottomLines()
	body := m.bodyLines(m.bodyRows(len(lines) + len(bottom)))
	lines = append(lines, body...)
	lines = limitHeight(lines, m.height-len(bottom), m.width)
	lines = append(lines, bottom...)
	return renderLines(applyWidth(lines, m.width))
}

// bodyRows returns how many rows the active tab may use, or -1 when the
// height is unknown.
func (m *Model) bodyRows(used int) int {
	if m.height <= 0 {
		return -1
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) tabBar() string {
	focused := m.path.Top().Kind == uistate.PanelTabBar
	titles := m.tabs.Titles()
	parts := make([]string, len(titles))
	for i, title := range titles {
		style := styles.Tab
		if uistate.Tab(i) == m.tabs.Active() {
			style = styles.ActiveTab
			if focused && styles.FocusedTab != nil {
				style = styles.FocusedTab
			}
		}
		label := fmt.Sprintf("%d %s", i+1, title)
		if style != nil {
			label = style.Render(label)
		}
		parts[i] = label
	}
	return strings.Join(parts, " ")
}

func (m *Model) bodyLines(rows int) []styledLine {
	switch m.tabs.Active() {
	case uistate.TabSubscriptions:
		return m.subscriptionLines(rows)
	case uistate.TabStream:
		return m.streamLines(rows)
	case uistate.TabRetained:
		return m.retainedLines(rows)
	case uistate.TabStatistics:
		return m.statisticsLines()
	}
	return nil
}

func (m *Model) subscriptionLines(rows int) []styledLine {
	top := m.path.Top()
	lines := []styledLine{
		{text: m.inputLine("subscribe » ", subscribePlaceholder, &m.input, top.Kind == uistate.PanelSubscribeInput), raw: true},
		{},
	}
	topics := m.subs.Topics()
	listFocused := top.Kind == uistate.PanelSubscriptionList || top.Kind == uistate.PanelSubscriptionListItem
	titleStyle := styles.PanelTitle
	if listFocused {
		titleStyle = styles.FocusedPanelTitle
	}
	lines = append(lines, styledLine{text: fmt.Sprintf("Subscriptions (%d)", len(topics)), style: titleStyle})
	if len(topics) == 0 {
		return append(lines, styledLine{text: "(no subscriptions)", style: styles.Info})
	}
	selected := -1
	if top.Kind == uistate.PanelSubscriptionListItem {
		selected = uistate.Clamp(top.Index, len(topics))
	}
	maxVisible := -1
	if rows > 0 {
		maxVisible = rows - len(lines)
		if maxVisible < 1 {
			maxVisible = 1
		}
	}
	m.listView.EnsureVisible(selected, len(topics), maxVisible)
	start, end := m.listView.Window(len(topics), maxVisible)
	for i := start; i < end; i++ {
		lines = append(lines, itemLine(topics[i], i == selected))
	}
	return lines
}

func itemLine(label string, selected bool) styledLine {
	indicator := "  "
	style := styles.Item
	prefix := styles.ItemIndicator
	if selected {
		indicator = "▌ "
		style = styles.SelectedItem
		prefix = styles.SelectedItemIndicator
	}
	return styledLine{
		text:          indicator + label,
		style:         style,
		prefixStyle:   prefix,
		highlightFrom: len([]rune(indicator)),
	}
}

func (m *Model) streamLines(rows int) []styledLine {
	lines := []styledLine{{text: fmt.Sprintf("Stream (last %d of %d)", m.ring.Len(), m.ring.Cap()), style: styles.PanelTitle}}
	items := m.ring.Items()
	if len(items) == 0 {
		return append(lines, styledLine{text: "(waiting for messages)", style: styles.Info})
	}
	if rows > 0 {
		keep := rows - len(lines)
		if keep < 1 {
			keep = 1
		}
		items = m.ring.Newest(keep)
	}
	for _, n := range items {
		lines = append(lines, m.notificationLine(n))
	}
	return lines
}

// notificationLine renders a publish as "topic payload" and lifecycle events
// as a short status word.
func (m *Model) notificationLine(n broker.Notification) styledLine {
	if !n.IsPublish() {
		text, style := lifecycleText(n)
		return styledLine{text: text, style: style}
	}
	return m.publishLine(n.Topic, n.Payload)
}

func (m *Model) publishLine(topic string, payload []byte) styledLine {
	kind, text := format.Format(m.format, payload)
	head := topic + " "
	if kind != m.format && !(m.format == format.Auto && kind == format.Text) {
		head += "[" + kind.String() + "] "
	}
	return styledLine{
		text:          head + text,
		style:         styles.Payload,
		prefixStyle:   styles.Topic,
		highlightFrom: len([]rune(head)),
	}
}

func lifecycleText(n broker.Notification) (string, *lipgloss.Style) {
	var text string
	style := styles.Info
	switch n.Kind {
	case broker.KindConnected:
		text, style = "Connected!", styles.Connected
	case broker.KindReconnected:
		text, style = "Reconnected!", styles.Connected
	case broker.KindDisconnected:
		text, style = "Disconnected!", styles.Disconnected
	case broker.KindReconnecting:
		text = "Reconnecting…"
	default:
		text = n.Kind.String()
	}
	if n.Err != "" {
		text += " (" + n.Err + ")"
	}
	return text, style
}

func (m *Model) retainedLines(rows int) []styledLine {
	focused := m.path.Top().Kind == uistate.PanelRetainedFilter
	lines := []styledLine{
		{text: m.inputLine("filter » ", filterPlaceholder, &m.filter, focused), raw: true},
		{},
	}
	topics := uistate.FilterTopics(m.retained.Topics(), m.filter.Value())
	lines = append(lines, styledLine{
		text:  fmt.Sprintf("Retained (%d of %d)", len(topics), m.retained.Len()),
		style: styles.PanelTitle,
	})
	if len(topics) == 0 {
		msg := "(no retained messages)"
		if m.filter.Value() != "" {
			msg = fmt.Sprintf("No matches for %q", m.filter.Value())
		}
		return append(lines, styledLine{text: msg, style: styles.Info})
	}
	if rows > 0 && len(topics) > rows-len(lines) {
		keep := rows - len(lines)
		if keep < 1 {
			keep = 1
		}
		topics = topics[:keep]
	}
	for _, topic := range topics {
		n, _ := m.retained.Get(topic)
		lines = append(lines, m.publishLine(topic, n.Payload))
	}
	return lines
}

func (m *Model) statisticsLines() []styledLine {
	s := m.stats
	lines := []styledLine{
		{text: "Statistics", style: styles.PanelTitle},
		{text: fmt.Sprintf("messages %d  bytes %d  topics %d  subscriptions %d", s.Messages, s.Bytes, s.TopicCount(), m.subs.Len()), style: styles.Info},
		{text: fmt.Sprintf("disconnects %d  reconnects %d", s.Disconnects, s.Reconnects), style: styles.Info},
		{},
	}
	topics := s.Topics()
	if len(topics) == 0 {
		return append(lines, styledLine{text: "(no messages yet)", style: styles.Info})
	}
	rows := make([][]string, 0, len(topics)+1)
	rows = append(rows, []string{"topic", "messages", "bytes", "last seen"})
	for _, t := range topics {
		last := ""
		if !t.LastSeen.IsZero() {
			last = t.LastSeen.Format(timeLayout)
		}
		rows = append(rows, []string{t.Topic, strconv.Itoa(t.Messages), strconv.Itoa(t.Bytes), last})
	}
	formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignLeft})
	for i, row := range formatted {
		style := styles.Item
		if i == 0 {
			style = styles.PanelTitle
		}
		lines = append(lines, styledLine{text: row, style: style})
	}
	return lines
}

func (m *Model) bottomLines() []styledLine {
	lines := []styledLine{{}}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.errMsg != "" {
		lines = append(lines, styledLine{text: "Error: " + m.errMsg, style: styles.Error})
	} else {
		lines = append(lines, m.statusLine())
	}
	if m.showFooter {
		lines = append(lines, styledLine{text: m.footerText(), style: styles.Footer})
	}
	return lines
}

func (m *Model) statusLine() styledLine {
	label := m.brokerLabel
	if label == "" {
		label = "broker"
	}
	s := m.stats
	switch {
	case s.Since.IsZero():
		return styledLine{text: label + ": waiting for connection", style: styles.Info}
	case s.Connected:
		return styledLine{text: fmt.Sprintf("%s: connected since %s", label, s.Since.Format(timeLayout)), style: styles.Connected}
	default:
		text := fmt.Sprintf("%s: %s at %s", label, s.LastEvent, s.Since.Format(timeLayout))
		if s.LastError != "" {
			text += " (" + s.LastError + ")"
		}
		return styledLine{text: text, style: styles.Disconnected}
	}
}

func (m *Model) footerText() string {
	switch m.path.Top().Kind {
	case uistate.PanelTabBar:
		return "←/→ tab  ↓ focus  q quit"
	case uistate.PanelSubscribeInput:
		return "enter subscribe  ↓ list  ↑ tabs  esc back  ctrl+c quit"
	case uistate.PanelSubscriptionList:
		return "enter select  ↑ input  esc back  ctrl+c quit"
	case uistate.PanelSubscriptionListItem:
		return "↑/↓ move  d unsubscribe  esc back  ctrl+c quit"
	case uistate.PanelRetainedFilter:
		return "type to filter  ctrl+u clear  ↑ tabs  esc back  ctrl+c quit"
	}
	return "press any key  ctrl+c quit"
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
