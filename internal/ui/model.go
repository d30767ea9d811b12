package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/data/dispatcher"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	"github.com/atomicstack/mqtt-analyzer/internal/theme"
	"github.com/atomicstack/mqtt-analyzer/internal/ui/command"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Subscriptions is the read side of the subscription registry. Topics are
// addressed in a stable sorted order.
type Subscriptions interface {
	Len() int
	At(i int) (string, bool)
	Topics() []string
}

// NotificationMsg carries a broker notification into the program.
type NotificationMsg struct {
	Notification broker.Notification
}

// FaultMsg reports that the subscription engine stopped on a broker error.
type FaultMsg struct {
	Err error
}

// Options configures a Model.
type Options struct {
	InitialTab    uistate.Tab
	Format        format.Kind
	BufferSize    int
	PruneRetained bool
	Broker        string
	BrokerKind    string
	Width         int
	Height        int
	ShowFooter    bool
}

// Model implements the Bubble Tea model for the analyzer dashboard.
type Model struct {
	path     *uistate.Path
	tabs     *uistate.Tabs
	input    uistate.Input
	filter   uistate.Input
	listView uistate.Viewport

	ring       *uistate.Ring
	retained   *uistate.Retained
	stats      *uistate.Stats
	dispatcher *dispatcher.Dispatcher

	subs          Subscriptions
	bus           *command.Bus
	format        format.Kind
	pruneRetained bool
	match         broker.MatchFunc
	brokerLabel   string

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool

	errMsg     string
	infoMsg    string
	infoExpire time.Time
	fault      error
	quitting   bool

	caret      cursor.Model
	caretDirty bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the dashboard over the live subscription registry. Commands
// produced by key presses are handed to submitter.
func NewModel(subs Subscriptions, submitter command.Submitter, opts Options) *Model {
	ring := uistate.NewRing(opts.BufferSize)
	retained := uistate.NewRetained()
	stats := uistate.NewStats()
	m := &Model{
		path:          uistate.NewPath(),
		tabs:          uistate.NewTabs(opts.InitialTab),
		ring:          ring,
		retained:      retained,
		stats:         stats,
		dispatcher:    dispatcher.New(ring, retained, stats),
		subs:          subs,
		bus:           command.New(submitter),
		format:        opts.Format,
		pruneRetained: opts.PruneRetained,
		match:         broker.Matcher(opts.BrokerKind),
		brokerLabel:   opts.Broker,
		showFooter:    opts.ShowFooter,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	c.SetMode(cursor.CursorStatic)
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Input != nil {
		c.TextStyle = styles.Input.Copy()
	}
	c.SetChar(" ")
	m.caret = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("mqtt-analyzer"), m.caret.Focus())
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)
	if cmd := m.updateCaretModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(NotificationMsg{}):   m.handleNotificationMsg,
		reflect.TypeOf(FaultMsg{}):          m.handleFaultMsg,
		reflect.TypeOf(command.QueuedMsg{}): m.handleQueuedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.caretDirty {
		m.caretDirty = false
		m.caret.Blink = false
		if cmd := m.caret.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleNotificationMsg(msg tea.Msg) tea.Cmd {
	note, ok := msg.(NotificationMsg)
	if !ok {
		return nil
	}
	res := m.dispatcher.Handle(note.Notification)
	if res.ConnectionChanged && note.Notification.Err != "" {
		m.setInfo(note.Notification.Kind.String() + ": " + note.Notification.Err)
	}
	return nil
}

func (m *Model) handleFaultMsg(msg tea.Msg) tea.Cmd {
	fault, ok := msg.(FaultMsg)
	if !ok || fault.Err == nil {
		return nil
	}
	m.fault = fault.Err
	m.errMsg = fault.Err.Error()
	m.quitting = true
	return tea.Quit
}

func (m *Model) handleQueuedMsg(msg tea.Msg) tea.Cmd {
	queued, ok := msg.(command.QueuedMsg)
	if !ok {
		return nil
	}
	if !queued.Accepted {
		m.errMsg = "not queued: " + queued.Command.String()
		return nil
	}
	m.errMsg = ""
	m.setInfo("queued " + queued.Command.String())
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	return nil
}

// Fault returns the engine error that ended the program, if any.
func (m *Model) Fault() error {
	return m.fault
}

// Path returns a copy of the focused panel path, Root first.
func (m *Model) Path() []uistate.Panel {
	return m.path.Panels()
}

// Focus returns the focused panel.
func (m *Model) Focus() uistate.Panel {
	return m.path.Top()
}

// ActiveTab returns the selected tab.
func (m *Model) ActiveTab() uistate.Tab {
	return m.tabs.Active()
}

// InputValue returns the pending subscribe input.
func (m *Model) InputValue() string {
	return m.input.Value()
}

// Stream returns the buffered notifications, oldest first.
func (m *Model) Stream() []broker.Notification {
	return m.ring.Items()
}

// Retained returns the latest publish for topic.
func (m *Model) Retained(topic string) (broker.Notification, bool) {
	return m.retained.Get(topic)
}

// RetainedTopics returns the topics with a retained entry, sorted.
func (m *Model) RetainedTopics() []string {
	return m.retained.Topics()
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}
