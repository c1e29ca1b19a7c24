// Package dashboard implements the bubbletea TUI: a grid of Sessions on the
// right, a detail/context panel on the left, and Chat/Permission/Help modes
// layered over the same Model.
package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelio/apiary/internal/app"
	"github.com/kestrelio/apiary/internal/notify"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/watcher"
)

// Mode is one of the five UI modes AppState can be in.
type Mode int

const (
	ModeHome Mode = iota
	ModeDetail
	ModeChat
	ModePermission
	ModeHelp
)

// Model is the dashboard's bubbletea state. It owns the in-memory Session
// slice; the Engine only ever mutates the pointees the Model hands it.
type Model struct {
	engine   *app.Engine
	sessions []*store.Session
	// hooks wakes the reload loop early on a hooks-file write, cutting
	// worst-case hook-to-UI latency below the current polling interval. Nil
	// when the watch could not be established; the polling cadence alone
	// then carries hook events (still picked up by Engine.Reload).
	hooks *watcher.HooksWatcher

	mode Mode

	focusedSession int
	focusedMember  int
	// permissionReturnMode remembers what Mode to fall back to once the
	// operator dismisses an auto-entered Permission prompt.
	permissionReturnMode Mode

	cmdBuffer   string
	cmdActive   bool
	chatBuffer  string
	chatWaiting bool
	// chatIdleStreak counts consecutive reload cycles the chatted-with
	// Member has classified as Idle since the last send; the reply is
	// considered complete only once this reaches 2, absorbing a single
	// stale classification right after the assistant starts responding.
	chatIdleStreak int
	// chatBaseline holds the pane text captured at Chat-mode entry and again
	// right before each send, keyed by "session/pane", so a reply can be
	// isolated by diffing against it.
	chatBaseline map[string]string
	// chatHistory holds each Member's accumulated chat scrollback for this
	// run, keyed like chatBaseline by "session/pane" so switching focus away
	// from a Member mid-reply and back never shows a different Member's
	// text. Lines are appended to it as they appear rather than replaced,
	// so a Member's history survives across multiple sends within one run.
	chatHistory map[string][]string
	// chatAppended tracks, per "session/pane", how many lines of the
	// current diff against chatBaseline have already been appended to
	// chatHistory, so repeated capture ticks against the same growing diff
	// don't append the same lines twice.
	chatAppended map[string]int

	width, height int

	statusMsg  string
	statusErr  bool
	lastReload time.Time
	errCount   int

	quitting bool
}

// New builds a Model from an already-loaded session snapshot and Engine.
func New(engine *app.Engine, sessions []*store.Session) Model {
	return Model{
		engine:       engine,
		sessions:     sessions,
		mode:         ModeHome,
		chatBaseline: make(map[string]string),
		chatHistory:  make(map[string][]string),
		chatAppended: make(map[string]int),
	}
}

// WithHooksWatch attaches a HooksWatcher so a hooks-file write wakes the
// reload loop immediately instead of waiting for the next scheduled tick.
func (m Model) WithHooksWatch(hw *watcher.HooksWatcher) Model {
	m.hooks = hw
	return m
}

// Init kicks off the first reload; the interval for subsequent reloads is
// computed from its result.
func (m Model) Init() tea.Cmd {
	if m.hooks == nil {
		return reloadCmd(m.engine, m.sessions, m.focusedSessionName())
	}
	return tea.Batch(reloadCmd(m.engine, m.sessions, m.focusedSessionName()), waitForHookWake(m.hooks))
}

// focusedSessionName returns the Name of the currently focused Session, or
// "" if none is focused (e.g. an empty session list).
func (m Model) focusedSessionName() string {
	sess := m.currentSession()
	if sess == nil {
		return ""
	}
	return sess.Name
}

type tickMsg time.Time

type hookWakeMsg struct{}

type reloadMsg struct {
	sessions []*store.Session
	events   []notify.Event
	err      error
}

func reloadCmd(engine *app.Engine, sessions []*store.Session, focusedSession string) tea.Cmd {
	return func() tea.Msg {
		sessions, events, err := engine.Reload(sessions, focusedSession)
		return reloadMsg{sessions: sessions, events: events, err: err}
	}
}

// waitForHookWake blocks on the HooksWatcher's channel and re-arms itself
// each time it fires, so a burst of hook writes triggers one reload per
// debounce window rather than flooding tea's message queue.
func waitForHookWake(hw *watcher.HooksWatcher) tea.Cmd {
	return func() tea.Msg {
		<-hw.Wake()
		return hookWakeMsg{}
	}
}

// scheduleTick picks the next reload cadence: the fastest interval any
// tracked Member currently demands, with the focused Session's members
// getting the Focused override cadence regardless of their status.
func (m Model) scheduleTick() tea.Cmd {
	interval := m.engine.Interval(store.StatusIdle, false)
	for i, sess := range m.sessions {
		focused := i == m.focusedSession
		for _, mem := range sess.Members {
			if candidate := m.engine.Interval(mem.Status, focused); candidate < interval {
				interval = candidate
			}
		}
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) currentSession() *store.Session {
	if m.focusedSession < 0 || m.focusedSession >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.focusedSession]
}

func (m *Model) currentMember() *store.Member {
	sess := m.currentSession()
	if sess == nil || m.focusedMember < 0 || m.focusedMember >= len(sess.Members) {
		return nil
	}
	return sess.Members[m.focusedMember]
}

func (m *Model) clampFocus() {
	if len(m.sessions) == 0 {
		m.focusedSession = 0
		m.focusedMember = 0
		return
	}
	if m.focusedSession >= len(m.sessions) {
		m.focusedSession = len(m.sessions) - 1
	}
	if m.focusedSession < 0 {
		m.focusedSession = 0
	}
	sess := m.sessions[m.focusedSession]
	if m.focusedMember >= len(sess.Members) {
		m.focusedMember = len(sess.Members) - 1
	}
	if m.focusedMember < 0 {
		m.focusedMember = 0
	}
}

// nextAttention returns the index of the next Session, after the currently
// focused one, whose rolled-up status is Permission or Error, cycling
// around. It returns -1 if none qualifies.
func (m Model) nextAttention() int {
	n := len(m.sessions)
	if n == 0 {
		return -1
	}
	for step := 1; step <= n; step++ {
		i := (m.focusedSession + step) % n
		switch m.sessions[i].RollupStatus() {
		case store.StatusPermission, store.StatusError:
			return i
		}
	}
	return -1
}
