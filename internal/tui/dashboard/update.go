package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelio/apiary/internal/app"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/util"
)

// Update implements tea.Model. Key handling is dispatched by Mode first,
// since the same physical key means different things in Home, Chat, and
// Permission.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, reloadCmd(m.engine, m.sessions, m.focusedSessionName())

	case hookWakeMsg:
		cmds := []tea.Cmd{reloadCmd(m.engine, m.sessions, m.focusedSessionName())}
		if m.hooks != nil {
			cmds = append(cmds, waitForHookWake(m.hooks))
		}
		return m, tea.Batch(cmds...)

	case reloadMsg:
		return m.handleReload(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleReload(msg reloadMsg) (tea.Model, tea.Cmd) {
	m.lastReload = time.Now()
	if msg.sessions != nil {
		m.sessions = msg.sessions
	}
	for _, ev := range msg.events {
		if m.engine.Notify != nil {
			m.engine.Notify.Notify(ev)
		}
	}
	if msg.err != nil {
		m.errCount++
		m.statusMsg = msg.err.Error()
		m.statusErr = true
	} else {
		if name := firstStrugglingMember(m.sessions); name != "" {
			m.statusMsg = name + " has failed to respond for " + fmt.Sprintf("%d", app.MemberErrorThreshold) + "+ cycles"
			m.statusErr = true
		}
	}

	m.clampFocus()
	m.maybeEnterPermission()
	m.maybeCaptureChatReply()

	return m, m.scheduleTick()
}

// firstStrugglingMember returns "session/role" for the first Member whose
// pane has failed to capture for app.MemberErrorThreshold or more
// consecutive cycles, in Session/Member visitation order, or "" if none
// qualify. Surfacing only past the threshold avoids flagging a single
// transient adapter timeout.
func firstStrugglingMember(sessions []*store.Session) string {
	for _, sess := range sessions {
		for _, m := range sess.Members {
			if m.ErrorCount >= app.MemberErrorThreshold {
				return sess.Name + "/" + m.Role
			}
		}
	}
	return ""
}

// maybeCaptureChatReply appends whatever new non-empty lines have appeared
// in the chatted-with Member's pane since the last capture, every reload
// cycle a Chat send is outstanding — not just once at the end — so the
// history panel fills in as the reply streams rather than jumping in all at
// once. The reply is judged complete once the Member has classified as Idle
// for two consecutive reload cycles, so a single stale classification caught
// mid-transition does not end the wait.
func (m *Model) maybeCaptureChatReply() {
	if m.mode != ModeChat || !m.chatWaiting {
		return
	}
	member := m.currentMember()
	sess := m.currentSession()
	if member == nil || sess == nil {
		return
	}

	m.appendChatDiff(member, sess.Name+"/"+member.Pane)

	if member.Status != store.StatusIdle {
		m.chatIdleStreak = 0
		return
	}
	m.chatIdleStreak++
	if m.chatIdleStreak < 2 {
		return
	}
	m.chatWaiting = false
	m.chatIdleStreak = 0
}

// maybeEnterPermission implements the automatic Home/Detail → Permission
// transition: focus landing on a Member in Permission state opens the
// prompt. No record of a dismissed prompt is kept: after esc, or a skip that
// finds no other Permission Session, the prompt opens again on the next
// reload cycle while focus stays on a Member still in Permission state.
func (m *Model) maybeEnterPermission() {
	if m.mode == ModeChat || m.mode == ModeHelp {
		return
	}
	member := m.currentMember()
	if member == nil || member.Status != store.StatusPermission {
		return
	}
	if m.mode != ModePermission {
		m.permissionReturnMode = m.mode
		m.mode = ModePermission
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.cmdActive {
		return m.handleCommandLineKey(msg)
	}

	switch m.mode {
	case ModeChat:
		return m.handleChatKey(msg)
	case ModePermission:
		return m.handlePermissionKey(msg)
	case ModeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			m.mode = ModeHome
		}
		return m, nil
	}

	switch {
	case matchKey(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case matchKey(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil
	case matchKey(msg, keys.Command):
		m.cmdActive = true
		m.cmdBuffer = ""
		return m, nil
	case matchKey(msg, keys.Up):
		m.moveFocus(-1, 0)
		return m, nil
	case matchKey(msg, keys.Down):
		m.moveFocus(1, 0)
		return m, nil
	case matchKey(msg, keys.Left):
		m.moveFocus(0, -1)
		return m, nil
	case matchKey(msg, keys.Right):
		m.moveFocus(0, 1)
		return m, nil
	case matchKey(msg, keys.Enter):
		if m.mode == ModeHome {
			m.mode = ModeDetail
		} else {
			m.mode = ModeHome
		}
		return m, nil
	case matchKey(msg, keys.Back):
		m.mode = ModeHome
		return m, nil
	case matchKey(msg, keys.Chat):
		return m.enterChat()
	case matchKey(msg, keys.Next):
		if i := m.nextAttention(); i >= 0 {
			m.focusedSession = i
			m.focusedMember = 0
		}
		return m, nil
	}

	return m, nil
}

func matchKey(msg tea.KeyMsg, b interface{ Keys() []string }) bool {
	for _, k := range b.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}

// moveFocus navigates the session grid by row (dRow) and, within a session,
// by member (dCol) — left/right move between a session's members, up/down
// move between sessions.
func (m *Model) moveFocus(dRow, dCol int) {
	if len(m.sessions) == 0 {
		return
	}
	if dRow != 0 {
		m.focusedSession = (m.focusedSession + dRow + len(m.sessions)) % len(m.sessions)
		m.focusedMember = 0
	}
	if dCol != 0 {
		sess := m.sessions[m.focusedSession]
		if len(sess.Members) > 0 {
			m.focusedMember = (m.focusedMember + dCol + len(sess.Members)) % len(sess.Members)
		}
	}
}

func (m Model) handleCommandLineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cmdActive = false
		m.cmdBuffer = ""
	case "enter":
		m.cmdActive = false
		m.statusMsg = runCommandLine(m.cmdBuffer)
		m.cmdBuffer = ""
	case "backspace":
		if len(m.cmdBuffer) > 0 {
			m.cmdBuffer = m.cmdBuffer[:len(m.cmdBuffer)-1]
		}
	default:
		if len(msg.String()) == 1 {
			m.cmdBuffer += msg.String()
		}
	}
	return m, nil
}

// runCommandLine is a thin, TUI-local echo of the CLI's create/adopt/
// drop/forget/list surface; it does not shell out to the cli package
// (which owns process exit codes) but reports what the operator should run
// from a shell, since mutating tmux/Store state mid-render risks racing the
// next reload tick.
func runCommandLine(line string) string {
	if line == "" {
		return ""
	}
	return "run from a shell: apiary " + line
}

func (m Model) enterChat() (tea.Model, tea.Cmd) {
	member := m.currentMember()
	if member == nil {
		return m, nil
	}
	if member.Status == store.StatusWorking || member.Status == store.StatusPermission {
		m.statusMsg = "cannot chat: member is " + string(member.Status)
		m.statusErr = true
		return m, nil
	}
	sess := m.currentSession()
	paneKey := sess.Name + "/" + member.Pane
	before, err := m.engine.Client.CapturePane(member.Pane, 200)
	if err == nil {
		m.chatBaseline[paneKey] = before
	}
	m.chatAppended[paneKey] = 0
	m.mode = ModeChat
	m.chatBuffer = ""
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeHome
		m.chatBuffer = ""
	case "enter":
		return m.sendChat()
	case "backspace":
		if len(m.chatBuffer) > 0 {
			m.chatBuffer = m.chatBuffer[:len(m.chatBuffer)-1]
		}
	default:
		if len(msg.String()) == 1 {
			m.chatBuffer += msg.String()
		}
	}
	return m, nil
}

func (m Model) sendChat() (tea.Model, tea.Cmd) {
	member := m.currentMember()
	sess := m.currentSession()
	if member == nil || sess == nil || m.chatBuffer == "" {
		return m, nil
	}
	paneKey := sess.Name + "/" + member.Pane
	if before, err := m.engine.Client.CapturePane(member.Pane, 200); err == nil {
		m.chatBaseline[paneKey] = before
	}
	m.chatAppended[paneKey] = 0
	if err := m.engine.Client.SendKeys(member.Pane, m.chatBuffer, true); err != nil {
		m.statusMsg = "send failed: " + err.Error()
		m.statusErr = true
		return m, nil
	}
	m.chatBuffer = ""
	m.chatWaiting = true
	m.chatIdleStreak = 0
	return m, nil
}

// appendChatDiff diffs the Member's pane against the baseline captured
// right before the latest send, splits the new output into lines, and
// appends whichever of them are past chatAppended[paneKey] and non-empty to
// chatHistory[paneKey]. The diff is taken against that send-time baseline
// rather than the previous tick's capture, so it only grows while one reply
// streams in; chatAppended is the watermark that keeps repeated ticks
// against that growing diff from appending the same lines twice.
func (m *Model) appendChatDiff(member *store.Member, paneKey string) {
	after, err := m.engine.Client.CapturePane(member.Pane, 200)
	if err != nil {
		return
	}
	reply := util.ExtractNewOutput(m.chatBaseline[paneKey], after)
	if reply == "" {
		return
	}
	lines := strings.Split(reply, "\n")
	already := m.chatAppended[paneKey]
	if already >= len(lines) {
		return
	}
	for _, line := range lines[already:] {
		if line == "" {
			continue
		}
		m.chatHistory[paneKey] = append(m.chatHistory[paneKey], line)
	}
	m.chatAppended[paneKey] = len(lines)
}

func (m Model) handlePermissionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	member := m.currentMember()
	if member == nil {
		m.mode = m.permissionReturnMode
		return m, nil
	}

	switch msg.String() {
	case "a":
		m.engine.Client.SendKeys(member.Pane, "y", true)
		m.mode = m.permissionReturnMode
	case "d":
		m.engine.Client.SendKeys(member.Pane, "n", true)
		m.mode = m.permissionReturnMode
	case "s":
		next := -1
		for step := 1; step <= len(m.sessions); step++ {
			i := (m.focusedSession + step) % len(m.sessions)
			if m.sessions[i].RollupStatus() == store.StatusPermission {
				next = i
				break
			}
		}
		if next >= 0 {
			m.focusedSession = next
			m.focusedMember = 0
		} else {
			m.mode = m.permissionReturnMode
		}
	case "esc":
		m.mode = m.permissionReturnMode
	}
	return m, nil
}
