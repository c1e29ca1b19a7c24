package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/tui/layout"
)

var (
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle  = borderStyle.BorderForeground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func glyph(s store.MemberStatus) string {
	switch s {
	case store.StatusPermission:
		return "‼"
	case store.StatusError:
		return "✗"
	case store.StatusWorking:
		return "●"
	case store.StatusIdle:
		return "○"
	case store.StatusDone:
		return "✓"
	default:
		return "?"
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	width := m.width
	if width <= 0 {
		width = 100
	}
	panelWidth, gridWidth := layout.SplitProportions(width)

	grid := m.renderGrid(gridWidth)
	footer := m.renderFooter()

	var body string
	if panelWidth == 0 {
		// Below layout.PanelMinWidth: the context panel collapses and the
		// grid takes the full terminal width.
		body = grid
	} else {
		panel := m.renderPanel(panelWidth)
		body = lipgloss.JoinHorizontal(lipgloss.Top, panel, grid)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// renderGrid lays sessions out as fixed-width cards across
// layout.Columns(width) columns, wrapping into additional rows as needed —
// the "grid" in the grid/panel split, not a single stacked column.
func (m Model) renderGrid(width int) string {
	if len(m.sessions) == 0 {
		return dimStyle.Render("no sessions — press / and run \"create <name>\"")
	}

	cols := layout.Columns(width)
	var cards []string
	for i, sess := range m.sessions {
		style := borderStyle
		if i == m.focusedSession {
			style = focusStyle
		}
		var members []string
		for j, mem := range sess.Members {
			if j >= 5 {
				members = append(members, fmt.Sprintf("  +%d more", len(sess.Members)-5))
				break
			}
			marker := " "
			if i == m.focusedSession && j == m.focusedMember {
				marker = ">"
			}
			members = append(members, fmt.Sprintf("%s%s %s", marker, glyph(mem.Status), mem.Role))
		}
		card := fmt.Sprintf("%s [%s]\n%s", sess.Name, sess.RollupStatus(), strings.Join(members, "\n"))
		cards = append(cards, style.Width(layout.CardWidth-4).Render(card))
	}

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderPanel(width int) string {
	switch m.mode {
	case ModeChat:
		return m.renderChatPanel(width)
	case ModePermission:
		return m.renderPermissionPanel(width)
	default:
		return m.renderDetailPanel(width)
	}
}

func (m Model) renderDetailPanel(width int) string {
	member := m.currentMember()
	sess := m.currentSession()
	if member == nil || sess == nil {
		return borderStyle.Width(width).Render(dimStyle.Render("nothing focused"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s / %s\n", sess.Name, member.Role)
	fmt.Fprintf(&b, "status: %s %s\n", glyph(member.Status), member.Status)
	fmt.Fprintf(&b, "pane:   %s\n\n", member.Pane)

	if len(member.SubAgents) > 0 {
		b.WriteString("sub-agents:\n")
		for _, sa := range member.SubAgents {
			fmt.Fprintf(&b, "  [%s] %s\n", sa.Type, sa.Description)
		}
		b.WriteString("\n")
	}

	tail := member.LastTail
	if len(tail) > 2000 {
		tail = tail[len(tail)-2000:]
	}
	b.WriteString(tail)

	return borderStyle.Width(width).Height(m.panelHeight()).Render(b.String())
}

func (m Model) renderChatPanel(width int) string {
	member := m.currentMember()
	sess := m.currentSession()
	if member == nil || sess == nil {
		return borderStyle.Width(width).Render(dimStyle.Render("nothing focused"))
	}

	paneKey := sess.Name + "/" + member.Pane
	var b strings.Builder
	fmt.Fprintf(&b, "chat: %s / %s\n\n", sess.Name, member.Role)
	if history := m.chatHistory[paneKey]; len(history) > 0 {
		b.WriteString(strings.Join(history, "\n"))
		if m.chatWaiting {
			b.WriteString("\n" + dimStyle.Render("..."))
		}
	} else if m.chatWaiting {
		b.WriteString(dimStyle.Render("waiting for reply..."))
	}
	fmt.Fprintf(&b, "\n\n> %s", m.chatBuffer)

	return borderStyle.Width(width).Height(m.panelHeight()).Render(b.String())
}

func (m Model) renderPermissionPanel(width int) string {
	member := m.currentMember()
	sess := m.currentSession()
	if member == nil || sess == nil {
		return borderStyle.Width(width).Render(dimStyle.Render("nothing focused"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s permission requested — %s / %s\n\n", errStyle.Render("‼"), sess.Name, member.Role)
	tail := member.LastTail
	if len(tail) > 1500 {
		tail = tail[len(tail)-1500:]
	}
	b.WriteString(tail)
	b.WriteString("\n\n[a]pprove  [d]eny  [s]kip")

	return focusStyle.Width(width).Height(m.panelHeight()).Render(b.String())
}

func (m Model) panelHeight() int {
	if m.height <= 4 {
		return 10
	}
	return m.height - 4
}

func (m Model) renderFooter() string {
	if m.cmdActive {
		return "/" + m.cmdBuffer
	}
	if m.statusMsg != "" {
		if m.statusErr {
			return errStyle.Render(m.statusMsg)
		}
		return dimStyle.Render(m.statusMsg)
	}
	return dimStyle.Render("↑↓←→ navigate  enter detail  c chat  n next  / command  ? help  q quit")
}

func (m Model) renderHelp() string {
	lines := []string{
		"apiary — key bindings",
		"",
		"↑/k ↓/j ←/h →/l   navigate the session grid",
		"enter             open detail for the focused member",
		"c                 open chat with the focused member",
		"n                 jump to the next session needing attention",
		"a / d             approve / deny a permission request",
		"s                 skip past a permission request",
		"/                 open the command line",
		"esc               back",
		"q                 quit",
		"",
		"press ? or esc to close",
	}
	return strings.Join(lines, "\n")
}
