package tmux

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// SessionInfo describes one tmux session as reported by list-sessions.
type SessionInfo struct {
	Name    string
	Windows int
	Created int64 // unix seconds
}

// Pane describes one tmux pane as reported by list-panes.
type Pane struct {
	ID      string // e.g. "%3"
	Session string
	Window  int
	Index   int
	Active  bool
	Title   string
	PID     int
}

const (
	sessionFormat = "#{session_name}|#{session_windows}|#{session_created}"
	paneFormat    = "#{pane_id}|#{session_name}|#{window_index}|#{pane_index}|#{pane_active}|#{pane_title}|#{pane_pid}"
)

// ListSessions returns every tmux session on the target host.
func (c *Client) ListSessions() ([]SessionInfo, error) {
	return c.ListSessionsContext(context.Background())
}

// ListSessionsContext is ListSessions with a caller-supplied context.
func (c *Client) ListSessionsContext(ctx context.Context) ([]SessionInfo, error) {
	out, err := c.RunContext(ctx, "list-sessions", "-F", sessionFormat)
	if err != nil {
		// tmux exits nonzero with "no server running" when nothing is up.
		if strings.Contains(err.Error(), "no server running") || strings.Contains(err.Error(), "no current session") {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return parseSessions(out), nil
}

func parseSessions(out string) []SessionInfo {
	if strings.TrimSpace(out) == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	sessions := make([]SessionInfo, 0, len(lines))
	for _, line := range lines {
		fields := strings.SplitN(line, "|", 3)
		if len(fields) != 3 {
			continue
		}
		windows, _ := strconv.Atoi(fields[1])
		created, _ := strconv.ParseInt(fields[2], 10, 64)
		sessions = append(sessions, SessionInfo{Name: fields[0], Windows: windows, Created: created})
	}
	return sessions
}

// HasSession reports whether a session with an exact name exists.
func (c *Client) HasSession(name string) bool {
	return c.RunSilentContext(context.Background(), "has-session", "-t", "="+name) == nil
}

// NewSession creates a detached session, optionally starting in startDir.
func (c *Client) NewSession(name, startDir string) error {
	args := []string{"new-session", "-d", "-s", name}
	if startDir != "" {
		args = append(args, "-c", startDir)
	}
	if err := c.RunSilentContext(context.Background(), args...); err != nil {
		return fmt.Errorf("create session %q: %w", name, err)
	}
	return nil
}

// KillSession terminates a session by exact name.
func (c *Client) KillSession(name string) error {
	if err := c.RunSilentContext(context.Background(), "kill-session", "-t", "="+name); err != nil {
		return fmt.Errorf("kill session %q: %w", name, err)
	}
	return nil
}

// ListPanes lists panes belonging to one session.
func (c *Client) ListPanes(session string) ([]Pane, error) {
	out, err := c.RunContext(context.Background(), "list-panes", "-t", session, "-s", "-F", paneFormat)
	if err != nil {
		return nil, fmt.Errorf("list panes for %q: %w", session, err)
	}
	return parsePanes(out), nil
}

// ListAllPanes lists every pane on every session, used by Store reconciliation.
func (c *Client) ListAllPanes() ([]Pane, error) {
	out, err := c.RunContext(context.Background(), "list-panes", "-a", "-F", paneFormat)
	if err != nil {
		if strings.Contains(err.Error(), "no server running") {
			return nil, nil
		}
		return nil, fmt.Errorf("list all panes: %w", err)
	}
	return parsePanes(out), nil
}

func parsePanes(out string) []Pane {
	if strings.TrimSpace(out) == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	panes := make([]Pane, 0, len(lines))
	for _, line := range lines {
		fields := strings.SplitN(line, "|", 7)
		if len(fields) != 7 {
			continue
		}
		window, _ := strconv.Atoi(fields[2])
		index, _ := strconv.Atoi(fields[3])
		pid, _ := strconv.Atoi(fields[6])
		panes = append(panes, Pane{
			ID:      fields[0],
			Session: fields[1],
			Window:  window,
			Index:   index,
			Active:  fields[4] == "1",
			Title:   fields[5],
			PID:     pid,
		})
	}
	return panes
}

// CapturePane returns the trailing tailLines of a pane's scrollback, plain text.
// tailLines <= 0 captures only the visible viewport.
func (c *Client) CapturePane(pane string, tailLines int) (string, error) {
	args := []string{"capture-pane", "-p", "-t", pane}
	if tailLines > 0 {
		args = append(args, "-S", "-"+strconv.Itoa(tailLines))
	}
	out, err := c.RunContext(context.Background(), args...)
	if err != nil {
		return "", fmt.Errorf("capture pane %q: %w", pane, err)
	}
	return out, nil
}

// CapturePaneANSI returns the current viewport of a pane with ANSI escapes preserved,
// used by the UI Renderer's detail view.
func (c *Client) CapturePaneANSI(pane string) (string, error) {
	out, err := c.RunContext(context.Background(), "capture-pane", "-e", "-p", "-t", pane)
	if err != nil {
		return "", fmt.Errorf("capture pane (ansi) %q: %w", pane, err)
	}
	return out, nil
}

// SendKeys types text into a pane and, if withEnter, submits it.
func (c *Client) SendKeys(pane, text string, withEnter bool) error {
	args := []string{"send-keys", "-t", pane, text}
	if withEnter {
		args = append(args, "Enter")
	}
	if err := c.RunSilentContext(context.Background(), args...); err != nil {
		return fmt.Errorf("send keys to %q: %w", pane, err)
	}
	return nil
}

// SendKeysLiteral types text into a pane with no key-name interpretation and no Enter.
func (c *Client) SendKeysLiteral(pane, text string) error {
	if err := c.RunSilentContext(context.Background(), "send-keys", "-l", "-t", pane, text); err != nil {
		return fmt.Errorf("send literal keys to %q: %w", pane, err)
	}
	return nil
}

// SendRawKey sends a named key (e.g. "Escape", "C-c") with no Enter appended.
func (c *Client) SendRawKey(pane, key string) error {
	if err := c.RunSilentContext(context.Background(), "send-keys", "-t", pane, key); err != nil {
		return fmt.Errorf("send raw key %q to %q: %w", key, pane, err)
	}
	return nil
}

// ResizeWindow resizes the window containing target to w by h cells.
func (c *Client) ResizeWindow(target string, w, h int) error {
	if err := c.RunSilentContext(context.Background(), "resize-window", "-t", target,
		"-x", strconv.Itoa(w), "-y", strconv.Itoa(h)); err != nil {
		return fmt.Errorf("resize window %q: %w", target, err)
	}
	return nil
}

// SplitWindow splits the active pane of a session; used by tests to synthesize a
// second member pane without a real assistant process.
func (c *Client) SplitWindow(session string) error {
	if err := c.RunSilentContext(context.Background(), "split-window", "-t", session, "-d"); err != nil {
		return fmt.Errorf("split window in %q: %w", session, err)
	}
	return nil
}

// PipePaneStart begins mirroring a pane's output stream to path, appending.
func (c *Client) PipePaneStart(pane, path string) error {
	cmd := fmt.Sprintf("cat >> %s", path)
	if err := c.RunSilentContext(context.Background(), "pipe-pane", "-O", "-t", pane, cmd); err != nil {
		return fmt.Errorf("pipe-pane start %q: %w", pane, err)
	}
	return nil
}

// PipePaneStop stops mirroring a pane's output stream.
func (c *Client) PipePaneStop(pane string) error {
	if err := c.RunSilentContext(context.Background(), "pipe-pane", "-t", pane); err != nil {
		return fmt.Errorf("pipe-pane stop %q: %w", pane, err)
	}
	return nil
}

// DisplayMessage evaluates a tmux format string against a target and returns the result,
// used to resolve pane/window geometry ad hoc.
func (c *Client) DisplayMessage(target, format string) (string, error) {
	out, err := c.RunContext(context.Background(), "display-message", "-t", target, "-p", format)
	if err != nil {
		return "", fmt.Errorf("display-message %q: %w", target, err)
	}
	return out, nil
}
