// Package notify delivers member state-transition events to the operator
// through a desktop notification and/or a structured log line. Routing is
// config-driven: a disabled configuration produces a Notifier that is a
// no-op on every call, not a deleted code path.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/kestrelio/apiary/internal/config"
	"github.com/kestrelio/apiary/internal/store"
)

// Event describes one member state transition worth surfacing.
type Event struct {
	Session   string
	Member    string
	From      store.MemberStatus
	To        store.MemberStatus
	Timestamp time.Time
}

func (e Event) title() string {
	return fmt.Sprintf("apiary [%s]", e.Session)
}

func (e Event) message() string {
	return fmt.Sprintf("%s: %s -> %s", e.Member, e.From, e.To)
}

// Notifier fans an Event out to the enabled channels.
type Notifier struct {
	cfg    config.Notification
	logger *slog.Logger
}

// New builds a Notifier from configuration.
func New(cfg config.Notification, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cfg: cfg, logger: logger}
}

// Notify delivers ev to every enabled channel. Failures on the desktop
// channel (platform unsupported, notify-send missing) are logged, not
// surfaced to the caller: notification delivery is best-effort by design.
func (n *Notifier) Notify(ev Event) {
	if !n.cfg.Enabled {
		return
	}

	n.logger.Info("state transition",
		"session", ev.Session, "member", ev.Member,
		"from", ev.From, "to", ev.To)

	// Sent in the background so a slow notify-send/osascript never stalls
	// the caller's loop.
	go func() {
		if err := sendDesktop(ev.title(), ev.message()); err != nil {
			n.logger.Debug("desktop notification failed", "error", err)
		}
	}()
}

func sendDesktop(title, message string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		if _, err := exec.LookPath("notify-send"); err != nil {
			return fmt.Errorf("notify-send not found: %w", err)
		}
		return exec.Command("notify-send", title, message).Run()
	default:
		return fmt.Errorf("desktop notifications not supported on %s", runtime.GOOS)
	}
}
