package dashboard

import (
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelio/apiary/internal/app"
	"github.com/kestrelio/apiary/internal/config"
	"github.com/kestrelio/apiary/internal/hooksingest"
	"github.com/kestrelio/apiary/internal/notify"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/tmux"
	"github.com/kestrelio/apiary/internal/watcher"
)

// HooksPath is the well-known location a hook script appends events to.
const HooksPath = "/tmp/apiary-hooks.jsonl"

// Run wires the Multiplexer Adapter, Store, Config, Notify, and Hooks
// Ingest into an Engine, loads the current session snapshot, and blocks
// running the bubbletea program until the operator quits.
func Run(cfg *config.Config, client *tmux.Client, st *store.Store) error {
	sessions, err := st.LoadAndReconcile(client)
	if err != nil {
		slog.Warn("store load failed, starting with an empty session set", "error", err)
		sessions = nil
	}

	notifier := notify.New(cfg.Notification, slog.Default())
	hooks := hooksingest.NewReceiver(HooksPath)
	hooks.Init()

	engine := app.New(client, st, cfg, notifier, hooks)

	m := New(engine, sessions)
	if hw, err := watcher.NewHooksWatcher(filepath.Dir(HooksPath), 50*time.Millisecond); err != nil {
		slog.Debug("hooks file watch unavailable, falling back to polling cadence", "error", err)
	} else {
		m = m.WithHooksWatch(hw)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
