package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelio/apiary/internal/store"
)

// CreateResult is the outcome of `create`.
type CreateResult struct {
	Session  string `json:"session"`
	Pane     string `json:"pane"`
	Worktree string `json:"worktree,omitempty"`
}

func (r *CreateResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "created session %q (pane %s)\n", r.Session, r.Pane)
	return err
}

func newCreateCmd() *cobra.Command {
	var worktree string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a Session, its tmux session, and start the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			sessions, err := st.Load()
			if err != nil {
				return err
			}
			for _, s := range sessions {
				if s.Name == name {
					return collision(fmt.Errorf("session %q already exists", name))
				}
			}

			if err := client.NewSession(name, worktree); err != nil {
				return fmt.Errorf("create tmux session: %w", err)
			}

			panes, err := client.ListPanes(name)
			if err != nil || len(panes) == 0 {
				client.KillSession(name)
				return fmt.Errorf("list panes of newly created session: %w", err)
			}
			pane := panes[0].ID

			sess := &store.Session{
				Name:        name,
				Kind:        store.KindSolo,
				TmuxSession: name,
				Worktree:    worktree,
				CreatedAt:   time.Now(),
				Members: []*store.Member{{
					Role:       "lead",
					Pane:       pane,
					Status:     store.StatusWorking,
					LastChange: time.Now(),
				}},
			}

			sessions, err = st.AddSession(sessions, sess)
			if err != nil {
				client.KillSession(name)
				return fmt.Errorf("save session: %w", err)
			}

			if err := client.SendKeys(pane, "claude", true); err != nil {
				client.KillSession(name)
				return fmt.Errorf("start assistant: %w", err)
			}

			// Capture once now so the Member built by this command carries a
			// tail — tmux echoes the typed command into the pane before the
			// assistant itself prints anything, so the capture already shows
			// "claude". LastTail is not persisted, so the saved record does
			// not carry it; a dashboard fills it on its own first reload
			// cycle. Best-effort: a capture failure here doesn't undo a
			// session that already started successfully.
			if tail, err := client.CapturePane(pane, 200); err == nil {
				sess.Members[0].LastTail = tail
				sess.Members[0].LastPolled = time.Now()
			}

			return render(formatter(), &CreateResult{Session: name, Pane: pane, Worktree: worktree})
		},
	}

	cmd.Flags().StringVar(&worktree, "worktree", "", "working directory for the new tmux session")
	return cmd
}
