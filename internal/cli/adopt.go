package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelio/apiary/internal/detect"
	"github.com/kestrelio/apiary/internal/output"
	"github.com/kestrelio/apiary/internal/store"
)

// AdoptResult is the outcome of `adopt`.
type AdoptResult struct {
	Session string `json:"session"`
	Members int    `json:"members"`
}

func (r *AdoptResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "adopted tmux session %q (%s)\n", r.Session, output.CountStr(r.Members, "member", "members"))
	return err
}

func newAdoptCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "adopt <tmux-session>",
		Short: "Bind an existing tmux session as a Session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmuxSession := args[0]
			sessName := name
			if sessName == "" {
				sessName = tmuxSession
			}

			if !client.HasSession(tmuxSession) {
				return notFound(fmt.Errorf("tmux session %q not found", tmuxSession))
			}

			sessions, err := st.Load()
			if err != nil {
				return err
			}
			for _, s := range sessions {
				if s.Name == sessName {
					return collision(fmt.Errorf("session %q already exists", sessName))
				}
			}

			panes, err := client.ListPanes(tmuxSession)
			if err != nil {
				return fmt.Errorf("list panes: %w", err)
			}

			var members []*store.Member
			for i, p := range panes {
				text, _ := client.CapturePane(p.ID, detect.Window)
				status, _ := detect.Classify(text, true, detect.DefaultRules())
				role := "lead"
				if i > 0 {
					role = fmt.Sprintf("member-%d", i)
				}
				members = append(members, &store.Member{
					Role:       role,
					Pane:       p.ID,
					Status:     status,
					LastChange: time.Now(),
				})
			}
			if len(members) == 0 {
				return fmt.Errorf("tmux session %q has no panes", tmuxSession)
			}

			kind := store.KindSolo
			if len(members) > 1 {
				kind = store.KindTeam
			}
			sess := &store.Session{
				Name:        sessName,
				Kind:        kind,
				TmuxSession: tmuxSession,
				CreatedAt:   time.Now(),
				Members:     members,
			}

			if _, err := st.AddSession(sessions, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			return render(formatter(), &AdoptResult{Session: sessName, Members: len(members)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Session name (default: the tmux session's own name)")
	return cmd
}
