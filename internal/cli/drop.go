package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// DropResult is the outcome of `drop`.
type DropResult struct {
	Session string `json:"session"`
}

func (r *DropResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "dropped session %q\n", r.Session)
	return err
}

func newDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <name>",
		Short: "Kill the tmux session and remove the Session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			sessions, err := st.Load()
			if err != nil {
				return err
			}

			var tmuxSession string
			for _, s := range sessions {
				if s.Name == name {
					tmuxSession = s.TmuxSession
					break
				}
			}
			if tmuxSession == "" {
				return notFound(fmt.Errorf("session %q not found", name))
			}

			if _, _, err := st.RemoveSession(sessions, name); err != nil {
				return fmt.Errorf("remove session from store: %w", err)
			}

			// Best-effort: the Session record is already gone even if the
			// tmux session was killed out-of-band already.
			client.KillSession(tmuxSession)

			return render(formatter(), &DropResult{Session: name})
		},
	}
}
