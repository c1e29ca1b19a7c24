package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ForgetResult is the outcome of `forget`.
type ForgetResult struct {
	Session string `json:"session"`
}

func (r *ForgetResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "forgot session %q (tmux session left running)\n", r.Session)
	return err
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <name>",
		Short: "Remove a Session from the store without touching tmux",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			sessions, err := st.Load()
			if err != nil {
				return err
			}

			_, removed, err := st.RemoveSession(sessions, name)
			if err != nil {
				return fmt.Errorf("remove session from store: %w", err)
			}
			if !removed {
				return notFound(fmt.Errorf("session %q not found", name))
			}

			return render(formatter(), &ForgetResult{Session: name})
		},
	}
}
