package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kestrelio/apiary/internal/output"
	"github.com/kestrelio/apiary/internal/store"
)

// ListResult is the outcome of `list`.
type ListResult struct {
	Sessions []ListRow `json:"sessions"`
}

// ListRow is one Session's summary row.
type ListRow struct {
	Name    string             `json:"name"`
	Kind    store.SessionKind  `json:"kind"`
	Status  store.MemberStatus `json:"status"`
	Members int                `json:"members"`
}

// nameColumnWidth is the longest a Session name is allowed to run before the
// NAME column truncates it; long tmux/worktree-derived names would otherwise
// blow out the table's alignment.
const nameColumnWidth = 32

func (r *ListResult) RenderText(w io.Writer) error {
	t := output.NewTable(w, "NAME", "KIND", "STATUS", "MEMBERS")
	for _, row := range r.Sessions {
		t.AddRow(output.Truncate(row.Name, nameColumnWidth), string(row.Kind), output.ColorizeStatus(string(row.Status)), fmt.Sprintf("%d", row.Members))
	}
	t.Render()
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every Session and its rolled-up status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := st.LoadAndReconcile(client)
			if err != nil {
				return err
			}

			result := &ListResult{}
			for _, s := range sessions {
				result.Sessions = append(result.Sessions, ListRow{
					Name:    s.Name,
					Kind:    s.Kind,
					Status:  s.RollupStatus(),
					Members: len(s.Members),
				})
			}

			return render(formatter(), result)
		},
	}
}
