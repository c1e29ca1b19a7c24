package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kestrelio/apiary/internal/output"
	"github.com/kestrelio/apiary/internal/store"
)

// StatusResult is the outcome of `status`: one-line summary counts.
type StatusResult struct {
	Total      int `json:"total"`
	Permission int `json:"permission"`
	Error      int `json:"error"`
	Working    int `json:"working"`
	Idle       int `json:"idle"`
	Done       int `json:"done"`
	Unknown    int `json:"unknown"`
}

func (r *StatusResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %s permission, %s error, %s working, %s idle, %s done, %d unknown\n",
		output.CountStr(r.Total, "session", "sessions"),
		output.ColorizeAs("permission", fmt.Sprintf("%d", r.Permission)),
		output.ColorizeAs("error", fmt.Sprintf("%d", r.Error)),
		output.ColorizeAs("working", fmt.Sprintf("%d", r.Working)),
		output.ColorizeAs("idle", fmt.Sprintf("%d", r.Idle)),
		output.ColorizeAs("done", fmt.Sprintf("%d", r.Done)),
		r.Unknown)
	return err
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a one-line summary of Session counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := st.LoadAndReconcile(client)
			if err != nil {
				return err
			}

			result := &StatusResult{Total: len(sessions)}
			for _, s := range sessions {
				switch s.RollupStatus() {
				case store.StatusPermission:
					result.Permission++
				case store.StatusError:
					result.Error++
				case store.StatusWorking:
					result.Working++
				case store.StatusIdle:
					result.Idle++
				case store.StatusDone:
					result.Done++
				default:
					result.Unknown++
				}
			}

			return render(formatter(), result)
		},
	}
}
