package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// VersionResult is the outcome of `version`.
type VersionResult struct {
	Version string `json:"version"`
}

func (r *VersionResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Version)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the apiary version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(formatter(), &VersionResult{Version: Version})
		},
	}
}
