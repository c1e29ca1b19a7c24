// Command apiary orchestrates coding-assistant sessions running inside
// tmux. With no arguments it opens the dashboard; the subcommands under
// internal/cli manage Session lifecycle without launching the UI.
package main

import (
	"os"

	"github.com/kestrelio/apiary/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
