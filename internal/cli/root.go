// Package cli implements the apiary command-line surface: the subcommands
// that manage Session lifecycle (create/adopt/drop/forget) and inspect
// current state (list/status) without launching the full dashboard.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelio/apiary/internal/config"
	"github.com/kestrelio/apiary/internal/output"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/tmux"
	"github.com/kestrelio/apiary/internal/tui/dashboard"
)

var (
	cfgPath    string
	formatFlag string
	sshHost    string

	cfg    *config.Config
	client *tmux.Client
	st     *store.Store
)

// Version is set by the build via ldflags; "dev" outside a release build.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "apiary",
	Short: "Orchestrate coding-assistant sessions running inside tmux",
	Long: `apiary tracks named tmux sessions running coding-assistant panes,
classifies each pane's state, and rolls member status up to a per-session
summary.

Run with no subcommand to open the dashboard. Use the subcommands below to
manage Session lifecycle from scripts or a shell prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if sshHost != "" {
			client = tmux.NewClient(sshHost)
		} else {
			client = tmux.NewClient("")
		}

		path := cfgPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		cfg = config.Load(path)

		storePath, err := store.DefaultPath()
		if err != nil {
			return err
		}
		st, err = store.WithPath(storePath)
		if err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboard.Run(cfg, client, st)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.toml (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "text", "output format: text, json, or yaml")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh", "", "run tmux commands against a remote host over ssh")

	rootCmd.AddCommand(
		newCreateCmd(),
		newAdoptCmd(),
		newDropCmd(),
		newForgetCmd(),
		newListCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
}

// initLogging points the default slog logger at stderr, honoring
// APIARY_LOG (any of "debug", "warn", "error"; unset or unrecognized
// stays at the default Info level).
func initLogging() {
	level := slog.LevelInfo
	switch os.Getenv("APIARY_LOG") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// Execute runs the root command, writing errors to stderr and returning a
// process exit code. Callers should os.Exit with the returned value.
func Execute() int {
	initLogging()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if ce, ok := err.(*cliError); ok {
			return ce.code
		}
		return 1
	}
	return 0
}

func formatter() *output.Formatter {
	return output.New(os.Stdout, output.ParseMode(formatFlag))
}

// render writes result through f in whichever mode f was built with,
// falling back to structured JSON/YAML via Emit when the mode isn't text.
func render(f *output.Formatter, result Result) error {
	if f.IsStructured() {
		return f.Emit(result)
	}
	return result.RenderText(os.Stdout)
}

// Result is implemented by every subcommand's outcome type so render can
// dispatch on the formatter's mode without a type switch per command.
type Result interface {
	RenderText(w io.Writer) error
}
