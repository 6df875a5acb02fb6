package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"clubhub-cli/internal/api"
	"clubhub-cli/internal/config"
	"clubhub-cli/internal/format"
	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/logging"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string

	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error
	journal  *journal.Journal
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "clubhub",
		Short:        "Club membership management (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  clubhub

  # Run a local API with seed data, then point the client at it
  clubhub dev-server --addr :8089
  clubhub --api http://localhost:8089 members list --status unassigned

  # Assign a member to a team
  clubhub members assign --member 9 --team 2 --role 1 --reason "joined at fair"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigFile, cmd.Flags())
		if err != nil {
			return writeErr(cmd, err)
		}
		log, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
		if err != nil {
			return writeErr(cmd, fmt.Errorf("open log: %w", err))
		}
		app.cfg, app.log, app.closeLog = cfg, log, closeLog
		app.log.Debug("command_start", "command", cmd.CommandPath(), "config_file", cfg.FileUsed)
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.journal != nil {
			_ = app.journal.Close()
			app.journal = nil
		}
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigFile, "config", envOr("CLUBHUB_CONFIG", ""), "Path to config.yaml (default: $CLUBHUB_CONFIG_DIR/config.yaml or ~/.clubhub/config.yaml)")
	pf.String("api", config.DefaultAPIURL, "API base URL")
	pf.String("token", "", "API bearer token")
	pf.Duration("timeout", config.DefaultTimeout, "API request timeout")
	pf.String("format", "json", "Output format ("+strings.Join(format.Formats, "|")+")")
	pf.Bool("pretty", false, "Pretty-print JSON output")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Log file (default: <config dir>/clubhub.log)")

	cmd.AddCommand(newTeamsCmd(app))
	cmd.AddCommand(newRolesCmd(app))
	cmd.AddCommand(newSubteamsCmd(app))
	cmd.AddCommand(newMembersCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newAlumniCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDevServerCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	c, err := client(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Options{
		Client:        c,
		Journal:       openJournal(app),
		Logger:        app.log,
		CloseDelay:    app.cfg.Nav.CloseDelay,
		CollapseDelay: app.cfg.Nav.CollapseDelay,
	})
}

func client(app *App) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: app.cfg.API.URL,
		Token:   app.cfg.API.Token,
		Timeout: app.cfg.API.Timeout,
		Logger:  app.log,
	})
}

// openJournal opens the local journal, or returns nil when it cannot be
// opened. Commands keep working without it.
func openJournal(app *App) *journal.Journal {
	if app.journal != nil {
		return app.journal
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	j, err := journal.Open(ctx, app.cfg.Dir)
	if err != nil {
		app.log.Warn("journal_open_failed", "dir", app.cfg.Dir, "error", err)
		return nil
	}
	app.journal = j
	return j
}

// submit validates and sends one action, recording it in the journal.
func submit(cmd *cobra.Command, app *App, a mutate.Action) error {
	c, err := client(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	mc := mutate.Command{Backend: c, Action: a}
	if j := openJournal(app); j != nil {
		mc.Observe = j.Observer(app.log)
	}
	if err := mc.Do(cmd.Context()); err != nil {
		app.log.Warn("mutation_failed", "action", a.Name(), "target", a.Target(), "error", err)
		return writeMutationErr(cmd, err)
	}
	app.log.Info("mutation_ok", "action", a.Name(), "target", a.Target())
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut writes v in the configured format. json and yaml wrap it in a
// {"data": ...} envelope; table renders v directly.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	f := app.cfg.Output.Format
	if f == "table" {
		return format.Write(cmd.OutOrStdout(), v, f, app.cfg.Output.Pretty)
	}
	return format.Write(cmd.OutOrStdout(), map[string]any{"data": v}, f, app.cfg.Output.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// writeMutationErr prints validation failures one field per line and server
// failures as their display message.
func writeMutationErr(cmd *cobra.Command, err error) error {
	var ve mutate.ValidationError
	if errors.As(err, &ve) {
		for _, k := range sortedKeys(ve.Fields) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", k, ve.Fields[k])
		}
		return err
	}
	return writeErr(cmd, mutate.Friendly(err))
}
