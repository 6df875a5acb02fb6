package cli

import (
	"errors"
	"time"

	"clubhub-cli/internal/config"
	"clubhub-cli/internal/devserver"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently submitted changes from the local journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j := openJournal(app)
			if j == nil {
				return writeErr(cmd, errors.New("journal unavailable; see log for details"))
			}
			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (token redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, configView(app.cfg.Redacted()))
		},
	})
	return cmd
}

// configView flattens the config to its keys with durations in text form.
func configView(c config.Config) map[string]any {
	return map[string]any{
		"dir":                c.Dir,
		"file":               c.FileUsed,
		"api.url":            c.API.URL,
		"api.token":          c.API.Token,
		"api.timeout":        c.API.Timeout.String(),
		"nav.close_delay":    c.Nav.CloseDelay.String(),
		"nav.collapse_delay": c.Nav.CollapseDelay.String(),
		"log.level":          c.Log.Level,
		"log.file":           c.Log.File,
		"output.format":      c.Output.Format,
		"output.pretty":      c.Output.Pretty,
	}
}

func newDevServerCmd(app *App) *cobra.Command {
	var (
		addr string
		lag  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Serve the membership API from memory with seed data",
		Long: "Serve the membership API from memory with seed data.\n\n" +
			"When a token is configured (--token or api.token) requests must present it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := devserver.New(devserver.Options{
				Token:  app.cfg.API.Token,
				Lag:    lag,
				Logger: app.log,
			})
			cmd.Printf("serving on %s (ctrl-c to stop)\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8089", "Listen address")
	cmd.Flags().DurationVar(&lag, "lag", 0, "Delay every response (e.g. 800ms)")
	return cmd
}
