package cli

import (
	"fmt"

	"clubhub-cli/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw, render bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"topics": docs.Topics()})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `clubhub docs` to list topics)", topic))
			}

			switch {
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			case render:
				out, err := glamour.Render(body, "notty")
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			return writeOut(cmd, app, map[string]any{"topic": topic, "markdown": body})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for reading in a terminal")
	return cmd
}
