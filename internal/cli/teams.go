package cli

import (
	"strings"

	"clubhub-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newTeamsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			teams, err := c.ListTeams(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, teams)
		},
	})
	cmd.AddCommand(newTeamsCreateCmd(app))
	return cmd
}

func newTeamsCreateCmd(app *App) *cobra.Command {
	var a mutate.CreateTeam

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.TeamName = strings.TrimSpace(a.TeamName)
			a.Description = strings.TrimSpace(a.Description)
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, a)
		},
	}

	cmd.Flags().StringVar(&a.TeamName, "name", "", "Team name")
	cmd.Flags().StringVar(&a.Description, "description", "", "Description (optional)")
	return cmd
}

func newRolesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Role commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			roles, err := c.ListRoles(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, roles)
		},
	})
	return cmd
}

func newSubteamsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subteams",
		Short: "Subteam commands",
	}

	var teamID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List subteams of a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			subs, err := c.ListSubteams(cmd.Context(), teamID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, subs)
		},
	}
	list.Flags().Int64Var(&teamID, "team", 0, "Team id")
	_ = list.MarkFlagRequired("team")
	cmd.AddCommand(list)
	return cmd
}

func newAlumniCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alumni",
		Short: "Alumni commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List alumni",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			alumni, err := c.ListAlumni(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, alumni)
		},
	})
	return cmd
}
