package cli

import (
	"strings"

	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/roster"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			projects, err := c.ListProjects(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, projects)
		},
	})
	return cmd
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task board commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksSetCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			board := roster.NewTaskBoard(c, app.log)
			tasks, err := board.Load(cmd.Context(), projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, tasks)
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTasksSetCmd(app *App) *cobra.Command {
	var (
		taskID int64
		vals   = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set task fields (status, priority, difficulty, title)",
		Example: strings.TrimSpace(`
  clubhub tasks set --task 3 --status COMPLETED
  clubhub tasks set --task 4 --priority HIGH --difficulty EASY
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{}
			for _, name := range sortedKeys(vals) {
				if cmd.Flags().Changed(name) {
					v := strings.TrimSpace(*vals[name])
					if name != "title" {
						v = strings.ToUpper(v)
					}
					fields[name] = v
				}
			}
			if len(fields) == 0 {
				return writeErr(cmd, errFlag("status", "set at least one of --status, --priority, --difficulty, --title"))
			}
			a := mutate.UpdateTask{TaskID: taskID, Fields: fields}
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"taskId": taskID, "fields": fields})
		},
	}

	cmd.Flags().Int64Var(&taskID, "task", 0, "Task id")
	for _, name := range []string{"status", "priority", "difficulty", "title"} {
		vals[name] = cmd.Flags().String(name, "", "New "+name)
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := mutate.DeleteTask{TaskID: taskID}
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"taskId": taskID, "deleted": true})
		},
	}

	cmd.Flags().Int64Var(&taskID, "task", 0, "Task id")
	return cmd
}
