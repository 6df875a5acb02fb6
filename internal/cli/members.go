package cli

import (
	"strings"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/roster"

	"github.com/spf13/cobra"
)

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Member directory and assignment commands",
	}
	cmd.AddCommand(newMembersListCmd(app))
	cmd.AddCommand(newMembersAssignCmd(app))
	cmd.AddCommand(newMembersTransferCmd(app))
	cmd.AddCommand(newMembersRoleCmd(app))
	cmd.AddCommand(newMembersStatusCmd(app))
	cmd.AddCommand(newMembersUpdateCmd(app))
	return cmd
}

type memberRow struct {
	MemberID int64  `json:"memberId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Team     string `json:"team,omitempty"`
	Role     string `json:"role,omitempty"`
	// AssignmentID is what transfer, role and status take.
	AssignmentID int64 `json:"assignmentId,omitempty"`
}

func memberRows(rows []model.RosterRow) []memberRow {
	out := make([]memberRow, 0, len(rows))
	for _, r := range rows {
		mr := memberRow{
			MemberID: r.MemberID,
			Name:     r.Member.FullName(),
			Email:    r.Member.Email,
			Status:   string(r.Bucket),
		}
		if a := r.Assignment; a != nil {
			mr.Team, mr.Role, mr.AssignmentID = a.TeamName, a.RoleName, a.ID
		}
		out = append(out, mr)
	}
	return out
}

func newMembersListCmd(app *App) *cobra.Command {
	var team, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members (all, by team, or by status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := roster.ParseFilter(team, status)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := client(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dir := roster.NewDirectory(c, app.log)
			rows, err := dir.Load(cmd.Context(), f.Key())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, memberRows(rows))
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team id")
	cmd.Flags().StringVar(&status, "status", "", "Status (unassigned|active|inactive)")
	return cmd
}

func newMembersAssignCmd(app *App) *cobra.Command {
	var a mutate.Assign

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign an unassigned member to a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Reason = strings.TrimSpace(a.Reason)
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, a)
		},
	}

	cmd.Flags().Int64Var(&a.MemberID, "member", 0, "Member id")
	cmd.Flags().Int64Var(&a.TeamID, "team", 0, "Team id")
	cmd.Flags().Int64Var(&a.RoleID, "role", 0, "Role id")
	cmd.Flags().StringVar(&a.Reason, "reason", "", "Reason (optional)")
	return cmd
}

func newMembersTransferCmd(app *App) *cobra.Command {
	var a mutate.Transfer

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move an assignment to another team",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Reason = strings.TrimSpace(a.Reason)
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"assignmentId": a.AssignmentID, "newTeamId": a.NewTeamID, "newRoleId": a.NewRoleID})
		},
	}

	cmd.Flags().Int64Var(&a.AssignmentID, "assignment", 0, "Assignment id")
	cmd.Flags().Int64Var(&a.NewTeamID, "team", 0, "New team id")
	cmd.Flags().Int64Var(&a.NewRoleID, "role", 0, "New role id")
	cmd.Flags().StringVar(&a.Reason, "reason", "", "Reason (optional)")
	return cmd
}

func newMembersRoleCmd(app *App) *cobra.Command {
	var (
		a          mutate.ChangeRole
		subteam    string
		changeType string
	)

	cmd := &cobra.Command{
		Use:   "role",
		Short: "Change the role of an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := optionalID(subteam)
			if err != nil {
				return writeErr(cmd, errFlag("subteam", "must be a number"))
			}
			a.NewSubteamID = sub
			a.ChangeType = mutate.ChangeType(strings.ToUpper(strings.TrimSpace(changeType)))
			a.Reason = strings.TrimSpace(a.Reason)
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"assignmentId": a.AssignmentID, "newRoleId": a.NewRoleID, "changeType": a.ChangeType})
		},
	}

	cmd.Flags().Int64Var(&a.AssignmentID, "assignment", 0, "Assignment id")
	cmd.Flags().Int64Var(&a.NewRoleID, "role", 0, "New role id")
	cmd.Flags().StringVar(&subteam, "subteam", "", "New subteam id (optional)")
	cmd.Flags().StringVar(&changeType, "type", string(mutate.ChangeLateral), "Change type (PROMOTION|DEMOTION|LATERAL)")
	cmd.Flags().StringVar(&a.Reason, "reason", "", "Reason (optional)")
	return cmd
}

func newMembersStatusCmd(app *App) *cobra.Command {
	var (
		assignmentID int64
		active       bool
		reason       string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Mark an assignment active (return) or inactive (leave)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("active") {
				return writeErr(cmd, errFlag("active", "required (true to return, false to leave)"))
			}
			a := mutate.StatusChange(assignmentID, active, strings.TrimSpace(reason))
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"assignmentId": a.AssignmentID, "isActive": a.IsActive, "changeType": a.ChangeType})
		},
	}

	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "Assignment id")
	cmd.Flags().BoolVar(&active, "active", false, "New active flag")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason (optional)")
	return cmd
}

func newMembersUpdateCmd(app *App) *cobra.Command {
	var (
		memberID int64
		sets     []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit member profile fields",
		Example: strings.TrimSpace(`
  clubhub members update --member 3 --set major=Statistics --set phone=555-0100
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments("set", sets)
			if err != nil {
				return writeErr(cmd, err)
			}
			a := mutate.UpdateMember{MemberID: memberID, Fields: fields}
			if err := submit(cmd, app, a); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"memberId": memberID, "fields": fields})
		},
	}

	cmd.Flags().Int64Var(&memberID, "member", 0, "Member id")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field to set as key=value (repeatable)")
	return cmd
}
