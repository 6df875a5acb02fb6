package mutate

import (
	"fmt"

	"clubhub-cli/internal/reconcile"
)

// Action is a server-side change to roster or task data.
type Action interface {
	// Name is the short action name used in logs and the journal (e.g. "assign").
	Name() string
	// Target identifies the record the action applies to.
	Target() string
	Effect() reconcile.Effect
}

// Assign places an unassigned member on a team with a role.
type Assign struct {
	MemberID int64  `json:"memberId" validate:"gt=0"`
	TeamID   int64  `json:"teamId" validate:"gt=0"`
	RoleID   int64  `json:"roleId" validate:"gt=0"`
	Reason   string `json:"reason,omitempty" validate:"max=500"`
}

func (a Assign) Name() string             { return "assign" }
func (a Assign) Target() string           { return fmt.Sprintf("member:%d", a.MemberID) }
func (a Assign) Effect() reconcile.Effect { return reconcile.Structural }

// Transfer moves an existing assignment to another team.
type Transfer struct {
	AssignmentID int64  `json:"-" validate:"gt=0"`
	NewTeamID    int64  `json:"newTeamId" validate:"gt=0"`
	NewRoleID    int64  `json:"newRoleId" validate:"gt=0"`
	Reason       string `json:"reason,omitempty" validate:"max=500"`
}

func (a Transfer) Name() string             { return "transfer" }
func (a Transfer) Target() string           { return fmt.Sprintf("assignment:%d", a.AssignmentID) }
func (a Transfer) Effect() reconcile.Effect { return reconcile.Structural }
