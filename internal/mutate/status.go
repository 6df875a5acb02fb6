package mutate

import (
	"fmt"

	"clubhub-cli/internal/reconcile"
)

type ChangeType string

const (
	ChangePromotion ChangeType = "PROMOTION"
	ChangeDemotion  ChangeType = "DEMOTION"
	ChangeLateral   ChangeType = "LATERAL"
	ChangeLeave     ChangeType = "LEAVE"
	ChangeReturn    ChangeType = "RETURN"
)

var RoleChangeTypes = []ChangeType{ChangePromotion, ChangeDemotion, ChangeLateral}

// ChangeRole changes the role (and optionally subteam) of an assignment.
type ChangeRole struct {
	AssignmentID int64      `json:"-" validate:"gt=0"`
	NewRoleID    int64      `json:"newRoleId" validate:"gt=0"`
	NewSubteamID *int64     `json:"newSubteamId,omitempty" validate:"omitempty,gt=0"`
	ChangeType   ChangeType `json:"changeType" validate:"required,oneof=PROMOTION DEMOTION LATERAL"`
	Reason       string     `json:"reason,omitempty" validate:"max=500"`
}

func (a ChangeRole) Name() string             { return "change-role" }
func (a ChangeRole) Target() string           { return fmt.Sprintf("assignment:%d", a.AssignmentID) }
func (a ChangeRole) Effect() reconcile.Effect { return reconcile.Structural }

// UpdateStatus marks an assignment active or inactive. LEAVE must deactivate
// and RETURN must reactivate.
type UpdateStatus struct {
	AssignmentID int64      `json:"-" validate:"gt=0"`
	IsActive     bool       `json:"isActive"`
	ChangeType   ChangeType `json:"changeType" validate:"required,oneof=LEAVE RETURN"`
	Reason       string     `json:"reason,omitempty" validate:"max=500"`
}

func (a UpdateStatus) Name() string             { return "update-status" }
func (a UpdateStatus) Target() string           { return fmt.Sprintf("assignment:%d", a.AssignmentID) }
func (a UpdateStatus) Effect() reconcile.Effect { return reconcile.Structural }

// StatusChange builds the UpdateStatus that flips an assignment's active flag.
func StatusChange(assignmentID int64, active bool, reason string) UpdateStatus {
	ct := ChangeLeave
	if active {
		ct = ChangeReturn
	}
	return UpdateStatus{AssignmentID: assignmentID, IsActive: active, ChangeType: ct, Reason: reason}
}
