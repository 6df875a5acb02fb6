package mutate

import (
	"fmt"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/reconcile"
)

// UpdateTask edits cosmetic task fields (status, priority, difficulty, title).
// Callers patch the displayed row first; the list refetches only on failure.
type UpdateTask struct {
	TaskID int64          `json:"-" validate:"gt=0"`
	Fields map[string]any `json:"fields" validate:"required,min=1"`
}

func (a UpdateTask) Name() string             { return "update-task" }
func (a UpdateTask) Target() string           { return fmt.Sprintf("task:%d", a.TaskID) }
func (a UpdateTask) Effect() reconcile.Effect { return reconcile.Cosmetic }

// DeleteTask removes a task; the list shape changes so it is always refetched.
type DeleteTask struct {
	TaskID int64 `json:"-" validate:"gt=0"`
}

func (a DeleteTask) Name() string             { return "delete-task" }
func (a DeleteTask) Target() string           { return fmt.Sprintf("task:%d", a.TaskID) }
func (a DeleteTask) Effect() reconcile.Effect { return reconcile.Shape }

// UpdateMember edits profile fields of a member.
type UpdateMember struct {
	MemberID int64          `json:"-" validate:"gt=0"`
	Fields   map[string]any `json:"fields" validate:"required,min=1"`
}

func (a UpdateMember) Name() string             { return "update-member" }
func (a UpdateMember) Target() string           { return fmt.Sprintf("member:%d", a.MemberID) }
func (a UpdateMember) Effect() reconcile.Effect { return reconcile.Cosmetic }

var taskFieldValues = map[string][]string{
	"status":     enumStrings(model.TaskStatuses),
	"priority":   enumStrings(model.Priorities),
	"difficulty": enumStrings(model.Difficulties),
}

var memberFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"email":     true,
	"phone":     true,
	"major":     true,
}

func enumStrings[E ~string](vals []E) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

// NextValue cycles an enum-valued task field to its next value.
func NextValue(field, current string) (string, bool) {
	vals, ok := taskFieldValues[field]
	if !ok || len(vals) == 0 {
		return "", false
	}
	for i, v := range vals {
		if v == current {
			return vals[(i+1)%len(vals)], true
		}
	}
	return vals[0], true
}

// CreateTeam adds a new team. The team list changes shape, so it is refetched.
type CreateTeam struct {
	TeamName    string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

func (a CreateTeam) Name() string             { return "create-team" }
func (a CreateTeam) Target() string           { return "team:" + a.TeamName }
func (a CreateTeam) Effect() reconcile.Effect { return reconcile.Shape }
