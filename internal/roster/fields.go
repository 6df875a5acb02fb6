package roster

import (
	"fmt"
	"slices"

	"clubhub-cli/internal/model"
)

// RowFieldSetter patches a member profile field of a directory row. Bucket
// and assignment fields change only through a refetch.
func RowFieldSetter(r *model.RosterRow, field string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s: want string, got %T", field, value)
	}
	m := &r.Member
	switch field {
	case "firstName":
		m.FirstName = s
	case "lastName":
		m.LastName = s
	case "email":
		m.Email = s
	case "phone":
		m.Phone = s
	case "major":
		m.Major = s
	default:
		return fmt.Errorf("unknown member field %q", field)
	}
	if r.Assignment != nil {
		r.Assignment.Member = *m
	}
	return nil
}

// TaskFieldSetter patches one task field. Enum fields accept only their known
// values.
func TaskFieldSetter(t *model.Task, field string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s: want string, got %T", field, value)
	}
	switch field {
	case "title":
		t.Title = s
	case "description":
		t.Description = s
	case "status":
		if !slices.Contains(model.TaskStatuses, model.TaskStatus(s)) {
			return fmt.Errorf("invalid task status %q", s)
		}
		t.Status = model.TaskStatus(s)
	case "priority":
		if !slices.Contains(model.Priorities, model.Priority(s)) {
			return fmt.Errorf("invalid priority %q", s)
		}
		t.Priority = model.Priority(s)
	case "difficulty":
		if !slices.Contains(model.Difficulties, model.Difficulty(s)) {
			return fmt.Errorf("invalid difficulty %q", s)
		}
		t.Difficulty = model.Difficulty(s)
	default:
		return fmt.Errorf("unknown task field %q", field)
	}
	return nil
}
