package roster

import (
	"fmt"
	"strconv"
	"strings"

	"clubhub-cli/internal/model"
)

// Filter selects which members the directory shows. Nil fields are unset.
type Filter struct {
	TeamID *int64
	Status *model.Bucket
}

// Key is the comparable form of a Filter. Zero TeamID and empty Status mean
// unset.
type Key struct {
	TeamID int64
	Status model.Bucket
}

func (f Filter) Key() Key {
	var k Key
	if f.TeamID != nil {
		k.TeamID = *f.TeamID
	}
	if f.Status != nil {
		k.Status = *f.Status
	}
	return k
}

func (k Key) Filter() Filter {
	var f Filter
	if k.TeamID != 0 {
		id := k.TeamID
		f.TeamID = &id
	}
	if k.Status != "" {
		s := k.Status
		f.Status = &s
	}
	return f
}

// Shape names the query a filter maps to.
type Shape int

const (
	// ShapeMerged combines unassigned members with every assignment.
	ShapeMerged Shape = iota
	// ShapeUnassigned lists members without any assignment. A team filter is
	// ignored since unassigned members belong to no team.
	ShapeUnassigned
	// ShapeTeam lists assignments narrowed by team and active flag.
	ShapeTeam
)

func (s Shape) String() string {
	switch s {
	case ShapeUnassigned:
		return "unassigned"
	case ShapeTeam:
		return "team"
	default:
		return "merged"
	}
}

func (k Key) Shape() Shape {
	switch {
	case k.Status == model.BucketUnassigned:
		return ShapeUnassigned
	case k.TeamID != 0 || k.Status != "":
		return ShapeTeam
	default:
		return ShapeMerged
	}
}

// String renders the key as "team=<id> status=<bucket>" with unset parts
// omitted, or "all".
func (k Key) String() string {
	var parts []string
	if k.TeamID != 0 {
		parts = append(parts, "team="+strconv.FormatInt(k.TeamID, 10))
	}
	if k.Status != "" {
		parts = append(parts, "status="+string(k.Status))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

// ParseFilter builds a filter from CLI-style inputs. Empty strings are unset.
func ParseFilter(team, status string) (Filter, error) {
	var f Filter
	if s := strings.TrimSpace(team); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return Filter{}, fmt.Errorf("invalid team id %q", team)
		}
		f.TeamID = &id
	}
	if s := strings.TrimSpace(status); s != "" {
		b, err := model.ParseBucket(s)
		if err != nil {
			return Filter{}, err
		}
		f.Status = &b
	}
	return f, nil
}
