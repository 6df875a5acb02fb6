// Package roster loads the member directory and task boards into reconciled
// lists.
package roster

import (
	"context"
	"fmt"
	"log/slog"

	"clubhub-cli/internal/api"
	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/reconcile"

	"golang.org/x/sync/errgroup"
)

// Source is the subset of the API the directory reads.
type Source interface {
	ListUnassignedMembers(ctx context.Context) ([]model.Member, error)
	ListTeamMembers(ctx context.Context, q api.TeamMemberQuery) ([]model.TeamMember, error)
}

// TaskSource is the subset of the API a task board reads.
type TaskSource interface {
	ListTasks(ctx context.Context, projectID int64) ([]model.Task, error)
}

type Directory = reconcile.List[Key, model.RosterRow]

type TaskBoard = reconcile.List[int64, model.Task]

func rowRank(r model.RosterRow) int { return r.Bucket.Rank() }

// MergeRows keeps one row per assignment, except that a member listed as
// unassigned in any source collapses to a single unassigned row. Duplicates
// resolve by bucket: unassigned, then active, then inactive.
func MergeRows(sources ...[]model.RosterRow) []model.RosterRow {
	unassigned := make(map[int64]bool)
	for _, src := range sources {
		for _, r := range src {
			if r.Bucket == model.BucketUnassigned {
				unassigned[r.MemberID] = true
			}
		}
	}
	key := func(r model.RosterRow) string {
		if unassigned[r.MemberID] {
			return model.MemberRowKey(r.MemberID)
		}
		return r.Key()
	}
	return reconcile.Merge(key, rowRank, sources...)
}

// PatchMember applies a profile field edit to every row of memberID, one per
// assignment. It returns the first error; rows already patched stay patched.
func PatchMember(dir *Directory, memberID int64, field string, value any) error {
	var keys []string
	for _, r := range dir.Rows() {
		if r.MemberID == memberID {
			keys = append(keys, r.Key())
		}
	}
	if len(keys) == 0 {
		return fmt.Errorf("member %d not in directory", memberID)
	}
	for _, k := range keys {
		if err := dir.ApplyFieldPatch(k, field, value); err != nil {
			return err
		}
	}
	return nil
}

// Loader maps a filter key to the matching query.
func Loader(src Source, log *slog.Logger) reconcile.Loader[Key, model.RosterRow] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, k Key) ([]model.RosterRow, error) {
		log.Debug("roster_load", "filter", k.String(), "shape", k.Shape().String())
		switch k.Shape() {
		case ShapeUnassigned:
			return unassignedRows(ctx, src)
		case ShapeTeam:
			return teamRows(ctx, src, teamQuery(k))
		default:
			return mergedRows(ctx, src)
		}
	}
}

func teamQuery(k Key) api.TeamMemberQuery {
	var q api.TeamMemberQuery
	if k.TeamID != 0 {
		id := k.TeamID
		q.TeamID = &id
	}
	switch k.Status {
	case model.BucketActive:
		v := true
		q.IsActive = &v
	case model.BucketInactive:
		v := false
		q.IsActive = &v
	}
	return q
}

func unassignedRows(ctx context.Context, src Source) ([]model.RosterRow, error) {
	members, err := src.ListUnassignedMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unassigned members: %w", err)
	}
	rows := make([]model.RosterRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, model.UnassignedRow(m))
	}
	return rows, nil
}

func teamRows(ctx context.Context, src Source, q api.TeamMemberQuery) ([]model.RosterRow, error) {
	tms, err := src.ListTeamMembers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	rows := make([]model.RosterRow, 0, len(tms))
	for _, tm := range tms {
		rows = append(rows, model.AssignedRow(tm))
	}
	return rows, nil
}

// mergedRows runs both queries concurrently. Either failing fails the load.
func mergedRows(ctx context.Context, src Source) ([]model.RosterRow, error) {
	var unassigned, assigned []model.RosterRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unassigned, err = unassignedRows(gctx, src)
		return err
	})
	g.Go(func() error {
		var err error
		assigned, err = teamRows(gctx, src, api.TeamMemberQuery{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeRows(unassigned, assigned), nil
}

// NewDirectory returns an empty member directory backed by src. Mutation
// errors committed through it are converted with mutate.Friendly.
func NewDirectory(src Source, log *slog.Logger) *Directory {
	return reconcile.New(Loader(src, log), reconcile.Options[model.RosterRow]{
		Key:      model.RosterRow.Key,
		SetField: RowFieldSetter,
		Classify: mutate.Friendly,
		Logger:   log,
	})
}

// NewTaskBoard returns an empty task list keyed by project id.
func NewTaskBoard(src TaskSource, log *slog.Logger) *TaskBoard {
	load := func(ctx context.Context, projectID int64) ([]model.Task, error) {
		tasks, err := src.ListTasks(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		return tasks, nil
	}
	return reconcile.New(load, reconcile.Options[model.Task]{
		Key:      model.Task.Key,
		SetField: TaskFieldSetter,
		Classify: mutate.Friendly,
		Logger:   log,
	})
}

// TeamSource is the subset of the API the team list reads.
type TeamSource interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// TeamList holds teams; its filter reports whether inactive teams are shown.
type TeamList = reconcile.List[bool, model.Team]

func NewTeamList(src TeamSource, log *slog.Logger) *TeamList {
	load := func(ctx context.Context, withInactive bool) ([]model.Team, error) {
		teams, err := src.ListTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		if withInactive {
			return teams, nil
		}
		out := make([]model.Team, 0, len(teams))
		for _, t := range teams {
			if t.IsActive {
				out = append(out, t)
			}
		}
		return out, nil
	}
	return reconcile.New(load, reconcile.Options[model.Team]{
		Key:      func(t model.Team) string { return model.IDKey(t.ID) },
		Classify: mutate.Friendly,
		Logger:   log,
	})
}
