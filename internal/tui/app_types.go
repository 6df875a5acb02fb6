package tui

import (
	"context"

	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/reconcile"
	"clubhub-cli/internal/roster"

	tea "github.com/charmbracelet/bubbletea"
)

type page int

const (
	pageMembers page = iota
	pageTeams
	pageProjects
	pageAlumni
	pageHistory
)

func (p page) String() string {
	switch p {
	case pageTeams:
		return "teams"
	case pageProjects:
		return "projects"
	case pageAlumni:
		return "alumni"
	case pageHistory:
		return "history"
	default:
		return "members"
	}
}

func (p page) title() string {
	switch p {
	case pageTeams:
		return "Teams"
	case pageProjects:
		return "Projects"
	case pageAlumni:
		return "Alumni"
	case pageHistory:
		return "History"
	default:
		return "Members"
	}
}

func parsePage(s string) (page, bool) {
	for _, p := range []page{pageMembers, pageTeams, pageProjects, pageAlumni, pageHistory} {
		if p.String() == s {
			return p, true
		}
	}
	return pageMembers, false
}

// pageRequest asks a page to do something on behalf of another component,
// such as the sidebar opening the Teams "new team" modal.
type pageRequest struct {
	Page  page
	Modal string
}

const requestNewTeam = "new-team"

type navTickMsg struct{ seq int }

type minibufferClearMsg struct{ seq int }

type refDataMsg struct {
	teams    []model.Team
	roles    []model.Role
	subteams map[int64][]model.Subteam
	err      error
}

type membersFetchedMsg struct {
	res reconcile.Result[roster.Key, model.RosterRow]
}

type teamsFetchedMsg struct {
	res reconcile.Result[bool, model.Team]
}

type teamRosterFetchedMsg struct {
	res reconcile.Result[roster.Key, model.RosterRow]
}

type projectsFetchedMsg struct {
	res reconcile.Result[struct{}, model.Project]
}

type tasksFetchedMsg struct {
	res reconcile.Result[int64, model.Task]
}

type alumniFetchedMsg struct {
	res reconcile.Result[struct{}, model.Alumni]
}

type historyLoadedMsg struct {
	entries []journal.Entry
	err     error
}

// mutationDoneMsg carries the outcome of a submitted command back to the page
// that owns the list it was executed against.
type mutationDoneMsg struct {
	page page
	// list tells pages with more than one list which one to settle.
	list string
	cmd  mutate.Command
	err  error
}

// fetch begins a fetch on the UI goroutine and returns the command that runs
// the loader. Results come back through wrap and are applied with List.Apply.
func fetch[F comparable, T any](ctx context.Context, l *reconcile.List[F, T], f F, wrap func(reconcile.Result[F, T]) tea.Msg) tea.Cmd {
	t := l.Begin(f)
	return func() tea.Msg {
		return wrap(l.Fetch(ctx, t))
	}
}

// executor is the part of a reconcile.List used to run mutations off the UI
// goroutine.
type executor interface {
	Execute(ctx context.Context, m reconcile.Mutation) error
}
