package tui

import (
	"context"
	"log/slog"
	"strings"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/reconcile"
	"clubhub-cli/internal/roster"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const teamsPaneW = 26

type teamsFocus int

const (
	focusTeams teamsFocus = iota
	focusRoster
)

// teamsPage shows every team on the left and the selected team's roster,
// active and inactive, on the right.
type teamsPage struct {
	teams  *roster.TeamList
	list   list.Model
	roster *roster.Directory
	rows   list.Model
	focus  teamsFocus

	selectedTeamID int64
	loading        bool
	// stale is set when another page changed memberships.
	stale  bool
	banner string

	form *form
	// formList is the list the open form's action is settled against.
	formList string
}

func newTeamsPage(src interface {
	roster.Source
	roster.TeamSource
}, log *slog.Logger) *teamsPage {
	return &teamsPage{
		teams:  roster.NewTeamList(src, log),
		list:   newList("Teams", nil),
		roster: roster.NewDirectory(src, log),
		rows:   newList("Roster", nil),
	}
}

func (p *teamsPage) resize(w, h int) {
	p.list.SetSize(teamsPaneW, h-1)
	p.rows.SetSize(max(w-teamsPaneW-2, 10), h-1)
}

func (p *teamsPage) ensure(ctx context.Context) tea.Cmd {
	if !p.stale && (p.teams.Loaded() || p.loading) {
		return nil
	}
	return p.reload(ctx)
}

func (p *teamsPage) reload(ctx context.Context) tea.Cmd {
	p.loading = true
	p.stale = false
	// Inactive teams are listed too; they render dimmed.
	return fetch(ctx, p.teams, true, func(res reconcile.Result[bool, model.Team]) tea.Msg {
		return teamsFetchedMsg{res: res}
	})
}

// applyTeams installs a team list and starts loading the roster of the
// selected team, keeping the previous selection when it still exists.
func (p *teamsPage) applyTeams(ctx context.Context, res reconcile.Result[bool, model.Team]) tea.Cmd {
	if !p.teams.Apply(res) {
		return nil
	}
	p.loading = false
	p.banner = ""
	if err := p.teams.Err(); err != nil {
		p.banner = "Could not load teams: " + mutate.Friendly(err).Error()
	}

	teams := p.teams.Rows()
	items := make([]list.Item, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamItem{team: t})
	}
	setItems(&p.list, items, itemKey)
	if len(teams) == 0 {
		p.selectedTeamID = 0
		return nil
	}
	if _, ok := p.teams.Find(model.IDKey(p.selectedTeamID)); !ok {
		p.selectedTeamID = teams[0].ID
	}
	for i, t := range teams {
		if t.ID == p.selectedTeamID {
			p.list.Select(i)
		}
	}
	return p.loadRoster(ctx)
}

func (p *teamsPage) loadRoster(ctx context.Context) tea.Cmd {
	k := roster.Key{TeamID: p.selectedTeamID}
	return fetch(ctx, p.roster, k, func(res reconcile.Result[roster.Key, model.RosterRow]) tea.Msg {
		return teamRosterFetchedMsg{res: res}
	})
}

func (p *teamsPage) applyRoster(res reconcile.Result[roster.Key, model.RosterRow]) {
	if !p.roster.Apply(res) {
		return
	}
	if err := p.roster.Err(); err != nil {
		p.banner = "Could not load roster: " + mutate.Friendly(err).Error()
	}
	rows := p.roster.Rows()
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, memberItem{row: r})
	}
	setItems(&p.rows, items, itemKey)
}

func (p *teamsPage) openNewTeam() {
	p.formList = "teams"
	p.form = newForm("New team", func(f *form) mutate.Action {
		return mutate.CreateTeam{TeamName: f.text("name"), Description: f.text("description")}
	},
		textField("name", "Name", "", 100),
		textField("description", "Description", "", 500),
	)
}

func (p *teamsPage) settle(ctx context.Context, msg mutationDoneMsg) tea.Cmd {
	p.banner = ""
	if msg.err != nil {
		p.banner = msg.err.Error()
	}
	if msg.list == "teams" {
		if p.teams.Settle(msg.cmd, msg.err) {
			return p.reload(ctx)
		}
		return nil
	}
	if p.roster.Settle(msg.cmd, msg.err) {
		return p.loadRoster(ctx)
	}
	return nil
}

func (m *appModel) updateTeams(msg tea.KeyMsg) tea.Cmd {
	p := m.teams
	if p.form != nil {
		res, a := p.form.update(msg)
		switch res {
		case formCanceled:
			p.form = nil
		case formSubmitted:
			p.form = nil
			var l executor = p.roster
			if p.formList == "teams" {
				l = p.teams
			}
			return m.submit(pageTeams, p.formList, l, a)
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		if p.focus == focusTeams {
			p.focus = focusRoster
		} else {
			p.focus = focusTeams
		}
		return nil
	case "n":
		p.openNewTeam()
		return nil
	}

	if p.focus == focusTeams {
		if msg.String() == "enter" {
			it, ok := p.list.SelectedItem().(teamItem)
			if !ok {
				return nil
			}
			p.selectedTeamID = it.team.ID
			p.focus = focusRoster
			return p.loadRoster(m.ctx)
		}
		var cmd tea.Cmd
		p.list, cmd = p.list.Update(msg)
		return cmd
	}

	if msg.String() == "s" {
		it, ok := p.rows.SelectedItem().(memberItem)
		if !ok || it.row.Assignment == nil {
			return nil
		}
		p.formList = "roster"
		p.form = statusForm(it.row)
		return nil
	}
	var cmd tea.Cmd
	p.rows, cmd = p.rows.Update(msg)
	return cmd
}

func (p *teamsPage) view(width, height int) string {
	if p.form != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, p.form.view(width))
	}

	var top []string
	if p.banner != "" {
		top = append(top, " "+styleBanner().Render(p.banner))
	}
	if p.loading && !p.teams.Loaded() {
		top = append(top, styleMuted().Render(" Loading teams"+glyphEllipsis()))
		return strings.Join(top, "\n")
	}

	left := p.list.View()
	if len(p.list.Items()) == 0 {
		left = styleMuted().Render("No teams yet. Press n to add one.")
	}
	right := p.rows.View()
	if len(p.rows.Items()) == 0 {
		right = styleMuted().Render("No members on this team.")
	}
	paneStyle := lipgloss.NewStyle().PaddingLeft(1)
	leftStyle := paneStyle.Width(teamsPaneW + 1)
	rightStyle := paneStyle.Width(max(width-teamsPaneW-2, 10))
	if p.focus == focusTeams {
		leftStyle = leftStyle.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorAccent)
	} else {
		rightStyle = rightStyle.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorAccent)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(left), rightStyle.Render(right))
	return strings.Join(append(top, body), "\n")
}
