package tui

import (
	"context"
	"fmt"
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

type membersPage struct {
	dir    *roster.Directory
	list   list.Model
	filter roster.Key
	// loading is set between Begin and the matching Apply.
	loading bool
	// stale is set when another page changed memberships.
	stale  bool
	banner string
	form   *form
	width  int
}

func newMembersPage(src roster.Source, log *slog.Logger) *membersPage {
	return &membersPage{
		dir:  roster.NewDirectory(src, log),
		list: newList("Members", nil),
	}
}

func (p *membersPage) resize(w, h int) {
	p.width = w
	p.list.SetSize(w, h-1)
}

func (p *membersPage) ensure(ctx context.Context) tea.Cmd {
	if !p.stale && (p.dir.Loaded() || p.loading) {
		return nil
	}
	return p.load(ctx, p.filter)
}

// load switches the directory to k. A fetch still in flight for an earlier
// filter is dropped when it arrives.
func (p *membersPage) load(ctx context.Context, k roster.Key) tea.Cmd {
	p.filter = k
	p.loading = true
	p.stale = false
	return fetch(ctx, p.dir, k, func(res reconcile.Result[roster.Key, model.RosterRow]) tea.Msg {
		return membersFetchedMsg{res: res}
	})
}

func (p *membersPage) applyFetch(res reconcile.Result[roster.Key, model.RosterRow]) {
	if !p.dir.Apply(res) {
		return
	}
	p.loading = false
	p.banner = ""
	if err := p.dir.Err(); err != nil {
		p.banner = "Could not load members: " + mutate.Friendly(err).Error()
	}
	p.sync()
}

func (p *membersPage) sync() {
	rows := p.dir.Rows()
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, memberItem{row: r})
	}
	setItems(&p.list, items, itemKey)
}

func (p *membersPage) selected() (model.RosterRow, bool) {
	it, ok := p.list.SelectedItem().(memberItem)
	if !ok {
		return model.RosterRow{}, false
	}
	return it.row, true
}

func (p *membersPage) settle(ctx context.Context, msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		p.banner = msg.err.Error()
	} else {
		p.banner = ""
	}
	if !p.dir.Settle(msg.cmd, msg.err) {
		p.sync()
		return nil
	}
	return p.load(ctx, p.filter)
}

func (p *membersPage) describeFilter(ref refData) string {
	var parts []string
	if p.filter.Status != "" {
		parts = append(parts, p.filter.Status.Label())
	}
	if p.filter.TeamID != 0 && p.filter.Shape() != roster.ShapeUnassigned {
		parts = append(parts, ref.teamName(p.filter.TeamID))
	}
	if len(parts) == 0 {
		return "all members"
	}
	return strings.Join(parts, " · ")
}

// nextTeam cycles the team filter: none, then each team in order.
func nextTeam(cur int64, teams []model.Team) int64 {
	if len(teams) == 0 {
		return 0
	}
	if cur == 0 {
		return teams[0].ID
	}
	for i, t := range teams {
		if t.ID == cur {
			if i+1 < len(teams) {
				return teams[i+1].ID
			}
			return 0
		}
	}
	return 0
}

// nextStatus cycles the status filter: none, unassigned, active, inactive.
func nextStatus(cur model.Bucket) model.Bucket {
	if cur == "" {
		return model.Buckets[0]
	}
	for i, b := range model.Buckets {
		if b == cur && i+1 < len(model.Buckets) {
			return model.Buckets[i+1]
		}
	}
	return ""
}

func (m *appModel) updateMembers(msg tea.KeyMsg) tea.Cmd {
	p := m.members
	if p.form != nil {
		res, a := p.form.update(msg)
		switch res {
		case formCanceled:
			p.form = nil
		case formSubmitted:
			p.form = nil
			return m.submitMemberAction(a)
		}
		return nil
	}

	switch msg.String() {
	case "t":
		k := p.filter
		k.TeamID = nextTeam(k.TeamID, m.ref.teams)
		return p.load(m.ctx, k)
	case "f":
		k := p.filter
		k.Status = nextStatus(k.Status)
		return p.load(m.ctx, k)
	case "esc":
		if p.filter != (roster.Key{}) {
			return p.load(m.ctx, roster.Key{})
		}
		return nil
	}

	row, ok := p.selected()
	if !ok {
		var cmd tea.Cmd
		p.list, cmd = p.list.Update(msg)
		return cmd
	}
	switch msg.String() {
	case "a":
		if row.Bucket != model.BucketUnassigned {
			return m.showMinibuffer("Only unassigned members can be assigned; use x to transfer.")
		}
		p.form = m.assignForm(row)
		return nil
	case "x":
		if row.Assignment == nil {
			return m.showMinibuffer("This member has no team to transfer from.")
		}
		p.form = m.transferForm(row)
		return nil
	case "o":
		if row.Assignment == nil {
			return m.showMinibuffer("Assign the member to a team first.")
		}
		p.form = m.roleForm(row)
		return nil
	case "s":
		if row.Assignment == nil {
			return m.showMinibuffer("Unassigned members have no status to change.")
		}
		p.form = statusForm(row)
		return nil
	case "e":
		p.form = memberEditForm(row)
		return nil
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

// submitMemberAction sends a form's action. Member edits are patched into the
// displayed row first and only refetched if the server rejects them.
func (m *appModel) submitMemberAction(a mutate.Action) tea.Cmd {
	p := m.members
	if um, ok := a.(mutate.UpdateMember); ok {
		for field, v := range um.Fields {
			if err := roster.PatchMember(p.dir, um.MemberID, field, v); err != nil {
				m.log.Debug("member_patch_skipped", "field", field, "error", err)
			}
		}
		p.sync()
	}
	return m.submit(pageMembers, "", p.dir, a)
}

func teamChoices(teams []model.Team, exclude int64) []choice {
	out := []choice{{label: "(select team)"}}
	for _, t := range teams {
		if t.ID == exclude || !t.IsActive {
			continue
		}
		out = append(out, choice{id: t.ID, label: t.Name})
	}
	return out
}

func roleChoices(ref refData) []choice {
	out := []choice{{label: "(select role)"}}
	for _, r := range ref.roles {
		label := r.Name
		if r.TeamID != nil {
			label += " (" + ref.teamName(*r.TeamID) + ")"
		}
		out = append(out, choice{id: r.ID, label: label})
	}
	return out
}

func (m *appModel) assignForm(row model.RosterRow) *form {
	memberID := row.MemberID
	return newForm("Assign "+row.Member.FullName(), func(f *form) mutate.Action {
		return mutate.Assign{
			MemberID: memberID,
			TeamID:   f.choiceID("teamId"),
			RoleID:   f.choiceID("roleId"),
			Reason:   f.text("reason"),
		}
	},
		choiceField("teamId", "Team", teamChoices(m.ref.teams, 0), m.members.filter.TeamID),
		choiceField("roleId", "Role", roleChoices(m.ref), 0),
		textField("reason", "Reason", "", 500),
	)
}

func (m *appModel) transferForm(row model.RosterRow) *form {
	a := row.Assignment
	return newForm(fmt.Sprintf("Transfer %s from %s", row.Member.FullName(), a.TeamName), func(f *form) mutate.Action {
		return mutate.Transfer{
			AssignmentID: a.ID,
			NewTeamID:    f.choiceID("newTeamId"),
			NewRoleID:    f.choiceID("newRoleId"),
			Reason:       f.text("reason"),
		}
	},
		choiceField("newTeamId", "New team", teamChoices(m.ref.teams, a.TeamID), 0),
		choiceField("newRoleId", "New role", roleChoices(m.ref), a.RoleID),
		textField("reason", "Reason", "", 500),
	)
}

func (m *appModel) roleForm(row model.RosterRow) *form {
	a := row.Assignment
	subs := []choice{{label: "(none)"}}
	for _, s := range m.ref.subteams[a.TeamID] {
		subs = append(subs, choice{id: s.ID, label: s.Name})
	}
	var curSub int64
	if a.SubteamID != nil {
		curSub = *a.SubteamID
	}
	types := make([]string, 0, len(mutate.RoleChangeTypes))
	for _, ct := range mutate.RoleChangeTypes {
		types = append(types, string(ct))
	}

	f := newForm("Change role of "+row.Member.FullName(), func(f *form) mutate.Action {
		out := mutate.ChangeRole{
			AssignmentID: a.ID,
			NewRoleID:    f.choiceID("newRoleId"),
			ChangeType:   mutate.ChangeType(f.choiceValue("changeType")),
			Reason:       f.text("reason"),
		}
		if id := f.choiceID("newSubteamId"); id != 0 {
			out.NewSubteamID = &id
		}
		return out
	},
		choiceField("newRoleId", "New role", roleChoices(m.ref), a.RoleID),
		choiceField("newSubteamId", "Subteam", subs, curSub),
		choiceField("changeType", "Change type", valueChoices(types...), 0),
		textField("reason", "Reason", "", 500),
	)
	f.setChoice("changeType", func(c choice) bool { return c.value == string(mutate.ChangeLateral) })
	return f
}

func statusForm(row model.RosterRow) *form {
	a := row.Assignment
	title := "Mark " + row.Member.FullName() + " inactive on " + a.TeamName
	if !a.IsActive {
		title = "Reactivate " + row.Member.FullName() + " on " + a.TeamName
	}
	return newForm(title, func(f *form) mutate.Action {
		return mutate.StatusChange(a.ID, !a.IsActive, f.text("reason"))
	},
		textField("reason", "Reason", "", 500),
	)
}

func memberEditForm(row model.RosterRow) *form {
	mem := row.Member
	memberID := row.MemberID
	orig := map[string]string{
		"firstName": mem.FirstName,
		"lastName":  mem.LastName,
		"email":     mem.Email,
		"phone":     mem.Phone,
		"major":     mem.Major,
	}
	return newForm("Edit "+mem.FullName(), func(f *form) mutate.Action {
		fields := map[string]any{}
		for _, k := range []string{"firstName", "lastName", "email", "phone", "major"} {
			// Only changed fields are sent.
			if v := f.text(k); v != orig[k] {
				fields[k] = v
			}
		}
		return mutate.UpdateMember{MemberID: memberID, Fields: fields}
	},
		textField("firstName", "First name", mem.FirstName, 80),
		textField("lastName", "Last name", mem.LastName, 80),
		textField("email", "Email", mem.Email, 120),
		textField("phone", "Phone", mem.Phone, 40),
		textField("major", "Major", mem.Major, 80),
	)
}

func (p *membersPage) view(width int, ref refData) string {
	if p.form != nil {
		return lipgloss.Place(width, p.list.Height(), lipgloss.Center, lipgloss.Center, p.form.view(width))
	}

	var parts []string
	if p.banner != "" {
		parts = append(parts, " "+styleBanner().Render(p.banner))
	}
	switch {
	case p.loading && !p.dir.Loaded():
		parts = append(parts, styleMuted().Render(" Loading members"+glyphEllipsis()))
	case len(p.list.Items()) == 0 && p.dir.Err() == nil:
		parts = append(parts, styleMuted().Render(" No members match "+p.describeFilter(ref)+"."))
	default:
		header := styleMuted().Render(columns([]int{22, 12, 10}, "Name", "Status", "Team", "Role"))
		parts = append(parts, " "+header, p.list.View())
	}
	return strings.Join(parts, "\n")
}
