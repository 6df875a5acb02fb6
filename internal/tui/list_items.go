package tui

import (
	"fmt"
	"strings"

	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

type memberItem struct {
	row model.RosterRow
}

func (i memberItem) FilterValue() string { return i.row.Member.FullName() }
func (i memberItem) dimmed() bool        { return i.row.Bucket == model.BucketInactive }

func (i memberItem) Title() string {
	team, role := "", ""
	if a := i.row.Assignment; a != nil {
		team, role = a.TeamName, a.RoleName
		if a.SubteamName != "" {
			role += " / " + a.SubteamName
		}
	}
	return columns([]int{22, 12, 10}, i.row.Member.FullName(), renderBucket(i.row.Bucket), team, role)
}

func renderBucket(b model.Bucket) string {
	c := colorBucketNone
	switch b {
	case model.BucketActive:
		c = colorBucketActive
	case model.BucketInactive:
		c = colorBucketInactive
	}
	return lipgloss.NewStyle().Foreground(c).Render(b.Label())
}

type teamItem struct {
	team model.Team
}

func (i teamItem) FilterValue() string { return i.team.Name }
func (i teamItem) dimmed() bool        { return !i.team.IsActive }

func (i teamItem) Title() string {
	if i.team.Description == "" {
		return i.team.Name
	}
	return columns([]int{14}, i.team.Name, styleMuted().Render(i.team.Description))
}

type projectItem struct {
	project model.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }
func (i projectItem) Title() string       { return i.project.Name }

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) dimmed() bool        { return i.task.Status == model.TaskCompleted }

func (i taskItem) Title() string {
	t := i.task
	return columns([]int{12, 7, 7}, string(t.Status), string(t.Priority), string(t.Difficulty), t.Title)
}

type alumniItem struct {
	alumni model.Alumni
}

func (i alumniItem) FilterValue() string {
	return strings.TrimSpace(i.alumni.FirstName + " " + i.alumni.LastName)
}

func (i alumniItem) Title() string {
	a := i.alumni
	last := strings.Trim(a.LastTeam+" / "+a.LastRole, " /")
	return columns([]int{22, 6, 22}, i.FilterValue(), fmt.Sprint(a.GraduationYear), last, a.Employer)
}

type entryItem struct {
	entry journal.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Action }

func (i entryItem) Title() string {
	e := i.entry
	outcome := string(e.Outcome)
	if e.Outcome == journal.OutcomeError {
		outcome = lipgloss.NewStyle().Foreground(colorErrorFg).Render(outcome)
	}
	return columns([]int{19, 14, 16, 5}, e.At.Local().Format("2006-01-02 15:04:05"), e.Action, e.Target, outcome, e.Message)
}

// setItems replaces the items of l and keeps the cursor on the row with the
// same key when it is still present.
func setItems(l *list.Model, items []list.Item, key func(list.Item) string) {
	cur := ""
	if sel := l.SelectedItem(); sel != nil {
		cur = key(sel)
	}
	_ = l.SetItems(items)
	if cur == "" {
		return
	}
	for i, it := range items {
		if key(it) == cur {
			l.Select(i)
			return
		}
	}
}

func itemKey(it list.Item) string {
	switch it := it.(type) {
	case memberItem:
		return it.row.Key()
	case teamItem:
		return model.IDKey(it.team.ID)
	case projectItem:
		return model.IDKey(it.project.ID)
	case taskItem:
		return it.task.Key()
	case alumniItem:
		return model.IDKey(it.alumni.ID)
	case entryItem:
		return it.entry.ID
	}
	return ""
}
