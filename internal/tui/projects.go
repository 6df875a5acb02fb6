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

const projectsPaneW = 24

type projectSource interface {
	roster.TaskSource
	ListProjects(ctx context.Context) ([]model.Project, error)
}

type projectsPage struct {
	projects *reconcile.List[struct{}, model.Project]
	list     list.Model
	board    *roster.TaskBoard
	tasks    list.Model
	// tasksFocused is true when keys go to the task list.
	tasksFocused bool

	selectedProjectID int64
	loading           bool
	banner            string
	// confirmDelete is the id of the task awaiting delete confirmation.
	confirmDelete int64
	width         int
}

func newProjectsPage(src projectSource, log *slog.Logger) *projectsPage {
	load := func(ctx context.Context, _ struct{}) ([]model.Project, error) {
		ps, err := src.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return ps, nil
	}
	return &projectsPage{
		projects: reconcile.New(load, reconcile.Options[model.Project]{
			Key:      func(p model.Project) string { return model.IDKey(p.ID) },
			Classify: mutate.Friendly,
			Logger:   log,
		}),
		list:  newList("Projects", nil),
		board: roster.NewTaskBoard(src, log),
		tasks: newList("Tasks", nil),
	}
}

func (p *projectsPage) resize(w, h int) {
	p.width = w
	p.list.SetSize(projectsPaneW, h-1)
	// The lower part of the task pane previews the selected description.
	p.tasks.SetSize(max(w-projectsPaneW-2, 10), max((h-1)*2/3, 3))
}

func (p *projectsPage) ensure(ctx context.Context) tea.Cmd {
	if p.projects.Loaded() || p.loading {
		return nil
	}
	return p.reload(ctx)
}

func (p *projectsPage) reload(ctx context.Context) tea.Cmd {
	p.loading = true
	return fetch(ctx, p.projects, struct{}{}, func(res reconcile.Result[struct{}, model.Project]) tea.Msg {
		return projectsFetchedMsg{res: res}
	})
}

func (p *projectsPage) applyProjects(ctx context.Context, res reconcile.Result[struct{}, model.Project]) tea.Cmd {
	if !p.projects.Apply(res) {
		return nil
	}
	p.loading = false
	p.banner = ""
	if err := p.projects.Err(); err != nil {
		p.banner = "Could not load projects: " + mutate.Friendly(err).Error()
	}
	ps := p.projects.Rows()
	items := make([]list.Item, 0, len(ps))
	for _, pr := range ps {
		items = append(items, projectItem{project: pr})
	}
	setItems(&p.list, items, itemKey)
	if len(ps) == 0 {
		p.selectedProjectID = 0
		return nil
	}
	if _, ok := p.selectedProject(); !ok {
		p.selectedProjectID = ps[0].ID
	}
	for i, pr := range ps {
		if pr.ID == p.selectedProjectID {
			p.list.Select(i)
		}
	}
	return p.loadTasks(ctx)
}

func (p *projectsPage) loadTasks(ctx context.Context) tea.Cmd {
	return fetch(ctx, p.board, p.selectedProjectID, func(res reconcile.Result[int64, model.Task]) tea.Msg {
		return tasksFetchedMsg{res: res}
	})
}

func (p *projectsPage) applyTasks(res reconcile.Result[int64, model.Task]) {
	if !p.board.Apply(res) {
		return
	}
	if err := p.board.Err(); err != nil {
		p.banner = "Could not load tasks: " + mutate.Friendly(err).Error()
	}
	p.syncTasks()
}

func (p *projectsPage) syncTasks() {
	ts := p.board.Rows()
	items := make([]list.Item, 0, len(ts))
	for _, t := range ts {
		items = append(items, taskItem{task: t})
	}
	setItems(&p.tasks, items, itemKey)
}

func (p *projectsPage) selectedProject() (model.Project, bool) {
	if p.selectedProjectID == 0 {
		return model.Project{}, false
	}
	return p.projects.Find(model.IDKey(p.selectedProjectID))
}

func (p *projectsPage) selectedTask() (model.Task, bool) {
	it, ok := p.tasks.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// settle refetches the board after a failed field edit or a delete.
func (p *projectsPage) settle(ctx context.Context, msg mutationDoneMsg) tea.Cmd {
	p.banner = ""
	if msg.err != nil {
		p.banner = msg.err.Error()
	}
	if p.board.Settle(msg.cmd, msg.err) {
		return p.loadTasks(ctx)
	}
	return nil
}

var cycleKeys = map[string]string{
	"s": "status",
	"p": "priority",
	"d": "difficulty",
}

func taskFieldValue(t model.Task, field string) string {
	switch field {
	case "status":
		return string(t.Status)
	case "priority":
		return string(t.Priority)
	case "difficulty":
		return string(t.Difficulty)
	}
	return ""
}

func (m *appModel) updateProjects(msg tea.KeyMsg) tea.Cmd {
	p := m.projects
	if p.confirmDelete != 0 {
		id := p.confirmDelete
		switch msg.String() {
		case "y", "Y":
			p.confirmDelete = 0
			return m.submit(pageProjects, "tasks", p.board, mutate.DeleteTask{TaskID: id})
		case "n", "N", "esc", "ctrl+g":
			p.confirmDelete = 0
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		p.tasksFocused = !p.tasksFocused
		return nil
	}

	if !p.tasksFocused {
		if msg.String() == "enter" {
			it, ok := p.list.SelectedItem().(projectItem)
			if !ok {
				return nil
			}
			p.selectedProjectID = it.project.ID
			p.tasksFocused = true
			return p.loadTasks(m.ctx)
		}
		var cmd tea.Cmd
		p.list, cmd = p.list.Update(msg)
		return cmd
	}

	task, ok := p.selectedTask()
	if field, cycle := cycleKeys[msg.String()]; cycle && ok {
		next, _ := mutate.NextValue(field, taskFieldValue(task, field))
		// The row shows the new value before the server answers.
		if err := p.board.ApplyFieldPatch(task.Key(), field, next); err != nil {
			m.log.Debug("task_patch_skipped", "field", field, "error", err)
		}
		p.syncTasks()
		return m.submit(pageProjects, "tasks", p.board, mutate.UpdateTask{
			TaskID: task.ID,
			Fields: map[string]any{field: next},
		})
	}
	if msg.String() == "X" && ok {
		p.confirmDelete = task.ID
		return nil
	}

	var cmd tea.Cmd
	p.tasks, cmd = p.tasks.Update(msg)
	return cmd
}

func (p *projectsPage) view(width, height int) string {
	if p.confirmDelete != 0 {
		title := "Delete task"
		body := "Delete this task?"
		if t, ok := p.board.Find(model.IDKey(p.confirmDelete)); ok {
			body = fmt.Sprintf("Delete %q? This cannot be undone.", t.Title)
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, renderConfirmModal(width, title, body))
	}

	var top []string
	if p.banner != "" {
		top = append(top, " "+styleBanner().Render(p.banner))
	}
	if p.loading && !p.projects.Loaded() {
		top = append(top, styleMuted().Render(" Loading projects"+glyphEllipsis()))
		return strings.Join(top, "\n")
	}

	left := p.list.View()
	if len(p.list.Items()) == 0 {
		left = styleMuted().Render("No projects.")
	}

	rightW := max(width-projectsPaneW-2, 10)
	right := []string{
		styleMuted().Render(columns([]int{12, 7, 7}, "Status", "Prio", "Diff", "Title")),
		p.tasks.View(),
	}
	if len(p.tasks.Items()) == 0 {
		right = []string{styleMuted().Render("No tasks in this project.")}
	}
	if t, ok := p.selectedTask(); ok && strings.TrimSpace(t.Description) != "" {
		right = append(right, styleMuted().Render(strings.Repeat(glyphHRule(), rightW)))
		right = append(right, strings.TrimRight(renderMarkdown(t.Description, rightW), "\n"))
	}

	paneStyle := lipgloss.NewStyle().PaddingLeft(1)
	leftStyle := paneStyle.Width(projectsPaneW + 1)
	rightStyle := paneStyle.Width(rightW)
	if p.tasksFocused {
		rightStyle = rightStyle.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorAccent)
	} else {
		leftStyle = leftStyle.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorAccent)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(left), rightStyle.Render(strings.Join(right, "\n")))
	return strings.Join(append(top, body), "\n")
}
