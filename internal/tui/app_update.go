package tui

import (
	"clubhub-cli/internal/mutate"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case navTickMsg:
		// Only the most recently scheduled tick is live.
		if msg.seq != m.navSeq {
			return m, nil
		}
		m.nav.Tick()
		return m, m.scheduleNavTick()

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case refDataMsg:
		if msg.err != nil {
			m.log.Warn("tui_refdata_failed", "error", msg.err)
			return m, m.showMinibuffer("Could not load teams and roles: " + msg.err.Error())
		}
		m.ref = refData{teams: msg.teams, roles: msg.roles, subteams: msg.subteams}
		return m, nil

	case membersFetchedMsg:
		m.members.applyFetch(msg.res)
		return m, nil

	case teamsFetchedMsg:
		return m, m.teams.applyTeams(m.ctx, msg.res)

	case teamRosterFetchedMsg:
		m.teams.applyRoster(msg.res)
		return m, nil

	case projectsFetchedMsg:
		return m, m.projects.applyProjects(m.ctx, msg.res)

	case tasksFetchedMsg:
		m.projects.applyTasks(msg.res)
		return m, nil

	case alumniFetchedMsg:
		m.alumni.applyFetch(msg.res)
		return m, nil

	case historyLoadedMsg:
		m.history.apply(msg)
		return m, nil

	case mutationDoneMsg:
		return m, m.settle(msg)

	case tea.MouseMsg:
		switch {
		case msg.Action == tea.MouseActionMotion:
			m.pointerMoved(msg.X, msg.Y)
			return m, m.scheduleNavTick()
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			cmd := m.pointerClicked(msg.X, msg.Y)
			return m, tea.Batch(cmd, m.scheduleNavTick())
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.saveUIState()
		return m, tea.Quit
	}

	// An open modal owns the keyboard.
	if m.modalOpen() {
		return m, m.updatePageKey(msg)
	}

	if cmd, ok := m.handleNavKey(msg); ok {
		return m, tea.Batch(cmd, m.scheduleNavTick())
	}

	switch msg.String() {
	case "q":
		m.saveUIState()
		return m, tea.Quit
	case "r":
		return m, tea.Batch(m.loadRefData(), m.reloadPage())
	}
	return m, m.updatePageKey(msg)
}

func (m *appModel) updatePageKey(msg tea.KeyMsg) tea.Cmd {
	switch m.page {
	case pageTeams:
		return m.updateTeams(msg)
	case pageProjects:
		return m.updateProjects(msg)
	case pageAlumni:
		var cmd tea.Cmd
		m.alumni.list, cmd = m.alumni.list.Update(msg)
		return cmd
	case pageHistory:
		var cmd tea.Cmd
		m.history.list, cmd = m.history.list.Update(msg)
		return cmd
	default:
		return m.updateMembers(msg)
	}
}

func (m *appModel) reloadPage() tea.Cmd {
	switch m.page {
	case pageTeams:
		return m.teams.reload(m.ctx)
	case pageProjects:
		return m.projects.reload(m.ctx)
	case pageAlumni:
		return m.alumni.reload(m.ctx)
	case pageHistory:
		return m.loadHistory()
	default:
		return m.members.load(m.ctx, m.members.filter)
	}
}

// settle applies the refetch rule of the list a mutation ran against and
// surfaces any error on the owning page.
func (m *appModel) settle(msg mutationDoneMsg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.page {
	case pageTeams:
		cmd = m.teams.settle(m.ctx, msg)
	case pageProjects:
		cmd = m.projects.settle(m.ctx, msg)
	default:
		cmd = m.members.settle(m.ctx, msg)
	}
	if msg.err != nil {
		return cmd
	}
	m.markRostersStale(msg.page)
	cmds := []tea.Cmd{cmd, m.showMinibuffer(doneText(msg))}
	if m.page == pageHistory {
		cmds = append(cmds, m.loadHistory())
	}
	if _, ok := msg.cmd.Action.(mutate.CreateTeam); ok {
		cmds = append(cmds, m.loadRefData())
	}
	return tea.Batch(cmds...)
}

func doneText(msg mutationDoneMsg) string {
	switch a := msg.cmd.Action.(type) {
	case mutate.Assign:
		return "Member assigned"
	case mutate.Transfer:
		return "Member transferred"
	case mutate.ChangeRole:
		return "Role changed"
	case mutate.UpdateStatus:
		if a.IsActive {
			return "Member reactivated"
		}
		return "Member marked inactive"
	case mutate.UpdateMember:
		return "Member updated"
	case mutate.UpdateTask:
		return "Task updated"
	case mutate.DeleteTask:
		return "Task deleted"
	case mutate.CreateTeam:
		return "Team " + a.TeamName + " created"
	}
	return "Saved"
}

// markRostersStale flags the member lists of pages other than origin so they
// refetch the next time they are shown.
func (m *appModel) markRostersStale(origin page) {
	if origin != pageMembers && m.members.dir.Loaded() {
		m.members.stale = true
	}
	if origin != pageTeams && m.teams.teams.Loaded() {
		m.teams.stale = true
	}
}
