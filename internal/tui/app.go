package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"clubhub-cli/internal/bus"
	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/nav"
	"clubhub-cli/internal/roster"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// Backend is everything the TUI reads and writes. *api.Client implements it.
type Backend interface {
	mutate.Backend
	roster.Source
	roster.TaskSource
	roster.TeamSource
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListSubteams(ctx context.Context, teamID int64) ([]model.Subteam, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListAlumni(ctx context.Context) ([]model.Alumni, error)
}

// refData is lookup data for forms and filters.
type refData struct {
	teams    []model.Team
	roles    []model.Role
	subteams map[int64][]model.Subteam
}

func (r refData) teamName(id int64) string {
	for _, t := range r.teams {
		if t.ID == id {
			return t.Name
		}
	}
	return fmt.Sprintf("team %d", id)
}

type appModel struct {
	ctx     context.Context
	backend Backend
	journal *journal.Journal
	log     *slog.Logger
	clock   nav.Clock
	// after schedules msg to be delivered after d; tests replace it.
	after func(d time.Duration, msg tea.Msg) tea.Cmd

	width  int
	height int

	nav       *nav.Controller
	navSeq    int
	hover     hoverState
	flyoutSel int

	requests *bus.Bus[pageRequest]

	page page
	ref  refData

	members  *membersPage
	teams    *teamsPage
	projects *projectsPage
	alumni   *alumniPage
	history  *historyPage

	minibufferText string
	minibufferSeq  int
}

func newAppModel(opts Options) (appModel, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	clock := opts.clock
	if clock == nil {
		clock = systemClock{}
	}
	navOpts := []nav.Option{nav.WithClock(clock), nav.WithLogger(log)}
	if opts.CloseDelay > 0 {
		navOpts = append(navOpts, nav.WithCloseDelay(opts.CloseDelay))
	}
	if opts.CollapseDelay > 0 {
		navOpts = append(navOpts, nav.WithCollapseDelay(opts.CollapseDelay))
	}
	ctl, err := nav.NewController(navItems(), navOpts...)
	if err != nil {
		return appModel{}, err
	}

	var backend Backend
	if opts.Client != nil {
		backend = opts.Client
	}
	if opts.backend != nil {
		backend = opts.backend
	}
	if backend == nil {
		return appModel{}, fmt.Errorf("tui: no API client")
	}

	m := appModel{
		ctx:      context.Background(),
		backend:  backend,
		journal:  opts.Journal,
		log:      log,
		clock:    clock,
		after:    tickAfter,
		width:    100,
		height:   30,
		nav:      ctl,
		hover:    hoverState{item: -1},
		requests: bus.New[pageRequest](),
		page:     pageMembers,
		members:  newMembersPage(backend, log),
		teams:    newTeamsPage(backend, log),
		projects: newProjectsPage(backend, log),
		alumni:   newAlumniPage(backend, log),
		history:  &historyPage{list: newList("History", nil)},
	}
	if opts.after != nil {
		m.after = opts.after
	}

	teams := m.teams
	m.requests.Subscribe(func(r pageRequest) {
		if r.Page == pageTeams && r.Modal == requestNewTeam {
			teams.openNewTeam()
		}
	})

	m.restoreUIState()
	m.resizeLists()
	return m, nil
}

func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadRefData(), m.enterPage())
}

func (m appModel) loadRefData() tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		var msg refDataMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			teams, err := b.ListTeams(gctx)
			msg.teams = teams
			return err
		})
		g.Go(func() error {
			roles, err := b.ListRoles(gctx)
			msg.roles = roles
			return err
		})
		if msg.err = g.Wait(); msg.err != nil {
			return msg
		}

		// Subteams are per team; fetch them all so role changes can offer them.
		subs := make([][]model.Subteam, len(msg.teams))
		g, gctx = errgroup.WithContext(ctx)
		for i, t := range msg.teams {
			g.Go(func() error {
				s, err := b.ListSubteams(gctx, t.ID)
				subs[i] = s
				return err
			})
		}
		msg.err = g.Wait()
		msg.subteams = make(map[int64][]model.Subteam, len(msg.teams))
		for i, t := range msg.teams {
			msg.subteams[t.ID] = subs[i]
		}
		return msg
	}
}

// enterPage loads the current page's data if it has none yet.
func (m *appModel) enterPage() tea.Cmd {
	switch m.page {
	case pageTeams:
		return m.teams.ensure(m.ctx)
	case pageProjects:
		return m.projects.ensure(m.ctx)
	case pageAlumni:
		return m.alumni.ensure(m.ctx)
	case pageHistory:
		return m.loadHistory()
	default:
		return m.members.ensure(m.ctx)
	}
}

func (m *appModel) loadHistory() tea.Cmd {
	j, ctx := m.journal, m.ctx
	if j == nil {
		m.history.banner = "History is unavailable: the local journal could not be opened."
		return nil
	}
	return func() tea.Msg {
		entries, err := j.Recent(ctx, 200)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// submit runs a validated action off the UI goroutine against the list that
// owns the affected rows.
func (m *appModel) submit(p page, listName string, l executor, a mutate.Action) tea.Cmd {
	cmd := mutate.Command{Backend: m.backend, Action: a}
	if m.journal != nil {
		cmd.Observe = m.journal.Observer(m.log)
	}
	ctx, log := m.ctx, m.log
	return func() tea.Msg {
		err := l.Execute(ctx, cmd)
		if err != nil {
			log.Warn("mutation_failed", "action", a.Name(), "target", a.Target(), "error", err)
		} else {
			log.Info("mutation_ok", "action", a.Name(), "target", a.Target())
		}
		return mutationDoneMsg{page: p, list: listName, cmd: cmd, err: err}
	}
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSeq++
	return m.after(4*time.Second, minibufferClearMsg{seq: m.minibufferSeq})
}

// route handles a navigation href produced by the sidebar.
func (m *appModel) route(href string) tea.Cmd {
	u, err := url.Parse(href)
	if err != nil {
		return m.showMinibuffer("Unknown page: " + href)
	}
	m.log.Debug("tui_route", "href", href)

	switch u.Path {
	case "/members":
		m.page = pageMembers
		key := m.members.filter
		key.Status = ""
		if s := u.Query().Get("status"); s != "" {
			if b, err := model.ParseBucket(s); err == nil {
				key.Status = b
			}
		} else {
			key.TeamID = 0
		}
		return m.members.load(m.ctx, key)
	case "/teams":
		m.page = pageTeams
		return m.teams.ensure(m.ctx)
	case "/teams/new":
		m.page = pageTeams
		cmd := m.teams.ensure(m.ctx)
		if n := m.requests.Publish(pageRequest{Page: pageTeams, Modal: requestNewTeam}); n == 0 {
			m.log.Warn("tui_request_unhandled", "modal", requestNewTeam)
		}
		return cmd
	case "/projects":
		m.page = pageProjects
		return m.projects.ensure(m.ctx)
	case "/alumni":
		m.page = pageAlumni
		return m.alumni.ensure(m.ctx)
	case "/history":
		m.page = pageHistory
		return m.loadHistory()
	}
	return m.showMinibuffer("Unknown page: " + href)
}

func (m *appModel) restoreUIState() {
	if m.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, 2*time.Second)
	defer cancel()
	st, err := m.journal.LoadUIState(ctx)
	if err != nil || st == nil {
		return
	}
	if p, ok := parsePage(st.Page); ok {
		m.page = p
	}
	m.members.filter.TeamID = st.MemberTeamID
	if b, err := model.ParseBucket(st.MemberStatus); err == nil {
		m.members.filter.Status = b
	}
	m.teams.selectedTeamID = st.TeamID
	m.projects.selectedProjectID = st.ProjectID
}

func (m appModel) saveUIState() {
	if m.journal == nil {
		return
	}
	st := &journal.UIState{
		Page:         m.page.String(),
		MemberTeamID: m.members.filter.TeamID,
		MemberStatus: string(m.members.filter.Status),
		TeamID:       m.teams.selectedTeamID,
		ProjectID:    m.projects.selectedProjectID,
	}
	ctx, cancel := context.WithTimeout(m.ctx, 2*time.Second)
	defer cancel()
	if err := m.journal.SaveUIState(ctx, st); err != nil {
		m.log.Warn("tui_state_save_failed", "error", err)
	}
}

func (m *appModel) resizeLists() {
	w := max(m.width-sidebarCollapsedW-2, 20)
	h := max(m.height-6, 4)
	m.members.resize(w, h)
	m.teams.resize(w, h)
	m.projects.resize(w, h)
	m.alumni.list.SetSize(w, h)
	m.history.list.SetSize(w, h)
}

// modalOpen reports whether the current page has a modal taking keyboard input.
func (m appModel) modalOpen() bool {
	switch m.page {
	case pageMembers:
		return m.members.form != nil
	case pageTeams:
		return m.teams.form != nil
	case pageProjects:
		return m.projects.confirmDelete != 0
	}
	return false
}

func (m appModel) View() string {
	w, h := m.width, m.height
	contentW := max(w-sidebarCollapsedW, 0)

	var body string
	switch m.page {
	case pageTeams:
		body = m.teams.view(contentW, h-3)
	case pageProjects:
		body = m.projects.view(contentW, h-3)
	case pageAlumni:
		body = m.alumni.view()
	case pageHistory:
		body = m.history.view()
	default:
		body = m.members.view(contentW, m.ref)
	}

	header := styleHeading().Render(m.page.title())
	if sub := m.pageSubtitle(); sub != "" {
		header += "  " + styleMuted().Render(sub)
	}
	footer := styleMuted().Render(m.helpText())
	if m.minibufferText != "" {
		footer = m.minibufferText
	}
	content := strings.Join([]string{" " + header, "", body}, "\n")
	contentLines := normalizePane(content, contentW, h-1)
	contentLines = append(contentLines, fitWidth(" "+footer, contentW))

	sidebar := normalizePane(m.renderSidebar(h), sidebarCollapsedW, h)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = sidebar[i] + contentLines[i]
	}

	st := m.nav.State()
	if st.Expanded {
		overlay(lines, normalizePane(m.renderSidebar(h), sidebarExpandedW, h), 0, 0)
	}
	if _, open := st.Flyout(); open {
		overlay(lines, m.renderFlyout(), sidebarWidth(st), st.AnchorOffset)
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(strings.Join(lines, "\n"))
}

func (m appModel) pageSubtitle() string {
	switch m.page {
	case pageMembers:
		return m.members.describeFilter(m.ref)
	case pageTeams:
		if m.teams.selectedTeamID != 0 {
			return m.ref.teamName(m.teams.selectedTeamID)
		}
	case pageProjects:
		if p, ok := m.projects.selectedProject(); ok {
			return p.Name
		}
	}
	return ""
}

func (m appModel) helpText() string {
	common := "1-5: sidebar   r: reload   q: quit"
	switch m.page {
	case pageMembers:
		return "t: team  f: status  a: assign  x: transfer  o: role  s: status  e: edit   " + common
	case pageTeams:
		return "tab: pane  enter: open  n: new team  s: toggle status   " + common
	case pageProjects:
		return "tab: pane  enter: open  s/p/d: cycle status/priority/difficulty  X: delete   " + common
	}
	return common
}
