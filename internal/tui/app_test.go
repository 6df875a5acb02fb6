package tui

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clubhub-cli/internal/api"
	"clubhub-cli/internal/devserver"
	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/nav"
	"clubhub-cli/internal/roster"
	"clubhub-cli/internal/testutil"

	tea "github.com/charmbracelet/bubbletea"
)

type timer struct {
	d   time.Duration
	msg tea.Msg
}

// harness drives an appModel against a dev server. Commands run
// synchronously; delayed messages are recorded instead of scheduled.
type harness struct {
	t      *testing.T
	m      appModel
	clock  *nav.ManualClock
	client *api.Client
	timers []timer
}

func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()
	ts := httptest.NewServer(devserver.New(devserver.Options{}).Handler())
	t.Cleanup(ts.Close)
	c, err := api.New(api.Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	h := &harness{t: t, clock: nav.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)), client: c}
	opts := Options{Client: c, Logger: testutil.NewTestLogger(t), clock: h.clock}
	opts.after = func(d time.Duration, msg tea.Msg) tea.Cmd {
		h.timers = append(h.timers, timer{d: d, msg: msg})
		return nil
	}
	for _, f := range configure {
		f(&opts)
	}
	m, err := newAppModel(opts)
	if err != nil {
		t.Fatalf("newAppModel: %v", err)
	}
	h.m = m
	h.run(m.Init())
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	mm, cmd := h.m.Update(msg)
	h.m = mm.(appModel)
	h.run(cmd)
}

// run executes cmd and everything it produces until the queue is empty.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			h.t.Fatalf("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			mm, next := h.m.Update(msg)
			h.m = mm.(appModel)
			queue = append(queue, next)
		}
	}
}

func (h *harness) keys(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// lastTick returns the most recently scheduled nav tick.
func (h *harness) lastTick() navTickMsg {
	h.t.Helper()
	for i := len(h.timers) - 1; i >= 0; i-- {
		if tick, ok := h.timers[i].msg.(navTickMsg); ok {
			return tick
		}
	}
	h.t.Fatalf("no nav tick scheduled")
	return navTickMsg{}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestSidebar_HoverOpensFlyoutAndLeaveClosesAfterDelay(t *testing.T) {
	h := newHarness(t)

	h.send(motion(1, itemRow(0)))
	st := h.m.nav.State()
	if !st.Expanded {
		t.Fatalf("expected sidebar to expand on hover")
	}
	if idx, open := st.Flyout(); !open || idx != 0 {
		t.Fatalf("expected Members flyout open; got %v %v", idx, open)
	}
	if st.AnchorOffset != itemRow(0) {
		t.Fatalf("expected flyout anchored at row %d; got %d", itemRow(0), st.AnchorOffset)
	}

	h.send(motion(60, 20))
	if _, open := h.m.nav.State().Flyout(); !open {
		t.Fatalf("expected flyout to stay open until the close delay passes")
	}
	first := h.lastTick()
	if got := h.timers[len(h.timers)-1].d; got != nav.DefaultCloseDelay {
		t.Fatalf("expected tick after %v; got %v", nav.DefaultCloseDelay, got)
	}

	h.clock.Advance(nav.DefaultCloseDelay)
	h.send(first)
	st = h.m.nav.State()
	if _, open := st.Flyout(); open {
		t.Fatalf("expected flyout closed after the close delay")
	}
	if !st.Expanded {
		t.Fatalf("expected sidebar still expanded before the collapse delay")
	}

	// A tick superseded by a later schedule does nothing.
	second := h.lastTick()
	h.clock.Advance(time.Second)
	h.send(first)
	if !h.m.nav.State().Expanded {
		t.Fatalf("expected stale tick to be ignored")
	}
	h.send(second)
	if h.m.nav.State().Expanded {
		t.Fatalf("expected sidebar collapsed after the collapse delay")
	}
}

func TestSidebar_MovingIntoFlyoutKeepsItOpen(t *testing.T) {
	h := newHarness(t)

	h.send(motion(1, itemRow(0)))
	h.send(motion(sidebarExpandedW+2, itemRow(0)+1))
	if !h.m.hover.flyout {
		t.Fatalf("expected pointer over flyout")
	}
	if _, ok := h.m.nav.NextDeadline(); ok {
		t.Fatalf("expected no pending timers while over the flyout")
	}

	h.clock.Advance(time.Second)
	if _, open := h.m.nav.State().Flyout(); !open {
		t.Fatalf("expected flyout to remain open")
	}
	if !strings.Contains(h.m.View(), "All members") {
		t.Fatalf("expected flyout children in view")
	}

	// Second child: Unassigned.
	h.send(click(sidebarExpandedW+2, itemRow(0)+2))
	st := h.m.nav.State()
	if _, open := st.Flyout(); open || st.Expanded {
		t.Fatalf("expected navigation to close and collapse the sidebar; got %+v", st)
	}
	if h.m.members.filter.Status != model.BucketUnassigned {
		t.Fatalf("expected unassigned filter; got %q", h.m.members.filter.Status)
	}
	if got := len(h.m.members.dir.Rows()); got != 4 {
		t.Fatalf("expected 4 unassigned members; got %d", got)
	}
}

func TestSidebar_DigitPinsFlyoutAndEscCloses(t *testing.T) {
	h := newHarness(t)

	h.keys("1")
	st := h.m.nav.State()
	if !st.Pinned {
		t.Fatalf("expected pinned flyout")
	}

	// Leaving does not close a pinned flyout.
	h.send(motion(1, itemRow(0)))
	h.send(motion(60, 20))
	h.clock.Advance(time.Second)
	h.m.nav.Tick()
	if _, open := h.m.nav.State().Flyout(); !open {
		t.Fatalf("expected pinned flyout to survive pointer leave")
	}

	h.keys("esc")
	st = h.m.nav.State()
	if _, open := st.Flyout(); open || st.Pinned {
		t.Fatalf("expected esc to dismiss the pinned flyout; got %+v", st)
	}
}

func TestSidebar_NewTeamRouteOpensModal(t *testing.T) {
	h := newHarness(t)

	h.keys("2", "down", "enter")
	if h.m.page != pageTeams {
		t.Fatalf("expected teams page; got %v", h.m.page)
	}
	if h.m.teams.form == nil || h.m.teams.form.title != "New team" {
		t.Fatalf("expected new team modal to be open")
	}

	h.keys("enter")
	if h.m.teams.form == nil {
		t.Fatalf("expected modal to stay open on validation error")
	}
	if got := h.m.teams.form.errors["name"]; got != "is required" {
		t.Fatalf("expected inline name error; got %q", got)
	}

	h.keys("Delta", "tab", "Field robotics", "enter")
	if h.m.teams.form != nil {
		t.Fatalf("expected modal closed after submit")
	}
	rows := h.m.teams.teams.Rows()
	if len(rows) != 4 || rows[3].Name != "Delta" {
		t.Fatalf("expected Delta appended after refetch; got %+v", rows)
	}
	if len(h.m.ref.teams) != 4 {
		t.Fatalf("expected lookup data reloaded; got %d teams", len(h.m.ref.teams))
	}
	if h.m.minibufferText != "Team Delta created" {
		t.Fatalf("unexpected minibuffer %q", h.m.minibufferText)
	}
}

func TestMembers_FilterChangeDropsStaleFetch(t *testing.T) {
	h := newHarness(t)
	if got := len(h.m.members.dir.Rows()); got != 12 {
		t.Fatalf("expected 12 members; got %d", got)
	}

	mm, toUnassigned := h.m.Update(keyMsg("f"))
	h.m = mm.(appModel)
	mm, toActive := h.m.Update(keyMsg("f"))
	h.m = mm.(appModel)

	h.run(toActive)
	if got := len(h.m.members.dir.Rows()); got != 6 {
		t.Fatalf("expected 6 active members; got %d", got)
	}
	h.run(toUnassigned)
	if h.m.members.filter.Status != model.BucketActive {
		t.Fatalf("expected active filter to remain; got %q", h.m.members.filter.Status)
	}
	for _, r := range h.m.members.dir.Rows() {
		if r.Bucket != model.BucketActive {
			t.Fatalf("stale unassigned rows were applied: %+v", r)
		}
	}
}

func TestMembers_AssignValidatesThenRefetches(t *testing.T) {
	h := newHarness(t)
	h.keys("f")
	if got := len(h.m.members.dir.Rows()); got != 4 {
		t.Fatalf("expected 4 unassigned; got %d", got)
	}

	h.keys("a")
	if h.m.members.form == nil {
		t.Fatalf("expected assign form")
	}
	h.keys("enter")
	f := h.m.members.form
	if f == nil {
		t.Fatalf("expected form to stay open")
	}
	if f.errors["teamId"] != "must be selected" || f.errors["roleId"] != "must be selected" {
		t.Fatalf("unexpected errors %+v", f.errors)
	}

	h.keys("right", "tab", "right", "enter")
	if h.m.members.form != nil {
		t.Fatalf("expected form closed")
	}
	if got := len(h.m.members.dir.Rows()); got != 3 {
		t.Fatalf("expected 3 unassigned after assign; got %d", got)
	}
	if h.m.minibufferText != "Member assigned" {
		t.Fatalf("unexpected minibuffer %q", h.m.minibufferText)
	}

	h.keys("f")
	if got := len(h.m.members.dir.Rows()); got != 7 {
		t.Fatalf("expected 7 active after assign; got %d", got)
	}
}

func TestTeams_RefetchesAfterAssignOnMembers(t *testing.T) {
	h := newHarness(t)
	h.run(h.m.route("/teams"))
	if h.m.teams.selectedTeamID != 1 {
		t.Fatalf("expected Alpha selected; got %d", h.m.teams.selectedTeamID)
	}
	if got := len(h.m.teams.roster.Rows()); got != 3 {
		t.Fatalf("expected 3 on Alpha; got %d", got)
	}

	h.run(h.m.route("/members?status=unassigned"))
	h.keys("a", "right", "tab", "right", "enter")
	if h.m.minibufferText != "Member assigned" {
		t.Fatalf("unexpected minibuffer %q", h.m.minibufferText)
	}
	if !h.m.teams.stale {
		t.Fatalf("expected teams page marked stale")
	}

	h.run(h.m.route("/teams"))
	if h.m.teams.stale {
		t.Fatalf("expected stale flag cleared by reload")
	}
	if got := len(h.m.teams.roster.Rows()); got != 4 {
		t.Fatalf("expected 4 on Alpha after revisit; got %d", got)
	}
}

func TestMembers_RefetchesAfterStatusChangeOnTeams(t *testing.T) {
	h := newHarness(t)
	h.keys("f", "f")
	if got := len(h.m.members.dir.Rows()); got != 6 {
		t.Fatalf("expected 6 active; got %d", got)
	}

	h.run(h.m.route("/teams"))
	h.keys("tab", "s", "enter")
	if h.m.teams.form != nil {
		t.Fatalf("expected status form closed; banner %q", h.m.teams.banner)
	}
	if !h.m.members.stale {
		t.Fatalf("expected members page marked stale")
	}

	h.run(h.m.route("/members?status=active"))
	if got := len(h.m.members.dir.Rows()); got != 5 {
		t.Fatalf("expected 5 active after leave; got %d", got)
	}
}

type conflictingBackend struct{ *api.Client }

func (conflictingBackend) Assign(context.Context, mutate.Assign) error {
	return errors.New("Member is already assigned to this team")
}

func TestMembers_AssignConflictShowsMessageAndKeepsRows(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.backend = conflictingBackend{o.Client} })
	h.keys("f")
	before := h.m.members.dir.Rows()

	h.keys("a", "right", "tab", "right", "enter")
	if got := h.m.members.banner; got != "This member is already on that team." {
		t.Fatalf("unexpected banner %q", got)
	}
	after := h.m.members.dir.Rows()
	if len(after) != len(before) || after[0].MemberID != before[0].MemberID {
		t.Fatalf("expected rows unchanged after failed structural mutation")
	}
	if !strings.Contains(h.m.View(), "already on that team") {
		t.Fatalf("expected banner in view")
	}
}

func TestMembers_AssignOnlyForUnassignedRows(t *testing.T) {
	h := newHarness(t)
	h.keys("f", "f")
	h.keys("a")
	if h.m.members.form != nil {
		t.Fatalf("expected no assign form for an active member")
	}
	if !strings.Contains(h.m.minibufferText, "use x to transfer") {
		t.Fatalf("unexpected minibuffer %q", h.m.minibufferText)
	}
}

func openProjects(t *testing.T, h *harness) {
	t.Helper()
	h.keys("3")
	if h.m.page != pageProjects {
		t.Fatalf("expected projects page; got %v", h.m.page)
	}
	if got := len(h.m.projects.board.Rows()); got != 3 {
		t.Fatalf("expected 3 tasks in first project; got %d", got)
	}
	h.keys("tab")
}

func TestProjects_CyclePatchesRowBeforeServer(t *testing.T) {
	h := newHarness(t)
	openProjects(t, h)

	mm, cmd := h.m.Update(keyMsg("s"))
	h.m = mm.(appModel)
	task, _ := h.m.projects.board.Find(model.IDKey(1))
	if task.Status != model.TaskCompleted {
		t.Fatalf("expected local patch to COMPLETED before the server answers; got %s", task.Status)
	}

	h.run(cmd)
	tasks, err := h.client.ListTasks(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks[0].Status != model.TaskCompleted {
		t.Fatalf("expected server to hold COMPLETED; got %s", tasks[0].Status)
	}
	if h.m.projects.banner != "" {
		t.Fatalf("unexpected banner %q", h.m.projects.banner)
	}
}

type lockedTasksBackend struct{ *api.Client }

func (lockedTasksBackend) UpdateTask(context.Context, mutate.UpdateTask) (model.Task, error) {
	return model.Task{}, errors.New("Task is locked")
}

func TestProjects_FailedCycleRefetches(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.backend = lockedTasksBackend{o.Client} })
	openProjects(t, h)

	h.keys("p")
	task, _ := h.m.projects.board.Find(model.IDKey(1))
	if task.Priority != model.PriorityHigh {
		t.Fatalf("expected refetch to restore HIGH; got %s", task.Priority)
	}
	if h.m.projects.banner != "Task is locked" {
		t.Fatalf("unexpected banner %q", h.m.projects.banner)
	}
}

func TestProjects_DeleteAsksThenRefetches(t *testing.T) {
	h := newHarness(t)
	openProjects(t, h)

	h.keys("X")
	if h.m.projects.confirmDelete != 1 {
		t.Fatalf("expected confirmation for task 1")
	}
	if !strings.Contains(h.m.View(), "Lidar driver") {
		t.Fatalf("expected confirm modal to name the task")
	}
	h.keys("n")
	if h.m.projects.confirmDelete != 0 || len(h.m.projects.board.Rows()) != 3 {
		t.Fatalf("expected cancel to keep the task")
	}

	h.keys("X", "y")
	if got := len(h.m.projects.board.Rows()); got != 2 {
		t.Fatalf("expected 2 tasks after delete; got %d", got)
	}
	if _, ok := h.m.projects.board.Find(model.IDKey(1)); ok {
		t.Fatalf("expected task 1 gone")
	}
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestUIState_RestoresPageAndFilters(t *testing.T) {
	j := openJournal(t)
	h := newHarness(t, func(o *Options) { o.Journal = j })

	h.keys("t", "f", "f")
	want := roster.Key{TeamID: 1, Status: model.BucketActive}
	if h.m.members.filter != want {
		t.Fatalf("unexpected filter %+v", h.m.members.filter)
	}
	openProjects(t, h)
	h.m.saveUIState()

	h2 := newHarness(t, func(o *Options) { o.Journal = j })
	if h2.m.page != pageProjects {
		t.Fatalf("expected projects page restored; got %v", h2.m.page)
	}
	if h2.m.members.filter != want {
		t.Fatalf("expected member filter restored; got %+v", h2.m.members.filter)
	}
	if h2.m.projects.selectedProjectID != 1 {
		t.Fatalf("expected project 1 selected; got %d", h2.m.projects.selectedProjectID)
	}
}

func TestHistory_ListsJournaledMutations(t *testing.T) {
	j := openJournal(t)
	h := newHarness(t, func(o *Options) { o.Journal = j })

	h.keys("2", "down", "enter", "Delta", "enter")
	h.keys("5")
	if h.m.page != pageHistory {
		t.Fatalf("expected history page; got %v", h.m.page)
	}
	items := h.m.history.list.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 journal entry; got %d", len(items))
	}
	e := items[0].(entryItem).entry
	if e.Action != "create-team" || e.Outcome != journal.OutcomeOK {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestHistory_WithoutJournalShowsBanner(t *testing.T) {
	h := newHarness(t)
	h.keys("5")
	if !strings.Contains(h.m.View(), "History is unavailable") {
		t.Fatalf("expected unavailable banner")
	}
}
