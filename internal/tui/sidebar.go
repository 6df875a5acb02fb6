package tui

import (
	"strings"

	"clubhub-cli/internal/nav"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// sidebarTop is the row of the first top-level item.
	sidebarTop        = 2
	sidebarCollapsedW = 5
	sidebarExpandedW  = 18
	flyoutW           = 22
)

func navItems() []nav.Item {
	return []nav.Item{
		{Label: "Members", Icon: "M", Children: []nav.Item{
			{Label: "All members", Href: "/members"},
			{Label: "Unassigned", Href: "/members?status=unassigned"},
			{Label: "Active", Href: "/members?status=active"},
			{Label: "Inactive", Href: "/members?status=inactive"},
		}},
		{Label: "Teams", Icon: "T", Children: []nav.Item{
			{Label: "All teams", Href: "/teams"},
			{Label: "New team", Href: "/teams/new"},
		}},
		{Label: "Projects", Icon: "P", Href: "/projects"},
		{Label: "Alumni", Icon: "A", Href: "/alumni"},
		{Label: "History", Icon: "H", Href: "/history"},
	}
}

// itemPage is the page a top-level item belongs to, for highlighting.
func itemPage(it nav.Item) page {
	href := it.Href
	if it.IsBranch() {
		href = it.Children[0].Href
	}
	switch {
	case strings.HasPrefix(href, "/teams"):
		return pageTeams
	case strings.HasPrefix(href, "/projects"):
		return pageProjects
	case strings.HasPrefix(href, "/alumni"):
		return pageAlumni
	case strings.HasPrefix(href, "/history"):
		return pageHistory
	}
	return pageMembers
}

func itemRow(idx int) int { return sidebarTop + idx }

func sidebarWidth(st nav.State) int {
	if st.Expanded {
		return sidebarExpandedW
	}
	return sidebarCollapsedW
}

type regionKind int

const (
	regionNone regionKind = iota
	regionSidebar
	regionItem
	regionFlyout
	regionFlyoutChild
)

type region struct {
	kind  regionKind
	index int
}

// hoverState is where the pointer was at the last motion event. Enter and
// leave events for the nav controller are derived from changes to it.
type hoverState struct {
	sidebar bool
	item    int
	flyout  bool
}

func (m appModel) hitTest(x, y int) region {
	st := m.nav.State()
	if _, open := st.Flyout(); open {
		fx, fy := sidebarWidth(st), st.AnchorOffset
		rows := 1 + len(m.nav.FlyoutItems())
		if x >= fx && x < fx+flyoutW && y >= fy && y < fy+rows {
			if y == fy {
				return region{kind: regionFlyout}
			}
			return region{kind: regionFlyoutChild, index: y - fy - 1}
		}
	}
	if x >= 0 && x < sidebarWidth(st) {
		idx := y - sidebarTop
		if idx >= 0 && idx < len(m.nav.Items()) {
			return region{kind: regionItem, index: idx}
		}
		return region{kind: regionSidebar}
	}
	return region{}
}

// pointerMoved turns a motion event into nav enter/leave events. Leaves are
// sent before enters so a move from an item into its flyout cancels the close
// it scheduled.
func (m *appModel) pointerMoved(x, y int) {
	r := m.hitTest(x, y)
	next := hoverState{item: -1}
	switch r.kind {
	case regionItem:
		next.sidebar, next.item = true, r.index
	case regionSidebar:
		next.sidebar = true
	case regionFlyout:
		next.flyout = true
	case regionFlyoutChild:
		next.flyout = true
		m.flyoutSel = r.index
	}

	prev := m.hover
	if prev.item >= 0 && prev.item != next.item {
		m.nav.PointerLeaveItem(prev.item)
	}
	if prev.flyout && !next.flyout {
		m.nav.PointerLeaveFlyout()
	}
	if prev.sidebar && !next.sidebar {
		m.nav.PointerLeaveSidebar()
	}
	if next.sidebar && !prev.sidebar {
		m.nav.PointerEnterSidebar()
	}
	if next.flyout && !prev.flyout {
		m.nav.PointerEnterFlyout()
	}
	if next.item >= 0 && next.item != prev.item {
		before, _ := m.nav.State().Flyout()
		m.nav.PointerEnterItem(next.item, itemRow(next.item))
		if after, _ := m.nav.State().Flyout(); after != before {
			m.flyoutSel = 0
		}
	}
	m.hover = next
}

func (m *appModel) pointerClicked(x, y int) tea.Cmd {
	r := m.hitTest(x, y)
	switch r.kind {
	case regionItem:
		return m.clickItem(r.index)
	case regionFlyoutChild:
		return m.follow(m.nav.ClickFlyoutItem(r.index))
	case regionFlyout, regionSidebar:
		return nil
	}
	m.nav.ClickOutside()
	return nil
}

func (m *appModel) clickItem(idx int) tea.Cmd {
	m.flyoutSel = 0
	return m.follow(m.nav.ClickItem(idx, itemRow(idx)))
}

func (m *appModel) follow(out nav.Outcome) tea.Cmd {
	if !out.Navigated() {
		return nil
	}
	return m.route(out.Href)
}

// handleNavKey handles sidebar keys. Digits click top-level items; while a
// flyout is pinned it also takes the cursor keys.
func (m *appModel) handleNavKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := msg.String()
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		idx := int(k[0] - '1')
		if idx < len(m.nav.Items()) {
			return m.clickItem(idx), true
		}
		return nil, false
	}

	st := m.nav.State()
	if !st.Pinned {
		return nil, false
	}
	children := m.nav.FlyoutItems()
	switch k {
	case "up", "k":
		m.flyoutSel = (m.flyoutSel - 1 + len(children)) % len(children)
	case "down", "j":
		m.flyoutSel = (m.flyoutSel + 1) % len(children)
	case "enter":
		return m.follow(m.nav.ClickFlyoutItem(m.flyoutSel)), true
	case "esc":
		m.nav.ClickOutside()
	default:
		return nil, false
	}
	return nil, true
}

// scheduleNavTick asks for a navTickMsg at the controller's next deadline.
// Earlier ticks become stale.
func (m *appModel) scheduleNavTick() tea.Cmd {
	at, ok := m.nav.NextDeadline()
	if !ok {
		return nil
	}
	m.navSeq++
	d := max(at.Sub(m.clock.Now()), 0)
	return m.after(d, navTickMsg{seq: m.navSeq})
}

func (m appModel) renderSidebar(height int) string {
	st := m.nav.State()
	w := sidebarWidth(st)
	bg := lipgloss.NewStyle().Background(colorSidebarBg).Width(w)

	lines := make([]string, 0, height)
	title := " ch"
	if st.Expanded {
		title = " clubhub"
	}
	lines = append(lines, bg.Bold(true).Foreground(colorAccent).Render(title), bg.Render(""))

	active, open := st.Flyout()
	for i, it := range m.nav.Items() {
		label := " " + it.Icon + " "
		if st.Expanded {
			label = " " + it.Icon + "  " + it.Label
			if it.IsBranch() {
				label = fitWidth(label, w-2) + glyphBranch()
			}
		}
		style := bg
		switch {
		case open && i == active:
			style = style.Foreground(colorAccentFg).Background(colorAccent)
		case m.hover.item == i:
			style = style.Background(colorSelectedBg).Foreground(colorSelectedFg)
		case itemPage(it) == m.page:
			style = style.Bold(true).Foreground(colorAccent)
		default:
			style = style.Foreground(colorChromeMutedFg)
		}
		lines = append(lines, style.Render(label))
	}
	for len(lines) < height {
		lines = append(lines, bg.Render(""))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderFlyout() []string {
	st := m.nav.State()
	idx, _ := st.Flyout()
	it := m.nav.Items()[idx]
	base := lipgloss.NewStyle().Background(colorFlyoutBg).Width(flyoutW)

	header := " " + it.Label
	if st.Pinned {
		header += " " + glyphPin()
	}
	out := []string{base.Bold(true).Render(header)}
	for i, child := range it.Children {
		style := base.Foreground(colorSurfaceFg)
		if i == m.flyoutSel {
			style = base.Foreground(colorSelectedFg).Background(colorSelectedBg)
		}
		out = append(out, style.Render("  "+child.Label))
	}
	return out
}
