package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// titled is implemented by every row type shown in a list.
type titled interface {
	Title() string
}

type compactItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	// dim renders rows whose item reports dimmed() true (inactive members).
	dim lipgloss.Style
}

func newCompactItemDelegate() compactItemDelegate {
	return compactItemDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
		dim:      styleMuted(),
	}
}

func (d compactItemDelegate) Height() int                             { return 1 }
func (d compactItemDelegate) Spacing() int                            { return 0 }
func (d compactItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d compactItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	txt := fmt.Sprint(item)
	if t, ok := item.(titled); ok {
		txt = t.Title()
	}

	style := d.normal
	if dm, ok := item.(interface{ dimmed() bool }); ok && dm.dimmed() {
		style = d.dim
	}
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(fitWidth(txt, contentW)))
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, newCompactItemDelegate(), 0, 0)
	l.Title = title
	// Pages render their own title, banner and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}
