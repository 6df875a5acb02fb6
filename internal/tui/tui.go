package tui

import (
	"log/slog"
	"time"

	"clubhub-cli/internal/api"
	"clubhub-cli/internal/journal"
	"clubhub-cli/internal/nav"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client *api.Client
	// Journal is optional; without it history and UI state restore are off.
	Journal *journal.Journal
	Logger  *slog.Logger

	CloseDelay    time.Duration
	CollapseDelay time.Duration

	backend Backend
	clock   nav.Clock
	after   func(time.Duration, tea.Msg) tea.Cmd
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveUIState()
	}
	return err
}
