package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
	"clubhub-cli/internal/reconcile"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type alumniSource interface {
	ListAlumni(ctx context.Context) ([]model.Alumni, error)
}

type alumniPage struct {
	alumni  *reconcile.List[struct{}, model.Alumni]
	list    list.Model
	loading bool
	banner  string
}

func newAlumniPage(src alumniSource, log *slog.Logger) *alumniPage {
	load := func(ctx context.Context, _ struct{}) ([]model.Alumni, error) {
		as, err := src.ListAlumni(ctx)
		if err != nil {
			return nil, fmt.Errorf("list alumni: %w", err)
		}
		return as, nil
	}
	return &alumniPage{
		alumni: reconcile.New(load, reconcile.Options[model.Alumni]{
			Key:    func(a model.Alumni) string { return model.IDKey(a.ID) },
			Logger: log,
		}),
		list: newList("Alumni", nil),
	}
}

func (p *alumniPage) ensure(ctx context.Context) tea.Cmd {
	if p.alumni.Loaded() || p.loading {
		return nil
	}
	return p.reload(ctx)
}

func (p *alumniPage) reload(ctx context.Context) tea.Cmd {
	p.loading = true
	return fetch(ctx, p.alumni, struct{}{}, func(res reconcile.Result[struct{}, model.Alumni]) tea.Msg {
		return alumniFetchedMsg{res: res}
	})
}

func (p *alumniPage) applyFetch(res reconcile.Result[struct{}, model.Alumni]) {
	if !p.alumni.Apply(res) {
		return
	}
	p.loading = false
	p.banner = ""
	if err := p.alumni.Err(); err != nil {
		p.banner = "Could not load alumni: " + mutate.Friendly(err).Error()
	}
	rows := p.alumni.Rows()
	items := make([]list.Item, 0, len(rows))
	for _, a := range rows {
		items = append(items, alumniItem{alumni: a})
	}
	setItems(&p.list, items, itemKey)
}

func (p *alumniPage) view() string {
	var parts []string
	if p.banner != "" {
		parts = append(parts, " "+styleBanner().Render(p.banner))
	}
	switch {
	case p.loading && !p.alumni.Loaded():
		parts = append(parts, styleMuted().Render(" Loading alumni"+glyphEllipsis()))
	case len(p.list.Items()) == 0 && p.alumni.Err() == nil:
		parts = append(parts, styleMuted().Render(" No alumni recorded."))
	default:
		parts = append(parts, " "+styleMuted().Render(columns([]int{22, 6, 22}, "Name", "Year", "Last team / role", "Employer")), p.list.View())
	}
	return strings.Join(parts, "\n")
}

// historyPage lists recent journal entries, newest first.
type historyPage struct {
	list   list.Model
	banner string
}

func (p *historyPage) apply(msg historyLoadedMsg) {
	if msg.err != nil {
		p.banner = "Could not read history: " + msg.err.Error()
		return
	}
	p.banner = ""
	items := make([]list.Item, 0, len(msg.entries))
	for _, e := range msg.entries {
		items = append(items, entryItem{entry: e})
	}
	setItems(&p.list, items, itemKey)
}

func (p *historyPage) view() string {
	var parts []string
	if p.banner != "" {
		parts = append(parts, " "+styleBanner().Render(p.banner))
	}
	if len(p.list.Items()) == 0 {
		if p.banner == "" {
			parts = append(parts, styleMuted().Render(" No changes recorded yet."))
		}
		return strings.Join(parts, "\n")
	}
	header := columns([]int{19, 14, 16, 5}, "When", "Action", "Target", "Res", "Message")
	parts = append(parts, " "+styleMuted().Render(header), p.list.View())
	return strings.Join(parts, "\n")
}
