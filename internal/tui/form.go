package tui

import (
	"sort"
	"strings"

	"clubhub-cli/internal/mutate"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
)

// choice is one option of a choice field. id is zero for the "(select)" entry.
type choice struct {
	id    int64
	value string
	label string
}

type formField struct {
	// key matches the field name mutate.Validate reports errors under.
	key     string
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []choice
	idx     int
}

// form is a modal that builds one mutation from its fields. Submission is
// refused while Validate reports errors; those are shown under each field.
type form struct {
	title  string
	fields []formField
	focus  int
	errors mutate.FieldErrors
	build  func(f *form) mutate.Action
}

type formResult int

const (
	formPending formResult = iota
	formCanceled
	formSubmitted
)

func textField(key, label, value string, limit int) formField {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = limit
	in.SetValue(value)
	// A blinking cursor would keep a tick loop alive for the modal's lifetime.
	_ = in.Cursor.SetMode(cursor.CursorStatic)
	return formField{key: key, label: label, kind: fieldText, input: in}
}

func choiceField(key, label string, choices []choice, selected int64) formField {
	f := formField{key: key, label: label, kind: fieldChoice, choices: choices}
	for i, c := range choices {
		if c.id == selected && c.id != 0 {
			f.idx = i
		}
	}
	return f
}

func valueChoices(values ...string) []choice {
	out := make([]choice, 0, len(values))
	for _, v := range values {
		out = append(out, choice{value: v, label: v})
	}
	return out
}

func newForm(title string, build func(f *form) mutate.Action, fields ...formField) *form {
	f := &form{title: title, fields: fields, build: build}
	f.focusField(0)
	return f
}

func (f *form) field(key string) *formField {
	for i := range f.fields {
		if f.fields[i].key == key {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *form) text(key string) string {
	if fl := f.field(key); fl != nil {
		return strings.TrimSpace(fl.input.Value())
	}
	return ""
}

func (f *form) choiceID(key string) int64 {
	if fl := f.field(key); fl != nil && len(fl.choices) > 0 {
		return fl.choices[fl.idx].id
	}
	return 0
}

func (f *form) choiceValue(key string) string {
	if fl := f.field(key); fl != nil && len(fl.choices) > 0 {
		return fl.choices[fl.idx].value
	}
	return ""
}

// setChoice selects the option with the given id or value.
func (f *form) setChoice(key string, match func(choice) bool) {
	fl := f.field(key)
	if fl == nil {
		return
	}
	for i, c := range fl.choices {
		if match(c) {
			fl.idx = i
			return
		}
	}
}

func (f *form) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	if f.fields[i].kind == fieldText {
		_ = f.fields[i].input.Focus()
	}
}

// submit validates the built action. It returns nil when the form must stay
// open.
func (f *form) submit() mutate.Action {
	a := f.build(f)
	f.errors = mutate.Validate(a)
	if len(f.errors) > 0 {
		return nil
	}
	return a
}

func (f *form) update(msg tea.KeyMsg) (formResult, mutate.Action) {
	switch msg.String() {
	case "esc", "ctrl+g":
		return formCanceled, nil
	case "enter":
		if a := f.submit(); a != nil {
			return formSubmitted, a
		}
		return formPending, nil
	case "tab", "down":
		f.focusField(f.focus + 1)
		return formPending, nil
	case "shift+tab", "up":
		f.focusField(f.focus - 1)
		return formPending, nil
	}

	fl := &f.fields[f.focus]
	if fl.kind == fieldChoice {
		switch msg.String() {
		case "right", "l", " ":
			fl.idx = (fl.idx + 1) % len(fl.choices)
		case "left", "h":
			fl.idx = (fl.idx - 1 + len(fl.choices)) % len(fl.choices)
		}
		return formPending, nil
	}
	fl.input, _ = fl.input.Update(msg)
	return formPending, nil
}

func (f *form) view(width int) string {
	bodyW := max(width-6, 20)
	labelW := 0
	for _, fl := range f.fields {
		labelW = max(labelW, len(fl.label))
	}

	var lines []string
	for i, fl := range f.fields {
		val := ""
		switch fl.kind {
		case fieldChoice:
			val = "‹ " + fl.choices[fl.idx].label + " ›"
		default:
			val = fl.input.View()
		}
		label := lipgloss.NewStyle().Width(labelW).Render(fl.label)
		ctrl := lipgloss.NewStyle().Background(colorControlBg).Width(max(bodyW-labelW-2, 8))
		if i == f.focus {
			ctrl = ctrl.Background(colorSelectedBg).Foreground(colorSelectedFg)
		}
		lines = append(lines, label+"  "+ctrl.Render(val))
		if msg, ok := f.errors[fl.key]; ok {
			lines = append(lines, strings.Repeat(" ", labelW+2)+lipgloss.NewStyle().Foreground(colorErrorFg).Render(msg))
		}
	}

	// Errors on fields the form does not show (e.g. hidden ids).
	var other []string
	for k, msg := range f.errors {
		if f.field(k) == nil {
			other = append(other, k+" "+msg)
		}
	}
	if len(other) > 0 {
		sort.Strings(other)
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render(strings.Join(other, "; ")))
	}

	lines = append(lines, "", styleMuted().Render("tab: next field   ←/→: change   enter: save   esc: cancel"))
	return renderModalBox(width, f.title, strings.Join(lines, "\n"))
}

// renderModalBox frames content with a title bar on the modal surface.
func renderModalBox(width int, title, content string) string {
	boxW := min(max(width-4, 30), 72)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSelectedFg).
		Background(colorControlBg).
		Width(boxW - 4).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().Width(boxW - 4).Padding(0, 1).Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Render(header + "\n\n" + body)
}

func renderConfirmModal(width int, title, body string) string {
	return renderModalBox(width, title, body+"\n\n"+styleMuted().Render("y: confirm   n/esc: cancel"))
}
