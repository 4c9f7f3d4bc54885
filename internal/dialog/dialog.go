// Package dialog implements a generic modal form: a titled box of
// labeled text inputs described by the caller, with no knowledge of
// what the collected values mean. The caller interprets the confirmed
// values and owns validation.
package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field describes one input of the form for the current subject.
type Field struct {
	Name    string // key in the confirmed value map
	Label   string
	Type    string // "" or "text"; "password" masks input
	Initial string
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model is the dialog state machine. Closed it holds nothing; Open it
// holds exactly the inputs for the current subject. Reopening for a
// new subject rebuilds the inputs wholesale so values never leak from
// one subject to the next.
type Model struct {
	open   bool
	title  string
	note   string
	fields []Field
	inputs []textinput.Model
	focus  int
	errMsg string
}

func New() Model { return Model{} }

// Open resets the form to the supplied field set and initial values.
// Calling it while already open switches subject: the previous values
// are discarded, never merged.
func (m *Model) Open(title, note string, fields []Field) {
	m.open = true
	m.title = title
	m.note = note
	m.errMsg = ""
	m.focus = 0
	m.fields = fields
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		ti.SetValue(f.Initial)
		ti.CursorEnd()
		if f.Type == "password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
}

// Close clears all state. Idempotent.
func (m *Model) Close() {
	m.open = false
	m.title = ""
	m.note = ""
	m.errMsg = ""
	m.focus = 0
	m.fields = nil
	m.inputs = nil
}

// Opened reports whether the dialog is showing.
func (m Model) Opened() bool { return m.open }

// Title returns the current dialog title, empty when closed.
func (m Model) Title() string { return m.title }

// SetError shows a message inline next to the title.
func (m *Model) SetError(msg string) { m.errMsg = msg }

// SetValue sets one field programmatically. Unknown names are a silent
// no-op, which shields the form from stray events of a dialog that is
// already closing.
func (m *Model) SetValue(name, value string) {
	for i, f := range m.fields {
		if f.Name == name {
			m.inputs[i].SetValue(value)
			return
		}
	}
}

// Values returns the current values keyed by field name. Only fields
// of the currently open subject have entries.
func (m Model) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		out[f.Name] = m.inputs[i].Value()
	}
	return out
}

// FocusNext moves focus to the next field, wrapping around.
func (m *Model) FocusNext() {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// FocusPrev moves focus to the previous field, wrapping around.
func (m *Model) FocusPrev() {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// Update routes input to the focused field. Tab cycles focus. Enter
// and esc are left for the caller to interpret as confirm/cancel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open || len(m.inputs) == 0 {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.FocusNext()
			return m, nil
		case "shift+tab", "up":
			m.FocusPrev()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the dialog box, empty string when closed.
func (m Model) View() string {
	if !m.open {
		return ""
	}
	var b strings.Builder
	header := titleStyle.Render(m.title)
	if m.errMsg != "" {
		header += " — " + errStyle.Render(m.errMsg)
	}
	b.WriteString(header)
	if m.note != "" {
		b.WriteString("\n" + m.note)
	}
	for i, f := range m.fields {
		b.WriteString("\n" + labelStyle.Render(f.Label) + "\n" + m.inputs[i].View())
	}
	b.WriteString("\n" + helpStyle.Render("enter confirm • esc cancel"))
	return boxStyle.Render(b.String())
}
