package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	tabStyle       = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// OK prints a success line for one-shot CLI commands.
func OK(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

// Fail prints an error line to stderr for one-shot CLI commands.
func Fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+msg))
}

// Frame draws the rounded border every screen of the app sits in.
func Frame(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}

// Checkbox renders the done/pending box for a todo line.
func Checkbox(done bool) string {
	if done {
		return boxChecked
	}
	return boxUnchecked
}

// PrintPanel prints framed lines, used by the non-interactive ls output.
func PrintPanel(lines []string) {
	fmt.Println(Frame(strings.Join(lines, "\n")))
}
