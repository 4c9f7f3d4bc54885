package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SetTheme swaps the palette and symbols the package styles pull from.
// "mono" is for terminals without color or Unicode box glyphs.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		successStyle = successStyle.Foreground(lipgloss.Color("48"))
		pendingStyle = pendingStyle.Foreground(lipgloss.Color("201"))
		accentStyle = accentStyle.Foreground(lipgloss.Color("51"))
		boxChecked, boxUnchecked = "◼", "◻"
	case "mono":
		successStyle = lipgloss.NewStyle()
		pendingStyle = lipgloss.NewStyle()
		accentStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		boxChecked, boxUnchecked = "[x]", "[ ]"
	default: // classic
	}
}
