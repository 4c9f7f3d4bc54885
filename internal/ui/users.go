package ui

import (
	"fmt"
	"strings"
)

func (a App) viewUsers() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("All users") + "\n")
	if a.usersErr != "" {
		b.WriteString(errorStyle.Render(a.usersErr))
		return b.String()
	}
	if len(a.users) == 0 {
		b.WriteString(mutedStyle.Render("No users loaded."))
		return b.String()
	}
	for _, u := range a.users {
		role := mutedStyle.Render(fmt.Sprintf("(%s)", u.Role))
		if u.IsAdmin() {
			role = accentStyle.Render("(" + u.Role + ")")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", u.Username, role))
	}
	return strings.TrimRight(b.String(), "\n")
}
