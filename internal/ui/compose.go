package ui

import "github.com/tudu-app/tudu/internal/api"

// Screen is the top-level view choice.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenMain
)

// Panel is one tab of the main screen.
type Panel int

const (
	PanelTodos Panel = iota
	PanelUsers
)

// Compose picks the visible screen from the session alone: no user
// means the auth screen, anything else the main screen.
func Compose(user *api.User) Screen {
	if user == nil {
		return ScreenAuth
	}
	return ScreenMain
}

// AvailablePanels lists the panels the user may see. Only the elevated
// role gets the all-users panel; for everyone else it is simply not
// there, which is the whole of the role gate on the client.
func AvailablePanels(user *api.User) []Panel {
	if user == nil {
		return nil
	}
	if user.IsAdmin() {
		return []Panel{PanelTodos, PanelUsers}
	}
	return []Panel{PanelTodos}
}
