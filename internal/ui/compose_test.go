package ui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tudu-app/tudu/internal/api"
	"github.com/tudu-app/tudu/internal/ui"
)

func TestCompose(t *testing.T) {
	assert.Equal(t, ui.ScreenAuth, ui.Compose(nil))
	assert.Equal(t, ui.ScreenMain, ui.Compose(&api.User{ID: "1", Username: "alice", Role: "USER"}))
	assert.Equal(t, ui.ScreenMain, ui.Compose(&api.User{ID: "2", Username: "root", Role: "ADMIN"}))
}

func TestAvailablePanels_RoleGate(t *testing.T) {
	assert.Nil(t, ui.AvailablePanels(nil))

	ordinary := ui.AvailablePanels(&api.User{Role: "USER"})
	assert.Equal(t, []ui.Panel{ui.PanelTodos}, ordinary,
		"ordinary role must not see the users panel at all")

	admin := ui.AvailablePanels(&api.User{Role: "ADMIN"})
	assert.Equal(t, []ui.Panel{ui.PanelTodos, ui.PanelUsers}, admin)
}
