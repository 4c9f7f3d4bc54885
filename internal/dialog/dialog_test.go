package dialog_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/tudu-app/tudu/internal/dialog"
)

func titleField(initial string) []dialog.Field {
	return []dialog.Field{{Name: "title", Label: "Title", Initial: initial}}
}

func TestOpen_InitializesFromFieldDescriptions(t *testing.T) {
	m := dialog.New()
	m.Open("Edit todo", "", titleField("Buy milk"))

	assert.True(t, m.Opened())
	assert.Equal(t, "Edit todo", m.Title())
	assert.Equal(t, map[string]string{"title": "Buy milk"}, m.Values())
}

func TestOpen_SwitchingSubjectNeverMerges(t *testing.T) {
	m := dialog.New()
	m.Open("Edit todo", "", titleField("Buy milk"))
	m.SetValue("title", "Buy milk and eggs")

	// Second subject opened before the first was confirmed.
	m.Open("Edit todo", "", titleField("Walk dog"))
	assert.Equal(t, map[string]string{"title": "Walk dog"}, m.Values(),
		"previous subject's values must not leak")

	// A different field set replaces, not extends, the old one.
	m.Open("Sign in", "", []dialog.Field{
		{Name: "username", Label: "Username"},
		{Name: "password", Label: "Password", Type: "password"},
	})
	values := m.Values()
	assert.NotContains(t, values, "title")
	assert.Len(t, values, 2)
}

func TestSetValue_UnknownNameIsSilentNoop(t *testing.T) {
	m := dialog.New()
	m.Open("Edit todo", "", titleField("Buy milk"))

	m.SetValue("completed", "true")
	assert.Equal(t, map[string]string{"title": "Buy milk"}, m.Values())

	// Closed dialog: stray events must not panic or resurrect state.
	m.Close()
	m.SetValue("title", "late event")
	assert.Empty(t, m.Values())
}

func TestClose_IsIdempotent(t *testing.T) {
	m := dialog.New()
	m.Open("Delete todo", "Are you sure?", nil)

	m.Close()
	once := m
	m.Close()
	m.Close()

	assert.Equal(t, once, m)
	assert.False(t, m.Opened())
	assert.Empty(t, m.Title())
	assert.Empty(t, m.Values())
}

func TestOpen_AfterCloseStartsFresh(t *testing.T) {
	m := dialog.New()
	m.Open("Edit todo", "", titleField("Buy milk"))
	m.SetValue("title", "changed")
	m.Close()

	m.Open("Edit todo", "", titleField("Walk dog"))
	assert.Equal(t, "Walk dog", m.Values()["title"])
}

func TestUpdate_ReverseKeysCycleFocusBackward(t *testing.T) {
	m := dialog.New()
	m.Open("Sign in", "", []dialog.Field{
		{Name: "username", Label: "Username"},
		{Name: "password", Label: "Password"},
	})

	// Backward from the first field wraps to the last.
	m, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyShiftTab}))
	m, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune("pw")}))
	assert.Equal(t, "pw", m.Values()["password"])
	assert.Empty(t, m.Values()["username"])

	// Up steps back to the previous field.
	m, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyUp}))
	m, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune("alice")}))
	assert.Equal(t, "alice", m.Values()["username"])
	assert.Equal(t, "pw", m.Values()["password"])
}

func TestView_EmptyWhenClosed(t *testing.T) {
	m := dialog.New()
	assert.Empty(t, m.View())

	m.Open("Edit todo", "", titleField("x"))
	assert.NotEmpty(t, m.View())
}
