package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tudu-app/tudu/internal/api"
	"github.com/tudu-app/tudu/internal/dialog"
)

// listItem adapts an api.Todo to bubbles/list.Item
type listItem struct {
	todo api.Todo
}

func (i listItem) Title() string       { return fmt.Sprintf("%s %s", Checkbox(i.todo.Completed), i.todo.Title) }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(Checkbox(it.todo.Completed))
	text := it.todo.Title
	if it.todo.Completed {
		box = successStyle.Render(Checkbox(true))
		text = doneStyle.Render(text)
	}

	line := fmt.Sprintf("%s %s", box, text)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

func newTodoList() list.Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("My todos")
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	return l
}

// syncList rewrites the visible list from the controller's mirror and
// refreshes the live counts in the header.
func (a *App) syncList() {
	items := make([]list.Item, 0, len(a.ctrl.Items))
	for _, t := range a.ctrl.Items {
		items = append(items, listItem{todo: t})
	}
	a.list.SetItems(items)

	done, pending := a.ctrl.Stats()
	a.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("My todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(a.ctrl.Items),
	)
}

func (a App) selectedTodo() (api.Todo, bool) {
	it, ok := a.list.SelectedItem().(listItem)
	if !ok {
		return api.Todo{}, false
	}
	return it.todo, true
}

func (a App) handleTodosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		a.dlgKind = dialogAdd
		a.dlg.Open("Add todo", "", []dialog.Field{
			{Name: "title", Label: "Title"},
		})
		return a, nil
	case "e":
		if t, ok := a.selectedTodo(); ok {
			a.ctrl.BeginEdit(t)
			a.dlgKind = dialogEdit
			a.dlg.Open("Edit todo", "", []dialog.Field{
				{Name: "title", Label: "Title", Initial: t.Title},
			})
		}
		return a, nil
	case "d":
		if t, ok := a.selectedTodo(); ok {
			a.ctrl.BeginDelete(t)
			a.dlgKind = dialogDelete
			a.dlg.Open("Delete todo",
				fmt.Sprintf("Are you sure you want to delete %q?", t.Title), nil)
		}
		return a, nil
	case " ":
		if t, ok := a.selectedTodo(); ok {
			return a, a.ctrl.Toggle(t.ID)
		}
		return a, nil
	case "r":
		return a, a.ctrl.Load()
	}
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a App) viewTodos() string {
	if a.ctrl.Loading {
		return mutedStyle.Render("Loading...")
	}
	var b strings.Builder
	if len(a.ctrl.Items) == 0 {
		b.WriteString(mutedStyle.Render("No todos yet. Add your first task.") + "\n")
	}
	b.WriteString(a.list.View())
	if a.ctrl.ErrText != "" && !a.dlg.Opened() {
		b.WriteString("\n" + errorStyle.Render(a.ctrl.ErrText))
	}
	b.WriteString("\n" + helpStyle.Render("a add • e edit • d delete • space toggle • r reload"))
	return b.String()
}
