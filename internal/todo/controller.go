// Package todo owns the in-memory mirror of the caller's todo list and
// the mutations against it. The consistency rule is deliberate and
// simple: displayed state is never ahead of the server. Every
// successful mutation enqueues exactly one full reload instead of
// patching the list locally, so the mirror only ever lags the server.
package todo

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tudu-app/tudu/internal/api"
)

// Service is the remote surface the controller needs. *api.Client
// satisfies it; tests plug in a fake.
type Service interface {
	MyTodos(ctx context.Context) ([]api.Todo, error)
	CreateTodo(ctx context.Context, title string) (*api.Todo, error)
	ToggleTodo(ctx context.Context, id string) (*api.Todo, error)
	UpdateTodo(ctx context.Context, id string, title *string, completed *bool) (*api.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// LoadedMsg carries a completed list fetch.
type LoadedMsg struct {
	Todos []api.Todo
	Err   error
}

// MutatedMsg carries a completed mutation.
type MutatedMsg struct {
	Op  string // "create" | "toggle" | "update" | "remove"
	Err error
}

// Controller keeps the authoritative local list. All mutation happens
// through its methods and its Apply completion handler; nothing else
// touches the list. Methods return tea.Cmds and completions come back
// as messages, so everything runs on the single event loop and
// overlapping completions apply in arrival order (last reply wins).
type Controller struct {
	svc Service
	log *zap.Logger

	Items   []api.Todo
	Loading bool
	ErrText string

	editTarget   *api.Todo
	deleteTarget *api.Todo
}

func NewController(svc Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{svc: svc, log: log}
}

// Load fetches the full list. The mirror is replaced wholesale on
// completion; ordering is whatever the server returns.
func (c *Controller) Load() tea.Cmd {
	c.Loading = true
	svc := c.svc
	return func() tea.Msg {
		todos, err := svc.MyTodos(context.Background())
		return LoadedMsg{Todos: todos, Err: err}
	}
}

// Create adds a todo. An empty title is rejected client-side with zero
// network calls.
func (c *Controller) Create(title string) (tea.Cmd, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", api.ErrValidation)
	}
	svc := c.svc
	return func() tea.Msg {
		_, err := svc.CreateTodo(context.Background(), title)
		return MutatedMsg{Op: "create", Err: err}
	}, nil
}

// Toggle flips completion server-side.
func (c *Controller) Toggle(id string) tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		_, err := svc.ToggleTodo(context.Background(), id)
		return MutatedMsg{Op: "toggle", Err: err}
	}
}

// Update retitles a todo. An empty or unchanged title is a required
// short-circuit: no command, no network call, list untouched.
func (c *Controller) Update(id, title string) tea.Cmd {
	if title == "" {
		return nil
	}
	for _, t := range c.Items {
		if t.ID == id && t.Title == title {
			return nil
		}
	}
	svc := c.svc
	return func() tea.Msg {
		_, err := svc.UpdateTodo(context.Background(), id, &title, nil)
		return MutatedMsg{Op: "update", Err: err}
	}
}

// Remove deletes a todo.
func (c *Controller) Remove(id string) tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		err := svc.DeleteTodo(context.Background(), id)
		return MutatedMsg{Op: "remove", Err: err}
	}
}

// Apply handles a completion message and returns the follow-up
// command, if any. Every successful mutation (and every not-found,
// which means the local view was stale) triggers exactly one reload.
// Other failures leave the list untouched so an open dialog can retry.
func (c *Controller) Apply(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		c.Loading = false
		if msg.Err != nil {
			c.ErrText = msg.Err.Error()
			c.log.Warn("list reload failed", zap.Error(msg.Err))
			return nil
		}
		c.Items = msg.Todos
		c.ErrText = ""
		return nil
	case MutatedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, api.ErrNotFound) {
			c.ErrText = msg.Err.Error()
			c.log.Warn("mutation failed", zap.String("op", msg.Op), zap.Error(msg.Err))
			return nil
		}
		if msg.Err != nil {
			// Stale target: the reload below makes the entry disappear,
			// no user-facing error needed beyond that.
			c.log.Info("mutation hit a stale record", zap.String("op", msg.Op))
		}
		c.ErrText = ""
		return c.Load()
	}
	return nil
}

// BeginEdit opens the edit dialog state for one record. Pure
// transition, no network effect.
func (c *Controller) BeginEdit(t api.Todo) {
	c.editTarget = &t
	c.deleteTarget = nil
}

// BeginDelete opens the delete confirmation state for one record.
func (c *Controller) BeginDelete(t api.Todo) {
	c.deleteTarget = &t
	c.editTarget = nil
}

// CancelDialog closes whichever dialog state is open.
func (c *Controller) CancelDialog() {
	c.editTarget = nil
	c.deleteTarget = nil
}

// EditTarget returns the record being edited, nil when none.
func (c *Controller) EditTarget() *api.Todo { return c.editTarget }

// DeleteTarget returns the record pending deletion, nil when none.
func (c *Controller) DeleteTarget() *api.Todo { return c.deleteTarget }

// Stats counts done and pending items for the header line.
func (c *Controller) Stats() (done, pending int) {
	for _, t := range c.Items {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
