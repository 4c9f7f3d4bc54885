package todo_test

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudu-app/tudu/internal/api"
	"github.com/tudu-app/tudu/internal/todo"
)

// fakeService is an in-memory stand-in for the remote service. It
// assigns ids the way the server does and records every call.
type fakeService struct {
	todos []api.Todo
	calls []string
	fail  map[string]error // op name -> forced error
}

func newFakeService(titles ...string) *fakeService {
	s := &fakeService{fail: map[string]error{}}
	for _, title := range titles {
		s.todos = append(s.todos, api.Todo{ID: uuid.NewString(), Title: title})
	}
	return s
}

func (s *fakeService) MyTodos(context.Context) ([]api.Todo, error) {
	s.calls = append(s.calls, "myTodos")
	if err := s.fail["myTodos"]; err != nil {
		return nil, err
	}
	out := make([]api.Todo, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

func (s *fakeService) CreateTodo(_ context.Context, title string) (*api.Todo, error) {
	s.calls = append(s.calls, "createTodo")
	if err := s.fail["createTodo"]; err != nil {
		return nil, err
	}
	t := api.Todo{ID: uuid.NewString(), Title: title}
	s.todos = append(s.todos, t)
	return &t, nil
}

func (s *fakeService) ToggleTodo(_ context.Context, id string) (*api.Todo, error) {
	s.calls = append(s.calls, "toggleTodo")
	if err := s.fail["toggleTodo"]; err != nil {
		return nil, err
	}
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Completed = !s.todos[i].Completed
			return &s.todos[i], nil
		}
	}
	return nil, fmt.Errorf("%w: Todo not found", api.ErrNotFound)
}

func (s *fakeService) UpdateTodo(_ context.Context, id string, title *string, completed *bool) (*api.Todo, error) {
	s.calls = append(s.calls, "updateTodo")
	if err := s.fail["updateTodo"]; err != nil {
		return nil, err
	}
	for i := range s.todos {
		if s.todos[i].ID == id {
			if title != nil {
				s.todos[i].Title = *title
			}
			if completed != nil {
				s.todos[i].Completed = *completed
			}
			return &s.todos[i], nil
		}
	}
	return nil, fmt.Errorf("%w: Todo not found", api.ErrNotFound)
}

func (s *fakeService) DeleteTodo(_ context.Context, id string) error {
	s.calls = append(s.calls, "deleteTodo")
	if err := s.fail["deleteTodo"]; err != nil {
		return err
	}
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: Todo not found", api.ErrNotFound)
}

// drain runs a command chain to completion through Apply, the way the
// event loop would, and returns how many commands ran.
func drain(c *todo.Controller, cmd tea.Cmd) int {
	n := 0
	for cmd != nil {
		n++
		cmd = c.Apply(cmd())
	}
	return n
}

func TestLoad_ReplacesMirrorWholesale(t *testing.T) {
	svc := newFakeService("Buy milk", "Walk dog")
	c := todo.NewController(svc, nil)

	cmd := c.Load()
	assert.True(t, c.Loading)

	require.Nil(t, c.Apply(cmd()))
	assert.False(t, c.Loading)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "Buy milk", c.Items[0].Title)
}

func TestCreate_EmptyTitleIssuesZeroNetworkCalls(t *testing.T) {
	svc := newFakeService()
	c := todo.NewController(svc, nil)

	cmd, err := c.Create("")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Nil(t, cmd)
	assert.Empty(t, svc.calls)
}

func TestCreate_SuccessTriggersExactlyOneReload(t *testing.T) {
	svc := newFakeService()
	c := todo.NewController(svc, nil)

	cmd, err := c.Create("Buy milk")
	require.NoError(t, err)
	drain(c, cmd)

	assert.Equal(t, []string{"createTodo", "myTodos"}, svc.calls)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Buy milk", c.Items[0].Title)
	assert.False(t, c.Items[0].Completed)
}

func TestUpdate_EmptyOrUnchangedTitleIsANoop(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil
	id := c.Items[0].ID

	assert.Nil(t, c.Update(id, ""))
	assert.Nil(t, c.Update(id, "Buy milk"))
	assert.Empty(t, svc.calls, "no-op update must not touch the network")
	assert.Equal(t, "Buy milk", c.Items[0].Title)
}

func TestUpdate_ChangedTitleCommitsAndReloads(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil

	drain(c, c.Update(c.Items[0].ID, "Buy oat milk"))
	assert.Equal(t, []string{"updateTodo", "myTodos"}, svc.calls)
	assert.Equal(t, "Buy oat milk", c.Items[0].Title)
}

func TestToggle_SuccessReloads(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil

	drain(c, c.Toggle(c.Items[0].ID))
	assert.Equal(t, []string{"toggleTodo", "myTodos"}, svc.calls)
	assert.True(t, c.Items[0].Completed)
}

func TestToggle_StaleIdReloadsWithoutSurfacingError(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	stale := c.Items[0].ID
	svc.todos = nil // deleted elsewhere
	svc.calls = nil

	drain(c, c.Toggle(stale))
	assert.Equal(t, []string{"toggleTodo", "myTodos"}, svc.calls,
		"not-found still reloads so the stale entry disappears")
	assert.Empty(t, c.Items)
	assert.Empty(t, c.ErrText)
}

func TestMutation_TransportFailureLeavesListUntouched(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil
	svc.fail["updateTodo"] = fmt.Errorf("connection refused")

	cmd := c.Update(c.Items[0].ID, "changed")
	follow := c.Apply(cmd())
	assert.Nil(t, follow, "generic failure must not reload")
	assert.Equal(t, []string{"updateTodo"}, svc.calls)
	assert.Equal(t, "Buy milk", c.Items[0].Title)
	assert.NotEmpty(t, c.ErrText)
}

func TestRemove_ThenReload(t *testing.T) {
	svc := newFakeService("Buy milk", "Walk dog")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil

	drain(c, c.Remove(c.Items[0].ID))
	assert.Equal(t, []string{"deleteTodo", "myTodos"}, svc.calls)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Walk dog", c.Items[0].Title)
}

func TestConcurrentRemoveAndToggle_LastCompletionWins(t *testing.T) {
	svc := newFakeService("Buy milk")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	id := c.Items[0].ID
	svc.calls = nil

	// Both issued back-to-back before either completes.
	removeCmd := c.Remove(id)
	toggleCmd := c.Toggle(id)

	// Delete resolves first; its reload runs. Then the toggle resolves
	// against a record that is gone: not-found, reload again. Neither
	// completion may blow up because of the other's effect.
	drain(c, removeCmd)
	drain(c, toggleCmd)

	assert.Equal(t, []string{"deleteTodo", "myTodos", "toggleTodo", "myTodos"}, svc.calls)
	assert.Empty(t, c.Items, "last reload determines the visible state")
	assert.Empty(t, c.ErrText)
}

func TestDialogTargets_PureTransitions(t *testing.T) {
	svc := newFakeService("Buy milk", "Walk dog")
	c := todo.NewController(svc, nil)
	drain(c, c.Load())
	svc.calls = nil

	c.BeginEdit(c.Items[0])
	require.NotNil(t, c.EditTarget())
	assert.Nil(t, c.DeleteTarget())
	assert.Equal(t, "Buy milk", c.EditTarget().Title)

	c.BeginDelete(c.Items[1])
	require.NotNil(t, c.DeleteTarget())
	assert.Nil(t, c.EditTarget(), "only one dialog target at a time")

	c.CancelDialog()
	assert.Nil(t, c.EditTarget())
	assert.Nil(t, c.DeleteTarget())
	assert.Empty(t, svc.calls, "dialog transitions have no network effect")
}

func TestStats(t *testing.T) {
	svc := newFakeService("a", "b", "c")
	svc.todos[0].Completed = true
	c := todo.NewController(svc, nil)
	drain(c, c.Load())

	done, pending := c.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}
