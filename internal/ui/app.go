// Package ui is the Bubble Tea front of the client: an auth screen,
// the todos panel, and the admin-only users panel. All network work
// runs as commands; completions come back as messages and are applied
// in arrival order on the single event loop.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tudu-app/tudu/internal/api"
	"github.com/tudu-app/tudu/internal/dialog"
	"github.com/tudu-app/tudu/internal/session"
	"github.com/tudu-app/tudu/internal/todo"
)

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogAdd
	dialogEdit
	dialogDelete
)

type authMode int

const (
	authSignIn authMode = iota
	authSignUp
)

// identifiedMsg carries the result of the startup identity check.
type identifiedMsg struct {
	user *api.User
	err  error
}

// authResultMsg carries a finished login or signup attempt.
type authResultMsg struct {
	user *api.User
	err  error
}

// usersLoadedMsg carries the admin user listing.
type usersLoadedMsg struct {
	users []api.User
	err   error
}

// loggedOutMsg confirms the remote session revoke finished.
type loggedOutMsg struct{}

// App is the root model. It composes the visible screen from the
// session and forwards intents to the todo controller and the dialog.
type App struct {
	client *api.Client
	sess   *session.Store
	ctrl   *todo.Controller
	log    *zap.Logger

	screen Screen
	panel  Panel
	user   *api.User

	list    list.Model
	dlg     dialog.Model
	dlgKind dialogKind

	users    []api.User
	usersErr string

	authMode authMode
	authBusy bool
	authErr  string

	width, height int
}

// NewApp wires the root model. Call sess.Restore() first; the app
// trusts whatever session state it is handed at startup.
func NewApp(client *api.Client, sess *session.Store, ctrl *todo.Controller, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	a := App{
		client: client,
		sess:   sess,
		ctrl:   ctrl,
		log:    log,
		list:   newTodoList(),
		dlg:    dialog.New(),
	}
	a.user = sess.Current()
	a.screen = Compose(a.user)
	if a.screen == ScreenAuth {
		a.openAuthDialog()
	}
	return a
}

// Run starts the program in the alternate screen.
func Run(a App) error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	if a.screen == ScreenMain {
		// Snapshot user is optimistic; confirm it and load in parallel.
		return tea.Batch(a.identifyCmd(), a.ctrl.Load())
	}
	return nil
}

func (a App) identifyCmd() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		user, err := sess.Identify(context.Background())
		return identifiedMsg{user: user, err: err}
	}
}

// submitAuthCmd fires one login or signup attempt. Duplicate submits
// are not de-duplicated; overlapping attempts race and the last
// completion wins. Known gap.
func (a App) submitAuthCmd(mode authMode, username, password string) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		var (
			user *api.User
			err  error
		)
		if mode == authSignUp {
			user, err = sess.Signup(context.Background(), username, password)
		} else {
			user, err = sess.Login(context.Background(), username, password)
		}
		return authResultMsg{user: user, err: err}
	}
}

func (a App) fetchUsersCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		users, err := client.Users(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

func (a *App) openAuthDialog() {
	title := "Sign in"
	if a.authMode == authSignUp {
		title = "Sign up"
	}
	a.dlg.Open(title, "", []dialog.Field{
		{Name: "username", Label: "Username"},
		{Name: "password", Label: "Password", Type: "password"},
	})
}

func (a *App) closeDialog() {
	a.dlg.Close()
	a.dlgKind = dialogNone
	a.ctrl.CancelDialog()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.list.SetSize(msg.Width-4, msg.Height-6)
		return a, nil

	case identifiedMsg:
		return a.applyIdentified(msg)

	case authResultMsg:
		return a.applyAuthResult(msg)

	case loggedOutMsg:
		return a, nil

	case usersLoadedMsg:
		if msg.err != nil {
			a.usersErr = "Could not load users"
			a.log.Warn("user listing failed", zap.Error(msg.err))
			return a, nil
		}
		a.users = msg.users
		a.usersErr = ""
		return a, nil

	case todo.LoadedMsg:
		cmd := a.ctrl.Apply(msg)
		a.syncList()
		return a, cmd

	case todo.MutatedMsg:
		return a.applyMutated(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	if a.dlg.Opened() {
		a.dlg, cmd = a.dlg.Update(msg)
	} else if a.screen == ScreenMain && a.panel == PanelTodos {
		a.list, cmd = a.list.Update(msg)
	}
	return a, cmd
}

func (a App) applyIdentified(msg identifiedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Keep the optimistic snapshot; the next action will surface
		// a real failure if the server stays unreachable.
		a.log.Warn("identify failed", zap.Error(msg.err))
		return a, nil
	}
	a.user = msg.user
	a.screen = Compose(a.user)
	if a.screen == ScreenAuth {
		a.openAuthDialog()
		return a, nil
	}
	if a.panel == PanelUsers && !a.user.IsAdmin() {
		a.panel = PanelTodos
	}
	return a, nil
}

func (a App) applyAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.authBusy = false
	if msg.err != nil {
		// Deliberately generic: bad password and unknown account read
		// the same, so the form does not enumerate accounts.
		a.authErr = "Login failed"
		if a.authMode == authSignUp {
			a.authErr = "Sign up failed"
		}
		a.log.Info("auth attempt failed", zap.Error(msg.err))
		return a, nil
	}
	a.user = msg.user
	a.authErr = ""
	a.screen = Compose(a.user)
	a.panel = PanelTodos
	a.closeDialog()
	return a, a.ctrl.Load()
}

func (a App) applyMutated(msg todo.MutatedMsg) (tea.Model, tea.Cmd) {
	cmd := a.ctrl.Apply(msg)
	if cmd == nil && a.ctrl.ErrText != "" {
		// Generic failure: nothing changed remotely, keep the dialog
		// open so the same input can be retried.
		if a.dlg.Opened() {
			a.dlg.SetError(a.ctrl.ErrText)
		}
		return a, nil
	}
	if a.dlgKind != dialogNone {
		a.closeDialog()
	}
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.screen == ScreenAuth {
		return a.handleAuthKey(msg)
	}

	if a.dlg.Opened() {
		return a.handleDialogKey(msg)
	}

	// While a reload is in flight the list is a lagging mirror; block
	// interaction until the fresh state arrives.
	if a.ctrl.Loading {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		return a.switchPanel()
	case "ctrl+o":
		return a.logout()
	}

	if a.panel == PanelTodos {
		return a.handleTodosKey(msg)
	}
	return a, nil
}

func (a App) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "ctrl+s":
		if a.authMode == authSignIn {
			a.authMode = authSignUp
		} else {
			a.authMode = authSignIn
		}
		a.authErr = ""
		a.openAuthDialog()
		return a, nil
	case "enter":
		values := a.dlg.Values()
		username := strings.TrimSpace(values["username"])
		password := values["password"]
		if username == "" || password == "" {
			a.dlg.SetError("Username and password are required")
			return a, nil
		}
		a.authBusy = true
		return a, a.submitAuthCmd(a.authMode, username, password)
	}
	var cmd tea.Cmd
	a.dlg, cmd = a.dlg.Update(msg)
	return a, cmd
}

func (a App) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeDialog()
		return a, nil
	case "enter":
		return a.confirmDialog()
	}
	var cmd tea.Cmd
	a.dlg, cmd = a.dlg.Update(msg)
	return a, cmd
}

// confirmDialog interprets the collected values for the current
// subject. The dialog itself stays open until the mutation completes,
// so a transport failure leaves it up for retry.
func (a App) confirmDialog() (tea.Model, tea.Cmd) {
	values := a.dlg.Values()
	switch a.dlgKind {
	case dialogAdd:
		cmd, err := a.ctrl.Create(strings.TrimSpace(values["title"]))
		if err != nil {
			a.dlg.SetError("Title cannot be empty")
			return a, nil
		}
		return a, cmd
	case dialogEdit:
		target := a.ctrl.EditTarget()
		if target == nil {
			a.closeDialog()
			return a, nil
		}
		cmd := a.ctrl.Update(target.ID, strings.TrimSpace(values["title"]))
		if cmd == nil {
			// Empty or unchanged title: required short-circuit, the
			// dialog just closes without a network call.
			a.closeDialog()
			return a, nil
		}
		return a, cmd
	case dialogDelete:
		target := a.ctrl.DeleteTarget()
		if target == nil {
			a.closeDialog()
			return a, nil
		}
		return a, a.ctrl.Remove(target.ID)
	}
	a.closeDialog()
	return a, nil
}

func (a App) switchPanel() (tea.Model, tea.Cmd) {
	panels := AvailablePanels(a.user)
	if len(panels) < 2 {
		return a, nil
	}
	if a.panel == PanelTodos {
		a.panel = PanelUsers
		return a, a.fetchUsersCmd()
	}
	a.panel = PanelTodos
	return a, nil
}

// logout tears down local state right away and revokes the session
// remotely as a command, so a slow server cannot stall the event loop.
func (a App) logout() (tea.Model, tea.Cmd) {
	sess := a.sess
	token := a.client.Token()
	if err := sess.ClearLocal(); err != nil {
		a.log.Warn("clear session", zap.Error(err))
	}
	a.user = nil
	a.users = nil
	a.ctrl.Items = nil
	a.ctrl.CancelDialog()
	a.syncList()
	a.screen = ScreenAuth
	a.authMode = authSignIn
	a.authErr = ""
	a.openAuthDialog()
	return a, func() tea.Msg {
		sess.RevokeRemote(context.Background(), token)
		return loggedOutMsg{}
	}
}

func (a App) View() string {
	switch a.screen {
	case ScreenAuth:
		return a.viewAuth()
	default:
		return a.viewMain()
	}
}

func (a App) viewAuth() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tudu") + "\n\n")
	b.WriteString(a.dlg.View())
	if a.authBusy {
		b.WriteString("\n" + mutedStyle.Render("Signing in..."))
	}
	if a.authErr != "" {
		b.WriteString("\n" + errorStyle.Render(a.authErr))
	}
	b.WriteString("\n" + helpStyle.Render("ctrl+s switch sign in/up • esc quit"))
	return Frame(b.String())
}

func (a App) viewMain() string {
	var b strings.Builder
	b.WriteString(a.viewHeader() + "\n")
	if a.panel == PanelUsers {
		b.WriteString(a.viewUsers())
	} else {
		b.WriteString(a.viewTodos())
	}
	if a.dlg.Opened() {
		b.WriteString("\n" + a.dlg.View())
	}
	return Frame(b.String())
}

func (a App) viewHeader() string {
	name := ""
	if a.user != nil {
		name = a.user.Username
	}
	tabs := tabFor(a.panel == PanelTodos, "My todos")
	if len(AvailablePanels(a.user)) > 1 {
		tabs += " " + tabFor(a.panel == PanelUsers, "All users")
	}
	return tabs + "  " + mutedStyle.Render(name) + "  " +
		helpStyle.Render("tab panel • ctrl+o logout • q quit")
}

func tabFor(active bool, label string) string {
	if active {
		return activeTabStyle.Render(label)
	}
	return tabStyle.Render(label)
}
