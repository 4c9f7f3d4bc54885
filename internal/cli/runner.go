// Package cli dispatches subcommands. The interactive TUI is the
// default; the rest are one-shot remote operations that print styled
// confirmation lines.
package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tudu-app/tudu/internal/api"
	"github.com/tudu-app/tudu/internal/config"
	"github.com/tudu-app/tudu/internal/logging"
	"github.com/tudu-app/tudu/internal/session"
	"github.com/tudu-app/tudu/internal/todo"
	"github.com/tudu-app/tudu/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// env bundles the wired-up collaborators every subcommand needs.
type env struct {
	client *api.Client
	store  *session.Store
	log    *zap.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	cfg, err := config.Load()
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	log, err := logging.New(logging.Config(cfg.Logger))
	if err != nil {
		ui.Fail("logger: " + err.Error())
		return 1
	}
	defer func() { _ = log.Sync() }()
	ui.SetTheme(cfg.Theme)

	client := api.NewClient(cfg.ServerURL, log)
	store, err := session.NewStore(client, log)
	if err != nil {
		ui.Fail("session: " + err.Error())
		return 1
	}
	if err := store.Restore(); err != nil {
		ui.Fail("restore session: " + err.Error())
		return 1
	}
	e := env{client: client, store: store, log: log}

	cmd, a := "ui", args
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ui":
		return doUI(e)

	case "ls":
		return doList(e, opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: tudu add <title...>")
			return 2
		}
		return doAdd(e, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: tudu done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return doToggle(e, n)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: tudu rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("rm: not a number: " + a[0])
			return 2
		}
		return doRemove(e, n)

	case "users":
		return doUsers(e)

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: tudu auth <login|signup|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(e, false)
		case "signup":
			return doAuthLogin(e, true)
		case "logout":
			return doAuthLogout(e)
		case "status":
			return doAuthStatus(e)
		case "whoami":
			return doAuthWhoAmI(e)
		default:
			ui.Fail("usage: tudu auth <login|signup|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`tudu - a terminal client for the todo service

Usage:
  tudu [subcommand] [args]

Subcommands:
  ui                 Interactive TUI (default)
  add <title...>     Add a new todo (title can be multiple words)
  ls                 List todos
  done <index>       Toggle done for todo at 1-based index
  rm <index>         Remove todo at 1-based index
  users              List all users (admin only)
  auth <login|signup|logout|status|whoami>   Session management

Examples:
  tudu auth login
  tudu add "Buy milk"
  tudu done 2
  tudu rm 3
`)
}

// ---------------------------------------------------
// Interactive TUI
// ---------------------------------------------------

func doUI(e env) int {
	ctrl := todo.NewController(e.client, e.log)
	app := ui.NewApp(e.client, e.store, ctrl, e.log)
	if err := ui.Run(app); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func promptCredentials() (string, string, error) {
	in := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := in.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	fmt.Print("Password: ")
	password, err := readPassword(in, int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(username), password, nil
}

// readPassword suppresses echo when fd is a terminal. Piped stdin
// falls back to a plain line read so scripted logins keep working.
func readPassword(in *bufio.Reader, fd int) (string, error) {
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	line, err := in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func doAuthLogin(e env, signup bool) int {
	username, password, err := promptCredentials()
	if err != nil {
		ui.Fail("read credentials: " + err.Error())
		return 1
	}
	var user *api.User
	if signup {
		user, err = e.store.Signup(context.Background(), username, password)
	} else {
		user, err = e.store.Login(context.Background(), username, password)
	}
	if err != nil {
		// Same message for every cause on purpose.
		ui.Fail("login failed")
		return 1
	}
	ui.OK("logged in as " + user.Username)
	return 0
}

func doAuthLogout(e env) int {
	if err := e.store.Logout(context.Background()); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(e env) int {
	if !e.store.Authenticated() {
		fmt.Println("not logged in")
		fmt.Println("Run: tudu auth login")
		return 0
	}
	if u := e.store.Current(); u != nil {
		fmt.Printf("user: %s (%s)\n", u.Username, u.Role)
	}
	fmt.Println("env override: " + session.EnvToken)
	return 0
}

// whoami asks the server who the stored credential belongs to; a JWT
// credential is also decoded locally (unsigned) for inspection.
func doAuthWhoAmI(e env) int {
	if !e.store.Authenticated() {
		ui.Fail("not logged in. Run: tudu auth login")
		return 2
	}
	user, err := e.store.Identify(context.Background())
	if err != nil {
		ui.Fail("whoami: " + err.Error())
		return 1
	}
	if user == nil {
		ui.Fail("session expired. Run: tudu auth login")
		return 2
	}
	fmt.Printf("%s (%s)\n", user.Username, user.Role)

	parts := strings.Split(e.client.Token(), ".")
	if len(parts) == 3 {
		if p, err := decodeB64URL(parts[1]); err == nil {
			fmt.Println("JWT payload:")
			fmt.Println(p)
		}
	}
	return 0
}

func decodeB64URL(s string) (string, error) {
	dec, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		// retry with padding
		switch len(s) % 4 {
		case 2:
			s += "=="
		case 3:
			s += "="
		}
		dec2, err2 := base64.URLEncoding.DecodeString(s)
		if err2 != nil {
			return "", err
		}
		return string(dec2), nil
	}
	return string(dec), nil
}

// Require a credential for networked commands.
func ensureAuth(e env) int {
	if !e.store.Authenticated() {
		ui.Fail("no session found. Set " + session.EnvToken + " or run `tudu auth login`")
		return 2
	}
	return 0
}

// ---------------------------------------------------
// Todo subcommands (remote CRUD)
// ---------------------------------------------------

func fetchTodos(e env) ([]api.Todo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return e.client.MyTodos(ctx)
}

func doList(e env, opt Options) int {
	if code := ensureAuth(e); code != 0 {
		return code
	}
	items, err := fetchTodos(e)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	if len(items) == 0 {
		fmt.Println("No todos yet. Add your first task.")
		return 0
	}
	ui.PrintPanel(renderLines(items, opt.Group))
	return 0
}

func renderLines(items []api.Todo, group bool) []string {
	line := func(i int, t api.Todo) string {
		return fmt.Sprintf("%2d %s %s", i+1, ui.Checkbox(t.Completed), t.Title)
	}
	var lines []string
	if !group {
		for i, t := range items {
			lines = append(lines, line(i, t))
		}
		return lines
	}
	for i, t := range items {
		if !t.Completed {
			lines = append(lines, line(i, t))
		}
	}
	for i, t := range items {
		if t.Completed {
			lines = append(lines, line(i, t))
		}
	}
	return lines
}

func doAdd(e env, title string) int {
	if code := ensureAuth(e); code != 0 {
		return code
	}
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("add: empty title")
		return 2
	}
	if _, err := e.client.CreateTodo(context.Background(), title); err != nil {
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK("added")
	return 0
}

// resolveIndex maps a 1-based display index onto a fresh server list,
// so done/rm always act on current state.
func resolveIndex(e env, userIndex int) (api.Todo, int) {
	items, err := fetchTodos(e)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return api.Todo{}, 1
	}
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(os.Stderr, "Hint: run `tudu ls` to see valid indexes")
		return api.Todo{}, 2
	}
	return items[userIndex-1], 0
}

func doToggle(e env, userIndex int) int {
	if code := ensureAuth(e); code != 0 {
		return code
	}
	t, code := resolveIndex(e, userIndex)
	if code != 0 {
		return code
	}
	if _, err := e.client.ToggleTodo(context.Background(), t.ID); err != nil {
		ui.Fail("done: " + err.Error())
		return 1
	}
	ui.OK("toggled")
	return 0
}

func doRemove(e env, userIndex int) int {
	if code := ensureAuth(e); code != 0 {
		return code
	}
	t, code := resolveIndex(e, userIndex)
	if code != 0 {
		return code
	}
	if err := e.client.DeleteTodo(context.Background(), t.ID); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK("removed")
	return 0
}

func doUsers(e env) int {
	if code := ensureAuth(e); code != 0 {
		return code
	}
	users, err := e.client.Users(context.Background())
	if err != nil {
		ui.Fail("users: " + err.Error())
		return 1
	}
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("%s (%s)", u.Username, u.Role))
	}
	ui.PrintPanel(lines)
	return 0
}
