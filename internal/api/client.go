// Package api implements the GraphQL client for the todo service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the service URL used when none is configured.
	DefaultEndpoint = "http://localhost:8000/graphql/"

	requestTimeout = 30 * time.Second
)

const meQuery = `query Me {
	me { id username role }
}`

const usersQuery = `query Users {
	users { id username role }
}`

const myTodosQuery = `query {
	myTodos { id title completed }
}`

const loginMutation = `mutation Login($username: String!, $password: String!) {
	login(username: $username, password: $password) {
		token
		user { id username role }
	}
}`

const signupMutation = `mutation Signup($username: String!, $password: String!) {
	signup(username: $username, password: $password) {
		user { id username role }
	}
}`

const logoutMutation = `mutation Logout {
	logout { ok }
}`

const createTodoMutation = `mutation CreateTodo($title: String!) {
	createTodo(title: $title) {
		todo { id title completed }
	}
}`

const toggleTodoMutation = `mutation ToggleTodo($id: ID!) {
	toggleTodo(id: $id) {
		todo { id title completed }
	}
}`

const updateTodoMutation = `mutation UpdateTodo($id: ID!, $title: String, $completed: Boolean) {
	updateTodo(id: $id, title: $title, completed: $completed) {
		todo { id title completed }
	}
}`

const deleteTodoMutation = `mutation DeleteTodo($id: ID!) {
	deleteTodo(id: $id) {
		ok
	}
}`

// graphqlRequest is the JSON body posted to the service.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Client talks to the todo service over GraphQL. A zero token sends no
// Authorization header; SetToken arms every subsequent call with it.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	log        *zap.Logger
}

// NewClient builds a Client against the given endpoint. A nil logger
// falls back to zap.NewNop.
func NewClient(endpoint string, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   endpoint,
		log:        log,
	}
}

// NewClientWithHTTPClient injects a custom http.Client, intended for
// tests against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, endpoint string, log *zap.Logger) *Client {
	c := NewClient(endpoint, log)
	c.httpClient = httpClient
	return c
}

// SetToken arms the client with a credential for authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// ClearToken drops the credential; subsequent calls go out anonymous.
func (c *Client) ClearToken() { c.token = "" }

// Token returns the currently armed credential, empty when anonymous.
func (c *Client) Token() string { return c.token }

// do posts one GraphQL operation and decodes the "data" object into
// out. GraphQL-level errors are classified into the package sentinels.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.doWithToken(ctx, c.token, query, vars, out)
}

// doWithToken is do with an explicit credential, so teardown can still
// revoke a token the client has already dropped.
func (c *Client) doWithToken(ctx context.Context, token, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("graphql: request failed", zap.Error(err))
		return fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("graphql: non-200 response", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		err := classify(envelope.Errors[0].Message)
		c.log.Warn("graphql: operation rejected", zap.Error(err))
		return err
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Me returns the identified user, or nil when the credential is absent
// or no longer valid. The nil case is not an error.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var data struct {
		Me *User `json:"me"`
	}
	if err := c.do(ctx, meQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Me, nil
}

// Users lists every account. Requires the elevated role.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var data struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, usersQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

// Login exchanges credentials for a token and the identified user.
func (c *Client) Login(ctx context.Context, username, password string) (string, *User, error) {
	var data struct {
		Login struct {
			Token string `json:"token"`
			User  *User  `json:"user"`
		} `json:"login"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, loginMutation, vars, &data); err != nil {
		return "", nil, err
	}
	return data.Login.Token, data.Login.User, nil
}

// Signup registers a new account. The caller still has to Login.
func (c *Client) Signup(ctx context.Context, username, password string) (*User, error) {
	var data struct {
		Signup struct {
			User *User `json:"user"`
		} `json:"signup"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, signupMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.Signup.User, nil
}

// Logout invalidates the server-side session. Best effort; the local
// credential is cleared by the session store regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, logoutMutation, nil, nil)
}

// LogoutToken invalidates the server-side session behind a specific
// credential, independent of the one currently armed.
func (c *Client) LogoutToken(ctx context.Context, token string) error {
	return c.doWithToken(ctx, token, logoutMutation, nil, nil)
}

// MyTodos fetches the caller's full todo list in server order.
func (c *Client) MyTodos(ctx context.Context) ([]Todo, error) {
	var data struct {
		MyTodos []Todo `json:"myTodos"`
	}
	if err := c.do(ctx, myTodosQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.MyTodos, nil
}

// CreateTodo adds a todo and returns it with its server-assigned id.
func (c *Client) CreateTodo(ctx context.Context, title string) (*Todo, error) {
	var data struct {
		CreateTodo struct {
			Todo *Todo `json:"todo"`
		} `json:"createTodo"`
	}
	if err := c.do(ctx, createTodoMutation, map[string]any{"title": title}, &data); err != nil {
		return nil, err
	}
	return data.CreateTodo.Todo, nil
}

// ToggleTodo flips the completed flag server-side.
func (c *Client) ToggleTodo(ctx context.Context, id string) (*Todo, error) {
	var data struct {
		ToggleTodo struct {
			Todo *Todo `json:"todo"`
		} `json:"toggleTodo"`
	}
	if err := c.do(ctx, toggleTodoMutation, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	return data.ToggleTodo.Todo, nil
}

// UpdateTodo sets the given fields; nil fields stay untouched.
func (c *Client) UpdateTodo(ctx context.Context, id string, title *string, completed *bool) (*Todo, error) {
	vars := map[string]any{"id": id}
	if title != nil {
		vars["title"] = *title
	}
	if completed != nil {
		vars["completed"] = *completed
	}
	var data struct {
		UpdateTodo struct {
			Todo *Todo `json:"todo"`
		} `json:"updateTodo"`
	}
	if err := c.do(ctx, updateTodoMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.UpdateTodo.Todo, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	var data struct {
		DeleteTodo struct {
			OK bool `json:"ok"`
		} `json:"deleteTodo"`
	}
	return c.do(ctx, deleteTodoMutation, map[string]any{"id": id}, &data)
}
